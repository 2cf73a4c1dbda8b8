package ocr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/ironsheep/blueprint-vision/internal/errors"
)

// Capability states reported by Info.
const (
	StateUninitialized = "uninitialized"
	StateInitializing  = "initializing"
	StateReady         = "ready"
	StateFailed        = "failed"
)

// Info contains information about the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	State     string `json:"state"`
	Backend   string `json:"backend"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Capability guards the one-time initialization of an OCR engine.
type Capability struct {
	provider    Provider
	initTimeout time.Duration
	log         logrus.FieldLogger

	start   sync.Once
	started atomic.Bool
	done    chan struct{}

	// Written once before done is closed.
	engine  Engine
	version string
	err     error
}

// NewCapability creates a capability that opens provider on first use.
// Callers wait at most initTimeout for the engine.
func NewCapability(provider Provider, initTimeout time.Duration, log logrus.FieldLogger) *Capability {
	return &Capability{
		provider:    provider,
		initTimeout: initTimeout,
		log:         log,
		done:        make(chan struct{}),
	}
}

// TryInitialize returns the engine, starting initialization if nobody has.
//
// The wait is bounded by the init timeout and ctx. Giving up does not cancel
// the attempt; a later caller may still find the engine ready. Every failure
// is an ocr_unavailable error.
func (c *Capability) TryInitialize(ctx context.Context) (Engine, error) {
	c.start.Do(func() {
		c.started.Store(true)
		go c.initialize()
	})

	timer := time.NewTimer(c.initTimeout)
	defer timer.Stop()

	select {
	case <-c.done:
		if c.err != nil {
			return nil, apperrors.NewOCRUnavailableError(
				fmt.Sprintf("%s engine failed to initialize", c.provider.Name()), c.err)
		}
		return c.engine, nil
	case <-timer.C:
		return nil, apperrors.NewOCRUnavailableError(
			fmt.Sprintf("%s engine not ready after %s", c.provider.Name(), c.initTimeout), nil)
	case <-ctx.Done():
		return nil, apperrors.NewOCRUnavailableError("gave up waiting for OCR engine", ctx.Err())
	}
}

func (c *Capability) initialize() {
	defer close(c.done)
	defer func() {
		if r := recover(); r != nil {
			c.engine = nil
			c.err = fmt.Errorf("panic opening engine: %v", r)
		}
		if c.err != nil {
			c.log.WithError(c.err).WithField("backend", c.provider.Name()).Warn("OCR engine unavailable")
		} else {
			c.log.WithField("backend", c.provider.Name()).Info("OCR engine ready")
		}
	}()

	c.engine, c.err = c.provider.Open(context.Background())
	if c.err == nil && c.engine == nil {
		c.err = fmt.Errorf("provider returned no engine")
	}
	// Engines may serialize Version behind a running recognition.
	if c.err == nil {
		c.version = c.engine.Version()
	}
}

// Info reports the current state without starting initialization.
func (c *Capability) Info() Info {
	info := Info{State: StateUninitialized, Backend: c.provider.Name()}
	if !c.started.Load() {
		return info
	}

	select {
	case <-c.done:
	default:
		info.State = StateInitializing
		return info
	}

	if c.err != nil {
		info.State = StateFailed
		info.Error = c.err.Error()
		return info
	}
	info.State = StateReady
	info.Available = true
	info.Version = c.version
	return info
}

// Close releases the engine if one was opened. It does not wait for an
// in-flight initialization.
func (c *Capability) Close() error {
	select {
	case <-c.done:
		if c.engine != nil {
			return c.engine.Close()
		}
	default:
	}
	return nil
}
