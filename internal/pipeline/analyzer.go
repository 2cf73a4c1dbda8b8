package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/blueprint-vision/internal/cache"
	"github.com/ironsheep/blueprint-vision/internal/classify"
	"github.com/ironsheep/blueprint-vision/internal/config"
	"github.com/ironsheep/blueprint-vision/internal/detection"
	apperrors "github.com/ironsheep/blueprint-vision/internal/errors"
	"github.com/ironsheep/blueprint-vision/internal/imaging"
	"github.com/ironsheep/blueprint-vision/internal/observer"
	"github.com/ironsheep/blueprint-vision/internal/ocr"
)

// Stage names used in diagnostic events.
const (
	StageCache      = "cache"
	StageValidate   = "validate"
	StageRasterize  = "rasterize"
	StageBasicStats = "basic_stats"
	StageText       = "text"
	StageOCR        = "ocr"
	StageLines      = "lines"
	StageClassify   = "classify"
	StageQuality    = "quality"
	StageRun        = "run"
)

// Analyzer runs analyses. Create one per process with New and share it; it
// is safe for concurrent use.
type Analyzer struct {
	cfg        *config.Config
	validator  *imaging.Validator
	capability *ocr.Capability
	extractor  *ocr.Extractor
	results    *cache.Cache[CacheKey, *Result]
	sink       observer.Sink
	log        logrus.FieldLogger

	provider  ocr.Provider
	clock     cache.Clock
	stageHook func(stage string)
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. The default is the standard logrus logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Analyzer) {
		a.log = log
	}
}

// WithSink sets the diagnostics sinks. Several sinks all receive every
// event. The default logs events through the analyzer's logger.
func WithSink(sinks ...observer.Sink) Option {
	return func(a *Analyzer) {
		if len(sinks) == 1 {
			a.sink = sinks[0]
			return
		}
		a.sink = observer.Multi(sinks)
	}
}

// WithOCRProvider replaces the Tesseract provider.
func WithOCRProvider(provider ocr.Provider) Option {
	return func(a *Analyzer) {
		a.provider = provider
	}
}

// WithClock sets the clock used for cache expiry.
func WithClock(clock cache.Clock) Option {
	return func(a *Analyzer) {
		a.clock = clock
	}
}

// New creates an analyzer from cfg.
func New(cfg *config.Config, opts ...Option) *Analyzer {
	a := &Analyzer{
		cfg:   cfg,
		log:   logrus.StandardLogger(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sink == nil {
		a.sink = observer.NewLogSink(a.log)
	}
	if a.provider == nil {
		a.provider = ocr.Tesseract{Language: cfg.OCRLanguage, TessdataPrefix: cfg.TessdataPrefix}
	}

	a.validator = imaging.NewValidator(cfg.MaxFileSize, cfg.MinFileSize, cfg.AllowedTypes)
	a.capability = ocr.NewCapability(a.provider, cfg.OCRInitTimeout, a.log)
	a.extractor = ocr.NewExtractor(a.capability, cfg.OCRTimeout)
	a.results = cache.New[CacheKey, *Result](cfg.CacheTTL, cfg.CacheMaxEntries, cache.WithClock(a.clock))
	return a
}

// Analyze returns the analysis of src.
//
// The error is non-nil only when src fails validation. Any other failure
// yields a fallback result with Fallback set.
//
// Parameters:
//   - ctx: Cancels decoding and OCR waits. Cancellation during a run yields a
//     fallback result, not an error.
//   - src: The uploaded file. Its name, size and modification time form the
//     cache key.
//   - opts: Per-run options; see DefaultOptions.
//
// Returns:
//   - *Result: A fully populated result. Cached results are shared and must
//     not be modified.
//   - error: A validation *AppError, otherwise nil.
//
// # Caching
//
// The cache is consulted before validation, so a cached file is never
// re-validated. Only non-fallback results are stored.
func (a *Analyzer) Analyze(ctx context.Context, src imaging.SourceFile, opts Options) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	key := KeyFor(src)

	if cached, ok := a.results.Get(key); ok {
		a.record(runID, StageCache, observer.OutcomeCacheHit, time.Since(start), nil,
			map[string]interface{}{"file": src.Name, "cached_run_id": cached.RunID})
		return cached, nil
	}

	if err := a.Validate(src); err != nil {
		a.record(runID, StageValidate, observer.OutcomeFailed, time.Since(start), err,
			map[string]interface{}{"file": src.Name, "size": src.Size()})
		return nil, err
	}

	result, err := a.run(ctx, runID, src, opts)
	if err != nil {
		result = Fallback(src)
		result.FallbackReason = string(apperrors.Category(err))
		a.record(runID, StageRun, observer.OutcomeFallback, time.Since(start), err,
			map[string]interface{}{"file": src.Name, "size": src.Size()})
	}

	result.RunID = runID
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	result.AnalyzedAt = a.clock()

	if !result.Fallback {
		a.results.Set(key, result)
		a.record(runID, StageRun, observer.OutcomeSuccess, time.Since(start), nil,
			map[string]interface{}{"file": src.Name, "size": src.Size()})
	}

	a.log.WithFields(logrus.Fields{
		"run_id":      runID,
		"file":        src.Name,
		"fallback":    result.Fallback,
		"duration_ms": result.ProcessingTimeMs,
	}).Info("analysis complete")

	return result, nil
}

// Validate checks src without analyzing it.
func (a *Analyzer) Validate(src imaging.SourceFile) error {
	return a.validator.Validate(src)
}

func (a *Analyzer) run(ctx context.Context, runID string, src imaging.SourceFile, opts Options) (*Result, error) {
	maxSize := opts.MaxImageSize
	if maxSize <= 0 {
		maxSize = a.cfg.MaxImageSize
	}

	var raster *imaging.Raster
	err := a.stage(runID, StageRasterize, func() error {
		var err error
		raster, err = imaging.Rasterize(ctx, src, imaging.RasterOptions{
			MaxSize:   maxSize,
			Timeout:   a.cfg.DecodeTimeout,
			MaxPixels: a.cfg.MaxDecodePixels,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	var (
		stats *detection.BasicStats
		text  *ocr.Summary
		lines *detection.LineSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.stage(runID, StageBasicStats, func() error {
			stats = detection.AnalyzeBasicStats(raster, opts.ClassifyElements)
			return nil
		})
	})
	g.Go(func() error {
		return a.stage(runID, StageText, func() error {
			text = a.extractText(gctx, runID, raster, opts)
			return nil
		})
	})
	g.Go(func() error {
		return a.stage(runID, StageLines, func() error {
			lines = detection.DetectLines(raster, opts.ClassifyElements)
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var classification *classify.Classification
	err = a.stage(runID, StageClassify, func() error {
		classification = classify.Classify(classify.Input{
			FileName:      src.Name,
			FileSize:      src.Size(),
			TextCount:     text.Count,
			RoomCount:     text.RoomCount,
			RoomLabels:    text.RoomLabels,
			OCRConfidence: text.Confidence,
		})
		if opts.DetectScale {
			classification.Scale = text.Scale
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var quality *detection.QualityScores
	err = a.stage(runID, StageQuality, func() error {
		quality = detection.AssessQuality(raster)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		FileName:       src.Name,
		FileSize:       src.Size(),
		ImageSize:      ImageSize{Width: raster.Width, Height: raster.Height},
		Elements:       stats.ElementHints,
		Text:           text,
		Lines:          lines,
		Classification: classification,
		Quality:        quality,
		Stats:          stats,
		ColorScheme:    stats.ColorScheme,
		Palette:        stats.Palette,
	}, nil
}

// extractText never fails; OCR problems become an estimated summary and an
// event on the ocr stage.
func (a *Analyzer) extractText(ctx context.Context, runID string, raster *imaging.Raster, opts Options) *ocr.Summary {
	start := time.Now()
	summary, err := a.extractor.Extract(ctx, raster, ocr.Options{
		Enabled:     opts.EnableOCR,
		Enhance:     opts.EnhanceImage,
		DetectScale: opts.DetectScale,
	})

	switch {
	case !opts.EnableOCR:
		a.record(runID, StageOCR, observer.OutcomeSkipped, time.Since(start), nil, nil)
	case err != nil:
		a.record(runID, StageOCR, observer.OutcomeFallback, time.Since(start), err,
			map[string]interface{}{"estimated_regions": summary.Count})
	default:
		a.record(runID, StageOCR, observer.OutcomeSuccess, time.Since(start), nil,
			map[string]interface{}{"regions": summary.Count, "confidence": summary.Confidence})
	}
	return summary
}

// stage runs fn, converting a panic into an unknown_stage error, and records
// the outcome.
func (a *Analyzer) stage(runID, name string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewUnknownStageError(name, fmt.Sprintf("stage panicked: %v", r), nil)
		}
		outcome := observer.OutcomeSuccess
		if err != nil {
			outcome = observer.OutcomeFailed
		}
		a.record(runID, name, outcome, time.Since(start), err, nil)
	}()

	if a.stageHook != nil {
		a.stageHook(name)
	}
	return fn()
}

func (a *Analyzer) record(runID, stage string, outcome observer.Outcome, d time.Duration, err error, metadata map[string]interface{}) {
	event := observer.Event{
		RunID:     runID,
		Stage:     stage,
		Outcome:   outcome,
		Duration:  d,
		Metadata:  metadata,
		Timestamp: time.Now(),
	}
	if err != nil {
		event.Category = string(apperrors.Category(err))
		event.Message = err.Error()
	}
	a.sink.Record(event)
}

// ClearCache drops every cached result and returns how many were dropped.
func (a *Analyzer) ClearCache() int {
	return a.results.Clear()
}

// CacheStats reports cache counters.
func (a *Analyzer) CacheStats() cache.Stats {
	return a.results.Stats()
}

// OCRInfo reports the OCR capability state without initializing it.
func (a *Analyzer) OCRInfo() ocr.Info {
	return a.capability.Info()
}

// WarmUp starts OCR initialization and waits for it within the configured
// init timeout.
func (a *Analyzer) WarmUp(ctx context.Context) error {
	_, err := a.capability.TryInitialize(ctx)
	return err
}

// Close releases the OCR engine.
func (a *Analyzer) Close() error {
	return a.capability.Close()
}
