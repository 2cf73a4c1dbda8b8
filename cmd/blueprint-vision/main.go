package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/blueprint-vision/internal/config"
	"github.com/ironsheep/blueprint-vision/internal/logger"
	"github.com/ironsheep/blueprint-vision/internal/pipeline"
	"github.com/ironsheep/blueprint-vision/internal/server"
	"github.com/ironsheep/blueprint-vision/internal/transport"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	httpMode := false

	// Handle --version, --help and --http flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("blueprint-vision %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "--http":
			httpMode = true
		default:
			fmt.Fprintf(os.Stderr, "unknown option %q, see --help\n", os.Args[1])
			os.Exit(2)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout is for MCP protocol
	log := logger.New(os.Stderr, cfg.LogLevel)
	log.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Debug("Blueprint vision starting")

	server.Version = Version
	transport.Version = Version

	analyzer := pipeline.New(cfg, pipeline.WithLogger(log))
	defer analyzer.Close()

	if httpMode {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = serveHTTP(ctx, cfg, analyzer, log)
	} else {
		// MCP clients end the session by closing stdin.
		err = server.New(analyzer, log).Run(context.Background())
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("Server error")
	}
}

func serveHTTP(ctx context.Context, cfg *config.Config, analyzer *pipeline.Analyzer, log *logrus.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           transport.NewHandler(analyzer, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

func printHelp() {
	fmt.Println("blueprint-vision - architectural drawing analysis")
	fmt.Println()
	fmt.Println("Usage: blueprint-vision [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --http           Serve HTTP (POST /analyze, GET /health) instead of MCP stdio")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  BLUEPRINT_CONFIG=path.yaml       Optional YAML configuration file")
	fmt.Println("  BLUEPRINT_LOG_LEVEL=debug        Log level (debug, info, warn, error)")
	fmt.Println("  BLUEPRINT_HTTP_ADDR=:8080        HTTP listen address")
	fmt.Println("  BLUEPRINT_MAX_IMAGE_SIZE=2048    Largest analyzed width or height")
	fmt.Println("  BLUEPRINT_MAX_DECODE_PIXELS=N    Largest width*height accepted from a header")
	fmt.Println("  BLUEPRINT_OCR_LANGUAGE=eng       Tesseract language")
	fmt.Println("  BLUEPRINT_CACHE_TTL=10m          Result cache lifetime")
	fmt.Println()
	fmt.Println("Without --http the server communicates via MCP protocol over stdin/stdout.")
}
