// Package transport serves the analysis pipeline over HTTP.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/blueprint-vision/internal/config"
	apperrors "github.com/ironsheep/blueprint-vision/internal/errors"
	"github.com/ironsheep/blueprint-vision/internal/imaging"
	"github.com/ironsheep/blueprint-vision/internal/pipeline"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and option fields.
const multipartOverhead = 1 << 20

// Version is reported by the health endpoint.
var Version = "0.1.0"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// NewHandler builds the HTTP router.
//
//	GET    /health   liveness plus OCR and cache state
//	POST   /analyze  multipart upload: "file" plus optional option fields
//	DELETE /cache    drop cached results
func NewHandler(a *pipeline.Analyzer, cfg *config.Config, log logrus.FieldLogger) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestLogger(log),
		requestSizeLimiter(cfg.MaxFileSize+multipartOverhead),
	)

	r.GET("/health", healthCheck(a))
	r.POST("/analyze", analyzeDrawing(a, log))
	r.DELETE("/cache", clearCache(a))

	return r
}

func analyzeDrawing(a *pipeline.Analyzer, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		src, err := readSource(c)
		if err != nil {
			respondError(c, log, err)
			return
		}

		opts, err := parseOptions(c)
		if err != nil {
			respondError(c, log, err)
			return
		}

		result, err := a.Analyze(c.Request.Context(), src, opts)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func readSource(c *gin.Context) (imaging.SourceFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return imaging.SourceFile{}, apperrors.NewValidationError(apperrors.ReasonTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit))
		}
		return imaging.SourceFile{}, badRequest(fmt.Errorf("missing multipart field \"file\": %w", err))
	}

	f, err := header.Open()
	if err != nil {
		return imaging.SourceFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return imaging.SourceFile{}, fmt.Errorf("failed to read upload: %w", err)
	}

	src := imaging.SourceFile{
		Name: header.Filename,
		Data: data,
	}
	// Generic part types are sniffed instead.
	if mt := header.Header.Get("Content-Type"); imaging.NormalizeMediaType(mt) != "application/octet-stream" {
		src.MediaType = mt
	}
	if ms := c.PostForm("last_modified"); ms != "" {
		v, err := strconv.ParseInt(ms, 10, 64)
		if err != nil {
			return imaging.SourceFile{}, badRequest(fmt.Errorf("last_modified must be unix milliseconds: %w", err))
		}
		src.LastModified = time.UnixMilli(v)
	}
	return src, nil
}

func parseOptions(c *gin.Context) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	flags := []struct {
		field string
		dst   *bool
	}{
		{"enable_ocr", &opts.EnableOCR},
		{"enhance_image", &opts.EnhanceImage},
		{"detect_scale", &opts.DetectScale},
		{"classify_elements", &opts.ClassifyElements},
	}
	for _, f := range flags {
		raw := c.PostForm(f.field)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, badRequest(fmt.Errorf("%s must be a boolean", f.field))
		}
		*f.dst = v
	}

	if raw := c.PostForm("max_image_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < imaging.MinRasterDimension {
			return opts, badRequest(fmt.Errorf("max_image_size must be an integer >= %d", imaging.MinRasterDimension))
		}
		opts.MaxImageSize = v
	}
	return opts, nil
}

func healthCheck(a *pipeline.Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "available",
			"version": Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
			"ocr":     a.OCRInfo(),
			"cache":   a.CacheStats(),
		})
	}
}

func clearCache(a *pipeline.Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"cleared": a.ClearCache()})
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"ip":          c.ClientIP(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request handled")
	}
}

type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

func determineStatusCode(err error) int {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest
	}
	return apperrors.GetStatusCode(err)
}

func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	code := determineStatusCode(err)

	log.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Warn("Request failed")

	resp := ErrorResponse{
		Error:   http.StatusText(code),
		Message: err.Error(),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Type = string(appErr.Type)
		resp.Reason = string(appErr.Reason)
		resp.Message = appErr.Message
	}
	c.AbortWithStatusJSON(code, resp)
}
