package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/ironsheep/blueprint-vision/internal/errors"
	"github.com/ironsheep/blueprint-vision/internal/imaging"
	"github.com/ironsheep/blueprint-vision/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "blueprint_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// Pipeline errors carry the typed error as data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return s.errorResponse(req.ID, -32000, "Tool execution failed", appErr)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "blueprint_analyze":
		return s.handleAnalyze(ctx, args)
	case "blueprint_validate":
		return s.handleValidate(args)
	case "blueprint_cache_clear":
		return s.handleCacheClear()
	case "ocr_status":
		return s.handleOCRStatus(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs tolerates absent arguments for tools without required ones.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

type analyzeArgs struct {
	Path             string `json:"path"`
	EnableOCR        *bool  `json:"enable_ocr"`
	EnhanceImage     *bool  `json:"enhance_image"`
	DetectScale      *bool  `json:"detect_scale"`
	ClassifyElements *bool  `json:"classify_elements"`
	MaxImageSize     int    `json:"max_image_size"`
}

func (a analyzeArgs) options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	if a.EnableOCR != nil {
		opts.EnableOCR = *a.EnableOCR
	}
	if a.EnhanceImage != nil {
		opts.EnhanceImage = *a.EnhanceImage
	}
	if a.DetectScale != nil {
		opts.DetectScale = *a.DetectScale
	}
	if a.ClassifyElements != nil {
		opts.ClassifyElements = *a.ClassifyElements
	}
	opts.MaxImageSize = a.MaxImageSize
	return opts
}

func (s *Server) handleAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a analyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	src, err := imaging.SourceFromPath(a.Path)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(ctx, src, a.options())
}

type pathArgs struct {
	Path string `json:"path"`
}

// ValidationReport is the blueprint_validate result.
type ValidationReport struct {
	Path      string `json:"path"`
	Valid     bool   `json:"valid"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (s *Server) handleValidate(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	src, err := imaging.SourceFromPath(a.Path)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{
		Path:      a.Path,
		Valid:     true,
		MediaType: imaging.ResolveMediaType(src),
		Size:      src.Size(),
	}
	if err := s.analyzer.Validate(src); err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			return nil, err
		}
		report.Valid = false
		report.Reason = string(appErr.Reason)
		report.Message = appErr.Message
	}
	return report, nil
}

func (s *Server) handleCacheClear() (interface{}, error) {
	cleared := s.analyzer.ClearCache()
	return map[string]interface{}{
		"cleared": cleared,
		"stats":   s.analyzer.CacheStats(),
	}, nil
}

type ocrStatusArgs struct {
	Initialize bool `json:"initialize"`
}

func (s *Server) handleOCRStatus(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a ocrStatusArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Initialize {
		if err := s.analyzer.WarmUp(ctx); err != nil {
			s.log.WithError(err).Debug("OCR warm-up failed")
		}
	}
	return s.analyzer.OCRInfo(), nil
}
