package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/ironsheep/blueprint-vision/internal/errors"
	"github.com/ironsheep/blueprint-vision/internal/pipeline"
)

// createTestImageFile writes an uncompressed PNG so that even plain images
// clear the minimum file size.
func createTestImageFile(t *testing.T, name string, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeContent unpacks the text content of a successful tool call.
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
}

func TestHandleToolsCall_Analyze(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "ground-floor.png", 300, 200, color.White)

	var result pipeline.Result
	decodeContent(t, callTool(t, s, "blueprint_analyze", map[string]interface{}{
		"path":       path,
		"enable_ocr": false,
	}), &result)

	if result.Fallback {
		t.Errorf("unexpected fallback: %s", result.FallbackReason)
	}
	if result.FileName != "ground-floor.png" {
		t.Errorf("FileName = %s", result.FileName)
	}
	if result.ImageSize.Width != 300 || result.ImageSize.Height != 200 {
		t.Errorf("ImageSize = %+v, want 300x200", result.ImageSize)
	}
	if result.RunID == "" {
		t.Error("RunID should be set")
	}
}

func TestHandleToolsCall_AnalyzeMaxImageSize(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "wide.png", 400, 200, color.White)

	var result pipeline.Result
	decodeContent(t, callTool(t, s, "blueprint_analyze", map[string]interface{}{
		"path":           path,
		"enable_ocr":     false,
		"max_image_size": 200,
	}), &result)

	if result.ImageSize.Width != 200 || result.ImageSize.Height != 100 {
		t.Errorf("ImageSize = %+v, want 200x100", result.ImageSize)
	}
}

func TestHandleToolsCall_AnalyzeCorruptFile(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "broken.png")
	data := make([]byte, 4096)
	copy(data, []byte("\x89PNG\r\n\x1a\n"))
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	var result pipeline.Result
	decodeContent(t, callTool(t, s, "blueprint_analyze", map[string]interface{}{"path": path}), &result)

	if !result.Fallback {
		t.Error("corrupt file should produce a fallback result")
	}
	if result.Quality.OverallScore != 50 {
		t.Errorf("fallback overall score = %d, want 50", result.Quality.OverallScore)
	}
}

func TestHandleToolsCall_AnalyzeValidationError(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "tiny.png")
	if err := os.WriteFile(path, make([]byte, 100), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	resp := callTool(t, s, "blueprint_analyze", map[string]interface{}{"path": path})

	if resp.Error == nil {
		t.Fatal("expected error for undersized file")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
	appErr, ok := resp.Error.Data.(*apperrors.AppError)
	if !ok {
		t.Fatalf("Error data should be *AppError, got %T", resp.Error.Data)
	}
	if appErr.Type != apperrors.ErrorTypeValidation || appErr.Reason != apperrors.ReasonTooSmall {
		t.Errorf("got %s(%s), want validation(too_small)", appErr.Type, appErr.Reason)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "blueprint_analyze", map[string]interface{}{
		"path": filepath.Join(t.TempDir(), "missing.png"),
	})

	if resp.Error == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_MissingArguments(t *testing.T) {
	tests := []string{"blueprint_analyze", "blueprint_validate"}

	s := newTestServer(t)
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			resp := callTool(t, s, name, map[string]interface{}{})
			if resp.Error == nil {
				t.Error("Expected error for missing path")
			}
		})
	}
}

func TestHandleToolsCall_Validate(t *testing.T) {
	dir := t.TempDir()
	good := createTestImageFile(t, "plan.png", 100, 100, color.White)
	small := filepath.Join(dir, "small.png")
	if err := os.WriteFile(small, make([]byte, 10), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, make([]byte, 2048), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		wantValid  bool
		wantReason string
	}{
		{"valid png", good, true, ""},
		{"too small", small, false, "too_small"},
		{"wrong type", text, false, "unsupported_type"},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var report ValidationReport
			decodeContent(t, callTool(t, s, "blueprint_validate", map[string]interface{}{"path": tt.path}), &report)

			if report.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (%s)", report.Valid, tt.wantValid, report.Message)
			}
			if report.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", report.Reason, tt.wantReason)
			}
		})
	}
}

func TestHandleToolsCall_CacheClear(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, "cached.png", 120, 120, color.White)
	args := map[string]interface{}{"path": path, "enable_ocr": false}

	var first pipeline.Result
	decodeContent(t, callTool(t, s, "blueprint_analyze", args), &first)

	var cleared struct {
		Cleared int `json:"cleared"`
	}
	decodeContent(t, callTool(t, s, "blueprint_cache_clear", nil), &cleared)
	if cleared.Cleared != 1 {
		t.Errorf("cleared = %d, want 1", cleared.Cleared)
	}

	decodeContent(t, callTool(t, s, "blueprint_cache_clear", nil), &cleared)
	if cleared.Cleared != 0 {
		t.Errorf("second clear = %d, want 0", cleared.Cleared)
	}
}

func TestHandleToolsCall_OCRStatus(t *testing.T) {
	s := newTestServer(t)

	var before map[string]interface{}
	decodeContent(t, callTool(t, s, "ocr_status", nil), &before)
	if before["available"] != false {
		t.Errorf("available before init = %v, want false", before["available"])
	}
	if before["state"] != "uninitialized" {
		t.Errorf("state before init = %v, want uninitialized", before["state"])
	}

	var after map[string]interface{}
	decodeContent(t, callTool(t, s, "ocr_status", map[string]interface{}{"initialize": true}), &after)
	if after["state"] != "failed" {
		t.Errorf("state after init = %v, want failed", after["state"])
	}
	if after["available"] != false {
		t.Errorf("available after failed init = %v, want false", after["available"])
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{})

	if resp.Error == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json}`),
	})

	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}
