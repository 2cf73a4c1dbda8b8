package server

import (
	"context"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"blueprint_analyze",
		"blueprint_validate",
		"blueprint_cache_clear",
		"ocr_status",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("Expected %d tools, got %d", len(expectedTools), len(tools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		t.Run(name, func(t *testing.T) {
			tool, ok := toolMap[name]
			if !ok {
				t.Fatalf("Tool %s not found", name)
			}
			if tool.Description == "" {
				t.Error("Description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema.type: got %v, want object", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("InputSchema.properties should be a map")
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	tests := []struct {
		tool     string
		wantPath bool
	}{
		{"blueprint_analyze", true},
		{"blueprint_validate", true},
		{"blueprint_cache_clear", false},
		{"ocr_status", false},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			required, _ := toolMap[tt.tool].InputSchema["required"].([]string)
			hasPath := false
			for _, r := range required {
				if r == "path" {
					hasPath = true
				}
			}
			if hasPath != tt.wantPath {
				t.Errorf("path required = %v, want %v", hasPath, tt.wantPath)
			}
		})
	}
}

func TestToolDefinitions_AnalyzeDefaults(t *testing.T) {
	var analyze Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "blueprint_analyze" {
			analyze = tool
		}
	}

	props := analyze.InputSchema["properties"].(map[string]interface{})
	for _, name := range []string{"enable_ocr", "enhance_image", "detect_scale", "classify_elements"} {
		prop, ok := props[name].(map[string]interface{})
		if !ok {
			t.Errorf("missing property %s", name)
			continue
		}
		if prop["default"] != true {
			t.Errorf("%s default = %v, want true", name, prop["default"])
		}
	}
	if _, ok := props["max_image_size"]; !ok {
		t.Error("missing property max_image_size")
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}

	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(tools) != 4 {
		t.Errorf("Expected 4 tools, got %d", len(tools))
	}
}
