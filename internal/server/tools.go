package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the drawing image file",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "blueprint_analyze",
			Description: "Analyze an architectural drawing: element hints, wall/door/window estimates, " +
				"room labels and dimensions, drawing classification and image quality. Always returns a " +
				"result for a valid image; 'fallback' is true when the result was estimated from file metadata.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"enable_ocr": map[string]interface{}{
						"type":        "boolean",
						"description": "Run OCR for room labels and dimensions. Default true",
						"default":     true,
					},
					"enhance_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Sharpen the OCR surface before recognition. Default true",
						"default":     true,
					},
					"detect_scale": map[string]interface{}{
						"type":        "boolean",
						"description": "Look for a drawing scale such as 1:100 in the recognized text. Default true",
						"default":     true,
					},
					"classify_elements": map[string]interface{}{
						"type":        "boolean",
						"description": "Derive detailed element hints and line roles. Default true",
						"default":     true,
					},
					"max_image_size": map[string]interface{}{
						"type":        "integer",
						"description": "Largest width or height analyzed; bigger images are scaled down. Default from server config",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "blueprint_validate",
			Description: "Check whether a file would be accepted for analysis (size and media type) without analyzing it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "blueprint_cache_clear",
			Description: "Drop every cached analysis result and report cache statistics.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "ocr_status",
			Description: "Report whether the OCR engine is available. Set initialize to start the engine if it has not been started.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"initialize": map[string]interface{}{
						"type":        "boolean",
						"description": "Start OCR initialization and wait for it. Default false",
						"default":     false,
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
