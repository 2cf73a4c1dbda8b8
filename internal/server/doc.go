// Package server exposes the blueprint analysis pipeline over MCP (Model
// Context Protocol).
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - blueprint_analyze: Run the full analysis on a drawing file
//   - blueprint_validate: Check size and media type only
//   - blueprint_cache_clear: Drop cached results
//   - ocr_status: Report or start the OCR engine
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000. Validation failures carry the typed pipeline error as data, so
// clients can branch on its type and reason. Analysis itself never fails for
// a valid file: stage failures produce a result with fallback set.
package server
