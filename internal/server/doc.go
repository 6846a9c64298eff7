// Package server implements the MCP (Model Context Protocol) server for silhouette verification.
//
// This package provides a JSON-RPC 2.0 server that exposes the silhouette pipeline
// through the MCP protocol, so an assistant can check whether a photographed part
// has the same outline as its CAD render.
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
// Extraction:
//   - silhouette_extract_reference: Outer contour of the captured render
//   - silhouette_extract_subject: Outer contour of the dark object in a photograph
//
// Comparison:
//   - silhouette_compare: Hu-moment dissimilarity score between two contours
//   - silhouette_overlay: Draw both contours onto the photograph
//
// Pipeline:
//   - silhouette_verify: Extract, compare, and overlay in one call
//
// Diagnostics:
//   - silhouette_mask: Binary mask an image produces under either threshold rule
//
// Contours travel between tools as JSON objects with a points array; area and
// bounds are included for reading but recomputed on input.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A missing silhouette is not an error: extraction tools report found=false and
// silhouette_verify reports an unverified result with a reason.
//
// # Usage
//
//	srv := server.New(c.Service, log)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
