// Package server implements the MCP (Model Context Protocol) server for pose analysis tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the elbow pose
// checker through the MCP protocol, so MCP clients can submit a photo and get
// back feedback text together with the annotated image.
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
// Pose Analysis:
//   - pose_analyze: Detect landmarks, judge both elbows, return feedback and annotated PNG
//   - pose_angle: Angle at a vertex from three points
//   - pose_validate: Judge an already-detected landmark list
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// pose_analyze answers with two content items, the feedback text and an
// "image" item holding base64 PNG data. When no person is found the text is
// "No Pose Detected" and the image is the input, unmodified. Every other tool
// answers with a single text item holding its JSON result.
//
// # Image Caching
//
// Images loaded by path are cached for the lifetime of the process, so an
// image_load followed by pose_analyze on the same path decodes once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (bad params),
//     -32601 (unknown method) or -32700 (unparseable line)
//   - message: Human-readable error description
//   - data: The Go error string, e.g. "right_elbow: missing landmark: right_wrist"
//
// # Usage
//
//	p, _ := pipeline.New(detector)
//	srv := server.New(p)
//	if err := srv.Run(ctx); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
package server
