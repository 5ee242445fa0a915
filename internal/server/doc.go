// Package server implements the MCP (Model Context Protocol) server for
// reference-circle calibration.
//
// This package provides a JSON-RPC 2.0 server that exposes the calibration
// pipeline through the MCP protocol, so an MCP client can measure the scale
// of a photograph from the white reference circle printed next to the
// subject.
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
//   - calibrate_load: Load a photograph and make it the session image
//   - calibrate_detect: Find the circle, derive the scale and return the
//     annotated (and rescaled) image
//   - calibrate_config: Report the default settings
//   - calibrate_status: Report the session image and whether a run is busy
//
// calibrate_detect accepts every field of config.Overrides as an argument.
// Without a path it recalibrates the session image, which lets a client
// tune the threshold or the area limits without reloading the file.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process.
// calibrate_load with reload set evicts the entry first.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A photograph without a qualifying circle is not an error: the tool
// succeeds with status.circle_found set to false.
//
// # Usage
//
//	srv := server.New(logger, config.Default(), metrics.New())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
