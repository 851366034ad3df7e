// Package server provides the MCP server implementation for the rivet service.
package server

// VectorToolServer defines the interface for the MCP server that handles
// vector tool calls from MCP clients.
type VectorToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on the specified transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}
