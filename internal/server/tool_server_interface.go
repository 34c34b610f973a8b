package server

// ToolServer is a surface that exposes the summarization service to clients.
type ToolServer interface {
	// Initialize wires routes or tools to the service.
	Initialize() error

	// Start serves until the transport closes or Stop is called.
	Start() error

	// Stop shuts the server down.
	Stop() error
}

var (
	_ ToolServer = (*MCPToolServer)(nil)
	_ ToolServer = (*HTTPServer)(nil)
)
