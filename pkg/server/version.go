package server

// Version is the server version reported to MCP clients (set by build flags).
var Version = "0.1.0"
