// Package mcp implements a Model Context Protocol (MCP) server for
// congressional data using the mcp-go library.
//
// The server exposes legislative lookups (committees, bills, hearings,
// members), cross-entity search, and operational introspection (rate-limit
// status, health, metrics) as MCP tools, plus a small set of congress://
// resources. It communicates over stdin/stdout using JSON-RPC 2.0 as
// specified by the MCP standard.
package mcp
