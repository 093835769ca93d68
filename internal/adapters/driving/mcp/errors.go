// Package mcp provides an MCP (Model Context Protocol) server adapter for Murmur.
// It lets AI assistants search the voice journal and read recordings.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrReindexUnavailable is returned by the reindex tool when no index service is wired.
var ErrReindexUnavailable = errors.New("mcp: index service is not configured")
