// Package mcp provides an MCP (Model Context Protocol) server adapter for StudyBuddy.
// It lets AI assistants search and question the uploaded study material.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrAnswersUnavailable is returned by the ask tool when no answer service is wired.
var ErrAnswersUnavailable = errors.New("mcp: answer service is not configured")

// ErrDocumentsUnavailable is returned by document tools when no document service is wired.
var ErrDocumentsUnavailable = errors.New("mcp: document service is not configured")
