// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// listen port and the API key checked by the auth middleware.
//
// # Usage
//
// This package is embedded by core/config and read by cmd/start.go.
package server
