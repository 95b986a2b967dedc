// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// configuration structure for the listen port, the API key checked by the auth
// middleware, the request read timeout and the metrics endpoint switch.
package server
