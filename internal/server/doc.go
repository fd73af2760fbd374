// Package server provides the HTTP server of verifier-server.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// The router mounts
//   - the verifier front end endpoints under /ui
//   - the wallet endpoints under /wallet
//   - common infrastructure endpoints (health, readiness, version, jwks, metrics, docs)
//
// handlers are in internal/server/handlers and middleware in internal/server/middleware
package server
