// Package handlers provides the HTTP handlers of verifier-server.
//
// presentations.go serves the verifier front end (/ui), wallet.go the wallet facing endpoints
// (/wallet). The common infrastructure handlers (health, readiness, version, jwks, docs) are
// also kept here.
//
// Every failure is written with RespondWithErrorResponse, see errors.go for the status mapping.
package handlers
