// Package oid4vp implements the OpenID for Verifiable Presentations protocol pieces
// that surround the presentation state machine:
//
//   - assembling and signing the request object (JAR) sent to the wallet
//   - the JARM ephemeral key policy and verification of JWT-secured responses
//   - converting a wallet's answer into a domain.WalletResponse
//   - minting and correlating response codes for redirect delivery
//
// It also defines the wire DTOs shared by the transaction service and the HTTP handlers.
package oid4vp
