// Package transaction sequences a presentation through its lifecycle.
//
// Service exposes the entry points used by the HTTP layer:
//
//   - Init: create a presentation and describe how the wallet gets the request object
//   - GetRequestObject: sign the request object and mark it retrieved
//   - GetPresentationDefinition / GetJarmJwks: artifacts published by reference
//   - PostWalletResponse: accept the wallet's answer
//   - GetWalletResponse: hand the answer to the verifier's caller
//
// Each step loads the presentation, checks its stage, applies one transition and stores the
// result. There is no locking around that read-check-write: the last write wins.
package transaction
