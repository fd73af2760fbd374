// crypto package provides the JOSE building blocks used by the verifier.
//
// these are low level functions over lestrrat-go/jwx - signing keys loaded from JWK files,
// per-transaction ephemeral encryption keys, compact JWS signing and verification,
// compact JWE decryption and the public projection of keys for JWK sets.
//
// The oid4vp package decides which headers and algorithms to use; this package only executes them.
package crypto
