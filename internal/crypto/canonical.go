// request object claims are canonicalized per RFC 8785 before signing so that the
// signed payload does not depend on map iteration or struct field order.
// this implementation uses the gowebpki/jcs library to perform this canonicalization
package crypto

import (
	"github.com/gowebpki/jcs"
)

// CanonicalizeJSON converts JSON to canonical form per RFC 8785
//
// If the input is not valid JSON, an error is returned (handled by jcs library).
func CanonicalizeJSON(jsonData []byte) ([]byte, error) {
	out, err := jcs.Transform(jsonData)
	if err != nil {
		return nil, WrapValidationError(err, "failed to canonicalize JSON")
	}
	return out, nil
}
