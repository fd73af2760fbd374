// Package idgen generates the opaque identifiers of a presentation.
package idgen

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/google/uuid"
)

// responseCodeBytes is the entropy of a response code before base64url encoding.
const responseCodeBytes = 32

// Generator produces transaction ids, request ids and response codes.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// TransactionID returns a random (v4) uuid.
func (Generator) TransactionID() (domain.TransactionID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return domain.ParseTransactionID(id.String())
}

// RequestID returns a random (v4) uuid. It is unrelated to the transaction id so that
// knowing one does not reveal the other.
func (Generator) RequestID() (domain.RequestID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return domain.ParseRequestID(id.String())
}

// ResponseCode returns 32 random bytes, base64url encoded without padding.
func (Generator) ResponseCode() (domain.ResponseCode, error) {
	b := make([]byte, responseCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return domain.ParseResponseCode(base64.RawURLEncoding.EncodeToString(b))
}
