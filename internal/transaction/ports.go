package transaction

import (
	"context"
	"time"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// PresentationStore persists presentations keyed by transaction id, with a second lookup by request id.
// Loads return an error matching domain.ErrPresentationNotFound for unknown ids.
type PresentationStore interface {
	LoadPresentationByID(ctx context.Context, id domain.TransactionID) (domain.Presentation, error)
	LoadPresentationByRequestID(ctx context.Context, id domain.RequestID) (domain.Presentation, error)
	StorePresentation(ctx context.Context, p domain.Presentation) error
}

// IDGenerator mints the opaque identifiers of a presentation.
type IDGenerator interface {
	TransactionID() (domain.TransactionID, error)
	RequestID() (domain.RequestID, error)
	ResponseCode() (domain.ResponseCode, error)
}

// EphemeralKeyGenerator mints the per-transaction JARM decryption key.
type EphemeralKeyGenerator interface {
	Generate() (jwk.Key, error)
}

// RequestObjectSigner signs the request object of a Requested presentation.
type RequestObjectSigner interface {
	Sign(cfg domain.VerifierConfig, at time.Time, p domain.Requested) (string, error)
}

// JarmVerifier decrypts and/or verifies a direct_post.jwt response.
type JarmVerifier interface {
	VerifyJarmJwt(ctx context.Context, jarm domain.JarmOption, ephemeralKey jwk.Key, token string) (domain.AuthorizationResponseData, error)
}
