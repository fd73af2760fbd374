package domain

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// Stage names a Presentation stage. The values are also the persisted stage names.
type Stage string

const (
	StageRequested              Stage = "requested"
	StageRequestObjectRetrieved Stage = "request_object_retrieved"
	StageSubmitted              Stage = "submitted"
	StageTimedOut               Stage = "timed_out"
)

// Base holds the fields shared by every stage of a presentation.
type Base struct {
	ID          TransactionID
	InitiatedAt time.Time
	Type        PresentationType
	RequestID   RequestID
	Nonce       Nonce

	// EphemeralKey is the private key the wallet encrypts its JARM response to.
	// It is only present while a response is still expected (Requested and RequestObjectRetrieved).
	EphemeralKey jwk.Key

	ResponseMode               ResponseMode
	PresentationDefinitionMode EmbedOption
	GetWalletResponseMethod    GetWalletResponseMethod
}

// Common returns the fields shared by every stage.
func (b Base) Common() Base { return b }

// Presentation is one of Requested, RequestObjectRetrieved, Submitted or TimedOut.
type Presentation interface {
	Stage() Stage
	Common() Base
	isPresentation()
}

// Requested is the initial stage, created by Init.
type Requested struct {
	Base
}

// RequestObjectRetrieved is reached when the wallet has fetched the signed request object.
type RequestObjectRetrieved struct {
	Base
	RequestObjectRetrievedAt time.Time
}

// Submitted is reached when the wallet has posted a response that passed verification.
type Submitted struct {
	Base
	RequestObjectRetrievedAt time.Time
	SubmittedAt              time.Time
	WalletResponse           WalletResponse

	// ResponseCode is only set for presentations using the Redirect method.
	ResponseCode *ResponseCode
}

// TimedOut is terminal. It keeps whichever intermediate timestamps had been reached.
type TimedOut struct {
	Base
	RequestObjectRetrievedAt *time.Time
	SubmittedAt              *time.Time
	TimedOutAt               time.Time
}

func (Requested) Stage() Stage              { return StageRequested }
func (RequestObjectRetrieved) Stage() Stage { return StageRequestObjectRetrieved }
func (Submitted) Stage() Stage              { return StageSubmitted }
func (TimedOut) Stage() Stage               { return StageTimedOut }

func (Requested) isPresentation()              {}
func (RequestObjectRetrieved) isPresentation() {}
func (Submitted) isPresentation()              {}
func (TimedOut) isPresentation()               {}

// NewRequested validates base and returns the initial stage.
func NewRequested(base Base) (Requested, error) {
	switch {
	case base.ID == "":
		return Requested{}, NewValidationError("transaction id is required")
	case base.RequestID == "":
		return Requested{}, NewValidationError("request id is required")
	case base.Nonce == "":
		return Requested{}, NewValidationError(MsgMissingNonce)
	case base.Type == nil:
		return Requested{}, NewValidationError("presentation type is required")
	case base.GetWalletResponseMethod == nil:
		return Requested{}, NewValidationError("get wallet response method is required")
	case base.InitiatedAt.IsZero():
		return Requested{}, NewValidationError("initiation time is required")
	}
	if _, err := ParseResponseMode(string(base.ResponseMode)); err != nil {
		return Requested{}, err
	}
	if base.ResponseMode.IsJwtSecured() && base.EphemeralKey == nil {
		return Requested{}, NewValidationError("direct_post.jwt requires an ephemeral key")
	}
	return Requested{Base: base}, nil
}

// RetrieveRequestObject moves a Requested presentation to RequestObjectRetrieved.
func (p Requested) RetrieveRequestObject(at time.Time) (RequestObjectRetrieved, error) {
	if at.Before(p.InitiatedAt) {
		return RequestObjectRetrieved{}, NewStateError(fmt.Sprintf(
			"request object retrieval at %s precedes initiation at %s",
			at.Format(time.RFC3339Nano), p.InitiatedAt.Format(time.RFC3339Nano)))
	}
	return RequestObjectRetrieved{Base: p.Base, RequestObjectRetrievedAt: at}, nil
}

// Submit moves a RequestObjectRetrieved presentation to Submitted.
//
// Only at >= InitiatedAt is checked here. The domain holds no clock, so callers must pass the
// current time: at is recorded as SubmittedAt and must not lie in the future.
// The ephemeral key is dropped: it has served its single decryption.
func (p RequestObjectRetrieved) Submit(at time.Time, walletResponse WalletResponse, responseCode *ResponseCode) (Submitted, error) {
	if p.InitiatedAt.After(at) {
		return Submitted{}, NewStateError(fmt.Sprintf(
			"submission at %s precedes initiation at %s",
			at.Format(time.RFC3339Nano), p.InitiatedAt.Format(time.RFC3339Nano)))
	}
	if walletResponse == nil {
		return Submitted{}, NewValidationError("wallet response is required")
	}
	base := p.Base
	base.EphemeralKey = nil
	return Submitted{
		Base:                     base,
		RequestObjectRetrievedAt: p.RequestObjectRetrievedAt,
		SubmittedAt:              at,
		WalletResponse:           walletResponse,
		ResponseCode:             responseCode,
	}, nil
}

// TimeOut moves any non-terminal presentation to TimedOut.
func TimeOut(p Presentation, at time.Time) (TimedOut, error) {
	if p == nil {
		return TimedOut{}, NewValidationError("presentation is required")
	}
	base := p.Common()
	if at.Before(base.InitiatedAt) {
		return TimedOut{}, NewStateError(fmt.Sprintf(
			"time out at %s precedes initiation at %s",
			at.Format(time.RFC3339Nano), base.InitiatedAt.Format(time.RFC3339Nano)))
	}
	base.EphemeralKey = nil

	timedOut := TimedOut{Base: base, TimedOutAt: at}
	switch p := p.(type) {
	case Requested:
	case RequestObjectRetrieved:
		timedOut.RequestObjectRetrievedAt = &p.RequestObjectRetrievedAt
	case Submitted:
		timedOut.RequestObjectRetrievedAt = &p.RequestObjectRetrievedAt
		timedOut.SubmittedAt = &p.SubmittedAt
	case TimedOut:
		return TimedOut{}, NewStateError("presentation has already timed out")
	default:
		return TimedOut{}, NewStateError(fmt.Sprintf("unknown presentation stage %T", p))
	}
	return timedOut, nil
}

// IsExpired reports whether p's stage-relative anchor is at or before cutoff.
//
// Requested and Submitted are anchored at InitiatedAt, RequestObjectRetrieved at
// RequestObjectRetrievedAt. TimedOut never expires. The comparison is inclusive.
func IsExpired(p Presentation, cutoff time.Time) bool {
	anchor, ok := ExpiryAnchor(p)
	if !ok {
		return false
	}
	return !anchor.After(cutoff)
}

// ExpiryAnchor returns the timestamp IsExpired compares against, or false for terminal stages.
func ExpiryAnchor(p Presentation) (time.Time, bool) {
	switch p := p.(type) {
	case Requested:
		return p.InitiatedAt, true
	case RequestObjectRetrieved:
		return p.RequestObjectRetrievedAt, true
	case Submitted:
		return p.InitiatedAt, true
	default:
		return time.Time{}, false
	}
}

// IsTerminal reports whether no further transition is possible from p.
func IsTerminal(p Presentation) bool {
	_, ok := p.(TimedOut)
	return ok
}
