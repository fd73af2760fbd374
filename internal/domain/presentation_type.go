package domain

import (
	"encoding/json"
	"fmt"
)

// IDTokenType is a requested id_token subtype.
type IDTokenType string

const (
	IDTokenTypeSubjectSigned  IDTokenType = "subject_signed_id_token"
	IDTokenTypeAttesterSigned IDTokenType = "attester_signed_id_token"
)

// ParseIDTokenType maps a wire string to an IDTokenType.
func ParseIDTokenType(s string) (IDTokenType, error) {
	switch IDTokenType(s) {
	case IDTokenTypeSubjectSigned, IDTokenTypeAttesterSigned:
		return IDTokenType(s), nil
	default:
		return "", NewValidationError(fmt.Sprintf("unsupported id_token_type %q", s))
	}
}

// PresentationDefinition is a DIF Presentation Exchange definition.
//
// The verifier only transports the definition to the wallet (by value or by reference),
// so the descriptor constraints are kept as raw JSON.
type PresentationDefinition struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name,omitempty"`
	Purpose                string            `json:"purpose,omitempty"`
	Format                 json.RawMessage   `json:"format,omitempty"`
	InputDescriptors       []InputDescriptor `json:"input_descriptors"`
	SubmissionRequirements json.RawMessage   `json:"submission_requirements,omitempty"`
}

// InputDescriptor describes one credential the wallet is asked to present.
type InputDescriptor struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"`
	Purpose     string          `json:"purpose,omitempty"`
	Format      json.RawMessage `json:"format,omitempty"`
	Constraints json.RawMessage `json:"constraints,omitempty"`
	Group       []string        `json:"group,omitempty"`
}

// PresentationType is one of IDTokenRequest, VPTokenRequest or IDAndVPTokenRequest.
type PresentationType interface {
	isPresentationType()
}

// IDTokenRequest asks the wallet for an id_token only.
type IDTokenRequest struct {
	IDTokenTypes []IDTokenType
}

// VPTokenRequest asks the wallet for a vp_token satisfying a presentation definition.
type VPTokenRequest struct {
	PresentationDefinition PresentationDefinition
}

// IDAndVPTokenRequest asks the wallet for both an id_token and a vp_token.
type IDAndVPTokenRequest struct {
	IDTokenTypes           []IDTokenType
	PresentationDefinition PresentationDefinition
}

func (IDTokenRequest) isPresentationType()      {}
func (VPTokenRequest) isPresentationType()      {}
func (IDAndVPTokenRequest) isPresentationType() {}

// PresentationDefinitionOf returns the presentation definition carried by t, if any.
func PresentationDefinitionOf(t PresentationType) (PresentationDefinition, bool) {
	switch t := t.(type) {
	case VPTokenRequest:
		return t.PresentationDefinition, true
	case IDAndVPTokenRequest:
		return t.PresentationDefinition, true
	default:
		return PresentationDefinition{}, false
	}
}

// IDTokenTypesOf returns the requested id_token subtypes, in request order.
func IDTokenTypesOf(t PresentationType) []IDTokenType {
	switch t := t.(type) {
	case IDTokenRequest:
		return t.IDTokenTypes
	case IDAndVPTokenRequest:
		return t.IDTokenTypes
	default:
		return nil
	}
}

// HasIDToken reports whether t includes an id_token component.
func HasIDToken(t PresentationType) bool {
	switch t.(type) {
	case IDTokenRequest, IDAndVPTokenRequest:
		return true
	default:
		return false
	}
}
