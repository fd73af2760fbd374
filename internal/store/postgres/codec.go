package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
)

// document is the JSONB representation of a presentation at any stage.
type document struct {
	Stage                      domain.Stage        `json:"stage"`
	TransactionID              string              `json:"transaction_id"`
	RequestID                  string              `json:"request_id"`
	InitiatedAt                time.Time           `json:"initiated_at"`
	Nonce                      string              `json:"nonce"`
	Type                       typeDocument        `json:"type"`
	EphemeralKey               json.RawMessage     `json:"ephemeral_key,omitempty"`
	ResponseMode               domain.ResponseMode `json:"response_mode"`
	PresentationDefinitionMode json.RawMessage     `json:"presentation_definition_mode"`
	Method                     methodDocument      `json:"get_wallet_response_method"`
	RequestObjectRetrievedAt   *time.Time          `json:"request_object_retrieved_at,omitempty"`
	SubmittedAt                *time.Time          `json:"submitted_at,omitempty"`
	TimedOutAt                 *time.Time          `json:"timed_out_at,omitempty"`
	WalletResponse             *walletResponseDoc  `json:"wallet_response,omitempty"`
	ResponseCode               *string             `json:"response_code,omitempty"`
}

const (
	typeIDToken      = "id_token"
	typeVPToken      = "vp_token"
	typeIDAndVPToken = "id_and_vp_token"

	methodPoll     = "poll"
	methodRedirect = "redirect"

	walletResponseError = "error"
)

type typeDocument struct {
	Kind                   string                         `json:"kind"`
	IDTokenTypes           []domain.IDTokenType           `json:"id_token_types,omitempty"`
	PresentationDefinition *domain.PresentationDefinition `json:"presentation_definition,omitempty"`
}

type methodDocument struct {
	Kind        string `json:"kind"`
	URITemplate string `json:"uri_template,omitempty"`
}

type walletResponseDoc struct {
	Kind                   string                         `json:"kind"`
	IDToken                string                         `json:"id_token,omitempty"`
	VPToken                string                         `json:"vp_token,omitempty"`
	PresentationSubmission *domain.PresentationSubmission `json:"presentation_submission,omitempty"`
	Error                  string                         `json:"error,omitempty"`
	ErrorDescription       string                         `json:"error_description,omitempty"`
}

// encodePresentation serializes p. The ephemeral key is stored as a private JWK.
func encodePresentation(p domain.Presentation) ([]byte, error) {
	if p == nil {
		return nil, domain.NewValidationError("presentation is required")
	}
	base := p.Common()
	doc := document{
		Stage:         p.Stage(),
		TransactionID: base.ID.String(),
		RequestID:     base.RequestID.String(),
		InitiatedAt:   base.InitiatedAt.UTC(),
		Nonce:         base.Nonce.String(),
		ResponseMode:  base.ResponseMode,
	}

	var err error
	if doc.Type, err = encodeType(base.Type); err != nil {
		return nil, err
	}
	if doc.Method, err = encodeMethod(base.GetWalletResponseMethod); err != nil {
		return nil, err
	}
	if doc.PresentationDefinitionMode, err = domain.MarshalEmbedOption(base.PresentationDefinitionMode); err != nil {
		return nil, fmt.Errorf("failed to encode presentation definition mode: %w", err)
	}
	if base.EphemeralKey != nil {
		if doc.EphemeralKey, err = json.Marshal(base.EphemeralKey); err != nil {
			return nil, fmt.Errorf("failed to encode ephemeral key: %w", err)
		}
	}

	switch p := p.(type) {
	case domain.Requested:
	case domain.RequestObjectRetrieved:
		doc.RequestObjectRetrievedAt = utcPtr(p.RequestObjectRetrievedAt)
	case domain.Submitted:
		doc.RequestObjectRetrievedAt = utcPtr(p.RequestObjectRetrievedAt)
		doc.SubmittedAt = utcPtr(p.SubmittedAt)
		wr, err := encodeWalletResponse(p.WalletResponse)
		if err != nil {
			return nil, err
		}
		doc.WalletResponse = &wr
		if p.ResponseCode != nil {
			code := p.ResponseCode.String()
			doc.ResponseCode = &code
		}
	case domain.TimedOut:
		if p.RequestObjectRetrievedAt != nil {
			doc.RequestObjectRetrievedAt = utcPtr(*p.RequestObjectRetrievedAt)
		}
		if p.SubmittedAt != nil {
			doc.SubmittedAt = utcPtr(*p.SubmittedAt)
		}
		doc.TimedOutAt = utcPtr(p.TimedOutAt)
	default:
		return nil, fmt.Errorf("unknown presentation stage %T", p)
	}

	return json.Marshal(doc)
}

// decodePresentation is the inverse of encodePresentation.
func decodePresentation(data []byte) (domain.Presentation, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode presentation document: %w", err)
	}

	base := domain.Base{
		ID:           domain.TransactionID(doc.TransactionID),
		InitiatedAt:  doc.InitiatedAt,
		RequestID:    domain.RequestID(doc.RequestID),
		Nonce:        domain.Nonce(doc.Nonce),
		ResponseMode: doc.ResponseMode,
	}

	var err error
	if base.Type, err = decodeType(doc.Type); err != nil {
		return nil, err
	}
	if base.GetWalletResponseMethod, err = decodeMethod(doc.Method); err != nil {
		return nil, err
	}
	if base.PresentationDefinitionMode, err = domain.UnmarshalEmbedOption(doc.PresentationDefinitionMode); err != nil {
		return nil, fmt.Errorf("failed to decode presentation definition mode: %w", err)
	}
	if len(doc.EphemeralKey) > 0 {
		var key jwk.Key
		if key, err = crypto.ParseJWK(doc.EphemeralKey); err != nil {
			return nil, err
		}
		base.EphemeralKey = key
	}

	switch doc.Stage {
	case domain.StageRequested:
		return domain.Requested{Base: base}, nil
	case domain.StageRequestObjectRetrieved:
		if doc.RequestObjectRetrievedAt == nil {
			return nil, fmt.Errorf("%s document without request_object_retrieved_at", doc.Stage)
		}
		return domain.RequestObjectRetrieved{Base: base, RequestObjectRetrievedAt: *doc.RequestObjectRetrievedAt}, nil
	case domain.StageSubmitted:
		if doc.RequestObjectRetrievedAt == nil || doc.SubmittedAt == nil || doc.WalletResponse == nil {
			return nil, fmt.Errorf("%s document is incomplete", doc.Stage)
		}
		wr, err := decodeWalletResponse(*doc.WalletResponse)
		if err != nil {
			return nil, err
		}
		submitted := domain.Submitted{
			Base:                     base,
			RequestObjectRetrievedAt: *doc.RequestObjectRetrievedAt,
			SubmittedAt:              *doc.SubmittedAt,
			WalletResponse:           wr,
		}
		if doc.ResponseCode != nil {
			code := domain.ResponseCode(*doc.ResponseCode)
			submitted.ResponseCode = &code
		}
		return submitted, nil
	case domain.StageTimedOut:
		if doc.TimedOutAt == nil {
			return nil, fmt.Errorf("%s document without timed_out_at", doc.Stage)
		}
		return domain.TimedOut{
			Base:                     base,
			RequestObjectRetrievedAt: doc.RequestObjectRetrievedAt,
			SubmittedAt:              doc.SubmittedAt,
			TimedOutAt:               *doc.TimedOutAt,
		}, nil
	default:
		return nil, fmt.Errorf("unknown presentation stage %q", doc.Stage)
	}
}

func encodeType(t domain.PresentationType) (typeDocument, error) {
	switch t := t.(type) {
	case domain.IDTokenRequest:
		return typeDocument{Kind: typeIDToken, IDTokenTypes: t.IDTokenTypes}, nil
	case domain.VPTokenRequest:
		pd := t.PresentationDefinition
		return typeDocument{Kind: typeVPToken, PresentationDefinition: &pd}, nil
	case domain.IDAndVPTokenRequest:
		pd := t.PresentationDefinition
		return typeDocument{Kind: typeIDAndVPToken, IDTokenTypes: t.IDTokenTypes, PresentationDefinition: &pd}, nil
	default:
		return typeDocument{}, fmt.Errorf("unknown presentation type %T", t)
	}
}

func decodeType(doc typeDocument) (domain.PresentationType, error) {
	switch doc.Kind {
	case typeIDToken:
		return domain.IDTokenRequest{IDTokenTypes: doc.IDTokenTypes}, nil
	case typeVPToken, typeIDAndVPToken:
		if doc.PresentationDefinition == nil {
			return nil, fmt.Errorf("%s type without presentation definition", doc.Kind)
		}
		if doc.Kind == typeVPToken {
			return domain.VPTokenRequest{PresentationDefinition: *doc.PresentationDefinition}, nil
		}
		return domain.IDAndVPTokenRequest{IDTokenTypes: doc.IDTokenTypes, PresentationDefinition: *doc.PresentationDefinition}, nil
	default:
		return nil, fmt.Errorf("unknown presentation type %q", doc.Kind)
	}
}

func encodeMethod(m domain.GetWalletResponseMethod) (methodDocument, error) {
	switch m := m.(type) {
	case domain.Poll:
		return methodDocument{Kind: methodPoll}, nil
	case domain.Redirect:
		return methodDocument{Kind: methodRedirect, URITemplate: m.URITemplate}, nil
	default:
		return methodDocument{}, fmt.Errorf("unknown get wallet response method %T", m)
	}
}

func decodeMethod(doc methodDocument) (domain.GetWalletResponseMethod, error) {
	switch doc.Kind {
	case methodPoll:
		return domain.Poll{}, nil
	case methodRedirect:
		return domain.Redirect{URITemplate: doc.URITemplate}, nil
	default:
		return nil, fmt.Errorf("unknown get wallet response method %q", doc.Kind)
	}
}

func encodeWalletResponse(wr domain.WalletResponse) (walletResponseDoc, error) {
	switch wr := wr.(type) {
	case domain.WalletResponseIDToken:
		return walletResponseDoc{Kind: typeIDToken, IDToken: wr.IDToken}, nil
	case domain.WalletResponseVPToken:
		ps := wr.PresentationSubmission
		return walletResponseDoc{Kind: typeVPToken, VPToken: wr.VPToken, PresentationSubmission: &ps}, nil
	case domain.WalletResponseIDAndVPToken:
		ps := wr.PresentationSubmission
		return walletResponseDoc{Kind: typeIDAndVPToken, IDToken: wr.IDToken, VPToken: wr.VPToken, PresentationSubmission: &ps}, nil
	case domain.WalletResponseError:
		return walletResponseDoc{Kind: walletResponseError, Error: wr.Value, ErrorDescription: wr.Description}, nil
	default:
		return walletResponseDoc{}, fmt.Errorf("unknown wallet response %T", wr)
	}
}

func decodeWalletResponse(doc walletResponseDoc) (domain.WalletResponse, error) {
	submission := func() domain.PresentationSubmission {
		if doc.PresentationSubmission == nil {
			return domain.PresentationSubmission{}
		}
		return *doc.PresentationSubmission
	}
	switch doc.Kind {
	case typeIDToken:
		return domain.WalletResponseIDToken{IDToken: doc.IDToken}, nil
	case typeVPToken:
		return domain.WalletResponseVPToken{VPToken: doc.VPToken, PresentationSubmission: submission()}, nil
	case typeIDAndVPToken:
		return domain.WalletResponseIDAndVPToken{IDToken: doc.IDToken, VPToken: doc.VPToken, PresentationSubmission: submission()}, nil
	case walletResponseError:
		return domain.WalletResponseError{Value: doc.Error, Description: doc.ErrorDescription}, nil
	default:
		return nil, fmt.Errorf("unknown wallet response %q", doc.Kind)
	}
}

func utcPtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
