package handlers

// wallet.go implements the /wallet endpoints called by the wallet.

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/oid4vp"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/transaction"
)

// Form fields of the wallet's authorization response.
const (
	formState                  = "state"
	formIDToken                = "id_token"
	formVPToken                = "vp_token"
	formPresentationSubmission = "presentation_submission"
	formError                  = "error"
	formErrorDescription       = "error_description"
	formResponse               = "response"
)

// RequestObjectContentType is the media type of a signed request object (RFC 9101).
const RequestObjectContentType = "application/oauth-authz-req+jwt"

// WalletService is the part of the transaction service the wallet endpoints use.
type WalletService interface {
	GetRequestObject(ctx context.Context, requestID string) transaction.QueryResponse[string]
	GetPresentationDefinition(ctx context.Context, requestID string) transaction.QueryResponse[domain.PresentationDefinition]
	GetJarmJwks(ctx context.Context, requestID string) transaction.QueryResponse[jwk.Set]
	PostWalletResponse(ctx context.Context, resp oid4vp.AuthorisationResponse) (*oid4vp.WalletResponseAcceptedTO, error)
}

// WalletHandler handles the /wallet requests
type WalletHandler struct {
	service WalletService
}

func NewWalletHandler(service WalletService) *WalletHandler {
	return &WalletHandler{service: service}
}

// HandleGetRequestObject godoc
//
//	@Summary		Get the signed request object
//	@Description	Returns the signed request object (JAR) of a presentation initiated with `jar_mode=by_reference`.
//	@Description	The request object can be retrieved once.
//	@Tags			Wallet
//	@Produce		application/oauth-authz-req+jwt
//	@Param			requestId	path		string			true	"Request id"
//	@Success		200			{string}	string			"Signed request object"
//	@Failure		400			{object}	ErrorResponse	"Request object already retrieved"
//	@Failure		404			{object}	ErrorResponse	"Unknown request"
//	@Router			/wallet/request.jwt/{requestId} [get]
func (h *WalletHandler) HandleGetRequestObject(w http.ResponseWriter, r *http.Request) {
	q := h.service.GetRequestObject(r.Context(), chi.URLParam(r, "requestId"))
	respondWithQuery(w, r, q, func(jwt string) {
		w.Header().Set("Content-Type", RequestObjectContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(jwt))
	})
}

// HandleGetPresentationDefinition godoc
//
//	@Summary		Get the presentation definition
//	@Description	Returns the presentation definition of a presentation initiated with `presentation_definition_mode=by_reference`.
//	@Tags			Wallet
//	@Produce		json
//	@Param			requestId	path		string			true	"Request id"
//	@Success		200			{object}	object			"Presentation definition"
//	@Failure		400			{object}	ErrorResponse	"Invalid state"
//	@Failure		404			{object}	ErrorResponse	"Unknown request"
//	@Router			/wallet/pd/{requestId} [get]
func (h *WalletHandler) HandleGetPresentationDefinition(w http.ResponseWriter, r *http.Request) {
	q := h.service.GetPresentationDefinition(r.Context(), chi.URLParam(r, "requestId"))
	respondWithQuery(w, r, q, func(pd domain.PresentationDefinition) {
		RespondWithJSONPayload(w, http.StatusOK, pd)
	})
}

// HandleGetJarmJwks godoc
//
//	@Summary		Get the JARM encryption key
//	@Description	Returns the public part of the ephemeral key the wallet must encrypt its response to.
//	@Tags			Wallet
//	@Produce		json
//	@Param			requestId	path		string			true	"Request id"
//	@Success		200			{object}	JWKSResponse	"JWK set"
//	@Failure		400			{object}	ErrorResponse	"Invalid state"
//	@Failure		404			{object}	ErrorResponse	"Unknown request"
//	@Router			/wallet/jarm/{requestId}/jwks.json [get]
func (h *WalletHandler) HandleGetJarmJwks(w http.ResponseWriter, r *http.Request) {
	q := h.service.GetJarmJwks(r.Context(), chi.URLParam(r, "requestId"))
	respondWithQuery(w, r, q, func(set jwk.Set) {
		RespondWithJSONPayload(w, http.StatusOK, set)
	})
}

// HandleDirectPost godoc
//
//	@Summary		Post the wallet's authorization response
//	@Description	Receives the wallet's answer as a form.
//	@Description
//	@Description	For `direct_post` the tokens are sent as individual fields, for `direct_post.jwt` a single
//	@Description	JARM token is sent in `response`. `state` must echo the request id.
//	@Description
//	@Description	When the presentation was initiated with a redirect template the response carries the
//	@Description	`redirect_uri` the wallet should open.
//	@Tags			Wallet
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			state					formData	string								true	"Request id"
//	@Param			id_token				formData	string								false	"id_token"
//	@Param			vp_token				formData	string								false	"vp_token"
//	@Param			presentation_submission	formData	string								false	"Presentation submission (JSON)"
//	@Param			error					formData	string								false	"Wallet error"
//	@Param			error_description		formData	string								false	"Wallet error description"
//	@Param			response				formData	string								false	"JARM token"
//	@Success		200						{object}	oid4vp.WalletResponseAcceptedTO	"Response accepted"
//	@Failure		400						{object}	ErrorResponse						"Response rejected"
//	@Failure		404						{object}	ErrorResponse						"Unknown request"
//	@Router			/wallet/direct_post [post]
func (h *WalletHandler) HandleDirectPost(w http.ResponseWriter, r *http.Request) {
	resp, err := parseAuthorisationResponse(r)
	if err != nil {
		RespondWithErrorResponse(w, r, err)
		return
	}

	accepted, err := h.service.PostWalletResponse(r.Context(), resp)
	if err != nil {
		RespondWithErrorResponse(w, r, err)
		return
	}
	if accepted == nil {
		accepted = &oid4vp.WalletResponseAcceptedTO{}
	}
	RespondWithJSONPayload(w, http.StatusOK, accepted)
}

// parseAuthorisationResponse reads the wallet's form. A response field selects direct_post.jwt.
func parseAuthorisationResponse(r *http.Request) (oid4vp.AuthorisationResponse, error) {
	if err := r.ParseForm(); err != nil {
		return nil, domain.WrapValidationError(err, "malformed form body")
	}
	form := r.PostForm

	if form.Has(formResponse) {
		return oid4vp.DirectPostJwtResponse{
			State:    form.Get(formState),
			Response: form.Get(formResponse),
		}, nil
	}

	data := domain.AuthorizationResponseData{
		State:            form.Get(formState),
		IDToken:          form.Get(formIDToken),
		VPToken:          form.Get(formVPToken),
		Error:            form.Get(formError),
		ErrorDescription: form.Get(formErrorDescription),
	}
	if raw := form.Get(formPresentationSubmission); raw != "" {
		var ps domain.PresentationSubmission
		if err := json.Unmarshal([]byte(raw), &ps); err != nil {
			return nil, domain.WrapValidationError(err, "malformed presentation_submission")
		}
		data.PresentationSubmission = &ps
	}
	return oid4vp.DirectPostResponse{Data: data}, nil
}
