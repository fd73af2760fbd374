package handlers

// presentations.go implements the /ui endpoints used by the verifier front end.

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/logger"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/oid4vp"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/transaction"
)

// PresentationService is the part of the transaction service the front end endpoints use.
type PresentationService interface {
	Init(ctx context.Context, to oid4vp.InitTransactionTO) (oid4vp.JwtSecuredAuthorizationRequestTO, error)
	GetWalletResponse(ctx context.Context, transactionID string, responseCode *string) transaction.QueryResponse[oid4vp.WalletResponseTO]
}

// PresentationHandler handles the /ui/presentations requests
type PresentationHandler struct {
	service PresentationService
}

func NewPresentationHandler(service PresentationService) *PresentationHandler {
	return &PresentationHandler{service: service}
}

// HandleInitTransaction godoc
//
//	@Summary		Initiate a presentation transaction
//	@Description	Creates a presentation and returns the authorization request to hand to the wallet.
//	@Description
//	@Description	With `jar_mode=by_value` the signed request object is returned in `request`,
//	@Description	with `by_reference` the wallet fetches it from `request_uri`.
//	@Tags			Verifier
//	@Accept			json
//	@Produce		json
//	@Param			body	body		oid4vp.InitTransactionTO					true	"Presentation request"
//	@Success		200		{object}	oid4vp.JwtSecuredAuthorizationRequestTO	"Authorization request for the wallet"
//	@Failure		400		{object}	ErrorResponse								"Invalid request"
//	@Failure		500		{object}	ErrorResponse								"Verifier misconfiguration"
//	@Router			/ui/presentations [post]
func (h *PresentationHandler) HandleInitTransaction(w http.ResponseWriter, r *http.Request) {
	var to oid4vp.InitTransactionTO
	if err := json.NewDecoder(r.Body).Decode(&to); err != nil {
		RespondWithErrorResponse(w, r, domain.WrapValidationError(err, "malformed request body"))
		return
	}

	result, err := h.service.Init(r.Context(), to)
	if err != nil {
		RespondWithErrorResponse(w, r, err)
		return
	}

	logger.ContextWithLogAttrs(r.Context(), slog.String("transaction_id", result.TransactionID))
	RespondWithJSONPayload(w, http.StatusOK, result)
}

// HandleGetWalletResponse godoc
//
//	@Summary		Get the wallet response
//	@Description	Returns the wallet response of a submitted presentation.
//	@Description
//	@Description	Presentations initiated with a `wallet_response_redirect_uri_template` can only be read
//	@Description	with the `response_code` the wallet was redirected with.
//	@Tags			Verifier
//	@Produce		json
//	@Param			transactionId	path		string					true	"Transaction id returned by the initiation"
//	@Param			response_code	query		string					false	"Response code from the redirect"
//	@Success		200				{object}	oid4vp.WalletResponseTO	"Wallet response"
//	@Failure		400				{object}	ErrorResponse			"Presentation is not in a state that allows this"
//	@Failure		404				{object}	ErrorResponse			"Unknown transaction"
//	@Router			/ui/presentations/{transactionId} [get]
func (h *PresentationHandler) HandleGetWalletResponse(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionId")

	var responseCode *string
	if r.URL.Query().Has("response_code") {
		code := r.URL.Query().Get("response_code")
		responseCode = &code
	}

	q := h.service.GetWalletResponse(r.Context(), transactionID, responseCode)
	respondWithQuery(w, r, q, func(to oid4vp.WalletResponseTO) {
		RespondWithJSONPayload(w, http.StatusOK, to)
	})
}
