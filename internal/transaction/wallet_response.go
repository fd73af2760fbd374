package transaction

import (
	"context"
	"log/slog"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/oid4vp"
)

// PostWalletResponse records the wallet's answer for the presentation named by the echoed state.
//
// The returned DTO is nil when the presentation is collected by polling. For redirect delivery
// it carries the redirect_uri with a freshly minted response code.
func (s *Service) PostWalletResponse(ctx context.Context, resp oid4vp.AuthorisationResponse) (*oid4vp.WalletResponseAcceptedTO, error) {
	accepted, err := s.postWalletResponse(ctx, resp)
	if err != nil {
		var state string
		if resp != nil {
			state = resp.EchoedState()
		}
		s.metrics.IncrementWalletResponsesRejected(string(domain.CodeOf(err)))
		s.logger.WarnContext(ctx, "wallet response rejected",
			slog.String("state", state),
			slog.String("error", err.Error()))
		return nil, err
	}
	return accepted, nil
}

func (s *Service) postWalletResponse(ctx context.Context, resp oid4vp.AuthorisationResponse) (*oid4vp.WalletResponseAcceptedTO, error) {
	if resp == nil || resp.EchoedState() == "" {
		return nil, domain.NewValidationError(domain.MsgMissingState)
	}

	p, err := s.loadByRequestID(ctx, resp.EchoedState())
	if err != nil {
		return nil, err
	}
	retrieved, ok := p.(domain.RequestObjectRetrieved)
	if !ok {
		return nil, unexpectedStage(p, domain.StageRequestObjectRetrieved)
	}
	if resp.ResponseMode() != retrieved.ResponseMode {
		return nil, domain.NewProtocolMismatchError(domain.MsgUnexpectedResponseMode)
	}

	var data domain.AuthorizationResponseData
	switch r := resp.(type) {
	case oid4vp.DirectPostResponse:
		data = r.Data
	case oid4vp.DirectPostJwtResponse:
		data, err = s.jarm.VerifyJarmJwt(ctx, s.config.ClientMetaData.JarmOption, retrieved.EphemeralKey, r.Response)
		if err != nil {
			return nil, err
		}
	default:
		return nil, domain.NewValidationError("unsupported authorisation response")
	}

	if err := oid4vp.CheckState(data, retrieved.RequestID); err != nil {
		return nil, err
	}

	walletResponse, err := oid4vp.ToWalletResponse(retrieved.Type, data)
	if err != nil {
		return nil, err
	}

	var responseCode *domain.ResponseCode
	redirect, isRedirect := retrieved.GetWalletResponseMethod.(domain.Redirect)
	if isRedirect {
		code, err := s.ids.ResponseCode()
		if err != nil {
			return nil, domain.WrapInternalError(err, "failed to generate response code")
		}
		responseCode = &code
	}

	submitted, err := retrieved.Submit(s.now(), walletResponse, responseCode)
	if err != nil {
		return nil, err
	}
	if err := s.storePresentation(ctx, submitted); err != nil {
		return nil, err
	}

	s.metrics.IncrementWalletResponsesSubmitted(string(retrieved.ResponseMode))
	s.logger.InfoContext(ctx, "wallet response submitted",
		slog.String("transaction_id", submitted.ID.String()),
		slog.String("request_id", submitted.RequestID.String()))

	if !isRedirect {
		return nil, nil
	}
	uri, err := oid4vp.RedirectURI(redirect.URITemplate, *responseCode)
	if err != nil {
		return nil, err
	}
	return &oid4vp.WalletResponseAcceptedTO{RedirectURI: uri}, nil
}

// GetWalletResponse returns the wallet's answer to the verifier's caller.
//
// responseCode must be supplied exactly when the presentation was delivered by redirect, and
// must equal the code minted then. The answer is only served within MaxAge of initiation.
func (s *Service) GetWalletResponse(ctx context.Context, transactionID string, responseCode *string) QueryResponse[oid4vp.WalletResponseTO] {
	p, err := s.loadByID(ctx, transactionID)
	if err != nil {
		return queryError[oid4vp.WalletResponseTO](err)
	}
	submitted, ok := p.(domain.Submitted)
	if !ok {
		return queryError[oid4vp.WalletResponseTO](unexpectedStage(p, domain.StageSubmitted))
	}

	var supplied *domain.ResponseCode
	if responseCode != nil {
		code, err := domain.ParseResponseCode(*responseCode)
		if err != nil {
			return InvalidState[oid4vp.WalletResponseTO](domain.MsgInvalidResponseCode)
		}
		supplied = &code
	}
	if !oid4vp.ResponseCodeMatches(submitted.ResponseCode, supplied) {
		return InvalidState[oid4vp.WalletResponseTO](domain.MsgInvalidResponseCode)
	}

	if submitted.InitiatedAt.Add(s.config.MaxAge).Before(s.now()) {
		return InvalidState[oid4vp.WalletResponseTO](domain.MsgPresentationExpired)
	}

	return Found(oid4vp.NewWalletResponseTO(submitted.WalletResponse))
}
