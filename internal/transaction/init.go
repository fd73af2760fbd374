package transaction

import (
	"context"
	"log/slog"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/oid4vp"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// Init creates a new presentation.
//
// With jar_mode by_value the request object is signed straight away and returned inline; the
// presentation is then already RequestObjectRetrieved. With by_reference the presentation stays
// Requested and the wallet fetches the request object from the returned request_uri.
func (s *Service) Init(ctx context.Context, to oid4vp.InitTransactionTO) (oid4vp.JwtSecuredAuthorizationRequestTO, error) {
	presentationType, err := to.PresentationType()
	if err != nil {
		return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
	}
	if to.Nonce == "" {
		return oid4vp.JwtSecuredAuthorizationRequestTO{}, domain.NewValidationError(domain.MsgMissingNonce)
	}
	nonce, err := domain.ParseNonce(to.Nonce)
	if err != nil {
		return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
	}

	responseMode := s.config.ResponseModeOption
	if to.ResponseMode != nil {
		if responseMode, err = domain.ParseResponseMode(*to.ResponseMode); err != nil {
			return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
		}
	}

	jarMode, err := domain.ResolveEmbedOption(to.JarMode, domain.ByReference{Builder: s.endpoints.RequestURI}, s.config.JarOption)
	if err != nil {
		return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
	}

	var pdMode domain.EmbedOption
	if _, hasPD := domain.PresentationDefinitionOf(presentationType); hasPD {
		pdMode, err = domain.ResolveEmbedOption(to.PresentationDefinitionMode,
			domain.ByReference{Builder: s.endpoints.PresentationDefinitionURI}, s.config.PresentationDefinitionOption)
		if err != nil {
			return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
		}
	}

	var method domain.GetWalletResponseMethod = domain.Poll{}
	if to.WalletResponseRedirectURITemplate != "" {
		if err := oid4vp.ValidateRedirectTemplate(to.WalletResponseRedirectURITemplate); err != nil {
			return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
		}
		method = domain.Redirect{URITemplate: to.WalletResponseRedirectURITemplate}
	}

	needsKey, err := oid4vp.EphemeralKeyRequired(responseMode, s.config.ClientMetaData.JarmOption)
	if err != nil {
		return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
	}
	var ephemeralKey jwk.Key
	if needsKey {
		if ephemeralKey, err = s.keys.Generate(); err != nil {
			return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
		}
	}

	transactionID, err := s.ids.TransactionID()
	if err != nil {
		return oid4vp.JwtSecuredAuthorizationRequestTO{}, domain.WrapInternalError(err, "failed to generate transaction id")
	}
	requestID, err := s.ids.RequestID()
	if err != nil {
		return oid4vp.JwtSecuredAuthorizationRequestTO{}, domain.WrapInternalError(err, "failed to generate request id")
	}

	now := s.now()
	requested, err := domain.NewRequested(domain.Base{
		ID:                         transactionID,
		InitiatedAt:                now,
		Type:                       presentationType,
		RequestID:                  requestID,
		Nonce:                      nonce,
		EphemeralKey:               ephemeralKey,
		ResponseMode:               responseMode,
		PresentationDefinitionMode: pdMode,
		GetWalletResponseMethod:    method,
	})
	if err != nil {
		return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
	}

	result := oid4vp.JwtSecuredAuthorizationRequestTO{
		TransactionID: transactionID.String(),
		ClientID:      s.config.ClientIDScheme.Identity().ClientID,
	}

	var stored domain.Presentation
	switch mode := jarMode.(type) {
	case domain.ByValue:
		jwt, err := s.signer.Sign(s.config, now, requested)
		if err != nil {
			return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
		}
		retrieved, err := requested.RetrieveRequestObject(now)
		if err != nil {
			return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
		}
		stored = retrieved
		result.Request = jwt

	case domain.ByReference:
		uri, err := mode.Builder.Build(requestID)
		if err != nil {
			return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
		}
		stored = requested
		result.RequestURI = uri

	default:
		return oid4vp.JwtSecuredAuthorizationRequestTO{}, domain.NewMisconfigurationError("jar embed option is not configured")
	}

	if err := s.storePresentation(ctx, stored); err != nil {
		return oid4vp.JwtSecuredAuthorizationRequestTO{}, err
	}

	jarLabel := domain.EmbedModeByReference
	if result.Request != "" {
		jarLabel = domain.EmbedModeByValue
	}
	s.metrics.IncrementPresentationsInitiated(string(responseMode), jarLabel)
	s.logger.InfoContext(ctx, "presentation initiated",
		slog.String("transaction_id", transactionID.String()),
		slog.String("request_id", requestID.String()),
		slog.String("response_mode", string(responseMode)),
		slog.String("jar_mode", jarLabel),
		slog.String("stage", string(stored.Stage())))

	return result, nil
}
