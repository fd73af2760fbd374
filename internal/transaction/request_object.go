package transaction

import (
	"context"
	"log/slog"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/crypto"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// GetRequestObject signs the request object of a Requested presentation and moves it to
// RequestObjectRetrieved. A second fetch of the same request id is InvalidState.
func (s *Service) GetRequestObject(ctx context.Context, requestID string) QueryResponse[string] {
	p, err := s.loadByRequestID(ctx, requestID)
	if err != nil {
		return queryError[string](err)
	}
	requested, ok := p.(domain.Requested)
	if !ok {
		return queryError[string](unexpectedStage(p, domain.StageRequested))
	}

	now := s.now()
	jwt, err := s.signer.Sign(s.config, now, requested)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to sign request object",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return queryError[string](err)
	}

	retrieved, err := requested.RetrieveRequestObject(now)
	if err != nil {
		return queryError[string](err)
	}
	if err := s.storePresentation(ctx, retrieved); err != nil {
		s.logger.ErrorContext(ctx, "failed to store presentation",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return queryError[string](err)
	}

	s.metrics.IncrementRequestObjectsRetrieved()
	s.logger.InfoContext(ctx, "request object retrieved",
		slog.String("transaction_id", retrieved.ID.String()),
		slog.String("request_id", requestID))

	return Found(jwt)
}

// GetPresentationDefinition returns the presentation definition published by reference.
// It is only available once the wallet has retrieved the request object.
func (s *Service) GetPresentationDefinition(ctx context.Context, requestID string) QueryResponse[domain.PresentationDefinition] {
	p, err := s.loadByRequestID(ctx, requestID)
	if err != nil {
		return queryError[domain.PresentationDefinition](err)
	}
	retrieved, ok := p.(domain.RequestObjectRetrieved)
	if !ok {
		return queryError[domain.PresentationDefinition](unexpectedStage(p, domain.StageRequestObjectRetrieved))
	}
	pd, ok := domain.PresentationDefinitionOf(retrieved.Type)
	if !ok {
		return InvalidState[domain.PresentationDefinition]("presentation does not request a vp_token")
	}
	return Found(pd)
}

// GetJarmJwks returns the public part of the ephemeral key the wallet must encrypt its response to.
func (s *Service) GetJarmJwks(ctx context.Context, requestID string) QueryResponse[jwk.Set] {
	p, err := s.loadByRequestID(ctx, requestID)
	if err != nil {
		return queryError[jwk.Set](err)
	}
	retrieved, ok := p.(domain.RequestObjectRetrieved)
	if !ok {
		return queryError[jwk.Set](unexpectedStage(p, domain.StageRequestObjectRetrieved))
	}
	if retrieved.EphemeralKey == nil {
		return InvalidState[jwk.Set]("presentation has no ephemeral key")
	}
	set, err := crypto.PublicJWKSet(retrieved.EphemeralKey)
	if err != nil {
		return queryError[jwk.Set](domain.WrapCryptoError(err, "invalid ephemeral key"))
	}
	return Found(set)
}
