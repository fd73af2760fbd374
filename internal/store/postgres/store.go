// Package postgres persists presentations as JSONB documents.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/database"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
)

// Store implements the presentation store on top of the generated queries.
// StorePresentation upserts by transaction id; the last write wins.
type Store struct {
	queries *database.Queries
}

func New(queries *database.Queries) *Store {
	return &Store{queries: queries}
}

func (s *Store) LoadPresentationByID(ctx context.Context, id domain.TransactionID) (domain.Presentation, error) {
	row, err := s.queries.GetPresentationByTransactionID(ctx, id.String())
	if err != nil {
		return nil, lookupError(err, "transaction id")
	}
	return decodePresentation(row.Document)
}

func (s *Store) LoadPresentationByRequestID(ctx context.Context, id domain.RequestID) (domain.Presentation, error) {
	row, err := s.queries.GetPresentationByRequestID(ctx, id.String())
	if err != nil {
		return nil, lookupError(err, "request id")
	}
	return decodePresentation(row.Document)
}

func (s *Store) StorePresentation(ctx context.Context, p domain.Presentation) error {
	doc, err := encodePresentation(p)
	if err != nil {
		return err
	}
	base := p.Common()

	params := database.UpsertPresentationParams{
		TransactionID: base.ID.String(),
		RequestID:     base.RequestID.String(),
		Stage:         string(p.Stage()),
		InitiatedAt:   pgtype.Timestamptz{Time: base.InitiatedAt, Valid: true},
		Document:      doc,
	}
	if anchor, ok := domain.ExpiryAnchor(p); ok {
		params.ExpiryAnchor = pgtype.Timestamptz{Time: anchor, Valid: true}
	}

	if err := s.queries.UpsertPresentation(ctx, params); err != nil {
		return fmt.Errorf("failed to store presentation %s: %w", base.ID, err)
	}
	return nil
}

// LoadIncompletePresentationsOlderThan returns the non-terminal presentations whose
// stage-relative anchor is at or before cutoff, oldest first.
func (s *Store) LoadIncompletePresentationsOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Presentation, error) {
	rows, err := s.queries.ListIncompletePresentationsOlderThan(ctx, pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete presentations: %w", err)
	}
	out := make([]domain.Presentation, 0, len(rows))
	for _, row := range rows {
		p, err := decodePresentation(row.Document)
		if err != nil {
			return nil, fmt.Errorf("presentation %s: %w", row.TransactionID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func lookupError(err error, by string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrPresentationNotFound
	}
	return fmt.Errorf("failed to load presentation by %s: %w", by, err)
}
