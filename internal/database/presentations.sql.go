package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const isDatabaseRunning = `-- name: IsDatabaseRunning :one
SELECT TRUE
`

func (q *Queries) IsDatabaseRunning(ctx context.Context) (bool, error) {
	row := q.db.QueryRow(ctx, isDatabaseRunning)
	var column_1 bool
	err := row.Scan(&column_1)
	return column_1, err
}

const upsertPresentation = `-- name: UpsertPresentation :exec
INSERT INTO presentations (transaction_id, request_id, stage, initiated_at, expiry_anchor, document)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (transaction_id) DO UPDATE SET
    request_id = EXCLUDED.request_id,
    stage = EXCLUDED.stage,
    initiated_at = EXCLUDED.initiated_at,
    expiry_anchor = EXCLUDED.expiry_anchor,
    document = EXCLUDED.document,
    updated_at = now()
`

type UpsertPresentationParams struct {
	TransactionID string             `json:"transaction_id"`
	RequestID     string             `json:"request_id"`
	Stage         string             `json:"stage"`
	InitiatedAt   pgtype.Timestamptz `json:"initiated_at"`
	ExpiryAnchor  pgtype.Timestamptz `json:"expiry_anchor"`
	Document      []byte             `json:"document"`
}

func (q *Queries) UpsertPresentation(ctx context.Context, arg UpsertPresentationParams) error {
	_, err := q.db.Exec(ctx, upsertPresentation,
		arg.TransactionID,
		arg.RequestID,
		arg.Stage,
		arg.InitiatedAt,
		arg.ExpiryAnchor,
		arg.Document,
	)
	return err
}

const getPresentationByTransactionID = `-- name: GetPresentationByTransactionID :one
SELECT transaction_id, request_id, stage, initiated_at, expiry_anchor, document, created_at, updated_at
FROM presentations
WHERE transaction_id = $1
`

func (q *Queries) GetPresentationByTransactionID(ctx context.Context, transactionID string) (Presentation, error) {
	row := q.db.QueryRow(ctx, getPresentationByTransactionID, transactionID)
	var i Presentation
	err := row.Scan(
		&i.TransactionID,
		&i.RequestID,
		&i.Stage,
		&i.InitiatedAt,
		&i.ExpiryAnchor,
		&i.Document,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPresentationByRequestID = `-- name: GetPresentationByRequestID :one
SELECT transaction_id, request_id, stage, initiated_at, expiry_anchor, document, created_at, updated_at
FROM presentations
WHERE request_id = $1
`

func (q *Queries) GetPresentationByRequestID(ctx context.Context, requestID string) (Presentation, error) {
	row := q.db.QueryRow(ctx, getPresentationByRequestID, requestID)
	var i Presentation
	err := row.Scan(
		&i.TransactionID,
		&i.RequestID,
		&i.Stage,
		&i.InitiatedAt,
		&i.ExpiryAnchor,
		&i.Document,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listIncompletePresentationsOlderThan = `-- name: ListIncompletePresentationsOlderThan :many
SELECT transaction_id, request_id, stage, initiated_at, expiry_anchor, document, created_at, updated_at
FROM presentations
WHERE stage <> 'timed_out'
  AND expiry_anchor <= $1
ORDER BY expiry_anchor
`

func (q *Queries) ListIncompletePresentationsOlderThan(ctx context.Context, cutoff pgtype.Timestamptz) ([]Presentation, error) {
	rows, err := q.db.Query(ctx, listIncompletePresentationsOlderThan, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Presentation
	for rows.Next() {
		var i Presentation
		if err := rows.Scan(
			&i.TransactionID,
			&i.RequestID,
			&i.Stage,
			&i.InitiatedAt,
			&i.ExpiryAnchor,
			&i.Document,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
