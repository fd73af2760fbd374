package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Presentation struct {
	TransactionID string             `json:"transaction_id"`
	RequestID     string             `json:"request_id"`
	Stage         string             `json:"stage"`
	InitiatedAt   pgtype.Timestamptz `json:"initiated_at"`
	ExpiryAnchor  pgtype.Timestamptz `json:"expiry_anchor"`
	Document      []byte             `json:"document"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}
