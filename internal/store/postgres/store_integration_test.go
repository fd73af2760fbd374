//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/database"
	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
)

// setupStore connects to TEST_DATABASE_URL, applies the migrations and empties the table.
func setupStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, database.PoolConfig{URL: url, PingTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))
	cleanDatabase(t, pool)
	return New(database.New(pool))
}

func cleanDatabase(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE presentations")
	require.NoError(t, err)
}

func TestStore_LoadByBothIDs(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	base := testBase(t, false)
	base.Type = domain.IDTokenRequest{IDTokenTypes: []domain.IDTokenType{domain.IDTokenTypeSubjectSigned}}
	base.PresentationDefinitionMode = nil
	p := domain.Requested{Base: base}

	require.NoError(t, s.StorePresentation(ctx, p))

	byID, err := s.LoadPresentationByID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, p, byID)

	byRequest, err := s.LoadPresentationByRequestID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, p, byRequest)
}

func TestStore_UnknownIDIsNotFound(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.LoadPresentationByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPresentationNotFound)
	_, err = s.LoadPresentationByRequestID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPresentationNotFound)
}

func TestStore_StoreReplacesStage(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	requested := domain.Requested{Base: testBase(t, true)}
	require.NoError(t, s.StorePresentation(ctx, requested))
	retrievedP, err := requested.RetrieveRequestObject(retrieved)
	require.NoError(t, err)
	require.NoError(t, s.StorePresentation(ctx, retrievedP))

	got, err := s.LoadPresentationByID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageRequestObjectRetrieved, got.Stage())
	assert.NotNil(t, got.Common().EphemeralKey)
}

func TestStore_LoadIncompletePresentationsOlderThan(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	stale := testBase(t, false)
	stale.Type = domain.IDTokenRequest{}
	stale.PresentationDefinitionMode = nil
	fresh := stale
	fresh.ID, fresh.RequestID, fresh.InitiatedAt = "tx-2", "req-2", initiated.Add(15*time.Minute)
	done := stale
	done.ID, done.RequestID = "tx-3", "req-3"

	require.NoError(t, s.StorePresentation(ctx, domain.Requested{Base: stale}))
	require.NoError(t, s.StorePresentation(ctx, domain.Requested{Base: fresh}))
	require.NoError(t, s.StorePresentation(ctx, domain.TimedOut{Base: done, TimedOutAt: initiated.Add(time.Minute)}))

	got, err := s.LoadIncompletePresentationsOlderThan(ctx, initiated.Add(10*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.TransactionID("tx-1"), got[0].Common().ID)

	got, err = s.LoadIncompletePresentationsOlderThan(ctx, initiated)
	require.NoError(t, err)
	assert.Len(t, got, 1, "cutoff equal to the anchor is inclusive")
}
