package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	table := `
CREATE TABLE IF NOT EXISTS payment_entries (
  id TEXT PRIMARY KEY,
  shipment_id TEXT NOT NULL,
  amount TEXT NOT NULL,
  method TEXT NOT NULL,
  channel TEXT NOT NULL,
  collected_by TEXT,
  txn_ref TEXT,
  note TEXT,
  voided INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(table).Error)
	return db
}

func newEntry(t *testing.T, repo Repository, shipmentID uuid.UUID, amount string) *models.PaymentEntry {
	t.Helper()

	e := &models.PaymentEntry{
		ID:         uuid.New(),
		ShipmentID: shipmentID,
		Amount:     dec(amount),
		Method:     enums.PaymentMethodCash,
		Channel:    enums.PaymentChannelOffice,
	}
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func TestRepositoryListOrdersByCreation(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()
	shipmentID := uuid.New()

	first := newEntry(t, repo, shipmentID, "100")
	newEntry(t, repo, shipmentID, "50")
	newEntry(t, repo, uuid.New(), "999")

	entries, err := repo.ListByShipmentID(ctx, shipmentID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
}

func TestRepositoryFindByIDScopedToShipment(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()
	shipmentID := uuid.New()

	entry := newEntry(t, repo, shipmentID, "100")

	found, err := repo.FindByID(ctx, shipmentID, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Amount.Equal(dec("100")))

	// The same entry id under a different shipment resolves to nothing.
	miss, err := repo.FindByID(ctx, uuid.New(), entry.ID)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestRepositoryMarkVoidedOnce(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()
	shipmentID := uuid.New()

	entry := newEntry(t, repo, shipmentID, "100")

	note := "voided: duplicate"
	require.NoError(t, repo.MarkVoided(ctx, entry.ID, &note))

	reloaded, err := repo.FindByID(ctx, shipmentID, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.True(t, reloaded.Voided)
	require.NotNil(t, reloaded.Note)
	assert.Equal(t, note, *reloaded.Note)

	// A second void matches zero rows.
	err = repo.MarkVoided(ctx, entry.ID, nil)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
