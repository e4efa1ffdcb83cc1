package shipments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/pagination"
)

func setupShipmentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	shipmentsTable := `
CREATE TABLE IF NOT EXISTS shipments (
  id TEXT PRIMARY KEY,
  tracking_number TEXT NOT NULL UNIQUE,
  owner_id TEXT NOT NULL,
  pickup_agent_id TEXT,
  delivery_agent_id TEXT,
  box_code TEXT,
  custom_length_cm TEXT,
  custom_width_cm TEXT,
  custom_height_cm TEXT,
  declared_weight_kg TEXT NOT NULL DEFAULT '0',
  piece_count INTEGER NOT NULL DEFAULT 1,
  service_type TEXT NOT NULL DEFAULT 'standard',
  zone TEXT,
  is_cod INTEGER NOT NULL DEFAULT 0,
  cod_amount TEXT NOT NULL DEFAULT '0',
  currency TEXT NOT NULL DEFAULT 'USD',
  volumetric_weight_kg TEXT NOT NULL DEFAULT '0',
  chargeable_weight_kg TEXT NOT NULL DEFAULT '0',
  base_charge TEXT NOT NULL DEFAULT '0',
  service_charge TEXT NOT NULL DEFAULT '0',
  fuel_surcharge TEXT NOT NULL DEFAULT '0',
  other_fees TEXT NOT NULL DEFAULT '0',
  cod_fee TEXT NOT NULL DEFAULT '0',
  tax TEXT NOT NULL DEFAULT '0',
  grand_total TEXT NOT NULL DEFAULT '0',
  pricing_version TEXT,
  needs_reprice INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'created',
  preferred_method TEXT NOT NULL DEFAULT 'cash',
  preferred_channel TEXT NOT NULL DEFAULT 'office',
  total_paid TEXT NOT NULL DEFAULT '0',
  balance TEXT NOT NULL DEFAULT '0',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  cancel_reason TEXT,
  cancelled_by TEXT,
  cancelled_at DATETIME,
  lock_version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	logsTable := `
CREATE TABLE IF NOT EXISTS shipment_logs (
  id TEXT PRIMARY KEY,
  shipment_id TEXT NOT NULL,
  type TEXT NOT NULL,
  message TEXT NOT NULL,
  actor_id TEXT,
  created_at DATETIME
);`
	paymentsTable := `
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
	require.NoError(t, db.Exec(shipmentsTable).Error)
	require.NoError(t, db.Exec(logsTable).Error)
	require.NoError(t, db.Exec(paymentsTable).Error)
	return db
}

func newShipment(t *testing.T, db *gorm.DB, status enums.ShipmentStatus) *models.Shipment {
	t.Helper()

	shipment := &models.Shipment{
		ID:               uuid.New(),
		TrackingNumber:   newTrackingNumber(),
		OwnerID:          uuid.New(),
		DeclaredWeightKg: decimal.NewFromInt(2),
		PieceCount:       1,
		ServiceType:      "standard",
		Currency:         enums.CurrencyUSD,
		Status:           status,
		PreferredMethod:  enums.PaymentMethodCash,
		PreferredChannel: enums.PaymentChannelOffice,
		PaymentStatus:    enums.PaymentStatusPending,
	}
	require.NoError(t, db.Create(shipment).Error)
	return shipment
}

func TestRepositorySaveBumpsLockVersion(t *testing.T) {
	db := setupShipmentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shipment := newShipment(t, db, enums.ShipmentStatusCreated)
	shipment.Status = enums.ShipmentStatusPickupScheduled
	require.NoError(t, repo.Save(ctx, shipment))
	assert.Equal(t, 1, shipment.LockVersion)

	reloaded, err := repo.FindByID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusPickupScheduled, reloaded.Status)
	assert.Equal(t, 1, reloaded.LockVersion)
}

func TestRepositorySaveStaleVersion(t *testing.T) {
	db := setupShipmentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shipment := newShipment(t, db, enums.ShipmentStatusCreated)

	// Simulate a concurrent writer holding the same version.
	stale := *shipment
	shipment.Status = enums.ShipmentStatusPickupScheduled
	require.NoError(t, repo.Save(ctx, shipment))

	stale.Status = enums.ShipmentStatusCancelled
	err := repo.Save(ctx, &stale)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStaleVersion))

	// The losing write left nothing behind.
	reloaded, err := repo.FindByID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusPickupScheduled, reloaded.Status)
}

func TestRepositoryAppendAndListLogs(t *testing.T) {
	db := setupShipmentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shipment := newShipment(t, db, enums.ShipmentStatusCreated)

	for _, msg := range []string{"first", "second"} {
		require.NoError(t, repo.AppendLog(ctx, &models.ShipmentLog{
			ID:         uuid.New(),
			ShipmentID: shipment.ID,
			Type:       enums.ShipmentLogTypeStatusChanged,
			Message:    msg,
		}))
	}

	logs, err := repo.ListLogs(ctx, shipment.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "first", logs[0].Message)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupShipmentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	mine := newShipment(t, db, enums.ShipmentStatusCreated)
	mine.OwnerID = owner
	require.NoError(t, db.Save(mine).Error)
	newShipment(t, db, enums.ShipmentStatusInTransit)

	rows, _, err := repo.List(ctx, ListFilter{OwnerID: &owner}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)

	status := enums.ShipmentStatusInTransit
	rows, _, err = repo.List(ctx, ListFilter{Status: &status}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, status, rows[0].Status)
}

func TestRepositoryListPagination(t *testing.T) {
	db := setupShipmentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		newShipment(t, db, enums.ShipmentStatusCreated)
	}

	rows, page, err := repo.List(ctx, ListFilter{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextCursor)

	var seen int
	cursor := page.NextCursor
	for cursor != "" {
		rows, page, err = repo.List(ctx, ListFilter{}, pagination.Params{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		seen += len(rows)
		cursor = page.NextCursor
	}
	assert.Equal(t, 3, seen)
}

func TestRepositoryFindByTrackingNumber(t *testing.T) {
	db := setupShipmentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shipment := newShipment(t, db, enums.ShipmentStatusCreated)

	found, err := repo.FindByTrackingNumber(ctx, shipment.TrackingNumber)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, shipment.ID, found.ID)

	missing, err := repo.FindByTrackingNumber(ctx, "CD-DOESNOTEXIST")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
