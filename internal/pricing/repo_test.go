package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

func setupPricingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS pricing_configurations (
  id TEXT PRIMARY KEY,
  version TEXT NOT NULL UNIQUE,
  label TEXT NOT NULL,
  mode TEXT NOT NULL DEFAULT 'weight',
  currency TEXT NOT NULL DEFAULT 'USD',
  per_kg_rate TEXT,
  per_piece_rate TEXT,
  per_cubic_cm_rate TEXT,
  per_cubic_meter_rate TEXT,
  base_fee TEXT NOT NULL DEFAULT '0',
  min_charge TEXT NOT NULL DEFAULT '0',
  tax_percent TEXT NOT NULL DEFAULT '0',
  fuel_surcharge_percent TEXT NOT NULL DEFAULT '0',
  other_fees TEXT NOT NULL DEFAULT '0',
  cod_fee_percent TEXT NOT NULL DEFAULT '0',
  cod_fee_floor TEXT NOT NULL DEFAULT '0',
  volumetric_divisor TEXT NOT NULL DEFAULT '5000',
  zones TEXT,
  service_multipliers TEXT,
  active INTEGER NOT NULL DEFAULT 0,
  archived INTEGER NOT NULL DEFAULT 0,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newConfig(t *testing.T, db *gorm.DB, version string, active bool) *models.PricingConfiguration {
	t.Helper()

	cfg := &models.PricingConfiguration{
		ID:                uuid.New(),
		Version:           version,
		Label:             "tariff " + version,
		Mode:              enums.PricingModeWeight,
		Currency:          enums.CurrencyUSD,
		PerKgRate:         decPtr("120"),
		MinCharge:         dec("150"),
		VolumetricDivisor: dec("5000"),
		Active:            active,
	}
	require.NoError(t, db.Create(cfg).Error)
	return cfg
}

func TestRepositoryFindActive(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newConfig(t, db, "V1", false)
	active := newConfig(t, db, "V2", true)

	found, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, active.ID, found.ID)
}

func TestRepositoryFindActiveNone(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)

	found, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepositoryFindByVersion(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := newConfig(t, db, "V1", false)

	found, err := repo.FindByVersion(ctx, "V1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := repo.FindByVersion(ctx, "V9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryActivationSwap(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	v1 := newConfig(t, db, "V1", true)
	v2 := newConfig(t, db, "V2", false)

	require.NoError(t, repo.DeactivateAll(ctx))
	require.NoError(t, repo.SetActive(ctx, v2.ID, true))

	found, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, v2.ID, found.ID)

	old, err := repo.FindByID(ctx, v1.ID)
	require.NoError(t, err)
	assert.False(t, old.Active)
}

func TestRepositorySetArchived(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cfg := newConfig(t, db, "V1", true)
	require.NoError(t, repo.SetArchived(ctx, cfg.ID))

	found, err := repo.FindByID(ctx, cfg.ID)
	require.NoError(t, err)
	assert.True(t, found.Archived)
	assert.False(t, found.Active)

	// Archived rows stay resolvable by version for historical repricing.
	byVersion, err := repo.FindByVersion(ctx, "V1")
	require.NoError(t, err)
	require.NotNil(t, byVersion)

	listed, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, listed)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
