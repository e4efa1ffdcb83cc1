package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
)

// Repository manages persistence for payment ledger entries. Entries are
// append-only: the single permitted mutation is flipping voided to true.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.PaymentEntry) error
	FindByID(ctx context.Context, shipmentID, entryID uuid.UUID) (*models.PaymentEntry, error)
	ListByShipmentID(ctx context.Context, shipmentID uuid.UUID) ([]models.PaymentEntry, error)
	MarkVoided(ctx context.Context, entryID uuid.UUID, note *string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.PaymentEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, shipmentID, entryID uuid.UUID) (*models.PaymentEntry, error) {
	var entry models.PaymentEntry
	err := r.db.WithContext(ctx).
		Where("id = ? AND shipment_id = ?", entryID, shipmentID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListByShipmentID(ctx context.Context, shipmentID uuid.UUID) ([]models.PaymentEntry, error) {
	var entries []models.PaymentEntry
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) MarkVoided(ctx context.Context, entryID uuid.UUID, note *string) error {
	updates := map[string]any{"voided": true}
	if note != nil {
		updates["note"] = *note
	}
	res := r.db.WithContext(ctx).
		Model(&models.PaymentEntry{}).
		Where("id = ? AND voided = ?", entryID, false).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
