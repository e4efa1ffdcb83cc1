package shipments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/pagination"
)

// ErrStaleVersion is returned when an optimistic save matched zero rows
// because another writer bumped the lock version first.
var ErrStaleVersion = errors.New("stale shipment version")

// ListFilter narrows shipment listings.
type ListFilter struct {
	OwnerID      *uuid.UUID
	AgentID      *uuid.UUID
	Status       *enums.ShipmentStatus
	NeedsReprice *bool
}

// Repository manages persistence for shipments and their audit log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.Shipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	FindByIDWithLedger(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	Save(ctx context.Context, shipment *models.Shipment) error
	AppendLog(ctx context.Context, entry *models.ShipmentLog) error
	ListLogs(ctx context.Context, shipmentID uuid.UUID) ([]models.ShipmentLog, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Shipment, pagination.Page, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a shipment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) FindByIDWithLedger(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&shipment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "tracking_number = ?", trackingNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// Save persists the shipment with an optimistic-concurrency check on
// lock_version. A concurrent writer surfaces as ErrStaleVersion instead of a
// silent lost update.
func (r *repository) Save(ctx context.Context, shipment *models.Shipment) error {
	currentVersion := shipment.LockVersion
	shipment.LockVersion = currentVersion + 1

	res := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ? AND lock_version = ?", shipment.ID, currentVersion).
		Select("*").
		Omit("id", "created_at", "Payments", "Logs").
		Updates(shipment)
	if res.Error != nil {
		shipment.LockVersion = currentVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		shipment.LockVersion = currentVersion
		return fmt.Errorf("saving shipment %s: %w", shipment.ID, ErrStaleVersion)
	}
	return nil
}

func (r *repository) AppendLog(ctx context.Context, entry *models.ShipmentLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListLogs(ctx context.Context, shipmentID uuid.UUID) ([]models.ShipmentLog, error) {
	var logs []models.ShipmentLog
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Shipment, pagination.Page, error) {
	query := r.db.WithContext(ctx).Model(&models.Shipment{})

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.AgentID != nil {
		query = query.Where("pickup_agent_id = ? OR delivery_agent_id = ?", *filter.AgentID, *filter.AgentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.NeedsReprice != nil {
		query = query.Where("needs_reprice = ?", *filter.NeedsReprice)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Shipment
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, pagination.Page{}, err
	}

	rows, page := pagination.BuildPage(rows, params.Limit, func(s models.Shipment) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	})
	return rows, page, nil
}
