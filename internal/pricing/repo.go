package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
)

// Repository manages persistence for pricing configurations. FindActive is a
// live query, never cached process-wide, so concurrent activations cannot
// leave a stale winner in memory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, cfg *models.PricingConfiguration) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PricingConfiguration, error)
	FindActive(ctx context.Context) (*models.PricingConfiguration, error)
	FindByVersion(ctx context.Context, version string) (*models.PricingConfiguration, error)
	List(ctx context.Context, includeArchived bool) ([]models.PricingConfiguration, error)
	DeactivateAll(ctx context.Context) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetArchived(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pricing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, cfg *models.PricingConfiguration) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PricingConfiguration, error) {
	var cfg models.PricingConfiguration
	if err := r.db.WithContext(ctx).First(&cfg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *repository) FindActive(ctx context.Context) (*models.PricingConfiguration, error) {
	var cfg models.PricingConfiguration
	if err := r.db.WithContext(ctx).First(&cfg, "active = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *repository) FindByVersion(ctx context.Context, version string) (*models.PricingConfiguration, error) {
	var cfg models.PricingConfiguration
	if err := r.db.WithContext(ctx).First(&cfg, "version = ?", version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *repository) List(ctx context.Context, includeArchived bool) ([]models.PricingConfiguration, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}
	var configs []models.PricingConfiguration
	if err := query.Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *repository) DeactivateAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.PricingConfiguration{}).
		Where("active = ?", true).
		Update("active", false).Error
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.PricingConfiguration{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SetArchived(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.PricingConfiguration{}).
		Where("id = ?", id).
		Updates(map[string]any{"archived": true, "active": false})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
