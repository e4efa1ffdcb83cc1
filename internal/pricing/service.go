package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
	"github.com/swiftparcel/courierdesk-backend/pkg/types"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the pricing configuration lifecycle: create, activate,
// archive, resolve. Configurations are never deleted.
type Service interface {
	Create(ctx context.Context, input CreateConfigurationInput) (*models.PricingConfiguration, error)
	Activate(ctx context.Context, id uuid.UUID) (*models.PricingConfiguration, error)
	Archive(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, includeArchived bool) ([]models.PricingConfiguration, error)
	ResolveActive(ctx context.Context) (*models.PricingConfiguration, error)
	ResolveVersion(ctx context.Context, version string) (*models.PricingConfiguration, error)
}

type service struct {
	repo Repository
	tx   TxRunner
	logg *logger.Logger
}

// CreateConfigurationInput captures a new tariff version.
type CreateConfigurationInput struct {
	Version              string                   `json:"version" validate:"required"`
	Label                string                   `json:"label" validate:"required"`
	Mode                 enums.PricingMode        `json:"mode" validate:"required"`
	Currency             enums.Currency           `json:"currency"`
	PerKgRate            *decimal.Decimal         `json:"per_kg_rate"`
	PerPieceRate         *decimal.Decimal         `json:"per_piece_rate"`
	PerCubicCmRate       *decimal.Decimal         `json:"per_cubic_cm_rate"`
	PerCubicMeterRate    *decimal.Decimal         `json:"per_cubic_meter_rate"`
	BaseFee              decimal.Decimal          `json:"base_fee"`
	MinCharge            decimal.Decimal          `json:"min_charge"`
	TaxPercent           decimal.Decimal          `json:"tax_percent"`
	FuelSurchargePercent decimal.Decimal          `json:"fuel_surcharge_percent"`
	OtherFees            decimal.Decimal          `json:"other_fees"`
	CODFeePercent        decimal.Decimal          `json:"cod_fee_percent"`
	CODFeeFloor          decimal.Decimal          `json:"cod_fee_floor"`
	VolumetricDivisor    decimal.Decimal          `json:"volumetric_divisor"`
	Zones                types.ZoneOverrides      `json:"zones"`
	ServiceMultipliers   types.ServiceMultipliers `json:"service_multipliers"`
	CreatedBy            *uuid.UUID               `json:"-"`
}

// NewService wires a pricing service.
func NewService(repo Repository, tx TxRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateConfigurationInput) (*models.PricingConfiguration, error) {
	if input.Version == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "version is required")
	}
	if !input.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid pricing mode %q", input.Mode))
	}

	existing, err := s.repo.FindByVersion(ctx, input.Version)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("pricing version %q already exists", input.Version))
	}

	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	divisor := input.VolumetricDivisor
	if !divisor.IsPositive() {
		divisor = decimal.NewFromInt(5000)
	}

	cfg := &models.PricingConfiguration{
		Version:              input.Version,
		Label:                input.Label,
		Mode:                 input.Mode,
		Currency:             currency,
		PerKgRate:            input.PerKgRate,
		PerPieceRate:         input.PerPieceRate,
		PerCubicCmRate:       input.PerCubicCmRate,
		PerCubicMeterRate:    input.PerCubicMeterRate,
		BaseFee:              input.BaseFee,
		MinCharge:            input.MinCharge,
		TaxPercent:           input.TaxPercent,
		FuelSurchargePercent: input.FuelSurchargePercent,
		OtherFees:            input.OtherFees,
		CODFeePercent:        input.CODFeePercent,
		CODFeeFloor:          input.CODFeeFloor,
		VolumetricDivisor:    divisor,
		Zones:                input.Zones,
		ServiceMultipliers:   input.ServiceMultipliers,
		CreatedBy:            input.CreatedBy,
	}

	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Activate promotes one configuration and demotes any other active row in a
// single transaction, preserving the single-active invariant.
func (s *service) Activate(ctx context.Context, id uuid.UUID) (*models.PricingConfiguration, error) {
	cfg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricing configuration not found")
	}
	if cfg.Archived {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "archived configurations cannot be activated")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeactivateAll(ctx); err != nil {
			return err
		}
		return txRepo.SetActive(ctx, id, true)
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "pricing_version", cfg.Version), "pricing configuration activated")
	}

	cfg.Active = true
	return cfg, nil
}

func (s *service) Archive(ctx context.Context, id uuid.UUID) error {
	cfg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cfg == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pricing configuration not found")
	}
	return s.repo.SetArchived(ctx, id)
}

func (s *service) List(ctx context.Context, includeArchived bool) ([]models.PricingConfiguration, error) {
	return s.repo.List(ctx, includeArchived)
}

// ResolveActive returns the active configuration, or NoActivePricing.
func (s *service) ResolveActive(ctx context.Context) (*models.PricingConfiguration, error) {
	cfg, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNoActivePricing, "no pricing configuration is active")
	}
	return cfg, nil
}

// ResolveVersion returns the configuration for a version tag. Archived
// versions stay resolvable for historical repricing.
func (s *service) ResolveVersion(ctx context.Context, version string) (*models.PricingConfiguration, error) {
	cfg, err := s.repo.FindByVersion(ctx, version)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, pkgerrors.New(pkgerrors.CodePricingVersionNotFound, fmt.Sprintf("pricing version %q not found", version))
	}
	return cfg, nil
}
