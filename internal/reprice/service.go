package reprice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/internal/boxes"
	"github.com/swiftparcel/courierdesk-backend/internal/payments"
	"github.com/swiftparcel/courierdesk-backend/internal/pricing"
	"github.com/swiftparcel/courierdesk-backend/internal/shipments"
	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
	"github.com/swiftparcel/courierdesk-backend/pkg/metrics"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox/payloads"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Emitter records domain events in the same transaction as the state change.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ApplyInput controls a reprice run. A nil Version reprices against the
// currently active configuration; a set Version pins that exact one.
type ApplyInput struct {
	Version *string
	ActorID *uuid.UUID
}

// Service recomputes shipment charges against a pricing configuration.
// Preview never writes; Apply persists the new charges and reconciles the
// payment summary against the existing ledger.
type Service interface {
	Preview(ctx context.Context, shipmentID uuid.UUID, version *string) (pricing.Quote, error)
	Apply(ctx context.Context, shipmentID uuid.UUID, input ApplyInput) (*models.Shipment, error)
}

type service struct {
	shipmentRepo shipments.Repository
	paymentRepo  payments.Repository
	pricingSvc   pricing.Service
	tx           TxRunner
	events       Emitter
	ledger       *metrics.LedgerMetrics
	logg         *logger.Logger
}

// NewService wires a reprice service. The metrics argument may be nil.
func NewService(shipmentRepo shipments.Repository, paymentRepo payments.Repository, pricingSvc pricing.Service, tx TxRunner, events Emitter, ledgerMetrics *metrics.LedgerMetrics, logg *logger.Logger) (Service, error) {
	if shipmentRepo == nil {
		return nil, fmt.Errorf("shipment repository required")
	}
	if paymentRepo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if pricingSvc == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		shipmentRepo: shipmentRepo,
		paymentRepo:  paymentRepo,
		pricingSvc:   pricingSvc,
		tx:           tx,
		events:       events,
		ledger:       ledgerMetrics,
		logg:         logg,
	}, nil
}

func (s *service) resolveConfig(ctx context.Context, version *string) (*models.PricingConfiguration, error) {
	if version != nil && *version != "" {
		return s.pricingSvc.ResolveVersion(ctx, *version)
	}
	return s.pricingSvc.ResolveActive(ctx)
}

func quoteInputs(shipment *models.Shipment) pricing.Inputs {
	return pricing.Inputs{
		Selection: boxes.Selection{
			Code:     shipment.BoxCode,
			LengthCm: shipment.CustomLengthCm,
			WidthCm:  shipment.CustomWidthCm,
			HeightCm: shipment.CustomHeightCm,
		},
		DeclaredWeightKg: shipment.DeclaredWeightKg,
		PieceCount:       shipment.PieceCount,
		ServiceType:      shipment.ServiceType,
		Zone:             shipment.Zone,
		IsCOD:            shipment.IsCOD,
		CODAmount:        shipment.CODAmount,
	}
}

func (s *service) Preview(ctx context.Context, shipmentID uuid.UUID, version *string) (pricing.Quote, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return pricing.Quote{}, err
	}
	if shipment == nil {
		return pricing.Quote{}, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}

	cfg, err := s.resolveConfig(ctx, version)
	if err != nil {
		return pricing.Quote{}, err
	}
	return pricing.ComputeTotals(quoteInputs(shipment), cfg)
}

func (s *service) Apply(ctx context.Context, shipmentID uuid.UUID, input ApplyInput) (*models.Shipment, error) {
	var shipment *models.Shipment

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shipmentRepo := s.shipmentRepo.WithTx(tx)
		paymentRepo := s.paymentRepo.WithTx(tx)

		loaded, err := shipmentRepo.FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if loaded == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		if loaded.Status == enums.ShipmentStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled shipments cannot be repriced")
		}

		cfg, err := s.resolveConfig(ctx, input.Version)
		if err != nil {
			return err
		}
		quote, err := pricing.ComputeTotals(quoteInputs(loaded), cfg)
		if err != nil {
			return err
		}
		quote.ApplyTo(loaded)

		// The ledger stays put; only the derived summary moves with the new
		// grand total.
		entries, err := paymentRepo.ListByShipmentID(ctx, shipmentID)
		if err != nil {
			return err
		}
		summary := payments.RecomputeSummary(loaded.GrandTotal, entries)
		loaded.TotalPaid = summary.TotalPaid
		loaded.Balance = summary.Balance
		loaded.PaymentStatus = summary.Status

		if err := shipmentRepo.Save(ctx, loaded); err != nil {
			return err
		}
		if err := shipmentRepo.AppendLog(ctx, &models.ShipmentLog{
			ShipmentID: shipmentID,
			Type:       enums.ShipmentLogTypeRepriced,
			Message:    fmt.Sprintf("repriced against %s, new total %s %s", cfg.Version, loaded.GrandTotal, loaded.Currency),
			ActorID:    input.ActorID,
		}); err != nil {
			return err
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShipmentRepriced,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipmentID,
			Actor:         actorRef(input.ActorID),
			Data: payloads.ShipmentRepricedEvent{
				ShipmentID:     shipmentID,
				TrackingNumber: loaded.TrackingNumber,
				PricingVersion: cfg.Version,
				GrandTotal:     loaded.GrandTotal,
				Currency:       loaded.Currency,
			},
		}); err != nil {
			return err
		}
		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInvoiceRequested,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipmentID,
			Actor:         actorRef(input.ActorID),
			Data: payloads.InvoiceRequestedEvent{
				ShipmentID:     shipmentID,
				TrackingNumber: loaded.TrackingNumber,
				Trigger:        "repriced",
			},
		}); err != nil {
			return err
		}

		shipment = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.IncReprice()
	if s.logg != nil {
		s.logg.Info(s.logg.WithShipmentID(ctx, shipmentID.String()), "shipment repriced")
	}
	return shipment, nil
}

func actorRef(actorID *uuid.UUID) *outbox.ActorRef {
	if actorID == nil {
		return nil
	}
	return &outbox.ActorRef{UserID: *actorID}
}
