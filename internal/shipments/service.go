package shipments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/internal/boxes"
	"github.com/swiftparcel/courierdesk-backend/internal/pricing"
	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox/payloads"
	"github.com/swiftparcel/courierdesk-backend/pkg/pagination"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Emitter records domain events in the same transaction as the state change.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns the shipment lifecycle: intake with auto-pricing, guarded
// status transitions, and idempotent cancellation.
type Service interface {
	Create(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Shipment, pagination.Page, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*models.Shipment, error)
	Cancel(ctx context.Context, id uuid.UUID, input CancelInput) (*models.Shipment, error)
}

type service struct {
	repo       Repository
	pricingSvc pricing.Service
	tx         TxRunner
	events     Emitter
	logg       *logger.Logger
}

// NewService wires a shipment service.
func NewService(repo Repository, pricingSvc pricing.Service, tx TxRunner, events Emitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipment repository required")
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
	return &service{repo: repo, pricingSvc: pricingSvc, tx: tx, events: events, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error) {
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if input.DeclaredWeightKg.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "declared weight cannot be negative")
	}
	if input.PieceCount <= 0 {
		input.PieceCount = 1
	}
	if input.ServiceType == "" {
		input.ServiceType = "standard"
	}
	if input.PreferredMethod == "" {
		input.PreferredMethod = enums.PaymentMethodCash
	}
	if !input.PreferredMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PreferredMethod))
	}
	if input.PreferredChannel == "" {
		input.PreferredChannel = enums.PaymentChannelOffice
	}
	if !input.PreferredChannel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment channel %q", input.PreferredChannel))
	}

	selection := boxes.Selection{
		Code:     input.BoxCode,
		LengthCm: input.CustomLengthCm,
		WidthCm:  input.CustomWidthCm,
		HeightCm: input.CustomHeightCm,
	}
	// Reject bad selections up front, before touching pricing.
	if _, err := boxes.Resolve(selection); err != nil {
		return nil, err
	}

	shipment := &models.Shipment{
		TrackingNumber:   newTrackingNumber(),
		OwnerID:          input.OwnerID,
		PickupAgentID:    input.PickupAgentID,
		DeliveryAgentID:  input.DeliveryAgentID,
		BoxCode:          input.BoxCode,
		CustomLengthCm:   input.CustomLengthCm,
		CustomWidthCm:    input.CustomWidthCm,
		CustomHeightCm:   input.CustomHeightCm,
		DeclaredWeightKg: input.DeclaredWeightKg,
		PieceCount:       input.PieceCount,
		ServiceType:      input.ServiceType,
		Zone:             input.Zone,
		IsCOD:            input.IsCOD,
		CODAmount:        input.CODAmount,
		Currency:         enums.CurrencyUSD,
		Status:           enums.ShipmentStatusCreated,
		PreferredMethod:  input.PreferredMethod,
		PreferredChannel: input.PreferredChannel,
		PaymentStatus:    enums.PaymentStatusPending,
	}

	// Auto-price when a configuration is active; otherwise the shipment is
	// flagged for later repricing instead of failing intake.
	cfg, err := s.pricingSvc.ResolveActive(ctx)
	switch {
	case err == nil:
		quote, quoteErr := pricing.ComputeTotals(pricing.Inputs{
			Selection:        selection,
			DeclaredWeightKg: input.DeclaredWeightKg,
			PieceCount:       input.PieceCount,
			ServiceType:      input.ServiceType,
			Zone:             input.Zone,
			IsCOD:            input.IsCOD,
			CODAmount:        input.CODAmount,
		}, cfg)
		if quoteErr != nil {
			return nil, quoteErr
		}
		quote.ApplyTo(shipment)
		shipment.Balance = shipment.GrandTotal
	case pkgerrors.HasCode(err, pkgerrors.CodeNoActivePricing):
		shipment.NeedsReprice = true
	default:
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, shipment); err != nil {
			return err
		}
		if err := txRepo.AppendLog(ctx, &models.ShipmentLog{
			ShipmentID: shipment.ID,
			Type:       enums.ShipmentLogTypeCreated,
			Message:    fmt.Sprintf("shipment registered with tracking number %s", shipment.TrackingNumber),
			ActorID:    input.ActorID,
		}); err != nil {
			return err
		}
		if err := s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShipmentCreated,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Actor:         actorRef(input.ActorID),
			Data: payloads.ShipmentCreatedEvent{
				ShipmentID:     shipment.ID,
				TrackingNumber: shipment.TrackingNumber,
				OwnerID:        shipment.OwnerID,
				GrandTotal:     shipment.GrandTotal,
				Currency:       shipment.Currency,
				NeedsReprice:   shipment.NeedsReprice,
			},
		}); err != nil {
			return err
		}
		if !shipment.NeedsReprice {
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventInvoiceRequested,
				AggregateType: enums.AggregateShipment,
				AggregateID:   shipment.ID,
				Actor:         actorRef(input.ActorID),
				Data: payloads.InvoiceRequestedEvent{
					ShipmentID:     shipment.ID,
					TrackingNumber: shipment.TrackingNumber,
					Trigger:        "created",
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithShipmentID(ctx, shipment.ID.String()), "shipment created")
	}
	return shipment, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	shipment, err := s.repo.FindByIDWithLedger(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}
	return shipment, nil
}

func (s *service) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	shipment, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}
	return shipment, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Shipment, pagination.Page, error) {
	return s.repo.List(ctx, filter, params)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*models.Shipment, error) {
	if input.Status == enums.ShipmentStatusCancelled {
		return s.Cancel(ctx, id, CancelInput{ActorID: input.ActorID})
	}

	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}

	if err := AssertTransition(shipment.Status, input.Status); err != nil {
		return nil, err
	}

	from := shipment.Status
	shipment.Status = input.Status

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Save(ctx, shipment); err != nil {
			return err
		}
		if err := txRepo.AppendLog(ctx, &models.ShipmentLog{
			ShipmentID: shipment.ID,
			Type:       enums.ShipmentLogTypeStatusChanged,
			Message:    fmt.Sprintf("status changed from %s to %s", from, input.Status),
			ActorID:    input.ActorID,
		}); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStatusChanged,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Actor:         actorRef(input.ActorID),
			Data: payloads.StatusChangedEvent{
				ShipmentID: shipment.ID,
				From:       from,
				To:         input.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// Cancel is idempotent: cancelling an already-cancelled shipment returns the
// current state without error. Cancellation clears the reprice flag and
// stamps who cancelled, when, and why.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, input CancelInput) (*models.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}
	if shipment.Status == enums.ShipmentStatusCancelled {
		return shipment, nil
	}

	if err := AssertTransition(shipment.Status, enums.ShipmentStatusCancelled); err != nil {
		return nil, err
	}

	now := time.Now()
	shipment.Status = enums.ShipmentStatusCancelled
	shipment.NeedsReprice = false
	shipment.CancelledAt = &now
	shipment.CancelledBy = input.ActorID
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		shipment.CancelReason = &reason
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Save(ctx, shipment); err != nil {
			return err
		}
		if err := txRepo.AppendLog(ctx, &models.ShipmentLog{
			ShipmentID: shipment.ID,
			Type:       enums.ShipmentLogTypeCancelled,
			Message:    cancelLogMessage(input.Reason),
			ActorID:    input.ActorID,
		}); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShipmentCancelled,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Actor:         actorRef(input.ActorID),
			Data: payloads.ShipmentCancelledEvent{
				ShipmentID:  shipment.ID,
				Reason:      strings.TrimSpace(input.Reason),
				CancelledAt: now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithShipmentID(ctx, shipment.ID.String()), "shipment cancelled")
	}
	return shipment, nil
}

func cancelLogMessage(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "shipment cancelled"
	}
	return fmt.Sprintf("shipment cancelled: %s", reason)
}

func newTrackingNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CD-" + strings.ToUpper(raw[:12])
}

func actorRef(actorID *uuid.UUID) *outbox.ActorRef {
	if actorID == nil {
		return nil
	}
	return &outbox.ActorRef{UserID: *actorID}
}
