package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/internal/shipments"
	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
	"github.com/swiftparcel/courierdesk-backend/pkg/metrics"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox/payloads"
	"github.com/swiftparcel/courierdesk-backend/pkg/types"
)

var minPaymentAmount = decimal.NewFromFloat(0.01)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Emitter records domain events in the same transaction as the state change.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns the payment ledger. Every mutation recomputes the summary from
// the surviving entries inside the same transaction, so the stored summary can
// never drift from the ledger.
type Service interface {
	GetLedger(ctx context.Context, actor Actor, shipmentID uuid.UUID) ([]models.PaymentEntry, types.PaymentSummary, error)
	AddPayment(ctx context.Context, actor Actor, shipmentID uuid.UUID, input AddPaymentInput) (*models.PaymentEntry, types.PaymentSummary, error)
	VoidPayment(ctx context.Context, actor Actor, shipmentID uuid.UUID, input VoidPaymentInput) (types.PaymentSummary, error)
	SettleBalance(ctx context.Context, actor Actor, shipmentID uuid.UUID, input SettleBalanceInput) (*models.PaymentEntry, types.PaymentSummary, error)
	ChangePaymentMethod(ctx context.Context, actor Actor, shipmentID uuid.UUID, input ChangeMethodInput) (*models.Shipment, error)
}

type service struct {
	repo         Repository
	shipmentRepo shipments.Repository
	tx           TxRunner
	events       Emitter
	ledger       *metrics.LedgerMetrics
	logg         *logger.Logger
}

// NewService wires a payment ledger service. The metrics argument may be nil.
func NewService(repo Repository, shipmentRepo shipments.Repository, tx TxRunner, events Emitter, ledgerMetrics *metrics.LedgerMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if shipmentRepo == nil {
		return nil, fmt.Errorf("shipment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{repo: repo, shipmentRepo: shipmentRepo, tx: tx, events: events, ledger: ledgerMetrics, logg: logg}, nil
}

func (s *service) loadShipment(ctx context.Context, shipmentID uuid.UUID) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}
	return shipment, nil
}

func (s *service) GetLedger(ctx context.Context, actor Actor, shipmentID uuid.UUID) ([]models.PaymentEntry, types.PaymentSummary, error) {
	shipment, err := s.loadShipment(ctx, shipmentID)
	if err != nil {
		return nil, types.PaymentSummary{}, err
	}
	if decision := CanView(actor, shipment); !decision.Allowed {
		s.ledger.IncDenial("view")
		return nil, types.PaymentSummary{}, pkgerrors.New(pkgerrors.CodeLedgerDenied, decision.Reason)
	}

	entries, err := s.repo.ListByShipmentID(ctx, shipmentID)
	if err != nil {
		return nil, types.PaymentSummary{}, err
	}
	// The summary is recomputed from the ledger on every read; the stored
	// columns are a cache, not the source of truth.
	return entries, RecomputeSummary(shipment.GrandTotal, entries), nil
}

func (s *service) AddPayment(ctx context.Context, actor Actor, shipmentID uuid.UUID, input AddPaymentInput) (*models.PaymentEntry, types.PaymentSummary, error) {
	if !input.Method.IsValid() {
		return nil, types.PaymentSummary{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.Method))
	}
	if !input.Channel.IsValid() {
		return nil, types.PaymentSummary{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment channel %q", input.Channel))
	}
	amount := input.Amount.Round(2)
	if amount.LessThan(minPaymentAmount) {
		return nil, types.PaymentSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must be at least 0.01")
	}
	return s.appendEntry(ctx, actor, shipmentID, amount, input.Method, input.Channel, input.TxnRef, input.Note, false)
}

func (s *service) SettleBalance(ctx context.Context, actor Actor, shipmentID uuid.UUID, input SettleBalanceInput) (*models.PaymentEntry, types.PaymentSummary, error) {
	if !input.Method.IsValid() {
		return nil, types.PaymentSummary{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.Method))
	}
	if !input.Channel.IsValid() {
		return nil, types.PaymentSummary{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment channel %q", input.Channel))
	}
	// The settle amount is resolved inside the transaction from the current
	// balance; passing zero asks appendEntry to pay it off exactly.
	return s.appendEntry(ctx, actor, shipmentID, decimal.Zero, input.Method, input.Channel, input.TxnRef, nil, true)
}

func (s *service) appendEntry(ctx context.Context, actor Actor, shipmentID uuid.UUID, amount decimal.Decimal, method enums.PaymentMethod, channel enums.PaymentChannel, txnRef, note *string, settle bool) (*models.PaymentEntry, types.PaymentSummary, error) {
	var (
		entry   *models.PaymentEntry
		summary types.PaymentSummary
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shipmentRepo := s.shipmentRepo.WithTx(tx)
		paymentRepo := s.repo.WithTx(tx)

		shipment, err := shipmentRepo.FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if shipment == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		if decision := CanAdd(actor, shipment, method); !decision.Allowed {
			s.ledger.IncDenial("add")
			return pkgerrors.New(pkgerrors.CodeLedgerDenied, decision.Reason)
		}

		entries, err := paymentRepo.ListByShipmentID(ctx, shipmentID)
		if err != nil {
			return err
		}
		current := RecomputeSummary(shipment.GrandTotal, entries)
		if !current.Balance.IsPositive() {
			if settle {
				return pkgerrors.New(pkgerrors.CodeNothingToSettle, "balance is already zero")
			}
			return pkgerrors.New(pkgerrors.CodeLedgerDenied, "nothing left to pay on this shipment")
		}

		// Overpayment clamps to the remaining balance rather than erroring.
		applied := amount
		if settle || applied.GreaterThan(current.Balance) {
			applied = current.Balance
		}

		collectedBy := actor.ID
		entry = &models.PaymentEntry{
			ShipmentID:  shipmentID,
			Amount:      applied,
			Method:      method,
			Channel:     channel,
			CollectedBy: &collectedBy,
			TxnRef:      txnRef,
			Note:        note,
		}
		if err := paymentRepo.Create(ctx, entry); err != nil {
			return err
		}

		summary = RecomputeSummary(shipment.GrandTotal, append(entries, *entry))
		applySummary(shipment, summary)
		if err := shipmentRepo.Save(ctx, shipment); err != nil {
			return err
		}

		logType := enums.ShipmentLogTypePaymentAdded
		logMsg := fmt.Sprintf("payment of %s %s recorded via %s", entry.Amount, shipment.Currency, method)
		if settle {
			logType = enums.ShipmentLogTypeSettled
			logMsg = fmt.Sprintf("balance of %s %s settled via %s", entry.Amount, shipment.Currency, method)
		}
		if err := shipmentRepo.AppendLog(ctx, &models.ShipmentLog{
			ShipmentID: shipmentID,
			Type:       logType,
			Message:    logMsg,
			ActorID:    &collectedBy,
		}); err != nil {
			return err
		}

		if settle {
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventBalanceSettled,
				AggregateType: enums.AggregatePayment,
				AggregateID:   shipmentID,
				Actor:         &outbox.ActorRef{UserID: actor.ID, Role: actor.Role.String()},
				Data: payloads.BalanceSettledEvent{
					ShipmentID: shipmentID,
					EntryID:    entry.ID,
					Amount:     entry.Amount,
				},
			})
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRecorded,
			AggregateType: enums.AggregatePayment,
			AggregateID:   shipmentID,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: actor.Role.String()},
			Data: payloads.PaymentRecordedEvent{
				ShipmentID: shipmentID,
				EntryID:    entry.ID,
				Amount:     entry.Amount,
				Method:     method,
				Balance:    summary.Balance,
				Status:     summary.Status,
			},
		})
	})
	if err != nil {
		return nil, types.PaymentSummary{}, err
	}

	s.ledger.IncPayment(method.String())
	if s.logg != nil {
		s.logg.Info(s.logg.WithShipmentID(ctx, shipmentID.String()), "payment recorded")
	}
	return entry, summary, nil
}

func (s *service) VoidPayment(ctx context.Context, actor Actor, shipmentID uuid.UUID, input VoidPaymentInput) (types.PaymentSummary, error) {
	if input.EntryID == uuid.Nil {
		return types.PaymentSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "entry id is required")
	}

	var summary types.PaymentSummary
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shipmentRepo := s.shipmentRepo.WithTx(tx)
		paymentRepo := s.repo.WithTx(tx)

		shipment, err := shipmentRepo.FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if shipment == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		if decision := CanVoid(actor, shipment); !decision.Allowed {
			s.ledger.IncDenial("void")
			return pkgerrors.New(pkgerrors.CodeLedgerDenied, decision.Reason)
		}

		entry, err := paymentRepo.FindByID(ctx, shipmentID, input.EntryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payment entry not found")
		}
		if entry.Voided {
			return pkgerrors.New(pkgerrors.CodeAlreadyVoided, "payment entry is already voided")
		}

		note := voidNote(input.Reason, entry.Note)
		if err := paymentRepo.MarkVoided(ctx, entry.ID, &note); err != nil {
			return err
		}

		entries, err := paymentRepo.ListByShipmentID(ctx, shipmentID)
		if err != nil {
			return err
		}
		summary = RecomputeSummary(shipment.GrandTotal, entries)
		applySummary(shipment, summary)
		if err := shipmentRepo.Save(ctx, shipment); err != nil {
			return err
		}

		actorID := actor.ID
		if err := shipmentRepo.AppendLog(ctx, &models.ShipmentLog{
			ShipmentID: shipmentID,
			Type:       enums.ShipmentLogTypePaymentVoided,
			Message:    fmt.Sprintf("payment of %s %s voided", entry.Amount, shipment.Currency),
			ActorID:    &actorID,
		}); err != nil {
			return err
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentVoided,
			AggregateType: enums.AggregatePayment,
			AggregateID:   shipmentID,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: actor.Role.String()},
			Data: payloads.PaymentVoidedEvent{
				ShipmentID: shipmentID,
				EntryID:    entry.ID,
				Amount:     entry.Amount,
				Balance:    summary.Balance,
				Status:     summary.Status,
			},
		})
	})
	if err != nil {
		return types.PaymentSummary{}, err
	}
	s.ledger.IncVoid()
	return summary, nil
}

func (s *service) ChangePaymentMethod(ctx context.Context, actor Actor, shipmentID uuid.UUID, input ChangeMethodInput) (*models.Shipment, error) {
	if input.Method == nil && input.Channel == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to change")
	}
	if input.Method != nil && !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", *input.Method))
	}
	if input.Channel != nil && !input.Channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment channel %q", *input.Channel))
	}

	var shipment *models.Shipment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shipmentRepo := s.shipmentRepo.WithTx(tx)

		loaded, err := shipmentRepo.FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if loaded == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		if decision := CanChangeMethod(actor, loaded); !decision.Allowed {
			s.ledger.IncDenial("change_method")
			return pkgerrors.New(pkgerrors.CodeLedgerDenied, decision.Reason)
		}

		if input.Method != nil {
			loaded.PreferredMethod = *input.Method
		}
		if input.Channel != nil {
			loaded.PreferredChannel = *input.Channel
		}
		if err := shipmentRepo.Save(ctx, loaded); err != nil {
			return err
		}
		shipment = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

func voidNote(reason string, existing *string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "voided"
	} else {
		reason = "voided: " + reason
	}
	if existing != nil && strings.TrimSpace(*existing) != "" {
		return reason + " | " + *existing
	}
	return reason
}
