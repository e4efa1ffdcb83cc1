package payments

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftparcel/courierdesk-backend/internal/shipments"
	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox"
	"github.com/swiftparcel/courierdesk-backend/pkg/pagination"
)

type fakeShipmentStore struct {
	shipments map[uuid.UUID]*models.Shipment
	logs      []models.ShipmentLog
}

func newFakeShipmentStore() *fakeShipmentStore {
	return &fakeShipmentStore{shipments: map[uuid.UUID]*models.Shipment{}}
}

func (f *fakeShipmentStore) WithTx(tx *gorm.DB) shipments.Repository { return f }

func (f *fakeShipmentStore) Create(ctx context.Context, shipment *models.Shipment) error {
	if shipment.ID == uuid.Nil {
		shipment.ID = uuid.New()
	}
	clone := *shipment
	f.shipments[shipment.ID] = &clone
	return nil
}

func (f *fakeShipmentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	if s, ok := f.shipments[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeShipmentStore) FindByIDWithLedger(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeShipmentStore) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	for _, s := range f.shipments {
		if s.TrackingNumber == trackingNumber {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeShipmentStore) Save(ctx context.Context, shipment *models.Shipment) error {
	stored, ok := f.shipments[shipment.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.LockVersion != shipment.LockVersion {
		return shipments.ErrStaleVersion
	}
	shipment.LockVersion++
	clone := *shipment
	f.shipments[shipment.ID] = &clone
	return nil
}

func (f *fakeShipmentStore) AppendLog(ctx context.Context, entry *models.ShipmentLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeShipmentStore) ListLogs(ctx context.Context, shipmentID uuid.UUID) ([]models.ShipmentLog, error) {
	var out []models.ShipmentLog
	for _, l := range f.logs {
		if l.ShipmentID == shipmentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeShipmentStore) List(ctx context.Context, filter shipments.ListFilter, params pagination.Params) ([]models.Shipment, pagination.Page, error) {
	return nil, pagination.Page{}, nil
}

type fakeLedgerRepo struct {
	entries []models.PaymentEntry
}

func (f *fakeLedgerRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeLedgerRepo) Create(ctx context.Context, entry *models.PaymentEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLedgerRepo) FindByID(ctx context.Context, shipmentID, entryID uuid.UUID) (*models.PaymentEntry, error) {
	for _, e := range f.entries {
		if e.ID == entryID && e.ShipmentID == shipmentID {
			clone := e
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeLedgerRepo) ListByShipmentID(ctx context.Context, shipmentID uuid.UUID) ([]models.PaymentEntry, error) {
	var out []models.PaymentEntry
	for _, e := range f.entries {
		if e.ShipmentID == shipmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) MarkVoided(ctx context.Context, entryID uuid.UUID, note *string) error {
	for i := range f.entries {
		if f.entries[i].ID == entryID {
			if f.entries[i].Voided {
				return gorm.ErrRecordNotFound
			}
			f.entries[i].Voided = true
			if note != nil {
				f.entries[i].Note = note
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEmitter) has(eventType enums.OutboxEventType) bool {
	for _, e := range f.events {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

type ledgerFixture struct {
	svc        Service
	store      *fakeShipmentStore
	ledger     *fakeLedgerRepo
	emitter    *fakeEmitter
	shipmentID uuid.UUID
	ownerID    uuid.UUID
	admin      Actor
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	store := newFakeShipmentStore()
	ledger := &fakeLedgerRepo{}
	emitter := &fakeEmitter{}

	svc, err := NewService(ledger, store, fakeTxRunner{}, emitter, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ownerID := uuid.New()
	shipment := &models.Shipment{
		OwnerID:    ownerID,
		GrandTotal: dec("150"),
		Balance:    dec("150"),
		Currency:   enums.CurrencyUSD,
		Status:     enums.ShipmentStatusCreated,
	}
	if err := store.Create(context.Background(), shipment); err != nil {
		t.Fatalf("seed shipment: %v", err)
	}

	return &ledgerFixture{
		svc:        svc,
		store:      store,
		ledger:     ledger,
		emitter:    emitter,
		shipmentID: shipment.ID,
		ownerID:    ownerID,
		admin:      Actor{ID: uuid.New(), Role: enums.ActorRoleAdmin},
	}
}

func TestAddPaymentPartial(t *testing.T) {
	fx := newLedgerFixture(t)
	ctx := context.Background()

	paid, summary, err := fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount:  dec("100"),
		Method:  enums.PaymentMethodCash,
		Channel: enums.PaymentChannelOffice,
	})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if !paid.Amount.Equal(dec("100")) {
		t.Fatalf("entry amount = %s, want 100", paid.Amount)
	}
	if !summary.Balance.Equal(dec("50")) || summary.Status != enums.PaymentStatusPartial {
		t.Fatalf("summary = %+v, want balance 50 partial", summary)
	}

	stored, _ := fx.store.FindByID(ctx, fx.shipmentID)
	if !stored.Balance.Equal(dec("50")) || stored.PaymentStatus != enums.PaymentStatusPartial {
		t.Fatalf("shipment summary not persisted: %+v", stored)
	}
	if !fx.emitter.has(enums.EventPaymentRecorded) {
		t.Fatal("expected payment_recorded event")
	}
	if len(fx.store.logs) != 1 || fx.store.logs[0].Type != enums.ShipmentLogTypePaymentAdded {
		t.Fatalf("expected one payment_added log, got %+v", fx.store.logs)
	}
}

func TestAddPaymentClampsOverpay(t *testing.T) {
	fx := newLedgerFixture(t)
	ctx := context.Background()

	if _, _, err := fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("100"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	}); err != nil {
		t.Fatalf("first AddPayment: %v", err)
	}

	entry, summary, err := fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("200"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	})
	if err != nil {
		t.Fatalf("second AddPayment: %v", err)
	}
	if !entry.Amount.Equal(dec("50")) {
		t.Fatalf("clamped amount = %s, want 50", entry.Amount)
	}
	if summary.Status != enums.PaymentStatusPaid || !summary.Balance.IsZero() {
		t.Fatalf("summary = %+v, want paid with zero balance", summary)
	}

	_, _, err = fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("10"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeLedgerDenied) {
		t.Fatalf("expected LEDGER_DENIED on fully paid ledger, got %v", err)
	}
}

func TestAddPaymentValidation(t *testing.T) {
	fx := newLedgerFixture(t)
	ctx := context.Background()

	_, _, err := fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("0"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for zero amount, got %v", err)
	}

	_, _, err = fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("10"), Method: "cheque", Channel: enums.PaymentChannelOffice,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for unknown method, got %v", err)
	}
}

func TestAddPaymentDeniedForCustomerCash(t *testing.T) {
	fx := newLedgerFixture(t)

	owner := Actor{ID: fx.ownerID, Role: enums.ActorRoleCustomer}
	_, _, err := fx.svc.AddPayment(context.Background(), owner, fx.shipmentID, AddPaymentInput{
		Amount: dec("10"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeLedgerDenied) {
		t.Fatalf("expected LEDGER_DENIED, got %v", err)
	}
}

func TestAddPaymentCancelledFence(t *testing.T) {
	fx := newLedgerFixture(t)
	fx.store.shipments[fx.shipmentID].Status = enums.ShipmentStatusCancelled

	_, _, err := fx.svc.AddPayment(context.Background(), fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("10"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeLedgerDenied) {
		t.Fatalf("expected LEDGER_DENIED on cancelled shipment, got %v", err)
	}
}

func TestVoidPaymentReopensBalance(t *testing.T) {
	fx := newLedgerFixture(t)
	ctx := context.Background()

	first, _, err := fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("100"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if _, _, err := fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("50"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	}); err != nil {
		t.Fatalf("second AddPayment: %v", err)
	}

	summary, err := fx.svc.VoidPayment(ctx, fx.admin, fx.shipmentID, VoidPaymentInput{
		EntryID: first.ID,
		Reason:  "entered twice",
	})
	if err != nil {
		t.Fatalf("VoidPayment: %v", err)
	}
	if !summary.TotalPaid.Equal(dec("50")) || !summary.Balance.Equal(dec("100")) {
		t.Fatalf("summary = %+v, want paid 50 balance 100", summary)
	}
	if summary.Status != enums.PaymentStatusPartial {
		t.Fatalf("status = %s, want partial", summary.Status)
	}

	voided, _ := fx.ledger.FindByID(ctx, fx.shipmentID, first.ID)
	if !voided.Voided {
		t.Fatal("entry should be flagged voided")
	}
	if voided.Note == nil || !strings.HasPrefix(*voided.Note, "voided: entered twice") {
		t.Fatalf("note = %v, want void reason prefix", voided.Note)
	}
	if !fx.emitter.has(enums.EventPaymentVoided) {
		t.Fatal("expected payment_voided event")
	}
}

func TestVoidPaymentIdempotencyGuard(t *testing.T) {
	fx := newLedgerFixture(t)
	ctx := context.Background()

	entry, _, err := fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("100"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	if _, err := fx.svc.VoidPayment(ctx, fx.admin, fx.shipmentID, VoidPaymentInput{EntryID: entry.ID}); err != nil {
		t.Fatalf("first VoidPayment: %v", err)
	}
	_, err = fx.svc.VoidPayment(ctx, fx.admin, fx.shipmentID, VoidPaymentInput{EntryID: entry.ID})
	if !pkgerrors.HasCode(err, pkgerrors.CodeAlreadyVoided) {
		t.Fatalf("expected ALREADY_VOIDED, got %v", err)
	}

	_, err = fx.svc.VoidPayment(ctx, fx.admin, fx.shipmentID, VoidPaymentInput{EntryID: uuid.New()})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for unknown entry, got %v", err)
	}
}

func TestVoidPaymentRequiresElevatedRole(t *testing.T) {
	fx := newLedgerFixture(t)
	ctx := context.Background()

	entry, _, err := fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("100"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	owner := Actor{ID: fx.ownerID, Role: enums.ActorRoleCustomer}
	_, err = fx.svc.VoidPayment(ctx, owner, fx.shipmentID, VoidPaymentInput{EntryID: entry.ID})
	if !pkgerrors.HasCode(err, pkgerrors.CodeLedgerDenied) {
		t.Fatalf("expected LEDGER_DENIED, got %v", err)
	}
}

func TestSettleBalance(t *testing.T) {
	fx := newLedgerFixture(t)
	ctx := context.Background()

	if _, _, err := fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("100"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	}); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	entry, summary, err := fx.svc.SettleBalance(ctx, fx.admin, fx.shipmentID, SettleBalanceInput{
		Method:  enums.PaymentMethodBank,
		Channel: enums.PaymentChannelOnline,
	})
	if err != nil {
		t.Fatalf("SettleBalance: %v", err)
	}
	if !entry.Amount.Equal(dec("50")) {
		t.Fatalf("settle amount = %s, want exact balance 50", entry.Amount)
	}
	if summary.Status != enums.PaymentStatusPaid || !summary.Balance.IsZero() {
		t.Fatalf("summary = %+v, want paid with zero balance", summary)
	}
	if !fx.emitter.has(enums.EventBalanceSettled) {
		t.Fatal("expected balance_settled event")
	}

	_, _, err = fx.svc.SettleBalance(ctx, fx.admin, fx.shipmentID, SettleBalanceInput{
		Method:  enums.PaymentMethodCash,
		Channel: enums.PaymentChannelOffice,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNothingToSettle) {
		t.Fatalf("expected NOTHING_TO_SETTLE, got %v", err)
	}
}

func TestGetLedgerRecomputesSummary(t *testing.T) {
	fx := newLedgerFixture(t)
	ctx := context.Background()

	if _, _, err := fx.svc.AddPayment(ctx, fx.admin, fx.shipmentID, AddPaymentInput{
		Amount: dec("100"), Method: enums.PaymentMethodCash, Channel: enums.PaymentChannelOffice,
	}); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	entries, summary, err := fx.svc.GetLedger(ctx, fx.admin, fx.shipmentID)
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if !summary.Balance.Equal(dec("50")) {
		t.Fatalf("balance = %s, want 50", summary.Balance)
	}

	stranger := Actor{ID: uuid.New(), Role: enums.ActorRoleCustomer}
	if _, _, err := fx.svc.GetLedger(ctx, stranger, fx.shipmentID); !pkgerrors.HasCode(err, pkgerrors.CodeLedgerDenied) {
		t.Fatalf("expected LEDGER_DENIED for stranger, got %v", err)
	}
}

func TestChangePaymentMethod(t *testing.T) {
	fx := newLedgerFixture(t)
	ctx := context.Background()

	method := enums.PaymentMethodOnline
	channel := enums.PaymentChannelOnline
	owner := Actor{ID: fx.ownerID, Role: enums.ActorRoleCustomer}

	updated, err := fx.svc.ChangePaymentMethod(ctx, owner, fx.shipmentID, ChangeMethodInput{
		Method:  &method,
		Channel: &channel,
	})
	if err != nil {
		t.Fatalf("ChangePaymentMethod: %v", err)
	}
	if updated.PreferredMethod != enums.PaymentMethodOnline || updated.PreferredChannel != enums.PaymentChannelOnline {
		t.Fatalf("preference = %s/%s, want online/online", updated.PreferredMethod, updated.PreferredChannel)
	}

	fx.store.shipments[fx.shipmentID].PaymentStatus = enums.PaymentStatusPaid
	cash := enums.PaymentMethodCash
	_, err = fx.svc.ChangePaymentMethod(ctx, owner, fx.shipmentID, ChangeMethodInput{Method: &cash})
	if !pkgerrors.HasCode(err, pkgerrors.CodeLedgerDenied) {
		t.Fatalf("expected LEDGER_DENIED once paid, got %v", err)
	}
}
