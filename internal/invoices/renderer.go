package invoices

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// Snapshot is the frozen charge state an invoice is rendered from. It is
// built from the shipment at dispatch time so a later reprice never rewrites
// a document already sent.
type Snapshot struct {
	TrackingNumber string
	Trigger        string

	Currency           enums.Currency
	VolumetricWeightKg decimal.Decimal
	ChargeableWeightKg decimal.Decimal

	BaseCharge    decimal.Decimal
	ServiceCharge decimal.Decimal
	FuelSurcharge decimal.Decimal
	OtherFees     decimal.Decimal
	CODFee        decimal.Decimal
	Tax           decimal.Decimal
	GrandTotal    decimal.Decimal

	TotalPaid decimal.Decimal
	Balance   decimal.Decimal
	Status    enums.PaymentStatus

	GeneratedAt time.Time
}

// NewSnapshot copies the invoice-relevant fields off a shipment.
func NewSnapshot(shipment *models.Shipment, trigger string) Snapshot {
	return Snapshot{
		TrackingNumber:     shipment.TrackingNumber,
		Trigger:            trigger,
		Currency:           shipment.Currency,
		VolumetricWeightKg: shipment.VolumetricWeightKg,
		ChargeableWeightKg: shipment.ChargeableWeightKg,
		BaseCharge:         shipment.BaseCharge,
		ServiceCharge:      shipment.ServiceCharge,
		FuelSurcharge:      shipment.FuelSurcharge,
		OtherFees:          shipment.OtherFees,
		CODFee:             shipment.CODFee,
		Tax:                shipment.Tax,
		GrandTotal:         shipment.GrandTotal,
		TotalPaid:          shipment.TotalPaid,
		Balance:            shipment.Balance,
		Status:             shipment.PaymentStatus,
		GeneratedAt:        time.Now().UTC(),
	}
}

// Renderer turns a snapshot into a deliverable document.
type Renderer interface {
	Render(ctx context.Context, snapshot Snapshot) ([]byte, error)
}

const invoiceTemplate = `INVOICE {{.TrackingNumber}}
Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}} ({{.Trigger}})

Chargeable weight: {{.ChargeableWeightKg}} kg (volumetric {{.VolumetricWeightKg}} kg)

Base charge      {{.Currency}} {{.BaseCharge}}
Service charge   {{.Currency}} {{.ServiceCharge}}
Fuel surcharge   {{.Currency}} {{.FuelSurcharge}}
Other fees       {{.Currency}} {{.OtherFees}}
COD fee          {{.Currency}} {{.CODFee}}
Tax              {{.Currency}} {{.Tax}}
-----------------------------------------
TOTAL            {{.Currency}} {{.GrandTotal}}

Paid             {{.Currency}} {{.TotalPaid}}
Balance due      {{.Currency}} {{.Balance}}
Payment status   {{.Status}}
`

type templateRenderer struct {
	tmpl *template.Template
}

// NewTemplateRenderer returns the plain-text invoice renderer.
func NewTemplateRenderer() (Renderer, error) {
	tmpl, err := template.New("invoice").Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing invoice template: %w", err)
	}
	return &templateRenderer{tmpl: tmpl}, nil
}

func (r *templateRenderer) Render(ctx context.Context, snapshot Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, snapshot); err != nil {
		return nil, fmt.Errorf("rendering invoice %s: %w", snapshot.TrackingNumber, err)
	}
	return buf.Bytes(), nil
}
