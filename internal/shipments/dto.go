package shipments

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// CreateShipmentInput captures everything shipment intake needs.
type CreateShipmentInput struct {
	OwnerID         uuid.UUID  `json:"owner_id" validate:"required"`
	PickupAgentID   *uuid.UUID `json:"pickup_agent_id"`
	DeliveryAgentID *uuid.UUID `json:"delivery_agent_id"`

	BoxCode        *string          `json:"box_code"`
	CustomLengthCm *decimal.Decimal `json:"custom_length_cm"`
	CustomWidthCm  *decimal.Decimal `json:"custom_width_cm"`
	CustomHeightCm *decimal.Decimal `json:"custom_height_cm"`

	DeclaredWeightKg decimal.Decimal `json:"declared_weight_kg"`
	PieceCount       int             `json:"piece_count"`
	ServiceType      string          `json:"service_type"`
	Zone             *string         `json:"zone"`

	IsCOD     bool            `json:"is_cod"`
	CODAmount decimal.Decimal `json:"cod_amount"`

	PreferredMethod  enums.PaymentMethod  `json:"preferred_method"`
	PreferredChannel enums.PaymentChannel `json:"preferred_channel"`

	ActorID *uuid.UUID `json:"-"`
}

// UpdateStatusInput carries a lifecycle transition request.
type UpdateStatusInput struct {
	Status  enums.ShipmentStatus `json:"status" validate:"required"`
	ActorID *uuid.UUID           `json:"-"`
}

// CancelInput carries a cancellation request.
type CancelInput struct {
	Reason  string     `json:"reason"`
	ActorID *uuid.UUID `json:"-"`
}
