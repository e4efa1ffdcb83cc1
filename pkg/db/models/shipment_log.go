package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// ShipmentLog is an append-only audit trail entry for a shipment.
type ShipmentLog struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShipmentID uuid.UUID             `gorm:"column:shipment_id;type:uuid;not null;index:ix_shipment_logs_shipment_id"`
	Type       enums.ShipmentLogType `gorm:"column:type;type:text;not null"`
	Message    string                `gorm:"column:message;not null"`
	ActorID    *uuid.UUID            `gorm:"column:actor_id;type:uuid"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
}
