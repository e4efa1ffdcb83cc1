package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// OutboxDLQ holds outbox events that failed permanently and were parked for
// manual inspection.
type OutboxDLQ struct {
	ID            uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID       uuid.UUID                  `gorm:"column:event_id;type:uuid;not null;uniqueIndex:ux_outbox_dlq_event_id"`
	EventType     enums.OutboxEventType      `gorm:"column:event_type;type:text;not null"`
	AggregateType enums.OutboxAggregateType  `gorm:"column:aggregate_type;type:text"`
	AggregateID   uuid.UUID                  `gorm:"column:aggregate_id;type:uuid"`
	Payload       json.RawMessage            `gorm:"column:payload;type:jsonb"`
	ErrorReason   enums.OutboxDLQErrorReason `gorm:"column:error_reason;type:text"`
	ErrorMessage  *string                    `gorm:"column:error_message"`
	AttemptCount  int                        `gorm:"column:attempt_count;not null;default:0"`
	FailedAt      time.Time                  `gorm:"column:failed_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (OutboxDLQ) TableName() string {
	return "outbox_dlq"
}
