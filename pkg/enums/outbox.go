package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateShipment     OutboxAggregateType = "shipment"
	AggregatePayment      OutboxAggregateType = "payment"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateShipment,
	AggregatePayment,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventShipmentCreated   OutboxEventType = "shipment_created"
	EventShipmentRepriced  OutboxEventType = "shipment_repriced"
	EventShipmentCancelled OutboxEventType = "shipment_cancelled"
	EventStatusChanged     OutboxEventType = "shipment_status_changed"
	EventPaymentRecorded   OutboxEventType = "payment_recorded"
	EventPaymentVoided     OutboxEventType = "payment_voided"
	EventBalanceSettled    OutboxEventType = "balance_settled"
	EventInvoiceRequested  OutboxEventType = "invoice_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventShipmentCreated,
	EventShipmentRepriced,
	EventShipmentCancelled,
	EventStatusChanged,
	EventPaymentRecorded,
	EventPaymentVoided,
	EventBalanceSettled,
	EventInvoiceRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxDLQErrorReason classifies why an event was parked in the DLQ.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)
