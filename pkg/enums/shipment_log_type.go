package enums

import "fmt"

// ShipmentLogType categorizes audit trail entries on a shipment.
type ShipmentLogType string

const (
	ShipmentLogTypeCreated       ShipmentLogType = "created"
	ShipmentLogTypeStatusChanged ShipmentLogType = "status_changed"
	ShipmentLogTypeRepriced      ShipmentLogType = "repriced"
	ShipmentLogTypePaymentAdded  ShipmentLogType = "payment_added"
	ShipmentLogTypePaymentVoided ShipmentLogType = "payment_voided"
	ShipmentLogTypeSettled       ShipmentLogType = "settled"
	ShipmentLogTypeCancelled     ShipmentLogType = "cancelled"
)

var validShipmentLogTypes = []ShipmentLogType{
	ShipmentLogTypeCreated,
	ShipmentLogTypeStatusChanged,
	ShipmentLogTypeRepriced,
	ShipmentLogTypePaymentAdded,
	ShipmentLogTypePaymentVoided,
	ShipmentLogTypeSettled,
	ShipmentLogTypeCancelled,
}

// IsValid reports whether the value is a known ShipmentLogType.
func (t ShipmentLogType) IsValid() bool {
	for _, candidate := range validShipmentLogTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseShipmentLogType converts raw input into a ShipmentLogType.
func ParseShipmentLogType(value string) (ShipmentLogType, error) {
	for _, candidate := range validShipmentLogTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment log type %q", value)
}
