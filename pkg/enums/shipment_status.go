package enums

import "fmt"

// ShipmentStatus tracks the lifecycle of a shipment.
type ShipmentStatus string

const (
	ShipmentStatusCreated          ShipmentStatus = "created"
	ShipmentStatusPickupScheduled  ShipmentStatus = "pickup_scheduled"
	ShipmentStatusPickedUp         ShipmentStatus = "picked_up"
	ShipmentStatusAtOriginHub      ShipmentStatus = "at_origin_hub"
	ShipmentStatusInTransit        ShipmentStatus = "in_transit"
	ShipmentStatusAtDestinationHub ShipmentStatus = "at_destination_hub"
	ShipmentStatusOutForDelivery   ShipmentStatus = "out_for_delivery"
	ShipmentStatusDelivered        ShipmentStatus = "delivered"
	ShipmentStatusOnHold           ShipmentStatus = "on_hold"
	ShipmentStatusReturnToSender   ShipmentStatus = "return_to_sender"
	ShipmentStatusCancelled        ShipmentStatus = "cancelled"
)

var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusCreated,
	ShipmentStatusPickupScheduled,
	ShipmentStatusPickedUp,
	ShipmentStatusAtOriginHub,
	ShipmentStatusInTransit,
	ShipmentStatusAtDestinationHub,
	ShipmentStatusOutForDelivery,
	ShipmentStatusDelivered,
	ShipmentStatusOnHold,
	ShipmentStatusReturnToSender,
	ShipmentStatusCancelled,
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentStatus.
func (s ShipmentStatus) IsValid() bool {
	for _, candidate := range validShipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentStatusDelivered || s == ShipmentStatusCancelled
}

// ParseShipmentStatus converts raw input into a ShipmentStatus.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	for _, candidate := range validShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment status %q", value)
}
