package shipments

import (
	"fmt"

	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// transitions is the lifecycle table. Terminal states carry no entry, so any
// transition out of them is rejected.
var transitions = map[enums.ShipmentStatus][]enums.ShipmentStatus{
	enums.ShipmentStatusCreated: {
		enums.ShipmentStatusPickupScheduled,
		enums.ShipmentStatusCancelled,
	},
	enums.ShipmentStatusPickupScheduled: {
		enums.ShipmentStatusPickedUp,
		enums.ShipmentStatusOnHold,
		enums.ShipmentStatusCancelled,
	},
	enums.ShipmentStatusPickedUp: {
		enums.ShipmentStatusAtOriginHub,
		enums.ShipmentStatusOnHold,
		enums.ShipmentStatusReturnToSender,
	},
	enums.ShipmentStatusAtOriginHub: {
		enums.ShipmentStatusInTransit,
		enums.ShipmentStatusOnHold,
		enums.ShipmentStatusReturnToSender,
	},
	enums.ShipmentStatusInTransit: {
		enums.ShipmentStatusAtDestinationHub,
		enums.ShipmentStatusOnHold,
		enums.ShipmentStatusReturnToSender,
	},
	enums.ShipmentStatusAtDestinationHub: {
		enums.ShipmentStatusOutForDelivery,
		enums.ShipmentStatusOnHold,
		enums.ShipmentStatusReturnToSender,
	},
	enums.ShipmentStatusOutForDelivery: {
		enums.ShipmentStatusDelivered,
		enums.ShipmentStatusOnHold,
		enums.ShipmentStatusReturnToSender,
	},
	enums.ShipmentStatusOnHold: {
		enums.ShipmentStatusPickedUp,
		enums.ShipmentStatusAtOriginHub,
		enums.ShipmentStatusInTransit,
		enums.ShipmentStatusAtDestinationHub,
		enums.ShipmentStatusOutForDelivery,
		enums.ShipmentStatusCancelled,
		enums.ShipmentStatusReturnToSender,
	},
	enums.ShipmentStatusReturnToSender: {
		enums.ShipmentStatusAtOriginHub,
		enums.ShipmentStatusOutForDelivery,
		enums.ShipmentStatusDelivered,
	},
}

// AllowedTransitions returns the legal next states for a status. Terminal
// states return an empty slice.
func AllowedTransitions(from enums.ShipmentStatus) []enums.ShipmentStatus {
	allowed := transitions[from]
	out := make([]enums.ShipmentStatus, len(allowed))
	copy(out, allowed)
	return out
}

// AssertTransition checks that the requested status change is legal. The
// returned error carries the allowed set so callers can guide the client.
func AssertTransition(current, requested enums.ShipmentStatus) error {
	if !requested.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shipment status %q", requested))
	}
	for _, candidate := range transitions[current] {
		if candidate == requested {
			return nil
		}
	}
	return pkgerrors.New(
		pkgerrors.CodeIllegalTransition,
		fmt.Sprintf("cannot move shipment from %s to %s", current, requested),
	).WithDetails(map[string]any{
		"current": current,
		"allowed": AllowedTransitions(current),
	})
}
