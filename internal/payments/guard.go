package payments

import (
	"github.com/google/uuid"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// Actor is the acting principal as supplied by the identity layer.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

// Decision is the outcome of an authorization check. Reason is set only on
// denial and is safe to show to the caller.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

func isOwner(actor Actor, shipment *models.Shipment) bool {
	return actor.ID != uuid.Nil && actor.ID == shipment.OwnerID
}

func isAssignedAgent(actor Actor, shipment *models.Shipment) bool {
	if !actor.Role.IsAgent() || actor.ID == uuid.Nil {
		return false
	}
	if shipment.PickupAgentID != nil && *shipment.PickupAgentID == actor.ID {
		return true
	}
	return shipment.DeliveryAgentID != nil && *shipment.DeliveryAgentID == actor.ID
}

// CanView allows the owner, elevated roles, and the currently assigned agents.
func CanView(actor Actor, shipment *models.Shipment) Decision {
	if actor.Role.IsElevated() || isOwner(actor, shipment) || isAssignedAgent(actor, shipment) {
		return allow()
	}
	return deny("only the owner, staff, or an assigned agent may view this ledger")
}

// CanAdd guards addPayment and settleBalance identically. The owning customer
// may only record online payments; cancelled and unpriced shipments are fenced
// for everyone.
func CanAdd(actor Actor, shipment *models.Shipment, method enums.PaymentMethod) Decision {
	if shipment.Status == enums.ShipmentStatusCancelled {
		return deny("shipment is cancelled")
	}
	if !shipment.GrandTotal.IsPositive() {
		return deny("shipment has not been priced yet")
	}
	if actor.Role.IsElevated() || isAssignedAgent(actor, shipment) {
		return allow()
	}
	if isOwner(actor, shipment) {
		if method == enums.PaymentMethodOnline {
			return allow()
		}
		return deny("customers may only record online payments")
	}
	return deny("insufficient role to record payments")
}

// CanVoid is restricted to elevated roles on non-cancelled shipments.
func CanVoid(actor Actor, shipment *models.Shipment) Decision {
	if shipment.Status == enums.ShipmentStatusCancelled {
		return deny("shipment is cancelled")
	}
	if actor.Role.IsElevated() {
		return allow()
	}
	return deny("only admins may void payments")
}

// CanChangeMethod allows elevated roles and the owner until the ledger is paid.
func CanChangeMethod(actor Actor, shipment *models.Shipment) Decision {
	if shipment.PaymentStatus == enums.PaymentStatusPaid {
		return deny("payment preference is locked once the shipment is paid")
	}
	if actor.Role.IsElevated() || isOwner(actor, shipment) {
		return allow()
	}
	return deny("only the owner or staff may change the payment preference")
}
