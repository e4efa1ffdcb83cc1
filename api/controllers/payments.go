package controllers

import (
	"net/http"

	"github.com/swiftparcel/courierdesk-backend/api/middleware"
	"github.com/swiftparcel/courierdesk-backend/api/responses"
	"github.com/swiftparcel/courierdesk-backend/api/validators"
	"github.com/swiftparcel/courierdesk-backend/internal/payments"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
)

func actorFromContext(r *http.Request) (payments.Actor, error) {
	id := actorIDFromContext(r)
	if id == nil {
		return payments.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	role, err := enums.ParseActorRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return payments.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "actor role missing")
	}
	return payments.Actor{ID: *id, Role: role}, nil
}

// GetLedger returns the payment entries and derived summary for a shipment.
func GetLedger(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shipmentID, err := pathUUID(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, summary, err := svc.GetLedger(r.Context(), actor, shipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"entries": entries,
			"summary": summary,
		})
	}
}

// AddPayment records a collection against the shipment's balance.
func AddPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shipmentID, err := pathUUID(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input payments.AddPaymentInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, summary, err := svc.AddPayment(r.Context(), actor, shipmentID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"entry":   entry,
			"summary": summary,
		})
	}
}

// VoidPayment reverses a recorded entry without deleting it.
func VoidPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shipmentID, err := pathUUID(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entryID, err := pathUUID(r, "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body struct {
			Reason string `json:"reason"`
		}
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.VoidPayment(r.Context(), actor, shipmentID, payments.VoidPaymentInput{
			EntryID: entryID,
			Reason:  validators.SanitizeString(body.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"summary": summary})
	}
}

// SettleBalance records one entry paying off the exact outstanding balance.
func SettleBalance(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shipmentID, err := pathUUID(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input payments.SettleBalanceInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, summary, err := svc.SettleBalance(r.Context(), actor, shipmentID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"entry":   entry,
			"summary": summary,
		})
	}
}

// ChangePaymentMethod updates the shipment's stored payment preference.
func ChangePaymentMethod(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shipmentID, err := pathUUID(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input payments.ChangeMethodInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.ChangePaymentMethod(r.Context(), actor, shipmentID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}
