package controllers

import (
	"net/http"
	"strings"

	"github.com/swiftparcel/courierdesk-backend/api/responses"
	"github.com/swiftparcel/courierdesk-backend/internal/reprice"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
)

func versionQuery(r *http.Request) *string {
	raw := strings.TrimSpace(r.URL.Query().Get("version"))
	if raw == "" {
		return nil
	}
	return &raw
}

// PreviewReprice quotes a shipment against a tariff without persisting anything.
func PreviewReprice(svc reprice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipmentID, err := pathUUID(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Preview(r.Context(), shipmentID, versionQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// ApplyReprice reprices a shipment and reconciles its ledger summary.
func ApplyReprice(svc reprice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipmentID, err := pathUUID(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.Apply(r.Context(), shipmentID, reprice.ApplyInput{
			Version: versionQuery(r),
			ActorID: actorIDFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}
