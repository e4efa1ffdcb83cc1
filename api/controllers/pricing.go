package controllers

import (
	"net/http"

	"github.com/swiftparcel/courierdesk-backend/api/responses"
	"github.com/swiftparcel/courierdesk-backend/api/validators"
	"github.com/swiftparcel/courierdesk-backend/internal/pricing"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
)

// CreatePricingConfiguration registers a new tariff version in draft state.
func CreatePricingConfiguration(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input pricing.CreateConfigurationInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cfg)
	}
}

// ListPricingConfigurations returns tariff versions, optionally with archived ones.
func ListPricingConfigurations(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeArchived := r.URL.Query().Get("include_archived") == "true"

		configs, err := svc.List(r.Context(), includeArchived)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, configs)
	}
}

// ActivatePricingConfiguration makes a tariff version the single active one.
func ActivatePricingConfiguration(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "configId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.Activate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}

// ArchivePricingConfiguration retires a non-active tariff version.
func ArchivePricingConfiguration(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "configId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Archive(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "archived"})
	}
}
