package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swiftparcel/courierdesk-backend/internal/payments"
	"github.com/swiftparcel/courierdesk-backend/internal/pricing"
	"github.com/swiftparcel/courierdesk-backend/internal/reprice"
	"github.com/swiftparcel/courierdesk-backend/internal/shipments"
	pkgAuth "github.com/swiftparcel/courierdesk-backend/pkg/auth"
	"github.com/swiftparcel/courierdesk-backend/pkg/config"
	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
	"github.com/swiftparcel/courierdesk-backend/pkg/pagination"
	"github.com/swiftparcel/courierdesk-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubShipmentService struct{}

func (stubShipmentService) Create(context.Context, shipments.CreateShipmentInput) (*models.Shipment, error) {
	return &models.Shipment{ID: uuid.New()}, nil
}

func (stubShipmentService) GetByID(context.Context, uuid.UUID) (*models.Shipment, error) {
	return &models.Shipment{ID: uuid.New()}, nil
}

func (stubShipmentService) GetByTrackingNumber(context.Context, string) (*models.Shipment, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
}

func (stubShipmentService) List(context.Context, shipments.ListFilter, pagination.Params) ([]models.Shipment, pagination.Page, error) {
	return nil, pagination.Page{}, nil
}

func (stubShipmentService) UpdateStatus(context.Context, uuid.UUID, shipments.UpdateStatusInput) (*models.Shipment, error) {
	return &models.Shipment{ID: uuid.New()}, nil
}

func (stubShipmentService) Cancel(context.Context, uuid.UUID, shipments.CancelInput) (*models.Shipment, error) {
	return &models.Shipment{ID: uuid.New()}, nil
}

type stubPricingService struct{}

func (stubPricingService) Create(context.Context, pricing.CreateConfigurationInput) (*models.PricingConfiguration, error) {
	return &models.PricingConfiguration{ID: uuid.New()}, nil
}

func (stubPricingService) Activate(context.Context, uuid.UUID) (*models.PricingConfiguration, error) {
	return &models.PricingConfiguration{ID: uuid.New()}, nil
}

func (stubPricingService) Archive(context.Context, uuid.UUID) error { return nil }

func (stubPricingService) List(context.Context, bool) ([]models.PricingConfiguration, error) {
	return nil, nil
}

func (stubPricingService) ResolveActive(context.Context) (*models.PricingConfiguration, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNoActivePricing, "no active pricing configuration")
}

func (stubPricingService) ResolveVersion(context.Context, string) (*models.PricingConfiguration, error) {
	return nil, pkgerrors.New(pkgerrors.CodePricingVersionNotFound, "pricing version not found")
}

type stubPaymentService struct{}

func (stubPaymentService) GetLedger(context.Context, payments.Actor, uuid.UUID) ([]models.PaymentEntry, types.PaymentSummary, error) {
	return nil, types.PaymentSummary{}, nil
}

func (stubPaymentService) AddPayment(context.Context, payments.Actor, uuid.UUID, payments.AddPaymentInput) (*models.PaymentEntry, types.PaymentSummary, error) {
	return &models.PaymentEntry{ID: uuid.New()}, types.PaymentSummary{}, nil
}

func (stubPaymentService) VoidPayment(context.Context, payments.Actor, uuid.UUID, payments.VoidPaymentInput) (types.PaymentSummary, error) {
	return types.PaymentSummary{}, nil
}

func (stubPaymentService) SettleBalance(context.Context, payments.Actor, uuid.UUID, payments.SettleBalanceInput) (*models.PaymentEntry, types.PaymentSummary, error) {
	return &models.PaymentEntry{ID: uuid.New()}, types.PaymentSummary{}, nil
}

func (stubPaymentService) ChangePaymentMethod(context.Context, payments.Actor, uuid.UUID, payments.ChangeMethodInput) (*models.Shipment, error) {
	return &models.Shipment{ID: uuid.New()}, nil
}

type stubRepriceService struct{}

func (stubRepriceService) Preview(context.Context, uuid.UUID, *string) (pricing.Quote, error) {
	return pricing.Quote{}, nil
}

func (stubRepriceService) Apply(context.Context, uuid.UUID, reprice.ApplyInput) (*models.Shipment, error) {
	return &models.Shipment{ID: uuid.New()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "courierdesk-test", ExpirationMinutes: 30},
	}
}

func testRouter() http.Handler {
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled, Output: io.Discard})
	return NewRouter(
		testConfig(),
		logg,
		stubPinger{},
		nil,
		stubShipmentService{},
		stubPricingService{},
		stubPaymentService{},
		stubRepriceService{},
	)
}

func bearerFor(t *testing.T, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthEndpointsAreOpen(t *testing.T) {
	router := testRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestMetricsEndpointIsOpen(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthenticatedShipmentRoutes(t *testing.T) {
	router := testRouter()
	auth := bearerFor(t, enums.ActorRoleAgent)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/v1/shipments", "", http.StatusOK},
		{http.MethodGet, "/api/v1/shipments/" + uuid.NewString(), "", http.StatusOK},
		{http.MethodPost, "/api/v1/shipments/" + uuid.NewString() + "/status", `{"status":"picked_up"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/shipments/" + uuid.NewString() + "/payments", "", http.StatusOK},
		{http.MethodPost, "/api/v1/shipments/" + uuid.NewString() + "/payments", `{"amount":"25","method":"cash","channel":"office"}`, http.StatusCreated},
	}

	for _, tt := range tests {
		var body io.Reader
		if tt.body != "" {
			body = strings.NewReader(tt.body)
		}
		req := httptest.NewRequest(tt.method, tt.path, body)
		req.Header.Set("Authorization", auth)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Fatalf("%s %s: expected %d got %d (%s)", tt.method, tt.path, tt.want, rec.Code, rec.Body.String())
		}
	}
}

func TestRepriceApplyRequiresElevatedRole(t *testing.T) {
	router := testRouter()
	path := "/api/v1/shipments/" + uuid.NewString() + "/reprice"

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Authorization", bearerFor(t, enums.ActorRoleAgent))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("agent reprice: expected 403 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Authorization", bearerFor(t, enums.ActorRoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin reprice: expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestAdminPricingRoutesRequireElevatedRole(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/pricing", nil)
	req.Header.Set("Authorization", bearerFor(t, enums.ActorRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer pricing: expected 403 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/pricing", nil)
	req.Header.Set("Authorization", bearerFor(t, enums.ActorRoleSuperAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("super_admin pricing: expected 200 got %d", rec.Code)
	}
}
