package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/internal/boxes"
	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/types"
)

func weightConfig() *models.PricingConfiguration {
	return &models.PricingConfiguration{
		Version:           "V1",
		Mode:              enums.PricingModeWeight,
		Currency:          enums.CurrencyUSD,
		PerKgRate:         decPtr("120"),
		PerPieceRate:      decPtr("0"),
		MinCharge:         dec("150"),
		VolumetricDivisor: dec("5000"),
	}
}

func TestComputeTotalsNilConfig(t *testing.T) {
	_, err := ComputeTotals(Inputs{DeclaredWeightKg: dec("1"), PieceCount: 1}, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodePricingUnavailable) {
		t.Fatalf("expected PRICING_UNAVAILABLE, got %v", err)
	}
}

func TestComputeTotalsMinChargeFloor(t *testing.T) {
	// 1 kg at 120/kg is below the 150 minimum, so the minimum wins.
	quote, err := ComputeTotals(Inputs{
		DeclaredWeightKg: dec("1"),
		PieceCount:       1,
		ServiceType:      "standard",
	}, weightConfig())
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !quote.Breakdown.BaseCharge.Equal(dec("150")) {
		t.Fatalf("base charge = %s, want 150", quote.Breakdown.BaseCharge)
	}
	if !quote.GrandTotal.Equal(dec("150")) {
		t.Fatalf("grand total = %s, want 150.00", quote.GrandTotal)
	}
	if quote.Currency != enums.CurrencyUSD {
		t.Fatalf("currency = %s, want USD", quote.Currency)
	}
}

func TestComputeTotalsWeightAndPieces(t *testing.T) {
	cfg := weightConfig()
	cfg.PerPieceRate = decPtr("10")

	quote, err := ComputeTotals(Inputs{
		DeclaredWeightKg: dec("2"),
		PieceCount:       3,
	}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	// 2*120 + 3*10 = 270, above the minimum.
	if !quote.Breakdown.BaseCharge.Equal(dec("270")) {
		t.Fatalf("base charge = %s, want 270", quote.Breakdown.BaseCharge)
	}
}

func TestComputeTotalsZoneOverride(t *testing.T) {
	cfg := weightConfig()
	cfg.Zones = types.ZoneOverrides{
		"remote": {PerKgRate: decPtr("200"), MinCharge: decPtr("250")},
	}

	quote, err := ComputeTotals(Inputs{
		DeclaredWeightKg: dec("1"),
		PieceCount:       1,
		Zone:             strPtr("remote"),
	}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	// 1*200 is below the zone minimum of 250.
	if !quote.Breakdown.BaseCharge.Equal(dec("250")) {
		t.Fatalf("base charge = %s, want zone minimum 250", quote.Breakdown.BaseCharge)
	}

	// A shipment outside the zone falls back to configuration rates.
	quote, err = ComputeTotals(Inputs{DeclaredWeightKg: dec("1"), PieceCount: 1}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !quote.Breakdown.BaseCharge.Equal(dec("150")) {
		t.Fatalf("base charge = %s, want default minimum 150", quote.Breakdown.BaseCharge)
	}
}

func TestComputeTotalsMissingRateIsNotZeroRate(t *testing.T) {
	cfg := weightConfig()
	cfg.PerKgRate = nil
	cfg.MinCharge = decimal.Zero

	quote, err := ComputeTotals(Inputs{DeclaredWeightKg: dec("5"), PieceCount: 1}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	// With no per-kg rate configured the weight term contributes nothing.
	if !quote.Breakdown.BaseCharge.IsZero() {
		t.Fatalf("base charge = %s, want 0", quote.Breakdown.BaseCharge)
	}
}

func TestComputeTotalsServiceMultiplier(t *testing.T) {
	cfg := weightConfig()
	cfg.ServiceMultipliers = types.ServiceMultipliers{"express": dec("1.5")}

	quote, err := ComputeTotals(Inputs{
		DeclaredWeightKg: dec("1"),
		PieceCount:       1,
		ServiceType:      "express",
	}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !quote.Breakdown.ServiceCharge.Equal(dec("75")) {
		t.Fatalf("service charge = %s, want 75 (150 * 0.5)", quote.Breakdown.ServiceCharge)
	}
	if !quote.GrandTotal.Equal(dec("225")) {
		t.Fatalf("grand total = %s, want 225", quote.GrandTotal)
	}

	// Unknown service types default to multiplier 1.
	quote, err = ComputeTotals(Inputs{
		DeclaredWeightKg: dec("1"),
		PieceCount:       1,
		ServiceType:      "economy",
	}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !quote.Breakdown.ServiceCharge.IsZero() {
		t.Fatalf("service charge = %s, want 0 for unknown service", quote.Breakdown.ServiceCharge)
	}
}

func TestComputeTotalsSurchargesAndCOD(t *testing.T) {
	cfg := weightConfig()
	cfg.FuelSurchargePercent = dec("10")
	cfg.OtherFees = dec("5")
	cfg.CODFeePercent = dec("1")
	cfg.CODFeeFloor = dec("20")

	quote, err := ComputeTotals(Inputs{
		DeclaredWeightKg: dec("1"),
		PieceCount:       1,
		IsCOD:            true,
		CODAmount:        dec("1000"),
	}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !quote.Breakdown.FuelSurcharge.Equal(dec("15")) {
		t.Fatalf("fuel surcharge = %s, want 15 (10%% of 150)", quote.Breakdown.FuelSurcharge)
	}
	if !quote.Breakdown.CODFee.Equal(dec("20")) {
		t.Fatalf("cod fee = %s, want floor 20 over 1%% of 1000", quote.Breakdown.CODFee)
	}
	// 150 + 15 + 5 + 20
	if !quote.GrandTotal.Equal(dec("190")) {
		t.Fatalf("grand total = %s, want 190", quote.GrandTotal)
	}

	// A larger COD amount pushes the percentage above the floor.
	quote, err = ComputeTotals(Inputs{
		DeclaredWeightKg: dec("1"),
		PieceCount:       1,
		IsCOD:            true,
		CODAmount:        dec("5000"),
	}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !quote.Breakdown.CODFee.Equal(dec("50")) {
		t.Fatalf("cod fee = %s, want 50 (1%% of 5000)", quote.Breakdown.CODFee)
	}
}

func TestComputeTotalsCODIgnoredWithoutFlag(t *testing.T) {
	cfg := weightConfig()
	cfg.CODFeePercent = dec("1")
	cfg.CODFeeFloor = dec("20")

	quote, err := ComputeTotals(Inputs{
		DeclaredWeightKg: dec("1"),
		PieceCount:       1,
		CODAmount:        dec("1000"),
	}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !quote.Breakdown.CODFee.IsZero() {
		t.Fatalf("cod fee = %s, want 0 when is_cod is false", quote.Breakdown.CODFee)
	}
}

func TestComputeTotalsVolumeMode(t *testing.T) {
	cfg := &models.PricingConfiguration{
		Version:           "VOL1",
		Mode:              enums.PricingModeVolume,
		Currency:          enums.CurrencyUSD,
		PerCubicMeterRate: decPtr("400"),
		BaseFee:           dec("25"),
		MinCharge:         dec("30"),
		VolumetricDivisor: dec("5000"),
	}

	// 50x40x30 cm = 60000 cm3 = 0.06 m3; 0.06*400 = 24; +25 base = 49.
	quote, err := ComputeTotals(Inputs{
		Selection: boxes.Selection{
			LengthCm: decPtr("50"),
			WidthCm:  decPtr("40"),
			HeightCm: decPtr("30"),
		},
		DeclaredWeightKg: dec("1"),
		PieceCount:       1,
	}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !quote.Breakdown.BaseCharge.Equal(dec("49")) {
		t.Fatalf("base charge = %s, want 49", quote.Breakdown.BaseCharge)
	}
}

func TestComputeTotalsVolumeModeNoRates(t *testing.T) {
	cfg := &models.PricingConfiguration{
		Version:           "VOL2",
		Mode:              enums.PricingModeVolume,
		Currency:          enums.CurrencyUSD,
		BaseFee:           dec("25"),
		VolumetricDivisor: dec("5000"),
	}

	quote, err := ComputeTotals(Inputs{
		Selection:        boxes.Selection{Code: strPtr("3")},
		DeclaredWeightKg: dec("1"),
		PieceCount:       1,
	}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	// With neither per-volume rate configured the subtotal collapses to the
	// base fee.
	if !quote.Breakdown.BaseCharge.Equal(dec("25")) {
		t.Fatalf("base charge = %s, want base fee 25", quote.Breakdown.BaseCharge)
	}
}

func TestComputeTotalsDeterministic(t *testing.T) {
	cfg := weightConfig()
	cfg.FuelSurchargePercent = dec("12.5")
	cfg.ServiceMultipliers = types.ServiceMultipliers{"express": dec("1.35")}

	in := Inputs{
		Selection:        boxes.Selection{Code: strPtr("5")},
		DeclaredWeightKg: dec("2"),
		PieceCount:       2,
		ServiceType:      "express",
	}

	first, err := ComputeTotals(in, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := ComputeTotals(in, cfg)
		if err != nil {
			t.Fatalf("ComputeTotals: %v", err)
		}
		if !again.GrandTotal.Equal(first.GrandTotal) {
			t.Fatalf("grand total drifted: %s vs %s", again.GrandTotal, first.GrandTotal)
		}
	}
}

func TestComputeTotalsTaxEcho(t *testing.T) {
	cfg := weightConfig()
	cfg.TaxPercent = dec("7.5")

	quote, err := ComputeTotals(Inputs{DeclaredWeightKg: dec("1"), PieceCount: 1}, cfg)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	// The calculator stays pre-tax; it only echoes the percent.
	if !quote.TaxPercent.Equal(dec("7.5")) {
		t.Fatalf("tax percent = %s, want 7.5", quote.TaxPercent)
	}
	if !quote.GrandTotal.Equal(dec("150")) {
		t.Fatalf("grand total = %s, want pre-tax 150", quote.GrandTotal)
	}
}
