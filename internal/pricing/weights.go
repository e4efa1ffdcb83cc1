package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/internal/boxes"
	"github.com/swiftparcel/courierdesk-backend/pkg/types"
)

// WeightBreakdown is the result of resolving a shipment's billing weight.
type WeightBreakdown struct {
	Dimensions         types.Dimensions
	VolumetricWeightKg decimal.Decimal
	ChargeableWeightKg decimal.Decimal
}

// ResolveWeights derives the volumetric and chargeable weights for a box
// selection. Volumetric weight is volume divided by the divisor at 4 decimal
// places, or zero when dimensions or the divisor are unavailable. Chargeable
// weight is the greater of declared and volumetric.
func ResolveWeights(sel boxes.Selection, declaredKg, divisor decimal.Decimal) (WeightBreakdown, error) {
	dims, err := boxes.Resolve(sel)
	if err != nil {
		return WeightBreakdown{}, err
	}

	volumetric := decimal.Zero
	if !dims.IsZero() && divisor.IsPositive() {
		volumetric = round4(dims.VolumeCm3().Div(divisor))
	}

	return WeightBreakdown{
		Dimensions:         dims,
		VolumetricWeightKg: volumetric,
		ChargeableWeightKg: round4(maxDecimal(declaredKg, volumetric)),
	}, nil
}
