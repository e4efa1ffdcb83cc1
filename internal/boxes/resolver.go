package boxes

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/types"
)

// Selection is either a preset catalog code or a set of custom dimensions.
// An empty selection resolves to zero dimensions (no volumetric weight).
type Selection struct {
	Code     *string
	LengthCm *decimal.Decimal
	WidthCm  *decimal.Decimal
	HeightCm *decimal.Decimal
}

// IsCustom reports whether the selection carries any custom dimension.
func (s Selection) IsCustom() bool {
	return s.LengthCm != nil || s.WidthCm != nil || s.HeightCm != nil
}

// Resolve maps a box selection to canonical dimensions in centimeters.
// Unknown preset codes and incomplete/non-positive custom dimensions are
// rejected before any computation.
func Resolve(sel Selection) (types.Dimensions, error) {
	if sel.Code != nil && *sel.Code != "" {
		p, ok := Lookup(*sel.Code)
		if !ok {
			return types.Dimensions{}, pkgerrors.New(
				pkgerrors.CodeInvalidBoxCode,
				fmt.Sprintf("unknown box code %q", *sel.Code),
			)
		}
		return p.Dimensions(), nil
	}

	if sel.IsCustom() {
		if sel.LengthCm == nil || sel.WidthCm == nil || sel.HeightCm == nil {
			return types.Dimensions{}, pkgerrors.New(
				pkgerrors.CodeInvalidDimensions,
				"custom box requires length, width and height",
			)
		}
		dims := types.Dimensions{
			LengthCm: *sel.LengthCm,
			WidthCm:  *sel.WidthCm,
			HeightCm: *sel.HeightCm,
		}
		if dims.IsZero() {
			return types.Dimensions{}, pkgerrors.New(
				pkgerrors.CodeInvalidDimensions,
				"custom box dimensions must be positive",
			)
		}
		return dims, nil
	}

	return types.Dimensions{}, nil
}
