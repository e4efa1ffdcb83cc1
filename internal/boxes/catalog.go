package boxes

import (
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/types"
)

// Preset is a catalog box with fixed dimensions and a weight ceiling.
type Preset struct {
	Code        string
	LengthCm    decimal.Decimal
	WidthCm     decimal.Decimal
	HeightCm    decimal.Decimal
	MaxWeightKg decimal.Decimal
}

func preset(code string, l, w, h, maxKg int64) Preset {
	return Preset{
		Code:        code,
		LengthCm:    decimal.NewFromInt(l),
		WidthCm:     decimal.NewFromInt(w),
		HeightCm:    decimal.NewFromInt(h),
		MaxWeightKg: decimal.NewFromInt(maxKg),
	}
}

// catalog is the fixed preset box lookup table, keyed by code.
var catalog = map[string]Preset{
	"0": preset("0", 22, 14, 6, 1),
	"1": preset("1", 26, 18, 10, 2),
	"2": preset("2", 30, 22, 14, 4),
	"3": preset("3", 32, 24, 18, 6),
	"4": preset("4", 33, 28, 24, 10),
	"5": preset("5", 34, 34, 32, 15),
	"6": preset("6", 48, 40, 36, 22),
	"7": preset("7", 60, 48, 42, 30),
}

// Lookup returns the preset for a catalog code.
func Lookup(code string) (Preset, bool) {
	p, ok := catalog[code]
	return p, ok
}

// Dimensions returns the preset's canonical dimensions in centimeters.
func (p Preset) Dimensions() types.Dimensions {
	return types.Dimensions{
		LengthCm: p.LengthCm,
		WidthCm:  p.WidthCm,
		HeightCm: p.HeightCm,
	}
}
