package types

import "github.com/shopspring/decimal"

// Dimensions is a canonical package size in centimeters.
type Dimensions struct {
	LengthCm decimal.Decimal `json:"length_cm"`
	WidthCm  decimal.Decimal `json:"width_cm"`
	HeightCm decimal.Decimal `json:"height_cm"`
}

// VolumeCm3 returns length × width × height.
func (d Dimensions) VolumeCm3() decimal.Decimal {
	return d.LengthCm.Mul(d.WidthCm).Mul(d.HeightCm)
}

// IsZero reports whether any side is missing or non-positive.
func (d Dimensions) IsZero() bool {
	return !d.LengthCm.IsPositive() || !d.WidthCm.IsPositive() || !d.HeightCm.IsPositive()
}
