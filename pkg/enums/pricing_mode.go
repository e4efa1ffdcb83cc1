package enums

import "fmt"

// PricingMode selects the charging strategy of a pricing configuration.
type PricingMode string

const (
	PricingModeWeight PricingMode = "weight"
	PricingModeVolume PricingMode = "volume"
)

var validPricingModes = []PricingMode{
	PricingModeWeight,
	PricingModeVolume,
}

// String implements fmt.Stringer.
func (m PricingMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PricingMode.
func (m PricingMode) IsValid() bool {
	for _, candidate := range validPricingModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePricingMode converts raw input into a PricingMode.
func ParsePricingMode(value string) (PricingMode, error) {
	for _, candidate := range validPricingModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing mode %q", value)
}
