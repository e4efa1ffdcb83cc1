package types

import "github.com/shopspring/decimal"

// ZoneRate overrides selected base rates for a named zone. Nil fields fall
// back to the configuration defaults; a missing rate and a zero rate carry
// different business meanings and are never conflated.
type ZoneRate struct {
	BaseFee      *decimal.Decimal `json:"base_fee,omitempty"`
	PerKgRate    *decimal.Decimal `json:"per_kg_rate,omitempty"`
	PerPieceRate *decimal.Decimal `json:"per_piece_rate,omitempty"`
	MinCharge    *decimal.Decimal `json:"min_charge,omitempty"`
}

// ZoneOverrides maps zone name to its rate overrides; stored as jsonb.
type ZoneOverrides map[string]ZoneRate

// ServiceMultipliers maps service-type code to a subtotal multiplier; stored
// as jsonb. Unknown service types default to a multiplier of 1.
type ServiceMultipliers map[string]decimal.Decimal
