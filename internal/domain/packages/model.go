package packages

import "time"

// PriceType selects which of the three package price columns applies to an offer line.
type PriceType string

const (
	PriceInternal           PriceType = "internal"
	PriceExternalAcademic   PriceType = "external_academic"
	PriceExternalCommercial PriceType = "external_commercial"
)

// Column is the packages column holding the price for t. Unknown types fall back to internal.
func (t PriceType) Column() string {
	switch t {
	case PriceExternalAcademic:
		return "package_price_external_academic"
	case PriceExternalCommercial:
		return "package_price_external_commercial"
	default:
		return "package_price_internal"
	}
}

// Normalize maps unknown price types to PriceInternal.
func (t PriceType) Normalize() PriceType {
	switch t {
	case PriceExternalAcademic, PriceExternalCommercial:
		return t
	default:
		return PriceInternal
	}
}

type Package struct {
	ID                      int64     `json:"id"`
	Name                    string    `json:"name"`
	Facility                string    `json:"facility"`
	Description             string    `json:"description"`
	Group                   string    `json:"group"` // "" when the package has no group yet
	PriceInternal           float64   `json:"price_internal"`
	PriceExternalAcademic   float64   `json:"price_external_academic"`
	PriceExternalCommercial float64   `json:"price_external_commercial"`
	UnitType                string    `json:"unit_type"`
	CreatedAt               time.Time `json:"created_at"`
}

// Price returns the price for the given price type.
func (p Package) Price(t PriceType) float64 {
	switch t.Normalize() {
	case PriceExternalAcademic:
		return p.PriceExternalAcademic
	case PriceExternalCommercial:
		return p.PriceExternalCommercial
	default:
		return p.PriceInternal
	}
}
