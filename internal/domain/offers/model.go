package offers

import (
	"time"

	"github.com/offerlab/offerdb/internal/domain/packages"
)

const (
	StatusInProgress = "In Progress"
	NoDiscount       = "0%"
)

type Offer struct {
	ID               int64     `json:"id"`
	Number           string    `json:"number"`
	ProjectReference string    `json:"project_reference"`
	Facility         string    `json:"facility"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Price            float64   `json:"price"`    // sum of line prices
	Total            float64   `json:"total"`    // price after the offer discount
	Discount         string    `json:"discount"` // label, e.g. "10%"
	Date             time.Time `json:"date"`
	CreatedBy        string    `json:"created_by"`
	Status           string    `json:"status"`
	Internal         bool      `json:"internal"`
}

// NewOffer is what Register needs to create an offer.
type NewOffer struct {
	Number           string `validate:"required"`
	ProjectReference string `validate:"required"`
	Facility         string
	Name             string `validate:"required"`
	Description      string
	Price            float64   `validate:"gte=0"`
	Date             time.Time `validate:"required"`
	CreatedBy        string    `validate:"required"`
	Internal         bool
}

// Line is a package selected on an offer (a row of offers_packages).
type Line struct {
	OfferID    int64              `json:"offer_id"`
	PackageID  int64              `json:"package_id"`
	Count      int                `json:"count"`
	AddOnPrice float64            `json:"add_on_price"` // line total
	Discount   string             `json:"discount"`
	PriceType  packages.PriceType `json:"price_type"`
}

// LineUpdate drives RecalculateLine.
type LineUpdate struct {
	OfferID        int64              `json:"offer_id" validate:"gt=0"`
	PackageID      int64              `json:"package_id" validate:"gt=0"`
	Count          int                `json:"count" validate:"gte=0"`
	PriceType      packages.PriceType `json:"price_type"`
	DiscountFactor float64            `json:"discount_factor" validate:"gte=0,lte=1"`
}

// Recalculation reports the values RecalculateLine persisted.
type Recalculation struct {
	LinePrice     float64 `json:"line_price"`
	LineDiscount  string  `json:"line_discount"`
	OfferPrice    float64 `json:"offer_price"`
	OfferDiscount string  `json:"offer_discount"`
	OfferTotal    float64 `json:"offer_total"`
}
