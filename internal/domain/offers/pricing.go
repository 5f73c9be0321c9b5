package offers

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LinePrice is unit × count × factor, rounded to cents. factor is the package discount
// factor (0.9 means 10% off).
func LinePrice(unit float64, count int, factor float64) decimal.Decimal {
	return decimal.NewFromFloat(unit).
		Mul(decimal.NewFromInt(int64(count))).
		Mul(decimal.NewFromFloat(factor)).
		Round(2)
}

// DiscountLabel renders a discount factor as the percentage label stored on offer lines,
// e.g. 0.9 -> "10%". Halves round to even: 0.875 -> "12%".
func DiscountLabel(factor float64) string {
	pct := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(factor)).Mul(hundred).RoundBank(0)
	return pct.String() + "%"
}

// ApplyDiscount returns price × (100 − percentage)/100 rounded to cents.
func ApplyDiscount(price decimal.Decimal, percentage decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Sub(percentage)).Div(hundred).Round(2)
}

// ParseDiscount reads the integral percentage from a label such as "10%" or " 5 % ".
// Anything unparsable counts as no discount.
func ParseDiscount(label string) decimal.Decimal {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), "%"))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Money converts a rounded decimal to the float64 handed to the driver.
func Money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
