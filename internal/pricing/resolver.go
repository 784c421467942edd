package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/catalogsync/internal/domain"
)

// PricePrecision is the number of decimal places prices are rounded to.
const PricePrecision = 2

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// EffectivePrice returns what the customer pays for item. A discount only
// applies when the item is on sale with a positive percentage:
// base * (1 - pct/100), rounded half away from zero to cents. The percentage
// is trusted to be within [0, 100]; see ClampPercentage.
func EffectivePrice(item domain.CatalogItem) decimal.Decimal {
	if !item.OnSale || !item.SalePercentage.IsPositive() {
		return item.BasePrice
	}

	multiplier := one.Sub(item.SalePercentage.Div(hundred))
	return item.BasePrice.Mul(multiplier).Round(PricePrecision)
}

// Discount returns the amount taken off the base price.
func Discount(item domain.CatalogItem) decimal.Decimal {
	return item.BasePrice.Sub(EffectivePrice(item))
}

// ClampPercentage limits a user-supplied sale percentage to [0, 100]. Apply
// it before storing a percentage, not when resolving a price.
func ClampPercentage(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
