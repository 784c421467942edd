package domain

import "github.com/shopspring/decimal"

// CatalogItem is one sellable product as returned by the remote catalog.
// Items are never modified after decoding; a newer fetch of the same ID
// replaces the whole value.
type CatalogItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category,omitempty"`
	Gender         string          `json:"gender,omitempty"`
	Season         string          `json:"season,omitempty"`
	Style          string          `json:"style,omitempty"`
	Occasion       string          `json:"occasion,omitempty"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	OnSale         bool            `json:"onSale"`
	SalePercentage decimal.Decimal `json:"salePercentage"` // 0-100, only meaningful when OnSale
	Colors         []string        `json:"colors,omitempty"`
	Image          string          `json:"image,omitempty"`
}

// HasColors reports whether the item offers at least one color option.
func (i CatalogItem) HasColors() bool {
	return len(i.Colors) > 0
}
