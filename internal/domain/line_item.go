package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is a fully resolved cart entry: one product in one size and color.
type LineItem struct {
	Key       string          `json:"key" validate:"required"`
	ProductID string          `json:"productId" validate:"required,catalogid"`
	Name      string          `json:"name"`
	Size      string          `json:"size" validate:"required"`
	Color     string          `json:"color" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Image     string          `json:"image,omitempty"`
}

// LineItemKey builds the composite cart key for a product variant.
func LineItemKey(productID, size, color string) string {
	return fmt.Sprintf("%s-%s-%s", productID, size, color)
}
