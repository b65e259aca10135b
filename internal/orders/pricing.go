package orders

import (
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
)

// SnapshotLine freezes the variant's current pricing into an order line.
// It must run inside the same transaction as the stock reservation so price
// and availability reflect the same instant.
func SnapshotLine(variant models.Variant, qty int) models.OrderLine {
	line := models.OrderLine{
		VariantID:            variant.ID,
		ProductID:            variant.ProductID,
		Quantity:             qty,
		PriceAtPurchaseCents: variant.PriceCents,
	}
	if variant.Product != nil {
		line.CategoryID = variant.Product.CategoryID
	}
	if variant.DiscountPriceCents != nil {
		discount := *variant.DiscountPriceCents
		line.DiscountPriceAtPurchaseCents = &discount
	}
	return line
}

// SumLineTotals adds up the effective line totals into an order subtotal.
func SumLineTotals(lines []models.OrderLine) int {
	subtotal := 0
	for _, line := range lines {
		subtotal += line.TotalCents()
	}
	return subtotal
}
