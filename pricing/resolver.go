package pricing

import (
	"log"

	"github.com/shopspring/decimal"

	"shawarma-station-me/models"
)

var oneHundred = decimal.NewFromInt(100)

// LinePrice is the priced result of a single cart line.
type LinePrice struct {
	UnitPrice      decimal.Decimal `json:"unitPrice"`      // discounted base + additions, pre-quantity
	AdditionsTotal decimal.Decimal `json:"additionsTotal"` // sum of selected addition prices
	LineTotal      decimal.Decimal `json:"lineTotal"`      // UnitPrice * quantity
	OriginalUnit   decimal.Decimal `json:"originalUnit"`   // undiscounted base + additions
	OriginalTotal  decimal.Decimal `json:"originalTotal"`  // OriginalUnit * quantity
}

// ResolveLine prices a cart line against its product price spec.
//
// The base price is overridden by the variant table when the product offers
// the matching choice and the table has the entry; a table miss falls back to
// the base price silently, since catalog data may be incomplete. The discount
// applies to the variant-resolved base only, never to additions.
func ResolveLine(line models.CartLine, spec models.PriceSpec) LinePrice {
	base := resolveBase(line, spec)

	additions := decimal.Zero
	for _, a := range line.Additions {
		if a.Price.IsNegative() {
			// Malformed catalog entry, counts as zero.
			continue
		}
		additions = additions.Add(a.Price)
	}

	discount := spec.DiscountPercent
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(oneHundred) {
		discount = oneHundred
	}

	discountedBase := base.Mul(oneHundred.Sub(discount)).Div(oneHundred)

	qty := decimal.NewFromInt(int64(line.Quantity))
	if line.Quantity < 1 {
		qty = decimal.Zero
	}

	unit := discountedBase.Add(additions).Round(2)
	originalUnit := base.Add(additions).Round(2)

	return LinePrice{
		UnitPrice:      unit,
		AdditionsTotal: additions.Round(2),
		LineTotal:      unit.Mul(qty).Round(2),
		OriginalUnit:   originalUnit,
		OriginalTotal:  originalUnit.Mul(qty).Round(2),
	}
}

// resolveBase picks the unit base price from the variant matrix.
func resolveBase(line models.CartLine, spec models.PriceSpec) decimal.Decimal {
	base := spec.BasePrice
	if base.IsNegative() {
		base = decimal.Zero
	}
	if spec.Prices.IsEmpty() {
		return base
	}

	switch {
	case spec.HasProteinChoices && spec.HasTypeChoices:
		if line.SelectedProtein == "" || line.SelectedType == "" {
			return base
		}
		if byType, ok := spec.Prices.ByProteinType[line.SelectedProtein]; ok {
			if p, ok := byType[line.SelectedType]; ok {
				return p
			}
		}
		log.Printf("⚠️  ResolveLine: no price table entry for protein=%s type=%s on product %d, falling back to base price",
			line.SelectedProtein, line.SelectedType, line.ProductID)
	case spec.HasProteinChoices:
		if line.SelectedProtein == "" {
			return base
		}
		if p, ok := spec.Prices.ByProtein[line.SelectedProtein]; ok {
			return p
		}
		log.Printf("⚠️  ResolveLine: no price table entry for protein=%s on product %d, falling back to base price",
			line.SelectedProtein, line.ProductID)
	case spec.HasTypeChoices:
		if line.SelectedType == "" {
			return base
		}
		if p, ok := spec.Prices.ByType[line.SelectedType]; ok {
			return p
		}
		log.Printf("⚠️  ResolveLine: no price table entry for type=%s on product %d, falling back to base price",
			line.SelectedType, line.ProductID)
	}

	return base
}
