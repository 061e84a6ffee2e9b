package pricing

import (
	"github.com/shopspring/decimal"

	"shawarma-station-me/models"
)

// SummaryInput carries everything the summary calculation depends on.
// Specs maps product id to its immutable price spec; lines whose product is
// missing from the map contribute nothing rather than corrupting the total.
type SummaryInput struct {
	Lines        []models.CartLine
	Specs        map[int64]models.PriceSpec
	OrderType    string
	SelectedArea *models.DeliveryArea
	TestMode     bool
	TestAmount   decimal.Decimal
}

// ComputeSummary aggregates line totals into the order summary. Pure
// function, safe to recompute on every input change.
//
// Test mode short-circuits only the final total so gateway integration can
// be exercised with a fixed accepted amount; the itemized breakdown still
// reflects the real cart.
func ComputeSummary(in SummaryInput) models.OrderSummary {
	subtotal := decimal.Zero
	original := decimal.Zero

	for _, line := range in.Lines {
		spec, ok := in.Specs[line.ProductID]
		if !ok {
			continue
		}
		lp := ResolveLine(line, spec)
		subtotal = subtotal.Add(lp.LineTotal)
		original = original.Add(lp.OriginalTotal)
	}

	deliveryCost := decimal.Zero
	if in.OrderType == models.OrderTypeDelivery && in.SelectedArea != nil {
		deliveryCost = in.SelectedArea.DeliveryCost
	}

	total := subtotal.Add(deliveryCost)
	if in.TestMode {
		total = in.TestAmount
	}

	return models.OrderSummary{
		Subtotal:         subtotal.Round(2),
		OriginalSubtotal: original.Round(2),
		Savings:          original.Sub(subtotal).Round(2),
		DeliveryCost:     deliveryCost.Round(2),
		Total:            total.Round(2),
	}
}
