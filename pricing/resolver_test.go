package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"shawarma-station-me/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestResolveLineBasePriceOnly(t *testing.T) {
	line := models.CartLine{ProductID: 1, Quantity: 2}
	spec := models.PriceSpec{BasePrice: d("3.50")}

	lp := ResolveLine(line, spec)

	assert.Equal(t, "3.50", lp.UnitPrice.StringFixed(2))
	assert.Equal(t, "7.00", lp.LineTotal.StringFixed(2))
	assert.Equal(t, "7.00", lp.OriginalTotal.StringFixed(2))
}

func TestResolveLineProteinTypeMatrix(t *testing.T) {
	spec := models.PriceSpec{
		BasePrice:         d("3.50"),
		HasProteinChoices: true,
		HasTypeChoices:    true,
		Prices: &models.PriceTable{
			ByProteinType: map[string]map[string]decimal.Decimal{
				models.ProteinChicken: {
					models.TypeSandwich: d("3.50"),
					models.TypeMeal:     d("6.00"),
				},
				models.ProteinMeat: {
					models.TypeSandwich: d("4.50"),
					models.TypeMeal:     d("7.00"),
				},
			},
		},
	}

	line := models.CartLine{
		ProductID:       7,
		Quantity:        1,
		SelectedProtein: models.ProteinMeat,
		SelectedType:    models.TypeMeal,
	}

	lp := ResolveLine(line, spec)
	assert.Equal(t, "7.00", lp.UnitPrice.StringFixed(2))
}

func TestResolveLineProteinOnlyTable(t *testing.T) {
	spec := models.PriceSpec{
		BasePrice:         d("2.00"),
		HasProteinChoices: true,
		Prices: &models.PriceTable{
			ByProtein: map[string]decimal.Decimal{
				models.ProteinChicken: d("2.00"),
				models.ProteinMeat:    d("2.75"),
			},
		},
	}

	lp := ResolveLine(models.CartLine{Quantity: 1, SelectedProtein: models.ProteinMeat}, spec)
	assert.Equal(t, "2.75", lp.UnitPrice.StringFixed(2))
}

func TestResolveLineTypeOnlyTable(t *testing.T) {
	spec := models.PriceSpec{
		BasePrice:      d("4.00"),
		HasTypeChoices: true,
		Prices: &models.PriceTable{
			ByType: map[string]decimal.Decimal{
				models.TypeSandwich: d("4.00"),
				models.TypeMeal:     d("6.50"),
			},
		},
	}

	lp := ResolveLine(models.CartLine{Quantity: 1, SelectedType: models.TypeMeal}, spec)
	assert.Equal(t, "6.50", lp.UnitPrice.StringFixed(2))
}

func TestResolveLineTableMissFallsBackToBase(t *testing.T) {
	spec := models.PriceSpec{
		BasePrice:         d("3.50"),
		HasProteinChoices: true,
		HasTypeChoices:    true,
		Prices: &models.PriceTable{
			ByProteinType: map[string]map[string]decimal.Decimal{
				models.ProteinChicken: {models.TypeSandwich: d("3.50")},
			},
		},
	}

	// Meat meal is not in the table; the line still prices at the base.
	line := models.CartLine{
		Quantity:        1,
		SelectedProtein: models.ProteinMeat,
		SelectedType:    models.TypeMeal,
	}
	lp := ResolveLine(line, spec)
	assert.Equal(t, "3.50", lp.UnitPrice.StringFixed(2))
}

func TestResolveLineMissingSelectionUsesBase(t *testing.T) {
	spec := models.PriceSpec{
		BasePrice:         d("3.50"),
		HasProteinChoices: true,
		HasTypeChoices:    true,
		Prices: &models.PriceTable{
			ByProteinType: map[string]map[string]decimal.Decimal{
				models.ProteinChicken: {models.TypeMeal: d("6.00")},
			},
		},
	}

	lp := ResolveLine(models.CartLine{Quantity: 1, SelectedProtein: models.ProteinChicken}, spec)
	assert.Equal(t, "3.50", lp.UnitPrice.StringFixed(2))
}

func TestResolveLineDiscountAppliesToBaseOnly(t *testing.T) {
	spec := models.PriceSpec{
		BasePrice:       d("12.00"),
		DiscountPercent: d("50"),
	}
	line := models.CartLine{
		Quantity: 1,
		Additions: []models.Addition{
			{ID: 1, Name: "Garlic sauce", Price: d("0.50")},
			{ID: 2, Name: "Fries", Price: d("0.50")},
		},
	}

	lp := ResolveLine(line, spec)

	// Half the base plus full-price additions.
	assert.Equal(t, "7.00", lp.UnitPrice.StringFixed(2))
	assert.Equal(t, "1.00", lp.AdditionsTotal.StringFixed(2))
	assert.Equal(t, "13.00", lp.OriginalUnit.StringFixed(2))
}

func TestResolveLineDiscountOnVariantBase(t *testing.T) {
	spec := models.PriceSpec{
		BasePrice:         d("3.50"),
		DiscountPercent:   d("10"),
		HasProteinChoices: true,
		Prices: &models.PriceTable{
			ByProtein: map[string]decimal.Decimal{models.ProteinMeat: d("5.00")},
		},
	}

	lp := ResolveLine(models.CartLine{Quantity: 2, SelectedProtein: models.ProteinMeat}, spec)

	assert.Equal(t, "4.50", lp.UnitPrice.StringFixed(2))
	assert.Equal(t, "9.00", lp.LineTotal.StringFixed(2))
	assert.Equal(t, "1.00", lp.OriginalTotal.Sub(lp.LineTotal).StringFixed(2))
}

func TestResolveLineDiscountClamped(t *testing.T) {
	over := models.PriceSpec{BasePrice: d("4.00"), DiscountPercent: d("150")}
	lp := ResolveLine(models.CartLine{Quantity: 1}, over)
	assert.Equal(t, "0.00", lp.UnitPrice.StringFixed(2))

	negative := models.PriceSpec{BasePrice: d("4.00"), DiscountPercent: d("-20")}
	lp = ResolveLine(models.CartLine{Quantity: 1}, negative)
	assert.Equal(t, "4.00", lp.UnitPrice.StringFixed(2))
}

func TestResolveLineMalformedInputs(t *testing.T) {
	spec := models.PriceSpec{BasePrice: d("3.00")}

	// Negative addition prices count as zero.
	line := models.CartLine{
		Quantity:  1,
		Additions: []models.Addition{{ID: 1, Price: d("-2.00")}},
	}
	lp := ResolveLine(line, spec)
	assert.Equal(t, "3.00", lp.UnitPrice.StringFixed(2))
	assert.Equal(t, "0.00", lp.AdditionsTotal.StringFixed(2))

	// Non-positive quantity collapses the line to zero.
	lp = ResolveLine(models.CartLine{Quantity: 0}, spec)
	assert.Equal(t, "0.00", lp.LineTotal.StringFixed(2))

	// Negative base price is treated as zero.
	lp = ResolveLine(models.CartLine{Quantity: 1}, models.PriceSpec{BasePrice: d("-5.00")})
	assert.Equal(t, "0.00", lp.UnitPrice.StringFixed(2))
}
