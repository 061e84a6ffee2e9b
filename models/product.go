package models

import "github.com/shopspring/decimal"

// Protein choices offered on a product
const (
	ProteinChicken = "chicken"
	ProteinMeat    = "meat"
)

// Meal type choices offered on a product
const (
	TypeSandwich = "sandwich"
	TypeMeal     = "meal"
)

// Addition is an extra (sauce, fries, drink...) that can be attached to a cart line.
type Addition struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price"`
}

// PriceTable is the variant price matrix of a product. At most one of the
// three shapes is populated:
//   - ByProteinType: nested protein -> type -> price (product has both choices)
//   - ByProtein: protein -> price (protein choice only)
//   - ByType: type -> price (type choice only)
//
// A missing entry is not an error; callers fall back to the base price.
type PriceTable struct {
	ByProteinType map[string]map[string]decimal.Decimal `json:"byProteinType,omitempty"`
	ByProtein     map[string]decimal.Decimal            `json:"byProtein,omitempty"`
	ByType        map[string]decimal.Decimal            `json:"byType,omitempty"`
}

// IsEmpty reports whether the table has no entries at all.
func (t *PriceTable) IsEmpty() bool {
	if t == nil {
		return true
	}
	return len(t.ByProteinType) == 0 && len(t.ByProtein) == 0 && len(t.ByType) == 0
}

// Product represents a catalog product document.
// Example response for GET /products/7:
// {
//   "id": 7,
//   "name": "Shawarma Arabi",
//   "category": "shawarma",
//   "basePrice": "3.5",
//   "discountPercent": "10",
//   "hasProteinChoices": true,
//   "hasTypeChoices": true,
//   "prices": {"byProteinType": {"chicken": {"sandwich": "3.5", "meal": "5.5"}}},
//   "additions": [{"id": 1, "name": "Garlic sauce", "price": "0.25"}],
//   "isAvailable": true
// }
type Product struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Category          string          `json:"category,omitempty"`
	BasePrice         decimal.Decimal `json:"basePrice"`
	DiscountPercent   decimal.Decimal `json:"discountPercent"`
	HasProteinChoices bool            `json:"hasProteinChoices"`
	HasTypeChoices    bool            `json:"hasTypeChoices"`
	Prices            *PriceTable     `json:"prices,omitempty"`
	Additions         []Addition      `json:"additions,omitempty"`
	IsAvailable       bool            `json:"isAvailable"`
	CreatedAt         string          `json:"createdAt,omitempty"`
	UpdatedAt         string          `json:"updatedAt,omitempty"`
}

// PriceSpec is the immutable slice of a product that the pricing engine
// reads. The engine must never mutate it.
type PriceSpec struct {
	BasePrice         decimal.Decimal `json:"basePrice"`
	DiscountPercent   decimal.Decimal `json:"discountPercent"`
	HasProteinChoices bool            `json:"hasProteinChoices"`
	HasTypeChoices    bool            `json:"hasTypeChoices"`
	Prices            *PriceTable     `json:"prices,omitempty"`
}

// PriceSpec extracts the pricing-relevant snapshot of the product.
func (p *Product) PriceSpec() PriceSpec {
	return PriceSpec{
		BasePrice:         p.BasePrice,
		DiscountPercent:   p.DiscountPercent,
		HasProteinChoices: p.HasProteinChoices,
		HasTypeChoices:    p.HasTypeChoices,
		Prices:            p.Prices,
	}
}
