package models

// CartLine is one line of a user's cart. The cart collaborator owns it;
// the pricing engine reads it and never writes it.
type CartLine struct {
	ProductID       int64      `json:"productId"`
	Quantity        int        `json:"quantity"` // >= 1
	SelectedProtein string     `json:"selectedProtein,omitempty"` // "chicken" or "meat"
	SelectedType    string     `json:"selectedType,omitempty"`    // "sandwich" or "meal"
	Additions       []Addition `json:"additions,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	IsSpicy         bool       `json:"isSpicy,omitempty"`
}

// Cart holds the lines a user has accumulated.
type Cart struct {
	UserID string     `json:"userId"`
	Lines  []CartLine `json:"lines"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}
