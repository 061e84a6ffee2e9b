package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"shawarma-station-me/db"
	"shawarma-station-me/models"
)

// CartRepository handles database operations for carts
type CartRepository struct{}

// NewCartRepository creates a new CartRepository
func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

// Ensure CartRepository implements CartRepositoryInterface
var _ CartRepositoryInterface = (*CartRepository)(nil)

// GetCart returns the user's current cart lines. An empty cart is a valid
// cart, not an error.
func (r *CartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	query := `
		SELECT product_id, quantity,
		       COALESCE(selected_protein, ''), COALESCE(selected_type, ''),
		       is_spicy, COALESCE(notes, ''), additions
		FROM cart_lines
		WHERE user_id = $1
		ORDER BY id ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	defer rows.Close()

	cart := &models.Cart{UserID: userID}
	for rows.Next() {
		var line models.CartLine
		var additionsRaw []byte
		if err := rows.Scan(
			&line.ProductID,
			&line.Quantity,
			&line.SelectedProtein,
			&line.SelectedType,
			&line.IsSpicy,
			&line.Notes,
			&additionsRaw,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		if len(additionsRaw) > 0 {
			if err := json.Unmarshal(additionsRaw, &line.Additions); err != nil {
				log.Printf("⚠️  GetCart: invalid additions payload for user %s: %v", userID, err)
			}
		}
		cart.Lines = append(cart.Lines, line)
	}

	return cart, rows.Err()
}

// ClearCart removes all of the user's cart lines
func (r *CartRepository) ClearCart(ctx context.Context, userID string) error {
	query := `DELETE FROM cart_lines WHERE user_id = $1`
	if _, err := db.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	log.Printf("🧹 ClearCart: Cleared cart for user %s", userID)
	return nil
}
