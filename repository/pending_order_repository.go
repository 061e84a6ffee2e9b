package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"shawarma-station-me/db"
	"shawarma-station-me/models"
)

// ErrPendingOrderNotFound is returned by Load when no pending order exists
// under the key. After a successful finalize consumes and deletes the
// record, a second finalize sees this error instead of a duplicate order.
var ErrPendingOrderNotFound = errors.New("pending order not found")

// PendingOrderRepository persists the order-to-be-created across the card
// gateway redirect round-trip. One row per key; Save overwrites.
type PendingOrderRepository struct{}

// NewPendingOrderRepository creates a new PendingOrderRepository
func NewPendingOrderRepository() *PendingOrderRepository {
	return &PendingOrderRepository{}
}

// Ensure PendingOrderRepository implements PendingOrderRepositoryInterface
var _ PendingOrderRepositoryInterface = (*PendingOrderRepository)(nil)

// Save writes the pending order under key, replacing any previous attempt.
func (r *PendingOrderRepository) Save(ctx context.Context, key string, order *models.PendingOrder) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal pending order: %w", err)
	}

	query := `
		INSERT INTO pending_orders (key, payload, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, created_at = NOW()
	`
	if _, err := db.DB.ExecContext(ctx, query, key, payload); err != nil {
		return fmt.Errorf("failed to save pending order: %w", err)
	}

	log.Printf("📦 PendingOrder: Saved key=%s session=%s", key, order.SessionID)
	return nil
}

// Load reads the pending order stored under key.
func (r *PendingOrderRepository) Load(ctx context.Context, key string) (*models.PendingOrder, error) {
	var payload []byte
	query := `SELECT payload FROM pending_orders WHERE key = $1`
	err := db.DB.QueryRowContext(ctx, query, key).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPendingOrderNotFound
		}
		return nil, fmt.Errorf("failed to load pending order: %w", err)
	}

	var order models.PendingOrder
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, fmt.Errorf("failed to decode pending order: %w", err)
	}

	return &order, nil
}

// Delete removes the pending order under key. Deleting a key that is
// already gone is not an error.
func (r *PendingOrderRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM pending_orders WHERE key = $1`
	if _, err := db.DB.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete pending order: %w", err)
	}
	return nil
}
