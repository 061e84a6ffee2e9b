package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"shawarma-station-me/models"
)

// MemoryPendingOrderRepository is an in-memory PendingOrderRepositoryInterface
// used in tests and when running without a database. Values are stored as a
// JSON copy so callers cannot mutate a saved pending order through a shared
// pointer.
type MemoryPendingOrderRepository struct {
	mu    sync.Mutex
	store map[string][]byte
}

// NewMemoryPendingOrderRepository creates an empty in-memory store.
func NewMemoryPendingOrderRepository() *MemoryPendingOrderRepository {
	return &MemoryPendingOrderRepository{store: make(map[string][]byte)}
}

// Ensure MemoryPendingOrderRepository implements PendingOrderRepositoryInterface
var _ PendingOrderRepositoryInterface = (*MemoryPendingOrderRepository)(nil)

// Save stores a copy of the pending order under key.
func (r *MemoryPendingOrderRepository) Save(ctx context.Context, key string, order *models.PendingOrder) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal pending order: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[key] = payload
	return nil
}

// Load returns the pending order under key, or ErrPendingOrderNotFound.
func (r *MemoryPendingOrderRepository) Load(ctx context.Context, key string) (*models.PendingOrder, error) {
	r.mu.Lock()
	payload, ok := r.store[key]
	r.mu.Unlock()

	if !ok {
		return nil, ErrPendingOrderNotFound
	}

	var order models.PendingOrder
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, fmt.Errorf("failed to decode pending order: %w", err)
	}
	return &order, nil
}

// Delete removes the pending order under key.
func (r *MemoryPendingOrderRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, key)
	return nil
}
