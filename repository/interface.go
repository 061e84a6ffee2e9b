package repository

import (
	"context"

	"shawarma-station-me/models"
)

// ProductRepositoryInterface defines the contract for catalog product reads.
type ProductRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	ListAvailable(ctx context.Context) ([]models.Product, error)
}

// LocationRepositoryInterface defines the contract for delivery area reads.
type LocationRepositoryInterface interface {
	List(ctx context.Context) ([]models.DeliveryArea, error)
	GetByID(ctx context.Context, id int64) (*models.DeliveryArea, error)
}

// PendingOrderRepositoryInterface is the durable scoped storage for the
// order-to-be-created during a card redirect round-trip. One well-known key
// per checkout scope; Save overwrites, Load after Delete returns
// ErrPendingOrderNotFound. Deleting on consume is the mutual exclusion
// between a successful finalize and a retried one.
type PendingOrderRepositoryInterface interface {
	Save(ctx context.Context, key string, order *models.PendingOrder) error
	Load(ctx context.Context, key string) (*models.PendingOrder, error)
	Delete(ctx context.Context, key string) error
}

// OrderRepositoryInterface defines the contract for order persistence.
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, from, to *string) ([]models.OrderListItem, error)
}

// CartRepositoryInterface is the cart collaborator: the checkout engine
// reads a user's cart and clears it after a successful order, nothing else.
type CartRepositoryInterface interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}
