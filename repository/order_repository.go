package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"shawarma-station-me/db"
	"shawarma-station-me/models"
)

// OrderRepository handles database operations for orders
type OrderRepository struct{}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Ensure OrderRepository implements OrderRepositoryInterface
var _ OrderRepositoryInterface = (*OrderRepository)(nil)

// Create inserts the order and its lines atomically in one transaction.
// A unique index on payment_ref backs the exactly-once guarantee: a second
// insert for the same gateway payment fails instead of duplicating the order.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	log.Printf("📦 CreateOrder: Creating order for user=%s total=%s method=%s",
		order.UserID, order.TotalPrice, order.Payment.Method)

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var shippingRef sql.NullInt64
	if order.ShippingAddressRef != 0 {
		shippingRef = sql.NullInt64{Int64: order.ShippingAddressRef, Valid: true}
	}

	var paymentRef sql.NullString
	if order.Payment.TransactionRef != "" {
		paymentRef = sql.NullString{String: order.Payment.TransactionRef, Valid: true}
	}

	queryOrder := `
		INSERT INTO orders (
			user_id, status, order_type, shipping_address_ref,
			customer_name, customer_phone, customer_apartment,
			total_price, is_test, payment_method, payment_status, payment_ref,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, created_at
	`

	var createdAt time.Time
	err = tx.QueryRowContext(ctx, queryOrder,
		order.UserID,
		order.Status,
		order.OrderType,
		shippingRef,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerApartment,
		order.TotalPrice,
		order.IsTest,
		order.Payment.Method,
		order.Payment.Status,
		paymentRef,
	).Scan(&order.ID, &createdAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			log.Printf("❌ CreateOrder: Order already exists for payment ref=%s", order.Payment.TransactionRef)
			return nil, fmt.Errorf("order already exists for payment reference %s", order.Payment.TransactionRef)
		}
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	order.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	queryLine := `
		INSERT INTO order_lines (
			order_id, product_id, quantity, unit_price,
			selected_protein, selected_type, is_spicy, notes, additions
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	for i := range order.Lines {
		line := &order.Lines[i]
		additions, err := json.Marshal(line.Additions)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal line additions: %w", err)
		}
		err = tx.QueryRowContext(ctx, queryLine,
			order.ID,
			line.ProductID,
			line.Quantity,
			line.UnitPrice,
			line.SelectedProtein,
			line.SelectedType,
			line.IsSpicy,
			line.Notes,
			additions,
		).Scan(&line.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	log.Printf("✅ CreateOrder: Created order id=%d with %d lines", order.ID, len(order.Lines))
	return order, nil
}

// GetByID fetches an order with its lines
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	queryOrder := `
		SELECT id, user_id, status, order_type, COALESCE(shipping_address_ref, 0),
		       customer_name, customer_phone, COALESCE(customer_apartment, ''),
		       total_price, is_test, payment_method, payment_status, COALESCE(payment_ref, ''),
		       created_at
		FROM orders
		WHERE id = $1
	`

	var o models.Order
	var createdAt time.Time
	err := db.DB.QueryRowContext(ctx, queryOrder, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.OrderType,
		&o.ShippingAddressRef,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.CustomerApartment,
		&o.TotalPrice,
		&o.IsTest,
		&o.Payment.Method,
		&o.Payment.Status,
		&o.Payment.TransactionRef,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	o.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	queryLines := `
		SELECT id, product_id, quantity, unit_price,
		       COALESCE(selected_protein, ''), COALESCE(selected_type, ''),
		       is_spicy, COALESCE(notes, ''), additions
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id ASC
	`
	rows, err := db.DB.QueryContext(ctx, queryLines, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.OrderLine
		var additionsRaw []byte
		if err := rows.Scan(
			&line.ID,
			&line.ProductID,
			&line.Quantity,
			&line.UnitPrice,
			&line.SelectedProtein,
			&line.SelectedType,
			&line.IsSpicy,
			&line.Notes,
			&additionsRaw,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		if len(additionsRaw) > 0 {
			if err := json.Unmarshal(additionsRaw, &line.Additions); err != nil {
				log.Printf("⚠️  GetByID: invalid additions payload on order line %d: %v", line.ID, err)
			}
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order lines: %w", err)
	}

	return &o, nil
}

// List returns orders between the optional from/to dates (YYYY-MM-DD)
func (r *OrderRepository) List(ctx context.Context, from, to *string) ([]models.OrderListItem, error) {
	query := `
		SELECT o.id, o.user_id, o.status, o.order_type, o.customer_name,
		       o.total_price, o.payment_method, o.created_at,
		       COUNT(l.id) AS line_count
		FROM orders o
		LEFT JOIN order_lines l ON l.order_id = o.id
		WHERE ($1::date IS NULL OR o.created_at >= $1::date)
		  AND ($2::date IS NULL OR o.created_at < $2::date + INTERVAL '1 day')
		GROUP BY o.id
		ORDER BY o.created_at DESC
	`

	rows, err := db.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	defer rows.Close()

	var orders []models.OrderListItem
	for rows.Next() {
		var o models.OrderListItem
		var createdAt time.Time
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.OrderType,
			&o.CustomerName,
			&o.TotalPrice,
			&o.PaymentMethod,
			&createdAt,
			&o.LineCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		orders = append(orders, o)
	}

	return orders, rows.Err()
}
