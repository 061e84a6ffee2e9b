package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"shawarma-station-me/db"
	"shawarma-station-me/models"
)

// ProductRepository handles database operations for catalog products
type ProductRepository struct{}

// NewProductRepository creates a new ProductRepository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// Ensure ProductRepository implements ProductRepositoryInterface
var _ ProductRepositoryInterface = (*ProductRepository)(nil)

// GetByID fetches a product with its price table and additions
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), COALESCE(category, ''),
		       base_price, discount_percent, has_protein_choices, has_type_choices,
		       prices, is_available, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p models.Product
	var pricesRaw []byte
	var createdAt, updatedAt time.Time

	err := db.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.BasePrice,
		&p.DiscountPercent,
		&p.HasProteinChoices,
		&p.HasTypeChoices,
		&pricesRaw,
		&p.IsAvailable,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	p.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	p.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)

	if len(pricesRaw) > 0 {
		var table models.PriceTable
		if err := json.Unmarshal(pricesRaw, &table); err != nil {
			// Incomplete catalog data must not break pricing; the resolver
			// falls back to the base price when the table is absent.
			log.Printf("⚠️  GetByID: invalid price table for product %d: %v", id, err)
		} else if !table.IsEmpty() {
			p.Prices = &table
		}
	}

	additions, err := r.getAdditions(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Additions = additions

	return &p, nil
}

// ListAvailable returns all available products ordered by category and name
func (r *ProductRepository) ListAvailable(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), COALESCE(category, ''),
		       base_price, discount_percent, has_protein_choices, has_type_choices,
		       prices, is_available
		FROM products
		WHERE is_available = TRUE
		ORDER BY category ASC, name ASC
	`

	rows, err := db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var pricesRaw []byte
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Category,
			&p.BasePrice,
			&p.DiscountPercent,
			&p.HasProteinChoices,
			&p.HasTypeChoices,
			&pricesRaw,
			&p.IsAvailable,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if len(pricesRaw) > 0 {
			var table models.PriceTable
			if err := json.Unmarshal(pricesRaw, &table); err == nil && !table.IsEmpty() {
				p.Prices = &table
			}
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// getAdditions fetches the additions configured for a product
func (r *ProductRepository) getAdditions(ctx context.Context, productID int64) ([]models.Addition, error) {
	query := `
		SELECT id, name, price
		FROM product_additions
		WHERE product_id = $1
		ORDER BY id ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch additions: %w", err)
	}
	defer rows.Close()

	var additions []models.Addition
	for rows.Next() {
		var a models.Addition
		if err := rows.Scan(&a.ID, &a.Name, &a.Price); err != nil {
			return nil, fmt.Errorf("failed to scan addition: %w", err)
		}
		additions = append(additions, a)
	}

	return additions, rows.Err()
}
