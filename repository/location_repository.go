package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shawarma-station-me/db"
	"shawarma-station-me/models"
)

// LocationRepository handles database operations for delivery areas
type LocationRepository struct{}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository() *LocationRepository {
	return &LocationRepository{}
}

// Ensure LocationRepository implements LocationRepositoryInterface
var _ LocationRepositoryInterface = (*LocationRepository)(nil)

// List returns all serviced delivery areas
func (r *LocationRepository) List(ctx context.Context) ([]models.DeliveryArea, error) {
	query := `SELECT id, name, delivery_cost FROM delivery_areas ORDER BY name ASC`

	rows, err := db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch delivery areas: %w", err)
	}
	defer rows.Close()

	var areas []models.DeliveryArea
	for rows.Next() {
		var a models.DeliveryArea
		if err := rows.Scan(&a.ID, &a.Name, &a.DeliveryCost); err != nil {
			return nil, fmt.Errorf("failed to scan delivery area: %w", err)
		}
		areas = append(areas, a)
	}

	return areas, rows.Err()
}

// GetByID fetches a single delivery area
func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*models.DeliveryArea, error) {
	query := `SELECT id, name, delivery_cost FROM delivery_areas WHERE id = $1`

	var a models.DeliveryArea
	err := db.DB.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Name, &a.DeliveryCost)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("delivery area not found")
		}
		return nil, fmt.Errorf("failed to fetch delivery area: %w", err)
	}

	return &a, nil
}
