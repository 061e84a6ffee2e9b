package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"shawarma-station-me/models"
	"shawarma-station-me/repository"
)

// LocationController handles HTTP requests for delivery areas
type LocationController struct {
	repository repository.LocationRepositoryInterface
}

// NewLocationController creates a new LocationController
func NewLocationController(repo repository.LocationRepositoryInterface) *LocationController {
	return &LocationController{
		repository: repo,
	}
}

// ListAreas handles GET /locations
// Example response:
// {
//   "areas": [
//     {"id": 4, "name": "Abdoun", "deliveryCost": "2"},
//     {"id": 5, "name": "Sweifieh", "deliveryCost": "2.5"}
//   ]
// }
func (c *LocationController) ListAreas(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ListAreas: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ ListAreas: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := context.Background()
	areas, err := c.repository.List(ctx)
	if err != nil {
		log.Printf("❌ ListAreas: Error fetching delivery areas: %v", err)
		http.Error(w, fmt.Sprintf("Failed to fetch delivery areas: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ ListAreas: Successfully fetched %d delivery areas", len(areas))

	response := map[string][]models.DeliveryArea{"areas": areas}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ ListAreas: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
