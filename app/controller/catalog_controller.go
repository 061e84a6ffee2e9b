package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"shawarma-station-me/models"
	"shawarma-station-me/repository"
)

// CatalogController handles HTTP requests for the product catalog
type CatalogController struct {
	repository repository.ProductRepositoryInterface
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(repo repository.ProductRepositoryInterface) *CatalogController {
	return &CatalogController{
		repository: repo,
	}
}

// ListProducts handles GET /products
// Returns all available products with their price tables and additions.
// Example response:
// {
//   "products": [
//     {
//       "id": 7,
//       "name": "Shawarma Arabi",
//       "category": "shawarma",
//       "basePrice": "3.5",
//       "discountPercent": 0,
//       "hasProteinChoices": true,
//       "hasTypeChoices": true,
//       "prices": {"byProteinType": {"chicken": {"sandwich": "3.5", "meal": "6"}}}
//     }
//   ]
// }
func (c *CatalogController) ListProducts(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ListProducts: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ ListProducts: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := context.Background()
	products, err := c.repository.ListAvailable(ctx)
	if err != nil {
		log.Printf("❌ ListProducts: Error fetching products: %v", err)
		http.Error(w, fmt.Sprintf("Failed to fetch products: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ ListProducts: Successfully fetched %d products", len(products))

	response := map[string][]models.Product{"products": products}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ ListProducts: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// GetProduct handles GET /products/:id
func (c *CatalogController) GetProduct(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetProduct: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ GetProduct: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Path format: /products/{id}
	path := strings.TrimPrefix(r.URL.Path, "/products/")
	if path == "" || strings.Contains(path, "/") {
		http.Error(w, "product id parameter is required", http.StatusBadRequest)
		return
	}

	productID, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		log.Printf("❌ GetProduct: Invalid product id: %s", path)
		http.Error(w, "invalid product id parameter", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	product, err := c.repository.GetByID(ctx, productID)
	if err != nil {
		log.Printf("❌ GetProduct: Error fetching product: %v", err)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to fetch product: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ GetProduct: Successfully fetched product id=%d", productID)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(product); err != nil {
		log.Printf("❌ GetProduct: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
