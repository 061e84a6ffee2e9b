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

// OrderController handles HTTP requests for materialized orders
type OrderController struct {
	repository repository.OrderRepositoryInterface
}

// NewOrderController creates a new OrderController
func NewOrderController(repo repository.OrderRepositoryInterface) *OrderController {
	return &OrderController{
		repository: repo,
	}
}

// GetOrder handles GET /orders/:id
// Example response:
// {
//   "id": 12,
//   "userId": "u-103",
//   "status": "processing",
//   "orderType": "delivery",
//   "customerName": "Omar Haddad",
//   "totalPrice": "14",
//   "payment": {"method": "card", "status": "paid", "transactionRef": "pay_8841"},
//   "lines": [{"productId": 7, "quantity": 2, "unitPrice": "6"}]
// }
func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetOrder: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ GetOrder: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Path format: /orders/{id}
	path := strings.TrimPrefix(r.URL.Path, "/orders/")
	if path == "" || strings.Contains(path, "/") {
		http.Error(w, "order id parameter is required", http.StatusBadRequest)
		return
	}

	orderID, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		log.Printf("❌ GetOrder: Invalid order id: %s", path)
		http.Error(w, "invalid order id parameter", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	order, err := c.repository.GetByID(ctx, orderID)
	if err != nil {
		log.Printf("❌ GetOrder: Error fetching order: %v", err)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to fetch order: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ GetOrder: Successfully fetched order id=%d", orderID)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(order); err != nil {
		log.Printf("❌ GetOrder: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListOrders handles GET /orders?from=2026-08-01&to=2026-08-31
// Example response:
// {
//   "orders": [
//     {"id": 12, "userId": "u-103", "status": "processing", "customerName": "Omar Haddad", "totalPrice": "14", "paymentMethod": "card", "lineCount": 2}
//   ]
// }
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ListOrders: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ ListOrders: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse optional date range query parameters
	var fromPtr, toPtr *string
	if from := r.URL.Query().Get("from"); from != "" {
		fromPtr = &from
	}
	if to := r.URL.Query().Get("to"); to != "" {
		toPtr = &to
	}

	ctx := context.Background()
	orders, err := c.repository.List(ctx, fromPtr, toPtr)
	if err != nil {
		log.Printf("❌ ListOrders: Error fetching orders: %v", err)
		http.Error(w, fmt.Sprintf("Failed to fetch orders: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ ListOrders: Successfully fetched %d orders", len(orders))

	response := models.OrderListResponse{
		Orders: orders,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ ListOrders: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
