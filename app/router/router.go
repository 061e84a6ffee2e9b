package router

import (
	"net/http"

	"shawarma-station-me/app/controller"
)

type Controllers struct {
	Catalog  *controller.CatalogController
	Location *controller.LocationController
	Checkout *controller.CheckoutController
	Order    *controller.OrderController
	Menu     *controller.MenuController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers) {
	// Ping endpoint
	http.HandleFunc("/ping", pingHandler)

	// Catalog routes
	http.HandleFunc("/products", controllers.Catalog.ListProducts)
	http.HandleFunc("/products/", controllers.Catalog.GetProduct)

	// Delivery areas
	http.HandleFunc("/locations", controllers.Location.ListAreas)

	// Checkout routes
	http.HandleFunc("/checkout/quote", controllers.Checkout.Quote)
	http.HandleFunc("/checkout/card/session", controllers.Checkout.CreateCardSession)
	http.HandleFunc("/checkout/card/return", controllers.Checkout.CardReturn)
	http.HandleFunc("/checkout/cliq/initiate", controllers.Checkout.InitiateCliq)
	http.HandleFunc("/checkout/cliq/confirm", controllers.Checkout.ConfirmCliq)

	// Orders routes
	http.HandleFunc("/orders", controllers.Order.ListOrders)
	http.HandleFunc("/orders/", controllers.Order.GetOrder)

	// Printable menu (render endpoint is used by headless Chrome)
	http.HandleFunc("/menu", controllers.Menu.GenerateMenu)
	http.HandleFunc("/menu/render", controllers.Menu.RenderMenu)
}
