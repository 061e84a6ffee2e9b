package app

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"shawarma-station-me/app/controller"
	"shawarma-station-me/app/router"
	"shawarma-station-me/db"
	"shawarma-station-me/payment"
	"shawarma-station-me/repository"
	"shawarma-station-me/service"
)

const (
	defaultMaxAmount      = "500.00"
	defaultTestAmount     = "0.10"
	defaultResendCooldown = 30 * time.Second
	defaultGatewayTimeout = 15 * time.Second
)

// Initialize initializes the application
func Initialize() error {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	cardGatewayURL := os.Getenv("CARD_GATEWAY_URL")
	if cardGatewayURL == "" {
		return fmt.Errorf("CARD_GATEWAY_URL environment variable is not set")
	}
	cliqGatewayURL := os.Getenv("CLIQ_GATEWAY_URL")
	if cliqGatewayURL == "" {
		return fmt.Errorf("CLIQ_GATEWAY_URL environment variable is not set")
	}

	cfg, err := paymentConfig()
	if err != nil {
		return err
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Gateways
	cardGateway := payment.NewHTTPCardGateway(cardGatewayURL, os.Getenv("CARD_GATEWAY_KEY"), defaultGatewayTimeout)
	cliqGateway := payment.NewHTTPCliqGateway(cliqGatewayURL, os.Getenv("CLIQ_GATEWAY_KEY"), defaultGatewayTimeout)

	// Repositories
	productRepo := repository.NewProductRepository()
	locationRepo := repository.NewLocationRepository()
	pendingRepo := repository.NewPendingOrderRepository()
	orderRepo := repository.NewOrderRepository()
	cartRepo := repository.NewCartRepository()

	// Payment engine
	orchestrator := payment.NewOrchestrator(
		cardGateway, cliqGateway,
		pendingRepo, orderRepo, cartRepo, productRepo, locationRepo,
		cfg,
	)
	finalizer := payment.NewFinalizer(cardGateway, pendingRepo, orderRepo, cartRepo)

	// Menu rendering
	menuService := service.NewMenuService(productRepo, baseURL)

	// Create controllers
	controllers := &router.Controllers{
		Catalog:  controller.NewCatalogController(productRepo),
		Location: controller.NewLocationController(locationRepo),
		Checkout: controller.NewCheckoutController(orchestrator, finalizer),
		Order:    controller.NewOrderController(orderRepo),
		Menu:     controller.NewMenuController(menuService),
	}

	// Setup routes using standard http router
	router.SetupRoutes(controllers)

	if cfg.TestMode {
		log.Printf("⚠️  Payment test mode is ON: every charge uses the fixed test amount %s", cfg.TestAmount)
	}

	return nil
}

// paymentConfig builds the orchestrator config from environment variables,
// falling back to safe defaults.
func paymentConfig() (payment.Config, error) {
	maxAmount, err := decimalEnv("PAYMENT_MAX_AMOUNT", defaultMaxAmount)
	if err != nil {
		return payment.Config{}, err
	}
	testAmount, err := decimalEnv("PAYMENT_TEST_AMOUNT", defaultTestAmount)
	if err != nil {
		return payment.Config{}, err
	}

	cooldown := defaultResendCooldown
	if raw := os.Getenv("OTP_RESEND_COOLDOWN_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return payment.Config{}, fmt.Errorf("invalid OTP_RESEND_COOLDOWN_SECONDS: %q", raw)
		}
		cooldown = time.Duration(secs) * time.Second
	}

	storeName := os.Getenv("STORE_NAME")
	if storeName == "" {
		storeName = "Shawarma Station"
	}

	return payment.Config{
		MaxAmount:      maxAmount,
		TestAmount:     testAmount,
		TestMode:       os.Getenv("PAYMENT_TEST_MODE") == "true",
		ResendCooldown: cooldown,
		StoreName:      storeName,
	}, nil
}

func decimalEnv(name, fallback string) (decimal.Decimal, error) {
	raw := os.Getenv(name)
	if raw == "" {
		raw = fallback
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return value, nil
}
