package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/compresso/storefront/internal/config"
	"github.com/compresso/storefront/internal/handlers"
	"github.com/compresso/storefront/internal/invoicing"
	"github.com/compresso/storefront/internal/repository"
	"github.com/compresso/storefront/internal/service"
	"github.com/compresso/storefront/pkg/messaging"
	"github.com/compresso/storefront/pkg/metrics"
)

func main() {
	log.Println("Storefront starting...")

	cfg := config.Load()

	db, err := initDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	defer db.Close()

	rabbitConfig := messaging.NewRabbitMQConfig()
	rabbitClient := messaging.NewRabbitMQClient(rabbitConfig)
	if err := rabbitClient.Connect(); err != nil {
		log.Fatalf("RabbitMQ connection error: %v", err)
	}
	defer rabbitClient.Close()

	publisher := messaging.NewPublisher(rabbitClient)
	m := metrics.New(prometheus.DefaultRegisterer)

	// Stores
	inventoryRepo := repository.NewInventoryRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	// Services
	cartService := service.NewCartService(cartRepo, inventoryRepo)
	checkoutService := service.NewCheckoutService(cartRepo, inventoryRepo, orderRepo, publisher, m)
	orderService := service.NewOrderService(orderRepo, inventoryRepo, invoiceRepo, publisher, m)

	// Handlers
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)

	app := setupFiberApp(m)
	handlers.SetupRoutes(app, cartHandler, checkoutHandler, orderHandler, db)

	if cfg.InvoiceWorkerEnabled {
		worker := invoicing.NewWorker(invoiceRepo, invoicing.NewTextRenderer(), invoicing.NewLogMailer(), publisher, m)
		consumer := messaging.NewConsumer(rabbitClient, "storefront-invoice-queue", "invoice-worker")
		if err := worker.Start(consumer); err != nil {
			log.Fatalf("Invoice worker start error: %v", err)
		}
	}

	// Metrics on a side listener so the API surface stays clean.
	go func() {
		addr := ":" + cfg.MetricsPort
		log.Printf("Metrics listening on %s/metrics", addr)
		if err := http.ListenAndServe(addr, metrics.Handler()); err != nil {
			log.Printf("Metrics listener error: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Storefront closing...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Storefront listening: http://localhost:%s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("Server start error: %v", err)
	}
}

func initDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database open error: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database ping error: %v", err)
	}

	log.Printf("Database connected: %s", cfg.Name)
	return db, nil
}

func setupFiberApp(m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Storefront v1.0",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID,X-User-ID,X-User-Role",
	}))
	app.Use(httpMetrics(m))

	return app
}

func httpMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := nowMS()
		err := c.Next()
		m.HTTPRequests.WithLabelValues(c.Method(), fmt.Sprint(c.Response().StatusCode())).Inc()
		m.HTTPLatencyMS.WithLabelValues(c.Method()).Observe(float64(nowMS() - start))
		return err
	}
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
