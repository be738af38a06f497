package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/netbilling/backend/internal/billing"
	"github.com/netbilling/backend/internal/cache"
	"github.com/netbilling/backend/internal/config"
	"github.com/netbilling/backend/internal/database"
	"github.com/netbilling/backend/internal/handlers"
	"github.com/netbilling/backend/internal/middleware"
	"github.com/netbilling/backend/internal/models"
	"github.com/netbilling/backend/internal/services"
	"github.com/netbilling/backend/internal/settings"
)

func main() {
	cfg := config.Load()

	conn, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := models.AutoMigrate(conn.DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	seedAdminUser(conn.DB)

	// Storage-backed collaborators
	settingsStore := settings.NewDBStore(conn.DB)
	billingManager := billing.NewManager(conn.DB)
	templates := services.NewTemplateStore(cfg.TemplatesPath)

	cacheStore := cache.New()
	cacheStore.StartSweeper()

	var quota services.QuotaCounter
	if conn.Redis != nil {
		quota = services.NewRedisQuotaCounter(conn.Redis)
	} else {
		quota = services.NewSettingsQuotaCounter(settingsStore)
	}

	notifier := services.NewNotificationService(settingsStore, templates, quota, billingManager)
	notifier.SetLogDB(conn.DB)
	notifier.SetTransport(services.NewUltramsgTransport(settingsStore))

	reminders := services.NewDailyReminderService(notifier, billingManager, settingsStore)
	reminders.Start()

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, conn.DB)
	settingsHandler := handlers.NewSettingsHandler(settingsStore)
	cacheHandler := handlers.NewCacheHandler(cacheStore)
	customerHandler := handlers.NewCustomerHandler(billingManager, notifier)
	invoiceHandler := handlers.NewInvoiceHandler(billingManager, notifier)
	jobHandler := handlers.NewJobHandler(billingManager, notifier)
	notificationHandler := handlers.NewNotificationHandler(notifier, templates, billingManager, conn.DB)

	app := fiber.New(fiber.Config{
		AppName:      "NetBilling API",
		ErrorHandler: errorHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")
	api.Use(middleware.RateLimiter(100, 1*time.Minute))

	// Public
	api.Post("/auth/login", authHandler.Login)

	// Authenticated
	auth := api.Group("", middleware.AuthRequired(cfg, conn.DB))
	auth.Get("/auth/me", authHandler.Me)

	auth.Get("/customers", customerHandler.List)
	auth.Get("/customers/:id", customerHandler.Get)
	auth.Post("/customers", customerHandler.Create)
	auth.Put("/customers/:id", customerHandler.Update)
	auth.Delete("/customers/:id", middleware.AdminOnly(), customerHandler.Delete)
	auth.Post("/customers/:id/suspend", customerHandler.Suspend)
	auth.Post("/customers/:id/restore", customerHandler.Restore)

	auth.Get("/invoices", invoiceHandler.List)
	auth.Get("/invoices/:id", invoiceHandler.Get)
	auth.Post("/invoices", invoiceHandler.Create)
	auth.Post("/invoices/:id/pay", invoiceHandler.MarkPaid)
	auth.Post("/invoices/:id/remind", invoiceHandler.Remind)

	auth.Get("/jobs", jobHandler.List)
	auth.Get("/jobs/:id", jobHandler.Get)
	auth.Post("/jobs", jobHandler.Create)
	auth.Post("/jobs/:id/assign", jobHandler.Assign)
	auth.Post("/jobs/:id/complete", jobHandler.Complete)

	auth.Post("/notifications/test", notificationHandler.TestSend)
	auth.Post("/notifications/broadcast", middleware.AdminOnly(), notificationHandler.Broadcast)
	auth.Get("/notifications/logs", notificationHandler.Logs)
	auth.Get("/notifications/templates", notificationHandler.ListTemplates)
	auth.Get("/notifications/templates/:key", notificationHandler.GetTemplate)
	auth.Put("/notifications/templates/:key", middleware.AdminOnly(), notificationHandler.UpdateTemplate)
	auth.Patch("/notifications/templates/:key/enabled", middleware.AdminOnly(), notificationHandler.ToggleTemplate)

	admin := auth.Group("", middleware.AdminOnly())
	admin.Get("/settings", settingsHandler.List)
	admin.Get("/settings/:key", settingsHandler.Get)
	admin.Put("/settings/:key", settingsHandler.Set)
	admin.Delete("/settings/:key", settingsHandler.Delete)

	admin.Get("/cache/stats", cacheHandler.Stats)
	admin.Get("/cache/entries", cacheHandler.Entries)
	admin.Delete("/cache", cacheHandler.Clear)
	admin.Delete("/cache/pattern", cacheHandler.InvalidatePattern)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		reminders.Stop()
		cacheStore.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	log.Printf("NetBilling API listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

// seedAdminUser creates the default admin account on first boot.
func seedAdminUser(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("WARNING: ADMIN_PASSWORD not set - using default password, change it immediately")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		Username: "admin",
		Password: string(hash),
		FullName: "Administrator",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return
	}
	log.Println("Seeded default admin user")
}
