package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/tapfolio/widget-backend/internal/bridge"
	"github.com/tapfolio/widget-backend/internal/config"
	"github.com/tapfolio/widget-backend/internal/database"
	"github.com/tapfolio/widget-backend/internal/handlers"
	"github.com/tapfolio/widget-backend/internal/middleware"
	"github.com/tapfolio/widget-backend/internal/refresh"
	"github.com/tapfolio/widget-backend/internal/routes"
	"github.com/tapfolio/widget-backend/internal/services"
	"github.com/tapfolio/widget-backend/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Connect to Redis (flat KV widget store, refresh channel, rate limits)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (shared-container widget store)
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	// Connect to PostgreSQL (widget-config manager)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Compose the widget store over the configured KV backend
	var kv store.KV
	switch cfg.WidgetStore {
	case "redis":
		kv = store.NewRedisKV(database.RedisClient)
		log.Println("✅ Widget store backend: redis (flat key-value)")
	case "mongo":
		kv = store.NewMongoKV(database.DB, cfg.SharedContainer)
		log.Printf("✅ Widget store backend: mongo (shared container %q)", cfg.SharedContainer)
	default:
		kv = store.NewMemoryKV()
		log.Printf("⚠️  WARNING: WIDGET_STORE=%q not recognized; using in-memory store (widgets will not survive restarts)", cfg.WidgetStore)
	}
	widgetStore := store.NewWidgetStore(kv)

	// Bridge + refresh signal (Redis Pub/Sub → host hub → WebSocket)
	notifier := refresh.NewRedisNotifier(database.RedisClient)
	handlers.InitWidgetBridge(bridge.New(widgetStore, notifier))
	handlers.InitHostGateway(cfg.HostToken, widgetStore)
	refresh.StartSubscriber(context.Background(), database.RedisClient)

	// Periodic record↔index reconciliation
	services.StartReconcileSweep(cfg.SweepIntervalMinutes, widgetStore)
	log.Printf("✅ Reconcile sweep started (every %d minutes)", cfg.SweepIntervalMinutes)

	// Setup router
	r := chi.NewRouter()

	// Custom CORS: set headers and respond to OPTIONS with 200 so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit; non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, host check, per-IP rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r)

	log.Println("📋 Registered routes:")
	log.Println("  GET    /health")
	log.Println("  POST   /api/widgets")
	log.Println("  PUT    /api/widgets")
	log.Println("  DELETE /api/widgets")
	log.Println("  GET    /api/widgets")
	log.Println("  POST   /api/widgets/config")
	log.Println("  GET    /api/widgets/config")
	log.Println("  PUT    /api/widgets/config")
	log.Println("  DELETE /api/widgets/config")
	log.Println("  GET    /api/widgets/configs")
	log.Println("  GET    /ws/widgets")

	log.Printf("🚀 Tapfolio widget backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
