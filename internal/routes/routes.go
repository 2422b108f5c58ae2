package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tapfolio/widget-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Widget bridge (application layer → store → refresh signal)
	r.Post("/api/widgets", handlers.CreateWidget)
	r.Put("/api/widgets", handlers.UpdateWidget)
	r.Delete("/api/widgets", handlers.DeleteWidget)
	r.Get("/api/widgets", handlers.GetActiveWidgets)

	// In-app widget manager (canonical configs, PostgreSQL)
	r.Post("/api/widgets/config", handlers.CreateWidgetConfigHandler)
	r.Get("/api/widgets/config", handlers.GetWidgetConfigHandler)
	r.Put("/api/widgets/config", handlers.UpdateWidgetConfigHandler)
	r.Delete("/api/widgets/config", handlers.DeleteWidgetConfigHandler)
	r.Get("/api/widgets/configs", handlers.ListWidgetConfigsHandler)

	// WebSocket gateway for the widget-rendering process
	r.Get("/ws/widgets", handlers.WidgetHostSocket)
}
