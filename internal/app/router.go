package app

import (
	"log/slog"
	"net/http"

	"github.com/Studentcuchd/sweet-treats-manager/internal/app/handlers"
	"github.com/Studentcuchd/sweet-treats-manager/internal/jwt-new/jwtmiddleware"
	"github.com/Studentcuchd/sweet-treats-manager/internal/lib/logger/handlers/urllog"
	"github.com/Studentcuchd/sweet-treats-manager/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Services — сервисы, которые обслуживает HTTP-слой
type Services struct {
	Auth      service.AuthServiceInterface
	Catalog   service.CatalogService
	Inventory service.InventoryService
	Profiles  service.ProfileService
}

// NewRouter собирает таблицу маршрутов
func NewRouter(log *slog.Logger, jwtSecret string, svc Services) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(log, svc.Auth))

	// каталог открыт анонимным пользователям
	router.Get("/api/sweets", handlers.ListSweetsHandler(log, svc.Catalog))
	router.Get("/api/sweets/categories", handlers.CategoriesHandler(log, svc.Catalog))
	router.Get("/api/sweets/{id}", handlers.GetSweetHandler(log, svc.Catalog))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware(jwtSecret))

		r.Post("/api/sweets/{id}/purchase", handlers.PurchaseHandler(log, svc.Inventory))
		r.Get("/api/profile", handlers.GetProfileHandler(log, svc.Profiles))
		r.Put("/api/profile", handlers.UpdateProfileHandler(log, svc.Profiles))

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(jwtmiddleware.RequireAdmin)

			r.Post("/sweets", handlers.CreateSweetHandler(log, svc.Inventory))
			r.Patch("/sweets/{id}", handlers.UpdateSweetHandler(log, svc.Inventory))
			r.Delete("/sweets/{id}", handlers.DeleteSweetHandler(log, svc.Inventory))
			r.Post("/sweets/{id}/restock", handlers.RestockHandler(log, svc.Inventory))
			r.Get("/stats", handlers.StatsHandler(log, svc.Inventory))
		})
	})

	return router
}
