package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/Studentcuchd/sweet-treats-manager/internal/service"
	"github.com/shopspring/decimal"
)

// CreateSweetRequest — карточка новой позиции, количество по умолчанию 0
type CreateSweetRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description *string          `json:"description"`
	Category    string           `json:"category" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gte=0,lte=2147483647"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url"`
}

// UpdateSweetRequest — частичное обновление, отсутствующие поля не меняются
type UpdateSweetRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	Category    *string          `json:"category" validate:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gte=0,lte=2147483647"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0,lte=2147483647"`
}

type SweetResponse struct {
	Message string        `json:"message"`
	Sweet   *models.Sweet `json:"sweet"`
}

// CreateSweetHandler обрабатывает POST /api/admin/sweets
func CreateSweetHandler(log *slog.Logger, inventory service.InventoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateSweetHandler"
		logger := log.With(slog.String("op", op))

		var req CreateSweetRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		sweet := models.Sweet{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       *req.Price,
			ImageURL:    req.ImageURL,
		}
		if req.Quantity != nil {
			sweet.Quantity = *req.Quantity
		}

		created, err := inventory.CreateSweet(context.WithoutCancel(r.Context()), sweet)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, SweetResponse{
			Message: fmt.Sprintf("%s has been added to the catalog", created.Name),
			Sweet:   created,
		})
	}
}

// UpdateSweetHandler обрабатывает PATCH /api/admin/sweets/{id}
func UpdateSweetHandler(log *slog.Logger, inventory service.InventoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateSweetHandler"
		logger := log.With(slog.String("op", op))

		id, ok := sweetIDParam(w, r, logger)
		if !ok {
			return
		}

		var req UpdateSweetRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		updated, err := inventory.UpdateSweet(context.WithoutCancel(r.Context()), id, models.SweetPatch{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       req.Price,
			Quantity:    req.Quantity,
			ImageURL:    req.ImageURL,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, SweetResponse{
			Message: fmt.Sprintf("%s has been updated", updated.Name),
			Sweet:   updated,
		})
	}
}

// DeleteSweetHandler обрабатывает DELETE /api/admin/sweets/{id}
func DeleteSweetHandler(log *slog.Logger, inventory service.InventoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteSweetHandler"
		logger := log.With(slog.String("op", op))

		id, ok := sweetIDParam(w, r, logger)
		if !ok {
			return
		}

		if err := inventory.DeleteSweet(context.WithoutCancel(r.Context()), id); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, MessageResponse{Message: "Sweet deleted successfully"})
	}
}

// RestockHandler обрабатывает POST /api/admin/sweets/{id}/restock
func RestockHandler(log *slog.Logger, inventory service.InventoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RestockHandler"
		logger := log.With(slog.String("op", op))

		id, ok := sweetIDParam(w, r, logger)
		if !ok {
			return
		}

		var req RestockRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		sweet, err := inventory.Restock(context.WithoutCancel(r.Context()), id, req.Quantity)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, SweetResponse{
			Message: fmt.Sprintf("Restocked %d units of %s", req.Quantity, sweet.Name),
			Sweet:   sweet,
		})
	}
}

// StatsHandler обрабатывает GET /api/admin/stats
func StatsHandler(log *slog.Logger, inventory service.InventoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.StatsHandler"
		logger := log.With(slog.String("op", op))

		stats, err := inventory.Stats(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, stats)
	}
}
