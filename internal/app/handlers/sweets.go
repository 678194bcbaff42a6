package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/Studentcuchd/sweet-treats-manager/internal/service"
	"github.com/shopspring/decimal"
)

type SweetsResponse struct {
	Sweets []models.Sweet `json:"sweets"`
	Count  int            `json:"count"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ParseSweetFilter собирает фильтр каталога из query-параметров и проверяет его.
func ParseSweetFilter(q url.Values) (models.SweetFilter, error) {
	filter := models.SweetFilter{
		Name:     strings.TrimSpace(q.Get("name")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	// "all" приходит из выпадающего списка категорий
	if strings.EqualFold(filter.Category, "all") {
		filter.Category = ""
	}

	for param, dst := range map[string]**decimal.Decimal{
		"min_price": &filter.MinPrice,
		"max_price": &filter.MaxPrice,
	} {
		raw := strings.TrimSpace(q.Get(param))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return models.SweetFilter{}, fmt.Errorf("%w: %s must be a number", models.ErrValidation, param)
		}
		*dst = &d
	}

	if err := filter.Validate(); err != nil {
		return models.SweetFilter{}, err
	}
	return filter, nil
}

// ListSweetsHandler обрабатывает GET /api/sweets
func ListSweetsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListSweetsHandler"
		logger := log.With(slog.String("op", op))

		filter, err := ParseSweetFilter(r.URL.Query())
		if err != nil {
			writeError(w, logger, err)
			return
		}

		refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

		var sweets []models.Sweet
		if refresh {
			sweets, err = catalog.RefreshSweets(r.Context(), filter)
		} else {
			sweets, err = catalog.ListSweets(r.Context(), filter)
		}
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, SweetsResponse{Sweets: sweets, Count: len(sweets)})
	}
}

// GetSweetHandler обрабатывает GET /api/sweets/{id}
func GetSweetHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetSweetHandler"
		logger := log.With(slog.String("op", op))

		id, ok := sweetIDParam(w, r, logger)
		if !ok {
			return
		}

		sweet, err := catalog.GetSweet(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, sweet)
	}
}

// CategoriesHandler обрабатывает GET /api/sweets/categories
func CategoriesHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoriesHandler"
		logger := log.With(slog.String("op", op))

		categories, err := catalog.Categories(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, CategoriesResponse{Categories: categories})
	}
}
