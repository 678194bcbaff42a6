package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MessageResponse — подтверждение без данных
type MessageResponse struct {
	Message string `json:"message"`
}

var validate = newValidator()

// newValidator учит validator сравнивать decimal.Decimal как число (gte=0 и т.п.)
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// statusFor сопоставляет доменные ошибки с HTTP-статусами.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, models.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// detail отрезает от текста ошибки префиксы op, оставляя часть начиная с сентинела.
func detail(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)

	var msg string
	switch status {
	case http.StatusBadRequest:
		msg = detail(err, models.ErrValidation)
	case http.StatusNotFound:
		msg = detail(err, models.ErrNotFound)
	case http.StatusConflict:
		msg = detail(err, models.ErrInsufficientStock)
	case http.StatusBadGateway:
		msg = "storage is temporarily unavailable, please try again"
	default:
		msg = "internal server error"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", slog.Int("status", status), slog.Any("error", err))
	} else {
		logger.Warn("request rejected", slog.Int("status", status), slog.Any("error", err))
	}
	http.Error(w, msg, status)
}

// decodeAndValidate читает JSON-тело и проверяет теги validate.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("invalid request: decoding error", slog.Any("error", err))
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		logger.Warn("invalid request: validation error", slog.Any("error", err))
		http.Error(w, "validation error: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func sweetIDParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Warn("invalid sweet id", slog.String("id", chi.URLParam(r, "id")))
		http.Error(w, "invalid sweet id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
