package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/Studentcuchd/sweet-treats-manager/internal/service"
)

// AuthRequest представляет структуру запроса для аутентификации с тегами валидации
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse представляет структуру ответа с JWT-токеном
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// AuthHandler – вход или регистрация, отдает JWT
func AuthHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AuthHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrGateway) {
				writeError(w, logger, err)
				return
			}
			logger.Warn("login failed", slog.Any("error", err))
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		writeJSON(w, logger, http.StatusOK, AuthResponse{Message: "Signed in successfully", Token: token})
	}
}
