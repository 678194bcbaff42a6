package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/Studentcuchd/sweet-treats-manager/internal/jwt-new/jwtmiddleware"
	"github.com/Studentcuchd/sweet-treats-manager/internal/service"
)

// ProfileResponse — профиль вместе с историей покупок
type ProfileResponse struct {
	Profile   *models.Profile   `json:"profile"`
	Purchases []models.Purchase `json:"purchases"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required"`
}

type UpdateProfileResponse struct {
	Message string          `json:"message"`
	Profile *models.Profile `json:"profile"`
}

// GetProfileHandler обрабатывает GET /api/profile
func GetProfileHandler(log *slog.Logger, profiles service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProfileHandler"
		logger := log.With(slog.String("op", op))

		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		profile, err := profiles.GetProfile(r.Context(), identity)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		purchases, err := profiles.PurchaseHistory(r.Context(), identity)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, ProfileResponse{Profile: profile, Purchases: purchases})
	}
}

// UpdateProfileHandler обрабатывает PUT /api/profile
func UpdateProfileHandler(log *slog.Logger, profiles service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProfileHandler"
		logger := log.With(slog.String("op", op))

		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req UpdateProfileRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		profile, err := profiles.UpdateDisplayName(context.WithoutCancel(r.Context()), identity, req.FullName)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, UpdateProfileResponse{Message: "Profile updated", Profile: profile})
	}
}
