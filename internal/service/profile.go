package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/Studentcuchd/sweet-treats-manager/internal/storage"
)

// ProfileService работает только с профилем владельца запроса,
// id пользователя всегда берется из identity.
type ProfileService interface {
	GetProfile(ctx context.Context, identity models.Identity) (*models.Profile, error)
	UpdateDisplayName(ctx context.Context, identity models.Identity, fullName string) (*models.Profile, error)
	PurchaseHistory(ctx context.Context, identity models.Identity) ([]models.Purchase, error)
}

type profileService struct {
	log          *slog.Logger
	profileRepo  storage.ProfileStorage
	purchaseRepo storage.PurchaseStorage
}

func NewProfileService(log *slog.Logger, profileRepo storage.ProfileStorage, purchaseRepo storage.PurchaseStorage) ProfileService {
	return &profileService{
		log:          log,
		profileRepo:  profileRepo,
		purchaseRepo: purchaseRepo,
	}
}

// GetProfile — отсутствие строки не ошибка, возвращаем профиль по умолчанию.
func (s *profileService) GetProfile(ctx context.Context, identity models.Identity) (*models.Profile, error) {
	const op = "service.ProfileService.GetProfile"
	logger := s.log.With(slog.String("op", op), slog.String("userID", identity.UserID.String()))

	profile, err := s.profileRepo.GetProfileByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			logger.Debug("profile not found, returning default")
			return &models.Profile{ID: identity.UserID, Email: identity.Email}, nil
		}
		logger.Error("failed to get profile", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get profile: %w", op, asGateway(err))
	}
	return profile, nil
}

func (s *profileService) UpdateDisplayName(ctx context.Context, identity models.Identity, fullName string) (*models.Profile, error) {
	const op = "service.ProfileService.UpdateDisplayName"
	logger := s.log.With(slog.String("op", op), slog.String("userID", identity.UserID.String()))

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("%s: %w: full name is required", op, models.ErrValidation)
	}

	profile, err := s.profileRepo.UpsertFullName(ctx, identity.UserID, identity.Email, fullName)
	if err != nil {
		logger.Error("failed to update profile", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update profile: %w", op, asGateway(err))
	}

	logger.Info("display name updated")
	return profile, nil
}

func (s *profileService) PurchaseHistory(ctx context.Context, identity models.Identity) ([]models.Purchase, error) {
	const op = "service.ProfileService.PurchaseHistory"
	logger := s.log.With(slog.String("op", op), slog.String("userID", identity.UserID.String()))

	purchases, err := s.purchaseRepo.GetPurchasesByUserID(ctx, identity.UserID)
	if err != nil {
		logger.Error("failed to get purchases", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get purchases: %w", op, asGateway(err))
	}
	return purchases, nil
}
