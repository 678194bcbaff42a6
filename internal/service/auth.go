package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	security "github.com/Studentcuchd/sweet-treats-manager/internal/jwt-new"
	"github.com/Studentcuchd/sweet-treats-manager/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	log         *slog.Logger
	db          *sql.DB
	userRepo    storage.UserStorage
	profileRepo storage.ProfileStorage
	secret      string
	tokenTTL    time.Duration
	adminEmails map[string]struct{}
}

func NewAuthService(
	log *slog.Logger,
	db *sql.DB,
	userRepo storage.UserStorage,
	profileRepo storage.ProfileStorage,
	secret string,
	tokenTTL time.Duration,
	adminEmails []string,
) *AuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &AuthService{
		log:         log,
		db:          db,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		secret:      secret,
		tokenTTL:    tokenTTL,
		adminEmails: admins,
	}
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Login осуществляет аутентификацию пользователя.
// Если пользователь не найден, он регистрируется: учетная запись и профиль создаются в одной транзакции.
// Адреса из inventory.admin_emails получают права администратора.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"
	email = strings.ToLower(strings.TrimSpace(email))
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		logger.Info("user not found, creating new user")
		user, err = a.register(ctx, logger, email, password)
		if errors.Is(err, storage.ErrUserExists) {
			// параллельный первый вход с тем же email успел создать учётную запись
			logger.Info("user was registered concurrently, checking credentials")
			user, err = a.authenticate(ctx, logger, email, password)
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	case err != nil:
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, asGateway(err))
	default:
		if err := checkPassword(logger, user, password); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	token, err := security.NewToken(ctx, user, a.secret, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.String("userID", user.ID.String()), slog.Bool("admin", user.IsAdmin))
	return token, nil
}

func checkPassword(logger *slog.Logger, user *models.User, password string) error {
	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return ErrInvalidCredentials
	}
	return nil
}

func (a *AuthService) authenticate(ctx context.Context, logger *slog.Logger, email, password string) (*models.User, error) {
	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user: %w", asGateway(err))
	}
	if err := checkPassword(logger, user, password); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *AuthService) register(ctx context.Context, logger *slog.Logger, email, password string) (*models.User, error) {
	// bcrypt сам добавляет соль
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	_, isAdmin := a.adminEmails[email]

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("failed to begin transaction: %w", asGateway(err))
	}

	user, err := a.userRepo.CreateUserTx(ctx, tx, &models.User{Email: email, PassHash: passHash, IsAdmin: isAdmin})
	if errors.Is(err, storage.ErrUserExists) {
		rollback(tx, logger)
		return nil, err
	}
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create user: %w", asGateway(err))
	}

	if err := a.profileRepo.CreateProfileTx(ctx, tx, &models.Profile{ID: user.ID, Email: user.Email}); err != nil {
		rollback(tx, logger)
		logger.Error("failed to create profile", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create profile: %w", asGateway(err))
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("failed to commit transaction: %w", asGateway(err))
	}
	return user, nil
}
