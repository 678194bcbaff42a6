package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
)

// ErrInvalidCredentials — пароль не совпал с сохраненным хэшем.
var ErrInvalidCredentials = errors.New("invalid credentials")

// asGateway оставляет доменные ошибки как есть, остальные считает сбоем хранилища.
func asGateway(err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrGateway):
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrGateway, err)
}

func rollback(tx *sql.Tx, logger *slog.Logger) {
	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}
