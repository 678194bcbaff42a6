package storage

import (
	"errors"
	"fmt"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/lib/pq"
)

var (
	ErrSweetNotFound     = fmt.Errorf("sweet %w", models.ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", models.ErrNotFound)
	ErrProfileNotFound   = fmt.Errorf("profile %w", models.ErrNotFound)
	ErrInsufficientStock = fmt.Errorf("not enough stock: %w", models.ErrInsufficientStock)
	ErrCheckViolation    = fmt.Errorf("constraint violated: %w", models.ErrValidation)
	ErrOutOfRange        = fmt.Errorf("value out of range: %w", models.ErrValidation)
	ErrUserExists        = errors.New("user already exists")
	ErrSweetLocked       = errors.New("resource is locked, please try again")
)

// коды ошибок postgres, которые мы различаем
const (
	pqLockNotAvailable = "55P03"
	pqCheckViolation   = "23514"
	pqForeignKey       = "23503"
	pqUniqueViolation  = "23505"
	pqOutOfRange       = "22003"
)

// mapPQError переводит ошибки драйвера в ошибки слоя хранения,
// остальные возвращаются как есть.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqLockNotAvailable:
		return fmt.Errorf("%w: %v", ErrSweetLocked, err)
	case pqCheckViolation:
		return fmt.Errorf("%w: %s", ErrCheckViolation, pqErr.Constraint)
	case pqForeignKey:
		return fmt.Errorf("referenced row %w: %s", models.ErrNotFound, pqErr.Constraint)
	case pqOutOfRange:
		return fmt.Errorf("%w: %s", ErrOutOfRange, pqErr.Message)
	}
	return err
}
