package models

import "errors"

// Таксономия ошибок домена. Слой хранения и сервисы оборачивают их через %w,
// обработчики сопоставляют с HTTP-статусами через errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation error")
	ErrGateway           = errors.New("storage gateway error")
)
