package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SweetFilter — набор необязательных фильтров каталога.
// Пустая строка или nil означают отсутствие ограничения, поля объединяются через AND.
type SweetFilter struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Validate проверяет фильтр один раз на границе (в обработчике).
func (f SweetFilter) Validate() error {
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return fmt.Errorf("%w: min_price cannot be negative", ErrValidation)
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return fmt.Errorf("%w: max_price cannot be negative", ErrValidation)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return fmt.Errorf("%w: min_price is greater than max_price", ErrValidation)
	}
	return nil
}

// CacheKey возвращает каноническое представление фильтра:
// структурно равные фильтры дают один и тот же ключ.
func (f SweetFilter) CacheKey() string {
	var b strings.Builder
	b.WriteString("name=")
	b.WriteString(strings.ToLower(f.Name))
	b.WriteString("|category=")
	b.WriteString(f.Category)
	b.WriteString("|min=")
	if f.MinPrice != nil {
		b.WriteString(f.MinPrice.String())
	}
	b.WriteString("|max=")
	if f.MaxPrice != nil {
		b.WriteString(f.MaxPrice.String())
	}
	return b.String()
}
