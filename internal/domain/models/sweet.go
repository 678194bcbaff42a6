package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sweet представляет позицию каталога
type Sweet struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    *string         `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Границы колонок sweets: quantity INTEGER, price NUMERIC(10,2).
const (
	MaxQuantity    = math.MaxInt32
	PriceScale     = 2
	maxPriceDigits = 8
)

// MaxPrice — первая цена, которая уже не помещается в NUMERIC(10,2).
var MaxPrice = decimal.New(1, maxPriceDigits)

// ValidatePrice проверяет, что цена неотрицательна и хранится без округления.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if price.GreaterThanOrEqual(MaxPrice) {
		return fmt.Errorf("%w: price must be less than %s", ErrValidation, MaxPrice.String())
	}
	if !price.Equal(price.Truncate(PriceScale)) {
		return fmt.Errorf("%w: price must have at most %d decimal places", ErrValidation, PriceScale)
	}
	return nil
}

// Validate проверяет инварианты позиции перед записью в БД.
func (s *Sweet) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(s.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if err := ValidatePrice(s.Price); err != nil {
		return err
	}
	if s.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}
	if s.Quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity cannot exceed %d", ErrValidation, MaxQuantity)
	}
	return nil
}

// SweetPatch — частичное обновление, nil означает "не менять"
type SweetPatch struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	Quantity    *int
	ImageURL    *string
}

// IsEmpty сообщает, что в патче нет ни одного поля.
func (p SweetPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil &&
		p.Price == nil && p.Quantity == nil && p.ImageURL == nil
}

// Apply накладывает патч на позицию.
func (p SweetPatch) Apply(s *Sweet) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = p.Description
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
	if p.ImageURL != nil {
		s.ImageURL = p.ImageURL
	}
}

// InventoryStats — сводка для панели администратора
type InventoryStats struct {
	TotalSweets   int `json:"total_sweets"`
	TotalUnits    int `json:"total_units"`
	LowStockItems int `json:"low_stock_items"`
}
