package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase — неизменяемая запись о покупке
type Purchase struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	SweetID    uuid.UUID       `json:"sweet_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`

	// заполняются через LEFT JOIN с таблицей sweets
	SweetName     *string `json:"sweet_name,omitempty"`
	SweetCategory *string `json:"sweet_category,omitempty"`
}
