// Package events публикует события изменения склада для внешних потребителей.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	SweetCreated     Type = "sweet.created"
	SweetUpdated     Type = "sweet.updated"
	SweetDeleted     Type = "sweet.deleted"
	SweetRestocked   Type = "sweet.restocked"
	PurchaseRecorded Type = "purchase.recorded"
)

// Event — сообщение об уже зафиксированном изменении.
type Event struct {
	Type       Type             `json:"type"`
	SweetID    uuid.UUID        `json:"sweet_id"`
	UserID     *uuid.UUID       `json:"user_id,omitempty"`
	PurchaseID *uuid.UUID       `json:"purchase_id,omitempty"`
	Quantity   int              `json:"quantity,omitempty"`
	Stock      *int             `json:"stock,omitempty"`
	TotalPrice *decimal.Decimal `json:"total_price,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Publisher отправляет события. Ошибка публикации не отменяет уже
// зафиксированное изменение, вызывающая сторона только логирует её.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop используется, когда брокеры не настроены.
type Nop struct{}

var _ Publisher = Nop{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }
