package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/Studentcuchd/sweet-treats-manager/internal/events"
	"github.com/Studentcuchd/sweet-treats-manager/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryService — все операции, меняющие остатки и карточки товаров.
type InventoryService interface {
	CreateSweet(ctx context.Context, sweet models.Sweet) (*models.Sweet, error)
	UpdateSweet(ctx context.Context, id uuid.UUID, patch models.SweetPatch) (*models.Sweet, error)
	DeleteSweet(ctx context.Context, id uuid.UUID) error
	Restock(ctx context.Context, id uuid.UUID, delta int) (*models.Sweet, error)
	Purchase(ctx context.Context, identity models.Identity, sweetID uuid.UUID, quantity int) (*Receipt, error)
	Stats(ctx context.Context) (*models.InventoryStats, error)
}

// Receipt — результат успешной покупки.
type Receipt struct {
	Purchase       models.Purchase `json:"purchase"`
	SweetName      string          `json:"sweet_name"`
	RemainingStock int             `json:"remaining_stock"`
}

type inventoryService struct {
	log               *slog.Logger
	db                *sql.DB
	sweetRepo         storage.SweetStorage
	purchaseRepo      storage.PurchaseStorage
	catalog           Invalidator
	publisher         events.Publisher
	lowStockThreshold int
}

func NewInventoryService(
	log *slog.Logger,
	db *sql.DB,
	sweetRepo storage.SweetStorage,
	purchaseRepo storage.PurchaseStorage,
	catalog Invalidator,
	publisher events.Publisher,
	lowStockThreshold int,
) InventoryService {
	return &inventoryService{
		log:               log,
		db:                db,
		sweetRepo:         sweetRepo,
		purchaseRepo:      purchaseRepo,
		catalog:           catalog,
		publisher:         publisher,
		lowStockThreshold: lowStockThreshold,
	}
}

// committed выполняется после каждого успешного изменения склада.
func (s *inventoryService) committed(ctx context.Context, logger *slog.Logger, event events.Event) {
	s.catalog.Invalidate(ctx)

	event.OccurredAt = time.Now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish inventory event", slog.String("type", string(event.Type)), slog.Any("error", err))
	}
}

func (s *inventoryService) CreateSweet(ctx context.Context, sweet models.Sweet) (*models.Sweet, error) {
	const op = "service.InventoryService.CreateSweet"
	logger := s.log.With(slog.String("op", op), slog.String("name", sweet.Name))

	sweet.Name = strings.TrimSpace(sweet.Name)
	sweet.Category = strings.TrimSpace(sweet.Category)
	if err := sweet.Validate(); err != nil {
		logger.Warn("invalid sweet", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sweet.ID = uuid.New()
	created, err := s.sweetRepo.CreateSweet(ctx, &sweet)
	if err != nil {
		logger.Error("failed to create sweet", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create sweet: %w", op, asGateway(err))
	}

	stock := created.Quantity
	s.committed(ctx, logger, events.Event{Type: events.SweetCreated, SweetID: created.ID, Stock: &stock})

	logger.Info("sweet created", slog.String("sweetID", created.ID.String()))
	return created, nil
}

// UpdateSweet блокирует строку, накладывает патч и проверяет итоговую запись целиком.
func (s *inventoryService) UpdateSweet(ctx context.Context, id uuid.UUID, patch models.SweetPatch) (*models.Sweet, error) {
	const op = "service.InventoryService.UpdateSweet"
	logger := s.log.With(slog.String("op", op), slog.String("sweetID", id.String()))

	if patch.IsEmpty() {
		return nil, fmt.Errorf("%s: %w: nothing to update", op, models.ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, asGateway(err))
	}

	sweet, err := s.sweetRepo.LockSweetByIDTx(ctx, tx, id)
	if err != nil {
		rollback(tx, logger)
		logger.Warn("failed to lock sweet", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock sweet: %w", op, asGateway(err))
	}

	patch.Apply(sweet)
	sweet.Name = strings.TrimSpace(sweet.Name)
	sweet.Category = strings.TrimSpace(sweet.Category)
	if err := sweet.Validate(); err != nil {
		rollback(tx, logger)
		logger.Warn("patched sweet is invalid", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.sweetRepo.UpdateSweetTx(ctx, tx, sweet)
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to update sweet", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update sweet: %w", op, asGateway(err))
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, asGateway(err))
	}

	stock := updated.Quantity
	s.committed(ctx, logger, events.Event{Type: events.SweetUpdated, SweetID: id, Stock: &stock})

	logger.Info("sweet updated")
	return updated, nil
}

// DeleteSweet скрывает позицию из каталога, история покупок сохраняется.
func (s *inventoryService) DeleteSweet(ctx context.Context, id uuid.UUID) error {
	const op = "service.InventoryService.DeleteSweet"
	logger := s.log.With(slog.String("op", op), slog.String("sweetID", id.String()))

	if err := s.sweetRepo.SoftDeleteSweet(ctx, id); err != nil {
		logger.Warn("failed to delete sweet", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, asGateway(err))
	}

	s.committed(ctx, logger, events.Event{Type: events.SweetDeleted, SweetID: id})

	logger.Info("sweet deleted")
	return nil
}

func (s *inventoryService) Restock(ctx context.Context, id uuid.UUID, delta int) (*models.Sweet, error) {
	const op = "service.InventoryService.Restock"
	logger := s.log.With(slog.String("op", op), slog.String("sweetID", id.String()), slog.Int("delta", delta))

	if delta <= 0 {
		return nil, fmt.Errorf("%s: %w: restock quantity must be a positive integer", op, models.ErrValidation)
	}
	if delta > models.MaxQuantity {
		return nil, fmt.Errorf("%s: %w: restock quantity cannot exceed %d", op, models.ErrValidation, models.MaxQuantity)
	}

	sweet, err := s.sweetRepo.IncrementStock(ctx, id, delta)
	if err != nil {
		logger.Warn("failed to restock sweet", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, asGateway(err))
	}

	stock := sweet.Quantity
	s.committed(ctx, logger, events.Event{Type: events.SweetRestocked, SweetID: id, Quantity: delta, Stock: &stock})

	logger.Info("sweet restocked", slog.Int("stock", sweet.Quantity))
	return sweet, nil
}

// Purchase списывает остаток и записывает покупку в одной транзакции.
// Если остатка не хватает, ничего не меняется.
func (s *inventoryService) Purchase(ctx context.Context, identity models.Identity, sweetID uuid.UUID, quantity int) (*Receipt, error) {
	const op = "service.InventoryService.Purchase"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("userID", identity.UserID.String()),
		slog.String("sweetID", sweetID.String()),
		slog.Int("quantity", quantity),
	)
	logger.Info("starting purchase transaction")

	if quantity <= 0 {
		return nil, fmt.Errorf("%s: %w: quantity must be a positive integer", op, models.ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, asGateway(err))
	}

	sweet, err := s.sweetRepo.DecrementStockTx(ctx, tx, sweetID, quantity)
	if err != nil {
		rollback(tx, logger)
		logger.Warn("purchase rejected", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, asGateway(err))
	}

	purchase, err := s.purchaseRepo.CreatePurchaseTx(ctx, tx, &models.Purchase{
		ID:         uuid.New(),
		UserID:     identity.UserID,
		SweetID:    sweetID,
		Quantity:   quantity,
		TotalPrice: sweet.Price.Mul(decimal.NewFromInt(int64(quantity))),
	})
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to record purchase", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to record purchase: %w", op, asGateway(err))
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, asGateway(err))
	}

	name, category := sweet.Name, sweet.Category
	purchase.SweetName = &name
	purchase.SweetCategory = &category

	stock := sweet.Quantity
	total := purchase.TotalPrice
	userID, purchaseID := identity.UserID, purchase.ID
	s.committed(ctx, logger, events.Event{
		Type:       events.PurchaseRecorded,
		SweetID:    sweetID,
		UserID:     &userID,
		PurchaseID: &purchaseID,
		Quantity:   quantity,
		Stock:      &stock,
		TotalPrice: &total,
	})

	logger.Info("purchase completed successfully", slog.String("total", total.StringFixed(2)), slog.Int("stock", stock))
	return &Receipt{
		Purchase:       *purchase,
		SweetName:      sweet.Name,
		RemainingStock: sweet.Quantity,
	}, nil
}

func (s *inventoryService) Stats(ctx context.Context) (*models.InventoryStats, error) {
	const op = "service.InventoryService.Stats"
	logger := s.log.With(slog.String("op", op))

	stats, err := s.sweetRepo.GetStats(ctx, s.lowStockThreshold)
	if err != nil {
		logger.Error("failed to get inventory stats", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, asGateway(err))
	}
	return stats, nil
}
