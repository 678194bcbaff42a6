package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/google/uuid"
)

type PurchaseStorage interface {
	// CreatePurchaseTx записывает покупку в той же транзакции, что и списание остатка.
	CreatePurchaseTx(ctx context.Context, tx *sql.Tx, purchase *models.Purchase) (*models.Purchase, error)
	// GetPurchasesByUserID — история покупок, новые первыми, с названием и категорией позиции.
	GetPurchasesByUserID(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error)
}

type purchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) PurchaseStorage {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) CreatePurchaseTx(ctx context.Context, tx *sql.Tx, purchase *models.Purchase) (*models.Purchase, error) {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	query := `INSERT INTO purchases (id, user_id, sweet_id, quantity, total_price, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW())
	          RETURNING created_at`
	err := tx.QueryRowContext(ctx, query,
		purchase.ID, purchase.UserID, purchase.SweetID, purchase.Quantity, purchase.TotalPrice,
	).Scan(&purchase.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", mapPQError(err))
	}
	return purchase, nil
}

func (r *purchaseRepository) GetPurchasesByUserID(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error) {
	query := `SELECT p.id, p.user_id, p.sweet_id, p.quantity, p.total_price, p.created_at, s.name, s.category
	          FROM purchases p
	          LEFT JOIN sweets s ON p.sweet_id = s.id
	          WHERE p.user_id = $1
	          ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]models.Purchase, 0)
	for rows.Next() {
		var p models.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.SweetID, &p.Quantity, &p.TotalPrice, &p.CreatedAt, &p.SweetName, &p.SweetCategory); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}
