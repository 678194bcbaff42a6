package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/google/uuid"
)

// SweetStorage описывает методы для работы с таблицей sweets.
// Удаленные (deleted_at IS NOT NULL) позиции не видны ни одному методу.
type SweetStorage interface {
	// CreateSweet вставляет новую позицию, id и временные метки заполняются в переданной структуре.
	CreateSweet(ctx context.Context, sweet *models.Sweet) (*models.Sweet, error)
	GetSweetByID(ctx context.Context, id uuid.UUID) (*models.Sweet, error)
	// ListSweets возвращает позиции, удовлетворяющие фильтру, новые первыми.
	ListSweets(ctx context.Context, filter models.SweetFilter) ([]models.Sweet, error)
	ListCategories(ctx context.Context) ([]string, error)
	// LockSweetByIDTx блокирует строку до конца транзакции (FOR UPDATE NOWAIT).
	LockSweetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Sweet, error)
	UpdateSweetTx(ctx context.Context, tx *sql.Tx, sweet *models.Sweet) (*models.Sweet, error)
	SoftDeleteSweet(ctx context.Context, id uuid.UUID) error
	// IncrementStock атомарно прибавляет delta к остатку.
	IncrementStock(ctx context.Context, id uuid.UUID, delta int) (*models.Sweet, error)
	// DecrementStockTx атомарно списывает quantity, только если остатка хватает.
	DecrementStockTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, quantity int) (*models.Sweet, error)
	GetStats(ctx context.Context, lowStockThreshold int) (*models.InventoryStats, error)
}

type sweetRepository struct {
	db *sql.DB
}

// NewSweetRepository создаёт новый репозиторий каталога.
func NewSweetRepository(db *sql.DB) SweetStorage {
	return &sweetRepository{db: db}
}

const sweetColumns = "id, name, description, category, price, quantity, image_url, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSweet(row rowScanner) (*models.Sweet, error) {
	s := &models.Sweet{}
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.Price, &s.Quantity, &s.ImageURL, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sweetRepository) CreateSweet(ctx context.Context, sweet *models.Sweet) (*models.Sweet, error) {
	if sweet.ID == uuid.Nil {
		sweet.ID = uuid.New()
	}
	query := `INSERT INTO sweets (id, name, description, category, price, quantity, image_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		sweet.ID, sweet.Name, sweet.Description, sweet.Category, sweet.Price, sweet.Quantity, sweet.ImageURL,
	).Scan(&sweet.CreatedAt, &sweet.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create sweet: %w", mapPQError(err))
	}
	return sweet, nil
}

func (r *sweetRepository) GetSweetByID(ctx context.Context, id uuid.UUID) (*models.Sweet, error) {
	query := "SELECT " + sweetColumns + " FROM sweets WHERE id = $1 AND deleted_at IS NULL"
	sweet, err := scanSweet(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSweetNotFound
		}
		return nil, err
	}
	return sweet, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildListQuery собирает SELECT с условиями только для заданных полей фильтра.
func buildListQuery(f models.SweetFilter) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString("SELECT " + sweetColumns + " FROM sweets WHERE deleted_at IS NULL")

	if f.Name != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Name)+"%")
		fmt.Fprintf(&b, " AND name ILIKE $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		fmt.Fprintf(&b, " AND category = $%d", len(args))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		fmt.Fprintf(&b, " AND price >= $%d", len(args))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		fmt.Fprintf(&b, " AND price <= $%d", len(args))
	}
	b.WriteString(" ORDER BY created_at DESC")

	return b.String(), args
}

func (r *sweetRepository) ListSweets(ctx context.Context, filter models.SweetFilter) ([]models.Sweet, error) {
	query, args := buildListQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweets: %w", err)
	}
	defer rows.Close()

	sweets := make([]models.Sweet, 0)
	for rows.Next() {
		s, err := scanSweet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sweet: %w", err)
		}
		sweets = append(sweets, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sweets, nil
}

func (r *sweetRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT category FROM sweets WHERE deleted_at IS NULL ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *sweetRepository) LockSweetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Sweet, error) {
	query := "SELECT " + sweetColumns + " FROM sweets WHERE id = $1 AND deleted_at IS NULL FOR UPDATE NOWAIT"
	sweet, err := scanSweet(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSweetNotFound
		}
		return nil, mapPQError(err)
	}
	return sweet, nil
}

func (r *sweetRepository) UpdateSweetTx(ctx context.Context, tx *sql.Tx, sweet *models.Sweet) (*models.Sweet, error) {
	query := `UPDATE sweets
	          SET name = $1, description = $2, category = $3, price = $4, quantity = $5, image_url = $6, updated_at = NOW()
	          WHERE id = $7 AND deleted_at IS NULL
	          RETURNING updated_at`
	err := tx.QueryRowContext(ctx, query,
		sweet.Name, sweet.Description, sweet.Category, sweet.Price, sweet.Quantity, sweet.ImageURL, sweet.ID,
	).Scan(&sweet.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSweetNotFound
		}
		return nil, fmt.Errorf("failed to update sweet: %w", mapPQError(err))
	}
	return sweet, nil
}

// SoftDeleteSweet помечает позицию удаленной, записи о покупках продолжают на нее ссылаться.
func (r *sweetRepository) SoftDeleteSweet(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sweets SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("failed to delete sweet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSweetNotFound
	}
	return nil
}

func (r *sweetRepository) IncrementStock(ctx context.Context, id uuid.UUID, delta int) (*models.Sweet, error) {
	query := `UPDATE sweets SET quantity = quantity + $1, updated_at = NOW()
	          WHERE id = $2 AND deleted_at IS NULL
	          RETURNING ` + sweetColumns
	sweet, err := scanSweet(r.db.QueryRowContext(ctx, query, delta, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSweetNotFound
		}
		return nil, fmt.Errorf("failed to restock sweet: %w", mapPQError(err))
	}
	return sweet, nil
}

// DecrementStockTx — проверка остатка и списание одним условным UPDATE,
// поэтому две параллельные покупки не могут продать больше, чем есть на складе.
func (r *sweetRepository) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, quantity int) (*models.Sweet, error) {
	// остаток — INTEGER, больше MaxQuantity на складе быть не может
	if quantity <= models.MaxQuantity {
		query := `UPDATE sweets SET quantity = quantity - $1, updated_at = NOW()
		          WHERE id = $2 AND deleted_at IS NULL AND quantity >= $1
		          RETURNING ` + sweetColumns
		sweet, err := scanSweet(tx.QueryRowContext(ctx, query, quantity, id))
		if err == nil {
			return sweet, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to decrement stock: %w", mapPQError(err))
		}
	}

	// строка не обновилась: либо позиции нет, либо не хватает остатка
	var available int
	err := tx.QueryRowContext(ctx, "SELECT quantity FROM sweets WHERE id = $1 AND deleted_at IS NULL", id).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSweetNotFound
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, available)
}

func (r *sweetRepository) GetStats(ctx context.Context, lowStockThreshold int) (*models.InventoryStats, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(quantity), 0), COUNT(*) FILTER (WHERE quantity < $1)
	          FROM sweets WHERE deleted_at IS NULL`
	stats := &models.InventoryStats{}
	if err := r.db.QueryRowContext(ctx, query, lowStockThreshold).Scan(&stats.TotalSweets, &stats.TotalUnits, &stats.LowStockItems); err != nil {
		return nil, fmt.Errorf("failed to query inventory stats: %w", err)
	}
	return stats, nil
}
