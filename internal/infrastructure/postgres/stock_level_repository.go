package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de la proyección de stock sobre PostgreSQL.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

func (r *StockLevelRepo) Get(productID, locationID string) (*entity.StockLevel, error) {
	return r.get(productID, locationID, false)
}

// GetForUpdate bloquea la fila (SELECT FOR UPDATE) antes de computar la nueva
// cantidad. Si la fila no existe devuelve una proyección en cero lista para
// Upsert; el bloqueo efectivo nace con el INSERT.
func (r *StockLevelRepo) GetForUpdate(productID, locationID string) (*entity.StockLevel, error) {
	return r.get(productID, locationID, true)
}

func (r *StockLevelRepo) get(productID, locationID string, forUpdate bool) (*entity.StockLevel, error) {
	query := `
		SELECT product_id, location_id, quantity, reorder_level, updated_at
		FROM stock_levels
		WHERE product_id = $1 AND location_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var l entity.StockLevel
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
		&l.ProductID, &l.LocationID, &l.Quantity, &l.ReorderLevel, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{ProductID: productID, LocationID: locationID}, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &l, nil
}

func (r *StockLevelRepo) Upsert(level *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (product_id, location_id, quantity, reorder_level, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		level.ProductID, level.LocationID, level.Quantity, level.ReorderLevel,
	)
	if err != nil {
		return fmt.Errorf("upsert stock level: %w", err)
	}
	return nil
}

func (r *StockLevelRepo) UpdateReorderLevel(productID, locationID string, reorderLevel int64) error {
	query := `
		INSERT INTO stock_levels (product_id, location_id, quantity, reorder_level, updated_at)
		VALUES ($1, $2, 0, $3, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET reorder_level = EXCLUDED.reorder_level, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, productID, locationID, reorderLevel)
	if err != nil {
		return fmt.Errorf("update reorder level: %w", err)
	}
	return nil
}

func (r *StockLevelRepo) SumByProduct(productID string) (int64, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_levels WHERE product_id = $1`
	var total int64
	if err := r.q.QueryRow(context.Background(), query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum stock by product: %w", err)
	}
	return total, nil
}

func (r *StockLevelRepo) ListByLocation(locationID string, limit, offset int) ([]*entity.StockLevel, error) {
	query := `
		SELECT product_id, location_id, quantity, reorder_level, updated_at
		FROM stock_levels
		WHERE location_id = $1
		ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock levels by location: %w", err)
	}
	defer rows.Close()
	return collectLevels(rows)
}

func (r *StockLevelRepo) ListBelowReorder(locationID string) ([]*entity.StockLevel, error) {
	query := `
		SELECT product_id, location_id, quantity, reorder_level, updated_at
		FROM stock_levels
		WHERE location_id = $1 AND quantity <= reorder_level
		ORDER BY quantity ASC`
	rows, err := r.q.Query(context.Background(), query, locationID)
	if err != nil {
		return nil, fmt.Errorf("list stock levels below reorder: %w", err)
	}
	defer rows.Close()
	return collectLevels(rows)
}

func collectLevels(rows pgx.Rows) ([]*entity.StockLevel, error) {
	var list []*entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.ProductID, &l.LocationID, &l.Quantity, &l.ReorderLevel, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
