package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL.
// Append-only: el adaptador no emite DELETE nunca, y el único UPDATE toca las
// columnas de notas y su rastro de auditoría.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `
	id, product_id, kind, quantity,
	COALESCE(source_location_id::text, ''), COALESCE(dest_location_id::text, ''),
	pack_mode, correction, unit_cost,
	COALESCE(reference, ''), COALESCE(notes, ''), COALESCE(created_by::text, ''),
	created_at, COALESCE(notes_updated_by::text, ''), notes_updated_at`

func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (
			id, product_id, kind, quantity, source_location_id, dest_location_id,
			pack_mode, correction, unit_cost, reference, notes, created_by, created_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), $13)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProductID, m.Kind, m.Quantity, m.SourceLocationID, m.DestLocationID,
		m.PackMode, m.Correction, m.UnitCost, m.Reference, m.Notes, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

func (r *StockMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	return r.list(query, productID, from, to, limit, offset)
}

func (r *StockMovementRepo) ListByLocation(locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE (source_location_id = $1 OR dest_location_id = $1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	return r.list(query, locationID, from, to, limit, offset)
}

func (r *StockMovementRepo) ListByReference(reference string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE reference = $1
		ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, reference)
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// UpdateNotes corrige únicamente las notas del movimiento, dejando rastro del
// actor y el momento. Ninguna columna de negocio aparece en el UPDATE.
func (r *StockMovementRepo) UpdateNotes(id, notes, updatedBy string) error {
	query := `
		UPDATE stock_movements
		SET notes = NULLIF($2, ''), notes_updated_by = NULLIF($3, ''), notes_updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, notes, updatedBy)
	if err != nil {
		return fmt.Errorf("update movement notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *StockMovementRepo) list(query, id string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(context.Background(), query, id, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.ProductID, &m.Kind, &m.Quantity,
		&m.SourceLocationID, &m.DestLocationID,
		&m.PackMode, &m.Correction, &m.UnitCost,
		&m.Reference, &m.Notes, &m.CreatedBy,
		&m.CreatedAt, &m.NotesUpdatedBy, &m.NotesUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
