package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo implementación de ReceiptRepository sobre PostgreSQL.
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Acepta pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

const receiptColumns = `
	id, number, status, location_id, COALESCE(supplier_name, ''), delivery_cost,
	costs_spread, merchandise_total, total, stock_added,
	COALESCE(notes, ''), COALESCE(created_by::text, ''), created_at, updated_at`

func (r *ReceiptRepo) Create(rec *entity.Receipt) error {
	query := `
		INSERT INTO receipts (
			id, number, status, location_id, supplier_name, delivery_cost,
			costs_spread, merchandise_total, total, stock_added, notes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, NULLIF($11, ''), NULLIF($12, ''), $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.Number, rec.Status, rec.LocationID, rec.SupplierName, rec.DeliveryCost,
		rec.CostsSpread, rec.MerchandiseTotal, rec.Total, rec.StockAdded, rec.Notes, rec.CreatedBy,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (r *ReceiptRepo) CreateItem(item *entity.ReceiptItem) error {
	query := `
		INSERT INTO receipt_items (id, receipt_id, product_id, quantity, unit_cost, pack_mode)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.ReceiptID, item.ProductID, item.Quantity, item.UnitCost, item.PackMode,
	)
	if err != nil {
		return fmt.Errorf("insert receipt item: %w", err)
	}
	return nil
}

func (r *ReceiptRepo) Update(rec *entity.Receipt) error {
	query := `
		UPDATE receipts
		SET status = $2, delivery_cost = $3, costs_spread = $4, merchandise_total = $5,
		    total = $6, stock_added = $7, notes = NULLIF($8, ''), updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.Status, rec.DeliveryCost, rec.CostsSpread, rec.MerchandiseTotal,
		rec.Total, rec.StockAdded, rec.Notes, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ReceiptRepo) UpdateItemCost(itemID string, unitCost decimal.Decimal) error {
	query := `UPDATE receipt_items SET unit_cost = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, itemID, unitCost)
	if err != nil {
		return fmt.Errorf("update receipt item cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ReceiptRepo) ReplaceItems(receiptID string, items []*entity.ReceiptItem) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM receipt_items WHERE receipt_id = $1`, receiptID); err != nil {
		return fmt.Errorf("delete receipt items: %w", err)
	}
	for _, item := range items {
		if err := r.CreateItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReceiptRepo) GetByID(id string) (*entity.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE id = $1`
	rec, err := scanReceipt(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return rec, nil
}

func (r *ReceiptRepo) GetItemsByReceiptID(receiptID string) ([]*entity.ReceiptItem, error) {
	query := `
		SELECT id, receipt_id, product_id, quantity, unit_cost, pack_mode
		FROM receipt_items WHERE receipt_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, receiptID)
	if err != nil {
		return nil, fmt.Errorf("list receipt items: %w", err)
	}
	defer rows.Close()
	var items []*entity.ReceiptItem
	for rows.Next() {
		var it entity.ReceiptItem
		if err := rows.Scan(&it.ID, &it.ReceiptID, &it.ProductID, &it.Quantity, &it.UnitCost, &it.PackMode); err != nil {
			return nil, fmt.Errorf("scan receipt item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *ReceiptRepo) MaxSequenceForYear(year int) (int, error) {
	query := `
		SELECT COALESCE(MAX(split_part(number, '-', 3)::int), 0)
		FROM receipts
		WHERE split_part(number, '-', 2) = $1::text`
	var max int
	if err := r.q.QueryRow(context.Background(), query, fmt.Sprintf("%d", year)).Scan(&max); err != nil {
		return 0, fmt.Errorf("max receipt sequence: %w", err)
	}
	return max, nil
}

func (r *ReceiptRepo) List(limit, offset int) ([]*entity.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func scanReceipt(row pgx.Row) (*entity.Receipt, error) {
	var rec entity.Receipt
	err := row.Scan(
		&rec.ID, &rec.Number, &rec.Status, &rec.LocationID, &rec.SupplierName, &rec.DeliveryCost,
		&rec.CostsSpread, &rec.MerchandiseTotal, &rec.Total, &rec.StockAdded,
		&rec.Notes, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
