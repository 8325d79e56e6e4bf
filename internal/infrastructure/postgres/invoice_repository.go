package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository sobre PostgreSQL.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, number, status, location_id, COALESCE(client_name, ''), global_discount,
	subtotal, tax_total, total, total_profit, amount_paid, stock_deducted,
	COALESCE(notes, ''), COALESCE(created_by::text, ''), created_at, updated_at`

// Create inserta la cabecera. Una colisión del consecutivo (constraint único
// de number) se traduce a ErrDuplicate para que el caller reintente.
func (r *InvoiceRepo) Create(inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, number, status, location_id, client_name, global_discount,
			subtotal, tax_total, total, total_profit, amount_paid, stock_deducted,
			notes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), NULLIF($14, ''), $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.Number, inv.Status, inv.LocationID, inv.ClientName, inv.GlobalDiscount,
		inv.Subtotal, inv.TaxTotal, inv.Total, inv.TotalProfit, inv.AmountPaid, inv.StockDeducted,
		inv.Notes, inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, product_id, quantity, unit_price, discount_pct, pack_mode, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.InvoiceID, item.ProductID, item.Quantity,
		item.UnitPrice, item.DiscountPct, item.PackMode, item.UnitCost,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) Update(inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $2, global_discount = $3, subtotal = $4, tax_total = $5,
		    total = $6, total_profit = $7, amount_paid = $8, stock_deducted = $9,
		    notes = NULLIF($10, ''), updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.Status, inv.GlobalDiscount, inv.Subtotal, inv.TaxTotal,
		inv.Total, inv.TotalProfit, inv.AmountPaid, inv.StockDeducted,
		inv.Notes, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ReplaceItems borra y reinserta las líneas del documento (no toca el libro:
// el efecto de stock lo maneja el servicio con restore/re-deduct).
func (r *InvoiceRepo) ReplaceItems(invoiceID string, items []*entity.InvoiceItem) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	for _, item := range items {
		if err := r.CreateItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, product_id, quantity, unit_price, discount_pct, pack_mode, unit_cost
		FROM invoice_items WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var items []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.DiscountPct, &it.PackMode, &it.UnitCost); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// MaxSequenceForYear lee el mayor consecutivo asignado en el año a partir del
// número (PREFIJO-AAAA-NNNNN). Debe ejecutarse dentro de la transacción de
// creación; la unicidad dura la garantiza el constraint de number.
func (r *InvoiceRepo) MaxSequenceForYear(year int) (int, error) {
	query := `
		SELECT COALESCE(MAX(split_part(number, '-', 3)::int), 0)
		FROM invoices
		WHERE split_part(number, '-', 2) = $1::text`
	var max int
	if err := r.q.QueryRow(context.Background(), query, fmt.Sprintf("%d", year)).Scan(&max); err != nil {
		return 0, fmt.Errorf("max invoice sequence: %w", err)
	}
	return max, nil
}

func (r *InvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// ListCommittedByMonth lista las facturas comprometidas (sent, paid,
// partially_paid) de un mes y ubicación, con sus líneas cargadas.
func (r *InvoiceRepo) ListCommittedByMonth(year int, month time.Month, locationID string) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE location_id = $1
		  AND status IN ('sent', 'paid', 'partially_paid')
		  AND EXTRACT(YEAR FROM created_at) = $2
		  AND EXTRACT(MONTH FROM created_at) = $3
		ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, locationID, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("list committed invoices: %w", err)
	}
	defer rows.Close()
	invoices, err := collectInvoices(rows)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		items, err := r.GetItemsByInvoiceID(inv.ID)
		if err != nil {
			return nil, err
		}
		inv.Items = items
	}
	return invoices, nil
}

func collectInvoices(rows pgx.Rows) ([]*entity.Invoice, error) {
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.Status, &inv.LocationID, &inv.ClientName, &inv.GlobalDiscount,
		&inv.Subtotal, &inv.TaxTotal, &inv.Total, &inv.TotalProfit, &inv.AmountPaid, &inv.StockDeducted,
		&inv.Notes, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
