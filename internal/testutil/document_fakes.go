package testutil

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// maxSequenceFor extrae el mayor consecutivo del año de una lista de números
// con formato PREFIJO-AAAA-NNNNN, igual que lo hace el repositorio real con
// split_part.
func maxSequenceFor(numbers []string, year int) int {
	max := 0
	for _, number := range numbers {
		parts := strings.Split(number, "-")
		if len(parts) < 3 {
			continue
		}
		y, err := strconv.Atoi(parts[len(parts)-2])
		if err != nil || y != year {
			continue
		}
		seq, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max
}

// ──────────────────────────────────────────────────────────────────────────────
// Facturas
// ──────────────────────────────────────────────────────────────────────────────

// InvoiceRepo fake en memoria de InvoiceRepository. ForcedDuplicates hace que
// los próximos N Create fallen con ErrDuplicate, para ejercitar el reintento
// de consecutivo.
type InvoiceRepo struct {
	Invoices         map[string]*entity.Invoice
	Items            map[string][]*entity.InvoiceItem
	ForcedDuplicates int
}

// NewInvoiceRepo construye el fake.
func NewInvoiceRepo() *InvoiceRepo {
	return &InvoiceRepo{Invoices: map[string]*entity.Invoice{}, Items: map[string][]*entity.InvoiceItem{}}
}

func (r *InvoiceRepo) Create(inv *entity.Invoice) error {
	if r.ForcedDuplicates > 0 {
		r.ForcedDuplicates--
		return domain.ErrDuplicate
	}
	for _, existing := range r.Invoices {
		if existing.Number == inv.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *inv
	cp.Items = nil
	r.Invoices[inv.ID] = &cp
	return nil
}

func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	cp := *item
	r.Items[item.InvoiceID] = append(r.Items[item.InvoiceID], &cp)
	return nil
}

func (r *InvoiceRepo) Update(inv *entity.Invoice) error {
	if _, ok := r.Invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *inv
	cp.Items = nil
	r.Invoices[inv.ID] = &cp
	return nil
}

func (r *InvoiceRepo) ReplaceItems(invoiceID string, items []*entity.InvoiceItem) error {
	out := make([]*entity.InvoiceItem, 0, len(items))
	for _, it := range items {
		cp := *it
		out = append(out, &cp)
	}
	r.Items[invoiceID] = out
	return nil
}

func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	inv, ok := r.Invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *InvoiceRepo) GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	return r.Items[invoiceID], nil
}

func (r *InvoiceRepo) MaxSequenceForYear(year int) (int, error) {
	numbers := make([]string, 0, len(r.Invoices))
	for _, inv := range r.Invoices {
		numbers = append(numbers, inv.Number)
	}
	return maxSequenceFor(numbers, year), nil
}

func (r *InvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.Invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (r *InvoiceRepo) ListCommittedByMonth(year int, month time.Month, locationID string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.Invoices {
		if !entity.InvoiceStatusCommitsStock(inv.Status) {
			continue
		}
		if inv.LocationID != locationID {
			continue
		}
		if inv.CreatedAt.Year() != year || inv.CreatedAt.Month() != month {
			continue
		}
		cp := *inv
		cp.Items = r.Items[inv.ID]
		out = append(out, &cp)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepciones
// ──────────────────────────────────────────────────────────────────────────────

// ReceiptRepo fake en memoria de ReceiptRepository.
type ReceiptRepo struct {
	Receipts         map[string]*entity.Receipt
	Items            map[string][]*entity.ReceiptItem
	ForcedDuplicates int
}

// NewReceiptRepo construye el fake.
func NewReceiptRepo() *ReceiptRepo {
	return &ReceiptRepo{Receipts: map[string]*entity.Receipt{}, Items: map[string][]*entity.ReceiptItem{}}
}

func (r *ReceiptRepo) Create(rec *entity.Receipt) error {
	if r.ForcedDuplicates > 0 {
		r.ForcedDuplicates--
		return domain.ErrDuplicate
	}
	for _, existing := range r.Receipts {
		if existing.Number == rec.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *rec
	cp.Items = nil
	r.Receipts[rec.ID] = &cp
	return nil
}

func (r *ReceiptRepo) CreateItem(item *entity.ReceiptItem) error {
	cp := *item
	r.Items[item.ReceiptID] = append(r.Items[item.ReceiptID], &cp)
	return nil
}

func (r *ReceiptRepo) Update(rec *entity.Receipt) error {
	if _, ok := r.Receipts[rec.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *rec
	cp.Items = nil
	r.Receipts[rec.ID] = &cp
	return nil
}

func (r *ReceiptRepo) UpdateItemCost(itemID string, unitCost decimal.Decimal) error {
	for _, items := range r.Items {
		for _, it := range items {
			if it.ID == itemID {
				it.UnitCost = unitCost
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (r *ReceiptRepo) ReplaceItems(receiptID string, items []*entity.ReceiptItem) error {
	out := make([]*entity.ReceiptItem, 0, len(items))
	for _, it := range items {
		cp := *it
		out = append(out, &cp)
	}
	r.Items[receiptID] = out
	return nil
}

func (r *ReceiptRepo) GetByID(id string) (*entity.Receipt, error) {
	rec, ok := r.Receipts[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *ReceiptRepo) GetItemsByReceiptID(receiptID string) ([]*entity.ReceiptItem, error) {
	return r.Items[receiptID], nil
}

func (r *ReceiptRepo) MaxSequenceForYear(year int) (int, error) {
	numbers := make([]string, 0, len(r.Receipts))
	for _, rec := range r.Receipts {
		numbers = append(numbers, rec.Number)
	}
	return maxSequenceFor(numbers, year), nil
}

func (r *ReceiptRepo) List(limit, offset int) ([]*entity.Receipt, error) {
	var out []*entity.Receipt
	for _, rec := range r.Receipts {
		out = append(out, rec)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos
// ──────────────────────────────────────────────────────────────────────────────

// OrderRepo fake en memoria de OrderRepository.
type OrderRepo struct {
	Orders map[string]*entity.Order
	Items  map[string][]*entity.OrderItem
}

// NewOrderRepo construye el fake.
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{Orders: map[string]*entity.Order{}, Items: map[string][]*entity.OrderItem{}}
}

func (r *OrderRepo) Create(o *entity.Order) error {
	for _, existing := range r.Orders {
		if existing.Number == o.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *o
	cp.Items = nil
	r.Orders[o.ID] = &cp
	return nil
}

func (r *OrderRepo) CreateItem(item *entity.OrderItem) error {
	cp := *item
	r.Items[item.OrderID] = append(r.Items[item.OrderID], &cp)
	return nil
}

func (r *OrderRepo) Update(o *entity.Order) error {
	if _, ok := r.Orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *o
	cp.Items = nil
	r.Orders[o.ID] = &cp
	return nil
}

func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	o, ok := r.Orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *OrderRepo) GetItemsByOrderID(orderID string) ([]*entity.OrderItem, error) {
	return r.Items[orderID], nil
}

func (r *OrderRepo) MaxSequenceForYear(year int) (int, error) {
	numbers := make([]string, 0, len(r.Orders))
	for _, o := range r.Orders {
		numbers = append(numbers, o.Number)
	}
	return maxSequenceFor(numbers, year), nil
}

func (r *OrderRepo) List(limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.Orders {
		out = append(out, o)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Gastos y reportes
// ──────────────────────────────────────────────────────────────────────────────

// ExpenseRepo fake en memoria de ExpenseRepository.
type ExpenseRepo struct {
	Expenses []*entity.Expense
}

// NewExpenseRepo construye el fake.
func NewExpenseRepo() *ExpenseRepo { return &ExpenseRepo{} }

func (r *ExpenseRepo) Create(e *entity.Expense) error {
	cp := *e
	r.Expenses = append(r.Expenses, &cp)
	return nil
}

func (r *ExpenseRepo) GetByID(id string) (*entity.Expense, error) {
	for _, e := range r.Expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *ExpenseRepo) ListByMonth(year int, month time.Month, locationID string) ([]*entity.Expense, error) {
	var out []*entity.Expense
	for _, e := range r.Expenses {
		if e.LocationID == locationID && e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *ExpenseRepo) SumByMonth(year int, month time.Month, locationID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	list, _ := r.ListByMonth(year, month, locationID)
	for _, e := range list {
		sum = sum.Add(e.Amount)
	}
	return sum, nil
}

// ReportRepo fake en memoria de ReportRepository. El upsert reemplaza por
// completo las cifras de la clave, igual que el real.
type ReportRepo struct {
	Reports map[string]*entity.MonthlyReport
}

// NewReportRepo construye el fake.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{Reports: map[string]*entity.MonthlyReport{}}
}

func reportKey(year int, month time.Month, locationID string) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(int(month)) + "-" + locationID
}

func (r *ReportRepo) Upsert(report *entity.MonthlyReport) error {
	cp := *report
	r.Reports[reportKey(report.Year, time.Month(report.Month), report.LocationID)] = &cp
	return nil
}

func (r *ReportRepo) Get(year int, month time.Month, locationID string) (*entity.MonthlyReport, error) {
	rep, ok := r.Reports[reportKey(year, month, locationID)]
	if !ok {
		return nil, nil
	}
	cp := *rep
	return &cp, nil
}

func (r *ReportRepo) ListByYear(year int, locationID string) ([]*entity.MonthlyReport, error) {
	var out []*entity.MonthlyReport
	for _, rep := range r.Reports {
		if rep.Year == year && rep.LocationID == locationID {
			out = append(out, rep)
		}
	}
	return out, nil
}

// UserRepo fake en memoria de UserRepository.
type UserRepo struct {
	Users map[string]*entity.User
}

// NewUserRepo construye el fake.
func NewUserRepo() *UserRepo { return &UserRepo{Users: map[string]*entity.User{}} }

func (r *UserRepo) Create(u *entity.User) error {
	for _, existing := range r.Users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.Users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(u *entity.User) error {
	if _, ok := r.Users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	r.Users[u.ID] = &cp
	return nil
}
