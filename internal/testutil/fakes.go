// Package testutil provee fakes en memoria de los puertos de persistencia
// para los tests unitarios de los servicios de aplicación. Los fakes imitan
// el contrato observable de los repositorios reales (ej: proyección en cero
// cuando no hay fila, ErrDuplicate en colisión de consecutivo) sin base de
// datos.
package testutil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/event"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
)

// Key arma la clave de proyección (producto, ubicación).
func Key(productID, locationID string) string { return productID + "|" + locationID }

// ──────────────────────────────────────────────────────────────────────────────
// Libro de movimientos
// ──────────────────────────────────────────────────────────────────────────────

// MovementRepo fake en memoria de StockMovementRepository.
type MovementRepo struct {
	Movements []*entity.StockMovement
}

// NewMovementRepo construye el fake.
func NewMovementRepo() *MovementRepo { return &MovementRepo{} }

func (r *MovementRepo) Create(m *entity.StockMovement) error {
	cp := *m
	r.Movements = append(r.Movements, &cp)
	return nil
}

func (r *MovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.Movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.Movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MovementRepo) ListByLocation(locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.Movements {
		if m.SourceLocationID == locationID || m.DestLocationID == locationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MovementRepo) ListByReference(reference string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.Movements {
		if m.Reference == reference {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MovementRepo) UpdateNotes(id, notes, updatedBy string) error {
	for _, m := range r.Movements {
		if m.ID == id {
			m.Notes = notes
			m.NotesUpdatedBy = updatedBy
			now := time.Now()
			m.NotesUpdatedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

// ByKind filtra los movimientos registrados por tipo.
func (r *MovementRepo) ByKind(kind string) []*entity.StockMovement {
	var out []*entity.StockMovement
	for _, m := range r.Movements {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Proyección de stock
// ──────────────────────────────────────────────────────────────────────────────

// LevelRepo fake en memoria de StockLevelRepository.
type LevelRepo struct {
	Levels map[string]*entity.StockLevel
}

// NewLevelRepo construye el fake.
func NewLevelRepo() *LevelRepo {
	return &LevelRepo{Levels: map[string]*entity.StockLevel{}}
}

// Seed fija una proyección inicial.
func (r *LevelRepo) Seed(productID, locationID string, qty, reorder int64) {
	r.Levels[Key(productID, locationID)] = &entity.StockLevel{
		ProductID:    productID,
		LocationID:   locationID,
		Quantity:     qty,
		ReorderLevel: reorder,
	}
}

// Quantity cantidad actual del par (0 si no hay fila).
func (r *LevelRepo) Quantity(productID, locationID string) int64 {
	if lvl, ok := r.Levels[Key(productID, locationID)]; ok {
		return lvl.Quantity
	}
	return 0
}

func (r *LevelRepo) Get(productID, locationID string) (*entity.StockLevel, error) {
	if lvl, ok := r.Levels[Key(productID, locationID)]; ok {
		cp := *lvl
		return &cp, nil
	}
	// Igual que el repositorio real: sin fila, proyección en cero.
	return &entity.StockLevel{ProductID: productID, LocationID: locationID}, nil
}

func (r *LevelRepo) GetForUpdate(productID, locationID string) (*entity.StockLevel, error) {
	return r.Get(productID, locationID)
}

func (r *LevelRepo) Upsert(level *entity.StockLevel) error {
	cp := *level
	r.Levels[Key(level.ProductID, level.LocationID)] = &cp
	return nil
}

func (r *LevelRepo) UpdateReorderLevel(productID, locationID string, reorderLevel int64) error {
	lvl, _ := r.Get(productID, locationID)
	lvl.ReorderLevel = reorderLevel
	return r.Upsert(lvl)
}

func (r *LevelRepo) SumByProduct(productID string) (int64, error) {
	var sum int64
	for _, lvl := range r.Levels {
		if lvl.ProductID == productID {
			sum += lvl.Quantity
		}
	}
	return sum, nil
}

func (r *LevelRepo) ListByLocation(locationID string, limit, offset int) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, lvl := range r.Levels {
		if lvl.LocationID == locationID {
			out = append(out, lvl)
		}
	}
	return out, nil
}

func (r *LevelRepo) ListBelowReorder(locationID string) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, lvl := range r.Levels {
		if lvl.LocationID == locationID && lvl.Quantity <= lvl.ReorderLevel {
			out = append(out, lvl)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

// ProductRepo fake en memoria de ProductRepository. Costs registra las
// actualizaciones de snapshot de costo (UpdateCost) para aserciones.
type ProductRepo struct {
	Products map[string]*entity.Product
	Costs    map[string]decimal.Decimal
}

// NewProductRepo construye el fake con los productos dados.
func NewProductRepo(products ...*entity.Product) *ProductRepo {
	r := &ProductRepo{Products: map[string]*entity.Product{}, Costs: map[string]decimal.Decimal{}}
	for _, p := range products {
		r.Products[p.ID] = p
	}
	return r
}

func (r *ProductRepo) Create(p *entity.Product) error { r.Products[p.ID] = p; return nil }

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) { return r.Products[id], nil }

func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.Products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(p *entity.Product) error { r.Products[p.ID] = p; return nil }

func (r *ProductRepo) UpdateCost(productID string, cost decimal.Decimal) error {
	r.Costs[productID] = cost
	if p, ok := r.Products[productID]; ok {
		p.Cost = cost
	}
	return nil
}

func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.Products {
		out = append(out, p)
	}
	return out, nil
}

// LocationRepo fake en memoria de LocationRepository.
type LocationRepo struct {
	Locations map[string]*entity.Location
}

// NewLocationRepo construye el fake con ubicaciones de los IDs dados.
func NewLocationRepo(ids ...string) *LocationRepo {
	r := &LocationRepo{Locations: map[string]*entity.Location{}}
	for _, id := range ids {
		r.Locations[id] = &entity.Location{ID: id, Code: id, Name: "Ubicación " + id}
	}
	return r
}

func (r *LocationRepo) Create(l *entity.Location) error { r.Locations[l.ID] = l; return nil }

func (r *LocationRepo) GetByID(id string) (*entity.Location, error) { return r.Locations[id], nil }

func (r *LocationRepo) GetByCode(code string) (*entity.Location, error) {
	for _, l := range r.Locations {
		if l.Code == code {
			return l, nil
		}
	}
	return nil, nil
}

func (r *LocationRepo) Update(l *entity.Location) error { r.Locations[l.ID] = l; return nil }

func (r *LocationRepo) List(limit, offset int) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, l := range r.Locations {
		out = append(out, l)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Eventos y transacciones
// ──────────────────────────────────────────────────────────────────────────────

// Notifier acumula los eventos despachados para aserciones.
type Notifier struct {
	Events []event.Event
}

func (n *Notifier) Notify(ctx context.Context, ev event.Event) error {
	n.Events = append(n.Events, ev)
	return nil
}

// OfType devuelve los eventos del nombre dado.
func (n *Notifier) OfType(name string) []event.Event {
	var out []event.Event
	for _, ev := range n.Events {
		if ev.Name() == name {
			out = append(out, ev)
		}
	}
	return out
}

// TxRunner ejecuta las funciones directamente contra los fakes, sin
// transacción real. Satisface los puertos TxRunner de stock, billing,
// purchasing y orders.
type TxRunner struct {
	MovRepo     *MovementRepo
	LevelRepo   *LevelRepo
	ProductRepo *ProductRepo
	InvoiceRepo *InvoiceRepo
	ReceiptRepo *ReceiptRepo
	OrderRepo   *OrderRepo
}

func (t *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(t.MovRepo, t.LevelRepo, t.ProductRepo)
}

func (t *TxRunner) RunInvoice(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return fn(t.MovRepo, t.LevelRepo, t.ProductRepo, t.InvoiceRepo)
}

func (t *TxRunner) RunReceipt(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	receiptRepo repository.ReceiptRepository,
) error) error {
	return fn(t.MovRepo, t.LevelRepo, t.ProductRepo, t.ReceiptRepo)
}

func (t *TxRunner) RunOrder(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return fn(t.MovRepo, t.LevelRepo, t.ProductRepo, t.OrderRepo)
}
