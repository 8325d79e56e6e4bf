package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/notify"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/stock"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/event"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/config"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/logger"
)

// InvoiceService es el orquestador del ciclo de vida de la factura de venta:
// creación, descuento/restauración de stock (exactamente una vez por guarda
// StockDeducted), reemplazo de líneas, pagos y cancelación.
type InvoiceService struct {
	txRunner    TxRunner
	stockSvc    StockRecorder
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	locationRepo repository.LocationRepository
	dispatcher  *notify.Dispatcher
	settings    config.CompanySettings
	log         *logger.Logger
}

// NewInvoiceService construye el servicio de facturación.
func NewInvoiceService(
	txRunner TxRunner,
	stockSvc StockRecorder,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	dispatcher *notify.Dispatcher,
	settings config.CompanySettings,
	log *logger.Logger,
) *InvoiceService {
	return &InvoiceService{
		txRunner:     txRunner,
		stockSvc:     stockSvc,
		invoiceRepo:  invoiceRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		dispatcher:   dispatcher,
		settings:     settings,
		log:          log,
	}
}

// ItemInput línea de entrada para crear o reemplazar líneas de factura.
// UnitPrice en cero toma el precio de lista del producto (mayorista si
// PackMode, detal si no).
type ItemInput struct {
	ProductID   string
	Quantity    int64
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	PackMode    bool
}

// CreateInvoiceInput entrada para Create.
type CreateInvoiceInput struct {
	LocationID     string
	ClientName     string
	GlobalDiscount decimal.Decimal
	InitialStatus  string // vacío = draft; sent/paid descuentan stock de inmediato
	Notes          string
	ActorID        string
	Items          []ItemInput
}

// Create persiste la factura y sus líneas con el costo del producto
// snapshoteado al momento de creación; si el estado inicial implica una venta
// comprometida (sent o paid), descuenta el stock en la misma transacción.
// El consecutivo se genera por año bajo la transacción, con reintentos
// acotados ante colisión.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*entity.Invoice, error) {
	if in.LocationID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	status := in.InitialStatus
	if status == "" {
		status = entity.InvoiceStatusDraft
	}
	switch status {
	case entity.InvoiceStatusDraft, entity.InvoiceStatusSent, entity.InvoiceStatusPaid:
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.GlobalDiscount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	loc, err := s.locationRepo.GetByID(in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	products, err := s.loadProducts(in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inv := &entity.Invoice{
		ID:             uuid.New().String(),
		Status:         status,
		LocationID:     in.LocationID,
		ClientName:     in.ClientName,
		GlobalDiscount: in.GlobalDiscount,
		AmountPaid:     decimal.Zero,
		Notes:          in.Notes,
		CreatedBy:      in.ActorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	inv.Items, err = s.buildItems(inv.ID, in.Items, products)
	if err != nil {
		return nil, err
	}
	totals := CalculateTotals(inv.Items, inv.GlobalDiscount, s.settings.TaxRatePct)
	inv.Subtotal, inv.TaxTotal, inv.Total, inv.TotalProfit = totals.Subtotal, totals.TaxTotal, totals.Total, totals.Profit
	if status == entity.InvoiceStatusPaid {
		inv.AmountPaid = inv.Total
	}

	var events []event.Event
	year := now.Year()

	// Consecutivo bajo transacción: leer el mayor del año e incrementar.
	// Colisión (unique violation) => reintento acotado, jamás duplicado.
	for attempt := 1; ; attempt++ {
		err = s.txRunner.RunInvoice(ctx, func(
			movRepo repository.StockMovementRepository,
			levelRepo repository.StockLevelRepository,
			productRepo repository.ProductRepository,
			invoiceRepo repository.InvoiceRepository,
		) error {
			seq, err := invoiceRepo.MaxSequenceForYear(year)
			if err != nil {
				return err
			}
			inv.Number = FormatNumber(s.settings.InvoicePrefix, year, seq+1)
			if err := invoiceRepo.Create(inv); err != nil {
				return err
			}
			for _, item := range inv.Items {
				if err := invoiceRepo.CreateItem(item); err != nil {
					return err
				}
			}
			if entity.InvoiceStatusCommitsStock(status) {
				evs, err := s.deductInTx(movRepo, levelRepo, productRepo, invoiceRepo, inv, in.ActorID, now)
				if err != nil {
					return err
				}
				events = evs
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicate) && attempt < maxNumberAttempts {
			s.log.Warn().
				Str("number", inv.Number).
				Int("attempt", attempt).
				Msg("colisión de consecutivo de factura, reintentando")
			events = nil
			continue
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, events...)
	return inv, nil
}

// DeductStock debita el libro por cada línea de la factura, exactamente una
// vez: si StockDeducted ya está en true la llamada es un no-op (guarda de
// idempotencia revisada DENTRO de la transacción).
func (s *InvoiceService) DeductStock(ctx context.Context, invoiceID, actorID string) error {
	var events []event.Event
	err := s.txRunner.RunInvoice(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		inv, err := s.getWithItems(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		events, err = s.deductInTx(movRepo, levelRepo, productRepo, invoiceRepo, inv, actorID, time.Now())
		return err
	})
	if err != nil {
		return err
	}
	s.dispatcher.Dispatch(ctx, events...)
	return nil
}

// RestoreStock revierte el efecto de stock de una factura ya debitada
// registrando una devolución por línea; no-op si StockDeducted es false.
// Es el único camino por el que se deshace el descuento de una factura.
func (s *InvoiceService) RestoreStock(ctx context.Context, invoiceID, actorID string) error {
	var events []event.Event
	err := s.txRunner.RunInvoice(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		inv, err := s.getWithItems(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		events, err = s.restoreInTx(movRepo, levelRepo, productRepo, invoiceRepo, inv, actorID, time.Now())
		return err
	})
	if err != nil {
		return err
	}
	s.dispatcher.Dispatch(ctx, events...)
	return nil
}

// UpdateItems reemplaza las líneas de la factura. Si el stock ya estaba
// debitado, restaura y re-debita alrededor del reemplazo en la misma
// transacción: el stock nunca queda reflejando ni el juego viejo ni el nuevo
// a medias. Recalcula totales después del reemplazo.
func (s *InvoiceService) UpdateItems(ctx context.Context, invoiceID string, newItems []ItemInput, actorID string) (*entity.Invoice, error) {
	if len(newItems) == 0 {
		return nil, domain.ErrInvalidInput
	}
	products, err := s.loadProducts(newItems)
	if err != nil {
		return nil, err
	}

	var inv *entity.Invoice
	var events []event.Event
	now := time.Now()
	err = s.txRunner.RunInvoice(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		inv, err = s.getWithItems(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == entity.InvoiceStatusCancelled {
			return domain.ErrConflict
		}
		wasDeducted := inv.StockDeducted

		if wasDeducted {
			evs, err := s.restoreInTx(movRepo, levelRepo, productRepo, invoiceRepo, inv, actorID, now)
			if err != nil {
				return err
			}
			events = append(events, evs...)
		}

		items, err := s.buildItems(inv.ID, newItems, products)
		if err != nil {
			return err
		}
		inv.Items = items
		if err := invoiceRepo.ReplaceItems(inv.ID, items); err != nil {
			return err
		}

		totals := CalculateTotals(inv.Items, inv.GlobalDiscount, s.settings.TaxRatePct)
		inv.Subtotal, inv.TaxTotal, inv.Total, inv.TotalProfit = totals.Subtotal, totals.TaxTotal, totals.Total, totals.Profit
		inv.UpdatedAt = now

		if wasDeducted {
			evs, err := s.deductInTx(movRepo, levelRepo, productRepo, invoiceRepo, inv, actorID, now)
			if err != nil {
				return err
			}
			events = append(events, evs...)
		}
		return invoiceRepo.Update(inv)
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, events...)
	return inv, nil
}

// ChangeStatus transiciona la factura validando la máquina de estados y
// dispara a lo sumo un descuento o una restauración de stock por transición.
// La transición a paid garantiza que el stock quede descontado sin requerir
// una segunda llamada del caller.
func (s *InvoiceService) ChangeStatus(ctx context.Context, invoiceID, newStatus, actorID string) (*entity.Invoice, error) {
	var inv *entity.Invoice
	var events []event.Event
	now := time.Now()
	err := s.txRunner.RunInvoice(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		var err error
		inv, err = s.getWithItems(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		oldStatus := inv.Status
		if !entity.InvoiceCanTransition(oldStatus, newStatus) {
			return &domain.InvalidTransitionError{Document: "invoice", From: oldStatus, To: newStatus}
		}

		switch {
		case newStatus == entity.InvoiceStatusCancelled:
			evs, err := s.restoreInTx(movRepo, levelRepo, productRepo, invoiceRepo, inv, actorID, now)
			if err != nil {
				return err
			}
			events = append(events, evs...)
		case entity.InvoiceStatusCommitsStock(newStatus) && !entity.InvoiceStatusCommitsStock(oldStatus):
			evs, err := s.deductInTx(movRepo, levelRepo, productRepo, invoiceRepo, inv, actorID, now)
			if err != nil {
				return err
			}
			events = append(events, evs...)
		}

		if newStatus == entity.InvoiceStatusPaid {
			inv.AmountPaid = inv.Total
		}
		inv.Status = newStatus
		inv.UpdatedAt = now
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}
		events = append(events, event.StatusChanged{
			Document:   "invoice",
			DocumentID: inv.ID,
			Number:     inv.Number,
			From:       oldStatus,
			To:         newStatus,
			At:         now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, events...)
	return inv, nil
}

// Cancel restaura el stock si hacía falta y marca la factura cancelada.
func (s *InvoiceService) Cancel(ctx context.Context, invoiceID, actorID string) (*entity.Invoice, error) {
	return s.ChangeStatus(ctx, invoiceID, entity.InvoiceStatusCancelled, actorID)
}

// RegisterPayment acumula un pago. Al alcanzar el saldo completo la factura
// pasa a paid — y con ello el stock queda descontado como efecto de la
// transición, no como acción aparte del caller. Un pago parcial sobre una
// factura enviada la deja en partially_paid. El monto acumulado y la
// transición se confirman en la misma transacción: la factura queda en su
// estado previo o en el nuevo, nunca a medio camino.
func (s *InvoiceService) RegisterPayment(ctx context.Context, invoiceID string, amount decimal.Decimal, actorID string) (*entity.Invoice, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var inv *entity.Invoice
	var events []event.Event
	now := time.Now()
	err := s.txRunner.RunInvoice(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		var err error
		inv, err = s.getWithItems(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		switch inv.Status {
		case entity.InvoiceStatusDraft, entity.InvoiceStatusSent, entity.InvoiceStatusPartiallyPaid:
		default:
			return domain.ErrConflict
		}

		oldStatus := inv.Status
		newPaid := inv.AmountPaid.Add(amount)
		target := entity.InvoiceStatusPartiallyPaid
		if newPaid.GreaterThanOrEqual(inv.Total) {
			target = entity.InvoiceStatusPaid
		}
		if oldStatus != target && !entity.InvoiceCanTransition(oldStatus, target) {
			// pago parcial sobre draft: debe enviarse primero
			return &domain.InvalidTransitionError{Document: "invoice", From: oldStatus, To: target}
		}

		if entity.InvoiceStatusCommitsStock(target) && !entity.InvoiceStatusCommitsStock(oldStatus) {
			evs, err := s.deductInTx(movRepo, levelRepo, productRepo, invoiceRepo, inv, actorID, now)
			if err != nil {
				return err
			}
			events = append(events, evs...)
		}

		inv.AmountPaid = newPaid
		inv.Status = target
		inv.UpdatedAt = now
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}
		if oldStatus != target {
			events = append(events, event.StatusChanged{
				Document:   "invoice",
				DocumentID: inv.ID,
				Number:     inv.Number,
				From:       oldStatus,
				To:         target,
				At:         now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, events...)
	return inv, nil
}

// GetInvoice obtiene una factura por ID con sus líneas.
func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	return s.getWithItems(s.invoiceRepo, id)
}

// ListInvoices lista facturas paginadas.
func (s *InvoiceService) ListInvoices(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	return s.invoiceRepo.List(limit, offset)
}

// ── internos ────────────────────────────────────────────────────────────────

// deductInTx registra una salida por línea y marca la guarda, todo con los
// repos de la transacción del caller. No-op si la guarda ya está en true.
func (s *InvoiceService) deductInTx(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	inv *entity.Invoice,
	actorID string,
	now time.Time,
) ([]event.Event, error) {
	if inv.StockDeducted {
		return nil, nil
	}
	if inv.LocationID == "" {
		// error de configuración del documento, nunca un skip silencioso
		return nil, domain.ErrInvalidInput
	}
	var events []event.Event
	for _, item := range inv.Items {
		product, err := productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		_, evs, err := s.stockSvc.ApplyInTx(movRepo, levelRepo, product, stock.MovementInput{
			ProductID:        item.ProductID,
			Kind:             entity.MovementKindExit,
			Quantity:         item.Quantity,
			SourceLocationID: inv.LocationID,
			PackMode:         item.PackMode,
			Reference:        inv.Number,
			ActorID:          actorOr(inv.CreatedBy, actorID),
		}, now)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	inv.StockDeducted = true
	inv.UpdatedAt = now
	if err := invoiceRepo.Update(inv); err != nil {
		return nil, err
	}
	return events, nil
}

// restoreInTx registra una devolución por línea (mismas cantidades y modo
// paquete) y baja la guarda. No-op si la guarda está en false.
func (s *InvoiceService) restoreInTx(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	inv *entity.Invoice,
	actorID string,
	now time.Time,
) ([]event.Event, error) {
	if !inv.StockDeducted {
		return nil, nil
	}
	var events []event.Event
	for _, item := range inv.Items {
		product, err := productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		_, evs, err := s.stockSvc.ApplyInTx(movRepo, levelRepo, product, stock.MovementInput{
			ProductID:        item.ProductID,
			Kind:             entity.MovementKindReturn,
			Quantity:         item.Quantity,
			SourceLocationID: inv.LocationID,
			PackMode:         item.PackMode,
			Correction:       true,
			Reference:        inv.Number,
			ActorID:          actorOr(inv.CreatedBy, actorID),
		}, now)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	inv.StockDeducted = false
	inv.UpdatedAt = now
	if err := invoiceRepo.Update(inv); err != nil {
		return nil, err
	}
	return events, nil
}

// buildItems arma las líneas snapshoteando precio de lista y costo del
// producto al momento de la llamada.
func (s *InvoiceService) buildItems(invoiceID string, inputs []ItemInput, products map[string]*entity.Product) ([]*entity.InvoiceItem, error) {
	items := make([]*entity.InvoiceItem, 0, len(inputs))
	hundred := decimal.NewFromInt(100)
	for _, in := range inputs {
		if in.Quantity <= 0 || in.DiscountPct.IsNegative() || in.DiscountPct.GreaterThan(hundred) {
			return nil, domain.ErrInvalidInput
		}
		product := products[in.ProductID]
		price := in.UnitPrice
		if price.IsZero() {
			if in.PackMode {
				price = product.WholesalePrice
			} else {
				price = product.RetailPrice
			}
		}
		if price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		cost := product.Cost
		if in.PackMode {
			cost = product.PackCost()
		}
		items = append(items, &entity.InvoiceItem{
			ID:          uuid.New().String(),
			InvoiceID:   invoiceID,
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			UnitPrice:   price,
			DiscountPct: in.DiscountPct,
			PackMode:    in.PackMode,
			UnitCost:    cost,
		})
	}
	return items, nil
}

// loadProducts valida y carga los productos referenciados por las líneas.
func (s *InvoiceService) loadProducts(inputs []ItemInput) (map[string]*entity.Product, error) {
	products := make(map[string]*entity.Product, len(inputs))
	for _, in := range inputs {
		if in.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if _, ok := products[in.ProductID]; ok {
			continue
		}
		p, err := s.productRepo.GetByID(in.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		products[in.ProductID] = p
	}
	return products, nil
}

func (s *InvoiceService) getWithItems(invoiceRepo repository.InvoiceRepository, id string) (*entity.Invoice, error) {
	inv, err := invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.Items == nil {
		items, err := invoiceRepo.GetItemsByInvoiceID(id)
		if err != nil {
			return nil, err
		}
		inv.Items = items
	}
	return inv, nil
}

func actorOr(def, actor string) string {
	if actor != "" {
		return actor
	}
	return def
}
