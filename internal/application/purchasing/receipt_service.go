package purchasing

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

// ReceiptService orquesta el ciclo de vida de la recepción de proveedor:
// crear, prorratear el flete entre las líneas, acreditar el stock (una sola
// vez, por la guarda StockAdded) y cancelar con reverso compensatorio.
type ReceiptService struct {
	txRunner     TxRunner
	stockSvc     StockRecorder
	receiptRepo  repository.ReceiptRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	dispatcher   *notify.Dispatcher
	settings     config.CompanySettings
	log          *logger.Logger
}

// NewReceiptService construye el servicio de recepciones.
func NewReceiptService(
	txRunner TxRunner,
	stockSvc StockRecorder,
	receiptRepo repository.ReceiptRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	dispatcher *notify.Dispatcher,
	settings config.CompanySettings,
	log *logger.Logger,
) *ReceiptService {
	return &ReceiptService{
		txRunner:     txRunner,
		stockSvc:     stockSvc,
		receiptRepo:  receiptRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		dispatcher:   dispatcher,
		settings:     settings,
		log:          log,
	}
}

// ReceiptItemInput línea de entrada para crear una recepción. UnitCost es el
// costo pactado con el proveedor (por paquete si PackMode).
type ReceiptItemInput struct {
	ProductID string
	Quantity  int64
	UnitCost  decimal.Decimal
	PackMode  bool
}

// CreateReceiptInput entrada para Create.
type CreateReceiptInput struct {
	LocationID    string
	SupplierName  string
	DeliveryCost  decimal.Decimal
	InitialStatus string // vacío = draft; received acredita stock de inmediato
	Notes         string
	ActorID       string
	Items         []ReceiptItemInput
}

// Create persiste la recepción y sus líneas. Si el estado inicial es received,
// prorratea el flete y acredita el stock en la misma transacción. El
// consecutivo se genera por año con reintentos acotados ante colisión.
func (s *ReceiptService) Create(ctx context.Context, in CreateReceiptInput) (*entity.Receipt, error) {
	if in.LocationID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	status := in.InitialStatus
	if status == "" {
		status = entity.ReceiptStatusDraft
	}
	switch status {
	case entity.ReceiptStatusDraft, entity.ReceiptStatusReceived:
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.DeliveryCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	loc, err := s.locationRepo.GetByID(in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	rec := &entity.Receipt{
		ID:           uuid.New().String(),
		Status:       status,
		LocationID:   in.LocationID,
		SupplierName: in.SupplierName,
		DeliveryCost: in.DeliveryCost,
		Notes:        in.Notes,
		CreatedBy:    in.ActorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	rec.Items, err = s.buildItems(rec.ID, in.Items)
	if err != nil {
		return nil, err
	}
	rec.MerchandiseTotal = merchandiseTotal(rec.Items)
	rec.Total = rec.MerchandiseTotal.Add(rec.DeliveryCost)
	if rec.MerchandiseTotal.IsZero() && rec.DeliveryCost.IsPositive() {
		// no hay base de valor sobre la cual prorratear el flete
		return nil, domain.ErrInvalidInput
	}

	var events []event.Event
	year := now.Year()

	for attempt := 1; ; attempt++ {
		err = s.txRunner.RunReceipt(ctx, func(
			movRepo repository.StockMovementRepository,
			levelRepo repository.StockLevelRepository,
			productRepo repository.ProductRepository,
			receiptRepo repository.ReceiptRepository,
		) error {
			seq, err := receiptRepo.MaxSequenceForYear(year)
			if err != nil {
				return err
			}
			rec.Number = formatNumber(s.settings.ReceiptPrefix, year, seq+1)
			if err := receiptRepo.Create(rec); err != nil {
				return err
			}
			for _, item := range rec.Items {
				if err := receiptRepo.CreateItem(item); err != nil {
					return err
				}
			}
			if status == entity.ReceiptStatusReceived {
				evs, err := s.addStockInTx(movRepo, levelRepo, productRepo, receiptRepo, rec, in.ActorID, now)
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
				Str("number", rec.Number).
				Int("attempt", attempt).
				Msg("colisión de consecutivo de recepción, reintentando")
			events = nil
			continue
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, events...)
	return rec, nil
}

// DistributeDeliveryCosts prorratea el flete entre las líneas por su
// participación en el valor de mercancía y persiste los costos ajustados.
// Corre a lo sumo una vez (guarda CostsSpread) y siempre ANTES de acreditar
// el stock, para que las entradas ya lleven el costo con flete.
func (s *ReceiptService) DistributeDeliveryCosts(ctx context.Context, receiptID string) (*entity.Receipt, error) {
	var rec *entity.Receipt
	err := s.txRunner.RunReceipt(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.StockLevelRepository,
		_ repository.ProductRepository,
		receiptRepo repository.ReceiptRepository,
	) error {
		var err error
		rec, err = s.getWithItems(receiptRepo, receiptID)
		if err != nil {
			return err
		}
		if rec.Status == entity.ReceiptStatusCancelled {
			return domain.ErrConflict
		}
		if rec.StockAdded {
			// el costo registrado en las entradas ya quedó fijo
			return domain.ErrConflict
		}
		return s.distributeInTx(receiptRepo, rec, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// AddStock acredita el libro por cada línea de la recepción, exactamente una
// vez: si StockAdded ya está en true la llamada es un no-op. Prorratea el
// flete primero si está pendiente.
func (s *ReceiptService) AddStock(ctx context.Context, receiptID, actorID string) error {
	var events []event.Event
	err := s.txRunner.RunReceipt(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		receiptRepo repository.ReceiptRepository,
	) error {
		rec, err := s.getWithItems(receiptRepo, receiptID)
		if err != nil {
			return err
		}
		events, err = s.addStockInTx(movRepo, levelRepo, productRepo, receiptRepo, rec, actorID, time.Now())
		return err
	})
	if err != nil {
		return err
	}
	s.dispatcher.Dispatch(ctx, events...)
	return nil
}

// RevertStock deshace el efecto de una recepción ya acreditada registrando
// una salida compensatoria por línea; no-op si StockAdded es false.
func (s *ReceiptService) RevertStock(ctx context.Context, receiptID, actorID string) error {
	var events []event.Event
	err := s.txRunner.RunReceipt(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		receiptRepo repository.ReceiptRepository,
	) error {
		rec, err := s.getWithItems(receiptRepo, receiptID)
		if err != nil {
			return err
		}
		events, err = s.revertInTx(movRepo, levelRepo, productRepo, receiptRepo, rec, actorID, time.Now())
		return err
	})
	if err != nil {
		return err
	}
	s.dispatcher.Dispatch(ctx, events...)
	return nil
}

// ChangeStatus transiciona la recepción validando la máquina de estados:
// a received prorratea y acredita; a cancelled revierte lo acreditado.
func (s *ReceiptService) ChangeStatus(ctx context.Context, receiptID, newStatus, actorID string) (*entity.Receipt, error) {
	var rec *entity.Receipt
	var events []event.Event
	now := time.Now()
	err := s.txRunner.RunReceipt(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
		receiptRepo repository.ReceiptRepository,
	) error {
		var err error
		rec, err = s.getWithItems(receiptRepo, receiptID)
		if err != nil {
			return err
		}
		oldStatus := rec.Status
		if !entity.ReceiptCanTransition(oldStatus, newStatus) {
			return &domain.InvalidTransitionError{Document: "receipt", From: oldStatus, To: newStatus}
		}

		switch newStatus {
		case entity.ReceiptStatusReceived:
			evs, err := s.addStockInTx(movRepo, levelRepo, productRepo, receiptRepo, rec, actorID, now)
			if err != nil {
				return err
			}
			events = append(events, evs...)
		case entity.ReceiptStatusCancelled:
			evs, err := s.revertInTx(movRepo, levelRepo, productRepo, receiptRepo, rec, actorID, now)
			if err != nil {
				return err
			}
			events = append(events, evs...)
		}

		rec.Status = newStatus
		rec.UpdatedAt = now
		if err := receiptRepo.Update(rec); err != nil {
			return err
		}
		events = append(events, event.StatusChanged{
			Document:   "receipt",
			DocumentID: rec.ID,
			Number:     rec.Number,
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
	return rec, nil
}

// Cancel revierte el stock si hacía falta y marca la recepción cancelada.
func (s *ReceiptService) Cancel(ctx context.Context, receiptID, actorID string) (*entity.Receipt, error) {
	return s.ChangeStatus(ctx, receiptID, entity.ReceiptStatusCancelled, actorID)
}

// GetReceipt obtiene una recepción por ID con sus líneas.
func (s *ReceiptService) GetReceipt(ctx context.Context, id string) (*entity.Receipt, error) {
	return s.getWithItems(s.receiptRepo, id)
}

// ListReceipts lista recepciones paginadas.
func (s *ReceiptService) ListReceipts(ctx context.Context, limit, offset int) ([]*entity.Receipt, error) {
	return s.receiptRepo.List(limit, offset)
}

// ── internos ────────────────────────────────────────────────────────────────

// distributeInTx reparte DeliveryCost entre las líneas por participación en
// el valor: cada línea recibe flete = total × (valor línea / valor mercancía),
// redondeado a 2 decimales, y la última absorbe el residuo para que la suma
// cierre exacta. El costo unitario de la línea sube en flete/cantidad.
func (s *ReceiptService) distributeInTx(receiptRepo repository.ReceiptRepository, rec *entity.Receipt, now time.Time) error {
	if rec.CostsSpread {
		return nil
	}
	if rec.DeliveryCost.IsZero() || len(rec.Items) == 0 {
		rec.CostsSpread = true
		rec.UpdatedAt = now
		return receiptRepo.Update(rec)
	}
	if rec.MerchandiseTotal.IsZero() {
		return domain.ErrInvalidInput
	}

	assigned := decimal.Zero
	for i, item := range rec.Items {
		var share decimal.Decimal
		if i == len(rec.Items)-1 {
			share = rec.DeliveryCost.Sub(assigned)
		} else {
			share = rec.DeliveryCost.Mul(item.Value()).Div(rec.MerchandiseTotal).Round(2)
			assigned = assigned.Add(share)
		}
		item.UnitCost = item.UnitCost.Add(share.Div(decimal.NewFromInt(item.Quantity)))
		if err := receiptRepo.UpdateItemCost(item.ID, item.UnitCost); err != nil {
			return err
		}
	}
	rec.CostsSpread = true
	rec.UpdatedAt = now
	return receiptRepo.Update(rec)
}

// addStockInTx prorratea el flete pendiente, registra una entrada por línea
// con el costo ajustado, actualiza el snapshot de costo del producto y marca
// la guarda. No-op si StockAdded ya está en true.
func (s *ReceiptService) addStockInTx(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	receiptRepo repository.ReceiptRepository,
	rec *entity.Receipt,
	actorID string,
	now time.Time,
) ([]event.Event, error) {
	if rec.StockAdded {
		return nil, nil
	}
	if rec.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := s.distributeInTx(receiptRepo, rec, now); err != nil {
		return nil, err
	}

	var events []event.Event
	for _, item := range rec.Items {
		product, err := productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		unitCost := item.PerUnitCost(product.UnitsPerPack)
		_, evs, err := s.stockSvc.ApplyInTx(movRepo, levelRepo, product, stock.MovementInput{
			ProductID:      item.ProductID,
			Kind:           entity.MovementKindEntry,
			Quantity:       item.Quantity,
			DestLocationID: rec.LocationID,
			PackMode:       item.PackMode,
			UnitCost:       &unitCost,
			Reference:      rec.Number,
			ActorID:        actorOr(rec.CreatedBy, actorID),
		}, now)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
		// el costo recibido (con flete) pasa a ser el costo vigente del producto
		if err := productRepo.UpdateCost(item.ProductID, unitCost); err != nil {
			return nil, err
		}
	}
	rec.StockAdded = true
	rec.UpdatedAt = now
	if err := receiptRepo.Update(rec); err != nil {
		return nil, err
	}
	return events, nil
}

// revertInTx registra una salida compensatoria por línea (mismas cantidades
// y modo paquete, marcada Correction) y baja la guarda. No-op si StockAdded
// es false.
func (s *ReceiptService) revertInTx(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	receiptRepo repository.ReceiptRepository,
	rec *entity.Receipt,
	actorID string,
	now time.Time,
) ([]event.Event, error) {
	if !rec.StockAdded {
		return nil, nil
	}
	var events []event.Event
	for _, item := range rec.Items {
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
			SourceLocationID: rec.LocationID,
			PackMode:         item.PackMode,
			Correction:       true,
			Reference:        rec.Number,
			ActorID:          actorOr(rec.CreatedBy, actorID),
		}, now)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	rec.StockAdded = false
	rec.UpdatedAt = now
	if err := receiptRepo.Update(rec); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *ReceiptService) buildItems(receiptID string, inputs []ReceiptItemInput) ([]*entity.ReceiptItem, error) {
	items := make([]*entity.ReceiptItem, 0, len(inputs))
	for _, in := range inputs {
		if in.ProductID == "" || in.Quantity <= 0 || in.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		p, err := s.productRepo.GetByID(in.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		items = append(items, &entity.ReceiptItem{
			ID:        uuid.New().String(),
			ReceiptID: receiptID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitCost:  in.UnitCost,
			PackMode:  in.PackMode,
		})
	}
	return items, nil
}

func merchandiseTotal(items []*entity.ReceiptItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Value())
	}
	return total
}

func (s *ReceiptService) getWithItems(receiptRepo repository.ReceiptRepository, id string) (*entity.Receipt, error) {
	rec, err := receiptRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	if rec.Items == nil {
		items, err := receiptRepo.GetItemsByReceiptID(id)
		if err != nil {
			return nil, err
		}
		rec.Items = items
	}
	return rec, nil
}

func actorOr(def, actor string) string {
	if actor != "" {
		return actor
	}
	return def
}
