package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/notify"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/event"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/logger"
)

// Service registra movimientos de inventario (ENTRY, EXIT, TRANSFER,
// ADJUSTMENT, RETURN) de forma transaccional, con bloqueo de fila
// (SELECT FOR UPDATE) sobre la proyección y Commit/Rollback en una sola
// unidad. Es el único componente que escribe StockLevel.Quantity.
type Service struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	levelRepo    repository.StockLevelRepository
	movementRepo repository.StockMovementRepository
	dispatcher   *notify.Dispatcher
	log          *logger.Logger
}

// NewService construye el servicio de stock.
func NewService(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	levelRepo repository.StockLevelRepository,
	movementRepo repository.StockMovementRepository,
	dispatcher *notify.Dispatcher,
	log *logger.Logger,
) *Service {
	return &Service{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		levelRepo:    levelRepo,
		movementRepo: movementRepo,
		dispatcher:   dispatcher,
		log:          log,
	}
}

// MovementInput entrada para registrar un movimiento.
// Para ENTRY: DestLocationID. Para EXIT/ADJUSTMENT/RETURN: SourceLocationID.
// Para TRANSFER: ambas, distintas. Quantity en unidades, o en paquetes si PackMode.
type MovementInput struct {
	ProductID        string
	Kind             string
	Quantity         int64
	SourceLocationID string
	DestLocationID   string
	PackMode         bool
	// Correction marca el movimiento como reverso de corrección/cancelación:
	// omite el control de disponibilidad y recorta la salida a cero en vez de
	// rechazarla. Nunca implícito: el caller debe pedirlo.
	Correction bool
	UnitCost   *decimal.Decimal // costo unitario registrado (entradas)
	Reference  string
	Notes      string
	ActorID    string
}

// RecordEntry registra una entrada de mercancía en la ubicación destino.
func (s *Service) RecordEntry(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	in.Kind = entity.MovementKindEntry
	return s.recordMovement(ctx, in)
}

// RecordExit registra una salida (venta) desde la ubicación origen.
func (s *Service) RecordExit(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	in.Kind = entity.MovementKindExit
	return s.recordMovement(ctx, in)
}

// RecordTransfer registra un traslado entre dos ubicaciones distintas.
func (s *Service) RecordTransfer(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	in.Kind = entity.MovementKindTransfer
	return s.recordMovement(ctx, in)
}

// RecordAdjustment fija la proyección a un valor absoluto (conteo físico),
// no un delta.
func (s *Service) RecordAdjustment(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	in.Kind = entity.MovementKindAdjustment
	return s.recordMovement(ctx, in)
}

// RecordReturn registra una devolución: acredita como entrada en la ubicación
// origen, etiquetada aparte para reportes.
func (s *Service) RecordReturn(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	in.Kind = entity.MovementKindReturn
	return s.recordMovement(ctx, in)
}

// recordMovement valida, ejecuta la transacción (movimiento + proyección en
// una unidad atómica) y despacha los eventos después del commit.
func (s *Service) recordMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.checkLocations(in); err != nil {
		return nil, err
	}

	now := time.Now()
	var mov *entity.StockMovement
	var events []event.Event

	err = s.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		levelRepo repository.StockLevelRepository,
		_ repository.ProductRepository,
	) error {
		var applyErr error
		mov, events, applyErr = s.ApplyInTx(movRepo, levelRepo, product, in, now)
		return applyErr
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, events...)
	return mov, nil
}

// ApplyInTx ejecuta un movimiento usando los repositorios del caller (misma
// transacción). Lo usan los servicios de documentos para que la mutación de
// stock y el flag del documento se confirmen juntos. Devuelve los eventos a
// despachar DESPUÉS del commit del caller.
func (s *Service) ApplyInTx(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	product *entity.Product,
	in MovementInput,
	now time.Time,
) (*entity.StockMovement, []event.Event, error) {
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}
	eff := product.EffectiveUnits(in.Quantity, in.PackMode)

	var events []event.Event
	touch := func(level *entity.StockLevel) {
		if level.Quantity <= level.ReorderLevel {
			events = append(events, event.LowStock{
				ProductID:    level.ProductID,
				LocationID:   level.LocationID,
				Quantity:     level.Quantity,
				ReorderLevel: level.ReorderLevel,
				At:           now,
			})
		}
	}

	switch in.Kind {
	case entity.MovementKindEntry, entity.MovementKindReturn:
		locID := in.DestLocationID
		if in.Kind == entity.MovementKindReturn {
			locID = in.SourceLocationID
		}
		level, err := levelRepo.GetForUpdate(in.ProductID, locID)
		if err != nil {
			return nil, nil, err
		}
		level.Quantity += eff
		level.UpdatedAt = now
		if err := levelRepo.Upsert(level); err != nil {
			return nil, nil, err
		}
		touch(level)

	case entity.MovementKindExit:
		level, err := levelRepo.GetForUpdate(in.ProductID, in.SourceLocationID)
		if err != nil {
			return nil, nil, err
		}
		if err := checkWithdrawal(level, eff, in.Correction); err != nil {
			return nil, nil, err
		}
		level.Quantity -= eff
		if level.Quantity < 0 {
			level.Quantity = 0 // solo alcanzable en correcciones
		}
		level.UpdatedAt = now
		if err := levelRepo.Upsert(level); err != nil {
			return nil, nil, err
		}
		touch(level)

	case entity.MovementKindTransfer:
		// Ambas filas se bloquean en orden canónico: dos transferencias
		// opuestas concurrentes adquieren los locks en el mismo orden y no
		// pueden interbloquearse.
		firstLoc, secondLoc := in.SourceLocationID, in.DestLocationID
		if secondLoc < firstLoc {
			firstLoc, secondLoc = secondLoc, firstLoc
		}
		first, err := levelRepo.GetForUpdate(in.ProductID, firstLoc)
		if err != nil {
			return nil, nil, err
		}
		second, err := levelRepo.GetForUpdate(in.ProductID, secondLoc)
		if err != nil {
			return nil, nil, err
		}
		source, dest := first, second
		if firstLoc != in.SourceLocationID {
			source, dest = second, first
		}
		if err := checkWithdrawal(source, eff, in.Correction); err != nil {
			return nil, nil, err
		}
		source.Quantity -= eff
		if source.Quantity < 0 {
			source.Quantity = 0
		}
		dest.Quantity += eff
		source.UpdatedAt = now
		dest.UpdatedAt = now
		if err := levelRepo.Upsert(source); err != nil {
			return nil, nil, err
		}
		if err := levelRepo.Upsert(dest); err != nil {
			return nil, nil, err
		}
		touch(source)
		touch(dest)

	case entity.MovementKindAdjustment:
		level, err := levelRepo.GetForUpdate(in.ProductID, in.SourceLocationID)
		if err != nil {
			return nil, nil, err
		}
		level.Quantity = eff // valor absoluto, no delta
		level.UpdatedAt = now
		if err := levelRepo.Upsert(level); err != nil {
			return nil, nil, err
		}
		touch(level)

	default:
		return nil, nil, domain.ErrInvalidInput
	}

	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductID:        in.ProductID,
		Kind:             in.Kind,
		Quantity:         in.Quantity,
		SourceLocationID: in.SourceLocationID,
		DestLocationID:   in.DestLocationID,
		PackMode:         in.PackMode,
		Correction:       in.Correction,
		UnitCost:         in.UnitCost,
		Reference:        in.Reference,
		Notes:            in.Notes,
		CreatedBy:        in.ActorID,
		CreatedAt:        now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, nil, err
	}

	if in.Kind == entity.MovementKindTransfer {
		events = append(events, event.TransferCompleted{
			ProductID:        in.ProductID,
			SourceLocationID: in.SourceLocationID,
			DestLocationID:   in.DestLocationID,
			Quantity:         eff,
			MovementID:       mov.ID,
			At:               now,
		})
	}
	return mov, events, nil
}

// checkWithdrawal valida que la salida no supere lo retirable:
// max(actual - umbral, 0). Las correcciones omiten el control por completo.
func checkWithdrawal(level *entity.StockLevel, required int64, correction bool) error {
	if correction {
		return nil
	}
	maxAllowed := level.Quantity - level.ReorderLevel
	if maxAllowed < 0 {
		maxAllowed = 0
	}
	if required > maxAllowed {
		return &domain.InsufficientStockError{
			ProductID:    level.ProductID,
			LocationID:   level.LocationID,
			Current:      level.Quantity,
			Required:     required,
			ReorderLevel: level.ReorderLevel,
			MaxAllowed:   maxAllowed,
		}
	}
	return nil
}

// validateInput valida tipo, cantidad y ubicaciones requeridas según el tipo.
func validateInput(in MovementInput) error {
	if in.ProductID == "" || !entity.ValidMovementKind(in.Kind) {
		return domain.ErrInvalidInput
	}
	// Cantidad positiva siempre; el ajuste admite cero (conteo físico en cero).
	if in.Quantity < 0 || (in.Quantity == 0 && in.Kind != entity.MovementKindAdjustment) {
		return domain.ErrInvalidInput
	}
	switch in.Kind {
	case entity.MovementKindEntry:
		if in.DestLocationID == "" {
			return domain.ErrInvalidInput
		}
	case entity.MovementKindExit, entity.MovementKindAdjustment, entity.MovementKindReturn:
		if in.SourceLocationID == "" {
			return domain.ErrInvalidInput
		}
	case entity.MovementKindTransfer:
		if in.SourceLocationID == "" || in.DestLocationID == "" {
			return domain.ErrInvalidInput
		}
		if in.SourceLocationID == in.DestLocationID {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// checkLocations valida que las ubicaciones referenciadas existan.
func (s *Service) checkLocations(in MovementInput) error {
	for _, id := range []string{in.SourceLocationID, in.DestLocationID} {
		if id == "" {
			continue
		}
		loc, err := s.locationRepo.GetByID(id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// CheckAvailability lectura pura de pre-validación: indica si hoy se podría
// retirar la cantidad pedida. No es atómica con la mutación — el camino
// mutador re-valida siempre.
func (s *Service) CheckAvailability(ctx context.Context, productID, locationID string, required int64) (bool, error) {
	level, err := s.levelRepo.Get(productID, locationID)
	if err != nil {
		return false, err
	}
	maxAllowed := level.Quantity - level.ReorderLevel
	if maxAllowed < 0 {
		maxAllowed = 0
	}
	return required <= maxAllowed, nil
}

// GetAvailableStock devuelve la cantidad actual del producto en la ubicación.
func (s *Service) GetAvailableStock(ctx context.Context, productID, locationID string) (int64, error) {
	level, err := s.levelRepo.Get(productID, locationID)
	if err != nil {
		return 0, err
	}
	return level.Quantity, nil
}

// GetStockStatus clasifica el nivel: in_stock, low_stock u out_of_stock.
func (s *Service) GetStockStatus(ctx context.Context, productID, locationID string) (string, error) {
	level, err := s.levelRepo.Get(productID, locationID)
	if err != nil {
		return "", err
	}
	return level.Status(), nil
}

// SetReorderLevel ajusta el umbral de reposición de la proyección. Es master
// data: no pasa por el libro de movimientos.
func (s *Service) SetReorderLevel(ctx context.Context, productID, locationID string, reorderLevel int64) error {
	if reorderLevel < 0 {
		return domain.ErrInvalidInput
	}
	return s.levelRepo.UpdateReorderLevel(productID, locationID, reorderLevel)
}

// GetTotalStock suma la existencia del producto en todas las ubicaciones.
func (s *Service) GetTotalStock(ctx context.Context, productID string) (int64, error) {
	return s.levelRepo.SumByProduct(productID)
}

// ListStockByLocation lista la proyección de una ubicación.
func (s *Service) ListStockByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockLevel, error) {
	return s.levelRepo.ListByLocation(locationID, limit, offset)
}

// ListBelowReorder lista los niveles en o por debajo de su umbral de
// reposición en una ubicación.
func (s *Service) ListBelowReorder(ctx context.Context, locationID string) ([]*entity.StockLevel, error) {
	return s.levelRepo.ListBelowReorder(locationID)
}

// GetMovementsByProduct lista el historial de movimientos de un producto.
func (s *Service) GetMovementsByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return s.movementRepo.ListByProduct(productID, from, to, limit, offset)
}

// GetMovementsByLocation lista el historial de movimientos de una ubicación.
func (s *Service) GetMovementsByLocation(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return s.movementRepo.ListByLocation(locationID, from, to, limit, offset)
}

// UpdateMovementNotes corrige las notas de un movimiento: única mutación
// permitida sobre un hecho persistido, explícita y auditada con el actor.
func (s *Service) UpdateMovementNotes(ctx context.Context, movementID, notes, actorID string) error {
	mov, err := s.movementRepo.GetByID(movementID)
	if err != nil {
		return err
	}
	if mov == nil {
		return domain.ErrNotFound
	}
	s.log.Info().
		Str("movement_id", movementID).
		Str("actor", actorID).
		Msg("corrección auditada de notas de movimiento")
	return s.movementRepo.UpdateNotes(movementID, notes, actorID)
}

// DeleteMovement rechaza siempre: el libro es append-only. Las correcciones se
// hacen con un movimiento compensatorio. Se loguea fuerte porque un caller que
// llega aquí está saltándose el contrato de la API pública.
func (s *Service) DeleteMovement(ctx context.Context, movementID, actorID string) error {
	s.log.Error().
		Str("movement_id", movementID).
		Str("actor", actorID).
		Msg("intento de borrar un movimiento del libro")
	return domain.ErrInvariantViolation
}
