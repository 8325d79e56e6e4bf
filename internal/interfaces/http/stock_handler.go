package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/dto"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/stock"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// StockHandler maneja el libro de movimientos y la proyección de stock (protegido).
type StockHandler struct {
	svc *stock.Service
}

// NewStockHandler construye el handler de stock.
func NewStockHandler(svc *stock.Service) *StockHandler {
	return &StockHandler{svc: svc}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  kind: ENTRY, EXIT, TRANSFER, ADJUSTMENT o RETURN. TRANSFER
//               exige source y dest distintas; ADJUSTMENT fija la cantidad
//               absoluta tras conteo físico.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := stock.MovementInput{
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
		ActorID:          GetUserID(c),
	}

	var mov *entity.StockMovement
	var err error
	switch in.Kind {
	case entity.MovementKindEntry:
		mov, err = h.svc.RecordEntry(c.Context(), input)
	case entity.MovementKindExit:
		mov, err = h.svc.RecordExit(c.Context(), input)
	case entity.MovementKindTransfer:
		mov, err = h.svc.RecordTransfer(c.Context(), input)
	case entity.MovementKindAdjustment:
		mov, err = h.svc.RecordAdjustment(c.Context(), input)
	case entity.MovementKindReturn:
		mov, err = h.svc.RecordReturn(c.Context(), input)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "kind desconocido"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// ListMovementsByProduct godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "Product ID"
// @Param        from  query  string  false  "RFC3339"
// @Param        to    query  string  false  "RFC3339"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock/movements/product/{id} [get]
func (h *StockHandler) ListMovementsByProduct(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	from, to := timeRangeFromQuery(c)
	movements, err := h.svc.GetMovementsByProduct(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMovementResponses(movements))
}

// ListMovementsByLocation godoc
// @Summary      Historial de movimientos de una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Location ID"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock/movements/location/{id} [get]
func (h *StockHandler) ListMovementsByLocation(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	from, to := timeRangeFromQuery(c)
	movements, err := h.svc.GetMovementsByLocation(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMovementResponses(movements))
}

// UpdateMovementNotes godoc
// @Summary      Corregir las notas de un movimiento (única mutación permitida)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Param        id    path  string  true  "Movement ID"
// @Param        body  body  dto.UpdateNotesRequest  true  "notes"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id}/notes [patch]
func (h *StockHandler) UpdateMovementNotes(c *fiber.Ctx) error {
	var in dto.UpdateNotesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.svc.UpdateMovementNotes(c.Context(), c.Params("id"), in.Notes, GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteMovement godoc
// @Summary      Borrar un movimiento — siempre rechazado, el libro es append-only
// @Tags         stock
// @Security     Bearer
// @Param        id  path  string  true  "Movement ID"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id} [delete]
func (h *StockHandler) DeleteMovement(c *fiber.Ctx) error {
	return respondError(c, h.svc.DeleteMovement(c.Context(), c.Params("id"), GetUserID(c)))
}

// GetLevel godoc
// @Summary      Proyección de stock de un producto en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product   path  string  true  "Product ID"
// @Param        location  path  string  true  "Location ID"
// @Success      200  {object}  dto.StockLevelResponse
// @Router       /api/stock/levels/{product}/{location} [get]
func (h *StockHandler) GetLevel(c *fiber.Ctx) error {
	productID, locationID := c.Params("product"), c.Params("location")
	qty, err := h.svc.GetAvailableStock(c.Context(), productID, locationID)
	if err != nil {
		return respondError(c, err)
	}
	status, err := h.svc.GetStockStatus(c.Context(), productID, locationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"product_id":  productID,
		"location_id": locationID,
		"quantity":    qty,
		"status":      status,
	})
}

// ListLevelsByLocation godoc
// @Summary      Proyección de stock de una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Location ID"
// @Success      200  {array}  dto.StockLevelResponse
// @Router       /api/stock/levels/location/{id} [get]
func (h *StockHandler) ListLevelsByLocation(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	levels, err := h.svc.ListStockByLocation(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toLevelResponses(levels))
}

// ListBelowReorder godoc
// @Summary      Productos en o por debajo del umbral de reposición
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Location ID"
// @Success      200  {array}  dto.StockLevelResponse
// @Router       /api/stock/levels/location/{id}/low [get]
func (h *StockHandler) ListBelowReorder(c *fiber.Ctx) error {
	levels, err := h.svc.ListBelowReorder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toLevelResponses(levels))
}

// SetReorderLevel godoc
// @Summary      Fijar el umbral de reposición de un producto en una ubicación
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Param        product   path  string  true  "Product ID"
// @Param        location  path  string  true  "Location ID"
// @Param        body      body  dto.SetReorderLevelRequest  true  "reorder_level"
// @Success      204
// @Router       /api/stock/levels/{product}/{location}/reorder [put]
func (h *StockHandler) SetReorderLevel(c *fiber.Ctx) error {
	var in dto.SetReorderLevelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.svc.SetReorderLevel(c.Context(), c.Params("product"), c.Params("location"), in.ReorderLevel); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:               m.ID,
		ProductID:        m.ProductID,
		Kind:             m.Kind,
		Quantity:         m.Quantity,
		SourceLocationID: m.SourceLocationID,
		DestLocationID:   m.DestLocationID,
		PackMode:         m.PackMode,
		Correction:       m.Correction,
		UnitCost:         m.UnitCost,
		Reference:        m.Reference,
		Notes:            m.Notes,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
	}
}

func toMovementResponses(movements []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toLevelResponses(levels []*entity.StockLevel) []dto.StockLevelResponse {
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.StockLevelResponse{
			ProductID:    l.ProductID,
			LocationID:   l.LocationID,
			Quantity:     l.Quantity,
			ReorderLevel: l.ReorderLevel,
			Status:       l.Status(),
			UpdatedAt:    l.UpdatedAt,
		})
	}
	return out
}

func timeRangeFromQuery(c *fiber.Ctx) (*time.Time, *time.Time) {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = &t
		}
	}
	return from, to
}
