package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/dto"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/purchasing"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// ReceiptHandler maneja recepciones de proveedor (protegido).
type ReceiptHandler struct {
	svc *purchasing.ReceiptService
}

// NewReceiptHandler construye el handler de recepciones.
func NewReceiptHandler(svc *purchasing.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{svc: svc}
}

// Create godoc
// @Summary      Crear recepción de mercancía
// @Description  initial_status received prorratea el flete y acredita el
//               stock en la misma transacción de creación.
// @Tags         receipts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "recepción"
// @Success      201   {object}  dto.ReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *ReceiptHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]purchasing.ReceiptItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, purchasing.ReceiptItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			PackMode:  it.PackMode,
		})
	}
	rec, err := h.svc.Create(c.Context(), purchasing.CreateReceiptInput{
		LocationID:    in.LocationID,
		SupplierName:  in.SupplierName,
		DeliveryCost:  in.DeliveryCost,
		InitialStatus: in.InitialStatus,
		Notes:         in.Notes,
		ActorID:       GetUserID(c),
		Items:         items,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReceiptResponse(rec))
}

// GetByID godoc
// @Summary      Obtener recepción con líneas
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Receipt ID"
// @Success      200  {object}  dto.ReceiptResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *fiber.Ctx) error {
	rec, err := h.svc.GetReceipt(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReceiptResponse(rec))
}

// List godoc
// @Summary      Listar recepciones
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReceiptResponse
// @Router       /api/receipts [get]
func (h *ReceiptHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	receipts, err := h.svc.ListReceipts(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ReceiptResponse, 0, len(receipts))
	for _, rec := range receipts {
		out = append(out, toReceiptResponse(rec))
	}
	return c.JSON(out)
}

// DistributeCosts godoc
// @Summary      Prorratear el flete entre las líneas
// @Description  Reparte delivery_cost por participación en el valor de
//               mercancía. Corre a lo sumo una vez y siempre antes de
//               acreditar el stock.
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Receipt ID"
// @Success      200  {object}  dto.ReceiptResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/distribute-costs [post]
func (h *ReceiptHandler) DistributeCosts(c *fiber.Ctx) error {
	rec, err := h.svc.DistributeDeliveryCosts(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReceiptResponse(rec))
}

// ChangeStatus godoc
// @Summary      Transicionar el estado de una recepción
// @Tags         receipts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Receipt ID"
// @Param        body  body  dto.ChangeStatusRequest  true  "status destino"
// @Success      200   {object}  dto.ReceiptResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/status [patch]
func (h *ReceiptHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.svc.ChangeStatus(c.Context(), c.Params("id"), in.Status, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReceiptResponse(rec))
}

// Cancel godoc
// @Summary      Cancelar recepción (revierte el stock acreditado)
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Receipt ID"
// @Success      200  {object}  dto.ReceiptResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/cancel [post]
func (h *ReceiptHandler) Cancel(c *fiber.Ctx) error {
	rec, err := h.svc.Cancel(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReceiptResponse(rec))
}

func toReceiptResponse(rec *entity.Receipt) dto.ReceiptResponse {
	items := make([]dto.ReceiptItemResponse, 0, len(rec.Items))
	for _, it := range rec.Items {
		items = append(items, dto.ReceiptItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			PackMode:  it.PackMode,
		})
	}
	return dto.ReceiptResponse{
		ID:               rec.ID,
		Number:           rec.Number,
		Status:           rec.Status,
		LocationID:       rec.LocationID,
		SupplierName:     rec.SupplierName,
		DeliveryCost:     rec.DeliveryCost,
		CostsSpread:      rec.CostsSpread,
		MerchandiseTotal: rec.MerchandiseTotal,
		Total:            rec.Total,
		StockAdded:       rec.StockAdded,
		Notes:            rec.Notes,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
		Items:            items,
	}
}
