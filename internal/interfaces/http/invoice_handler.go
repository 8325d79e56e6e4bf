package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/billing"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/dto"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// InvoiceHandler maneja el ciclo de vida de facturas (protegido).
type InvoiceHandler struct {
	svc *billing.InvoiceService
}

// NewInvoiceHandler construye el handler de facturación.
func NewInvoiceHandler(svc *billing.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// Create godoc
// @Summary      Crear factura
// @Description  initial_status sent o paid descuenta el stock en la misma
//               transacción de creación; draft no toca el inventario.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.svc.Create(c.Context(), billing.CreateInvoiceInput{
		LocationID:     in.LocationID,
		ClientName:     in.ClientName,
		GlobalDiscount: in.GlobalDiscount,
		InitialStatus:  in.InitialStatus,
		Notes:          in.Notes,
		ActorID:        GetUserID(c),
		Items:          toItemInputs(in.Items),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toInvoiceResponse(inv))
}

// GetByID godoc
// @Summary      Obtener factura con líneas
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Invoice ID"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.svc.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.InvoiceResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	invoices, err := h.svc.ListInvoices(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	return c.JSON(out)
}

// UpdateItems godoc
// @Summary      Reemplazar las líneas de una factura
// @Description  Si el stock ya estaba descontado, restaura y re-descuenta en
//               la misma transacción con el juego nuevo de líneas.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Invoice ID"
// @Param        body  body  dto.UpdateInvoiceItemsRequest  true  "items"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/items [put]
func (h *InvoiceHandler) UpdateItems(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.svc.UpdateItems(c.Context(), c.Params("id"), toItemInputs(in.Items), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

// ChangeStatus godoc
// @Summary      Transicionar el estado de una factura
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Invoice ID"
// @Param        body  body  dto.ChangeStatusRequest  true  "status destino"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/status [patch]
func (h *InvoiceHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.svc.ChangeStatus(c.Context(), c.Params("id"), in.Status, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

// Cancel godoc
// @Summary      Cancelar factura (restaura el stock descontado)
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Invoice ID"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	inv, err := h.svc.Cancel(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

// RegisterPayment godoc
// @Summary      Registrar un pago contra la factura
// @Description  Al completar el saldo la factura pasa a paid y el stock queda
//               descontado como efecto de la transición.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Invoice ID"
// @Param        body  body  dto.RegisterPaymentRequest  true  "amount"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RegisterPayment(c *fiber.Ctx) error {
	var in dto.RegisterPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.svc.RegisterPayment(c.Context(), c.Params("id"), in.Amount, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

func toItemInputs(items []dto.InvoiceItemRequest) []billing.ItemInput {
	out := make([]billing.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, billing.ItemInput{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			DiscountPct: it.DiscountPct,
			PackMode:    it.PackMode,
		})
	}
	return out
}

func toInvoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	items := make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, dto.InvoiceItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			DiscountPct: it.DiscountPct,
			PackMode:    it.PackMode,
			UnitCost:    it.UnitCost,
		})
	}
	return dto.InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		Status:         inv.Status,
		LocationID:     inv.LocationID,
		ClientName:     inv.ClientName,
		GlobalDiscount: inv.GlobalDiscount,
		Subtotal:       inv.Subtotal,
		TaxTotal:       inv.TaxTotal,
		Total:          inv.Total,
		TotalProfit:    inv.TotalProfit,
		AmountPaid:     inv.AmountPaid,
		StockDeducted:  inv.StockDeducted,
		Notes:          inv.Notes,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Items:          items,
	}
}
