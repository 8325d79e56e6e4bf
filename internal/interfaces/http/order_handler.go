package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/dto"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/orders"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// OrderHandler maneja pedidos del canal alterno (protegido).
type OrderHandler struct {
	svc *orders.OrderService
}

// NewOrderHandler construye el handler de pedidos.
func NewOrderHandler(svc *orders.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create godoc
// @Summary      Crear pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "pedido"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]orders.OrderItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, orders.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			PackMode:  it.PackMode,
		})
	}
	ord, err := h.svc.Create(c.Context(), orders.CreateOrderInput{
		LocationID:    in.LocationID,
		ClientName:    in.ClientName,
		InitialStatus: in.InitialStatus,
		Notes:         in.Notes,
		ActorID:       GetUserID(c),
		Items:         items,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(ord))
}

// GetByID godoc
// @Summary      Obtener pedido con líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	ord, err := h.svc.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(ord))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, err := h.svc.ListOrders(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, ord := range list {
		out = append(out, toOrderResponse(ord))
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Transicionar el estado de un pedido
// @Description  Entrar al conjunto que compromete stock descuenta el
//               inventario; cancelar lo restaura. Moverse dentro del conjunto
//               no lo toca.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Order ID"
// @Param        body  body  dto.ChangeStatusRequest  true  "status destino"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ord, err := h.svc.ChangeStatus(c.Context(), c.Params("id"), in.Status, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(ord))
}

// Cancel godoc
// @Summary      Cancelar pedido (restaura el stock comprometido)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	ord, err := h.svc.Cancel(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(ord))
}

func toOrderResponse(ord *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(ord.Items))
	for _, it := range ord.Items {
		items = append(items, dto.OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			PackMode:  it.PackMode,
		})
	}
	return dto.OrderResponse{
		ID:            ord.ID,
		Number:        ord.Number,
		Status:        ord.Status,
		LocationID:    ord.LocationID,
		ClientName:    ord.ClientName,
		Total:         ord.Total,
		StockDeducted: ord.StockDeducted,
		Notes:         ord.Notes,
		CreatedAt:     ord.CreatedAt,
		UpdatedAt:     ord.UpdatedAt,
		Items:         items,
	}
}
