package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/dto"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/finance"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// FinanceHandler maneja gastos y reportes mensuales (protegido).
type FinanceHandler struct {
	expenses *finance.ExpenseService
	reports  *finance.ReportService
}

// NewFinanceHandler construye el handler de finanzas.
func NewFinanceHandler(expenses *finance.ExpenseService, reports *finance.ReportService) *FinanceHandler {
	return &FinanceHandler{expenses: expenses, reports: reports}
}

// RegisterExpense godoc
// @Summary      Registrar gasto contra una ubicación
// @Tags         finance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterExpenseRequest  true  "gasto"
// @Success      201   {object}  dto.ExpenseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/expenses [post]
func (h *FinanceHandler) RegisterExpense(c *fiber.Ctx) error {
	var in dto.RegisterExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := finance.RegisterExpenseInput{
		LocationID: in.LocationID,
		Label:      in.Label,
		Amount:     in.Amount,
		ActorID:    GetUserID(c),
	}
	if in.Date != nil {
		input.Date = *in.Date
	}
	expense, err := h.expenses.RegisterExpense(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toExpenseResponse(expense))
}

// ListExpenses godoc
// @Summary      Listar gastos de un mes por ubicación
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        year      query  int     true  "Año"
// @Param        month     query  int     true  "Mes 1-12"
// @Param        location  query  string  true  "Location ID"
// @Success      200  {array}  dto.ExpenseResponse
// @Router       /api/expenses [get]
func (h *FinanceHandler) ListExpenses(c *fiber.Ctx) error {
	year, month := c.QueryInt("year"), c.QueryInt("month")
	list, err := h.expenses.ListExpensesByMonth(c.Context(), year, time.Month(month), c.Query("location"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ExpenseResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toExpenseResponse(e))
	}
	return c.JSON(out)
}

// GenerateReport godoc
// @Summary      Regenerar el reporte mensual de una ubicación
// @Description  Recomputa todas las cifras del mes desde las facturas
//               comprometidas y los gastos; el upsert reemplaza por completo,
//               regenerar es idempotente.
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        year      query  int     true  "Año"
// @Param        month     query  int     true  "Mes 1-12"
// @Param        location  query  string  true  "Location ID"
// @Success      200  {object}  dto.MonthlyReportResponse
// @Router       /api/reports/generate [post]
func (h *FinanceHandler) GenerateReport(c *fiber.Ctx) error {
	year, month := c.QueryInt("year"), c.QueryInt("month")
	report, err := h.reports.GenerateMonthlyReport(c.Context(), year, time.Month(month), c.Query("location"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReportResponse(report))
}

// GenerateAllReports godoc
// @Summary      Regenerar el reporte mensual de todas las ubicaciones
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        year   query  int  true  "Año"
// @Param        month  query  int  true  "Mes 1-12"
// @Success      200  {array}  dto.MonthlyReportResponse
// @Router       /api/reports/generate-all [post]
func (h *FinanceHandler) GenerateAllReports(c *fiber.Ctx) error {
	year, month := c.QueryInt("year"), c.QueryInt("month")
	reports, err := h.reports.GenerateForAllLocations(c.Context(), year, time.Month(month))
	if err != nil && len(reports) == 0 {
		return respondError(c, err)
	}
	out := make([]dto.MonthlyReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, toReportResponse(r))
	}
	return c.JSON(out)
}

// GetReport godoc
// @Summary      Consultar el reporte mensual materializado
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        year      query  int     true  "Año"
// @Param        month     query  int     true  "Mes 1-12"
// @Param        location  query  string  true  "Location ID"
// @Success      200  {object}  dto.MonthlyReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports [get]
func (h *FinanceHandler) GetReport(c *fiber.Ctx) error {
	year, month := c.QueryInt("year"), c.QueryInt("month")
	report, err := h.reports.GetReport(c.Context(), year, time.Month(month), c.Query("location"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReportResponse(report))
}

// ListReports godoc
// @Summary      Listar los reportes del año de una ubicación
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        year      query  int     true  "Año"
// @Param        location  query  string  true  "Location ID"
// @Success      200  {array}  dto.MonthlyReportResponse
// @Router       /api/reports/year [get]
func (h *FinanceHandler) ListReports(c *fiber.Ctx) error {
	reports, err := h.reports.ListReports(c.Context(), c.QueryInt("year"), c.Query("location"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MonthlyReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, toReportResponse(r))
	}
	return c.JSON(out)
}

func toExpenseResponse(e *entity.Expense) dto.ExpenseResponse {
	return dto.ExpenseResponse{
		ID:         e.ID,
		LocationID: e.LocationID,
		Label:      e.Label,
		Amount:     e.Amount,
		Date:       e.Date,
		CreatedAt:  e.CreatedAt,
	}
}

func toReportResponse(r *entity.MonthlyReport) dto.MonthlyReportResponse {
	return dto.MonthlyReportResponse{
		Month:          r.Month,
		Year:           r.Year,
		LocationID:     r.LocationID,
		GrossSales:     r.GrossSales,
		TotalDiscounts: r.TotalDiscounts,
		COGS:           r.COGS,
		GrossProfit:    r.GrossProfit,
		TotalExpenses:  r.TotalExpenses,
		NetProfit:      r.NetProfit,
		GeneratedAt:    r.GeneratedAt,
	}
}
