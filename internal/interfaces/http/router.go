package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/auth"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/billing"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/catalog"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/finance"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/orders"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/purchasing"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/stock"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	CatalogSvc *catalog.Service
	StockSvc   *stock.Service
	InvoiceSvc *billing.InvoiceService
	ReceiptSvc *purchasing.ReceiptService
	OrderSvc   *orders.OrderService
	ExpenseSvc *finance.ExpenseService
	ReportSvc  *finance.ReportService
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo: productos y ubicaciones
	catalogHandler := NewCatalogHandler(deps.CatalogSvc)
	products := protected.Group("/products")
	products.Post("/", catalogHandler.CreateProduct)
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:id", catalogHandler.GetProduct)
	products.Put("/:id", catalogHandler.UpdateProduct)

	locations := protected.Group("/locations")
	locations.Post("/", catalogHandler.CreateLocation)
	locations.Get("/", catalogHandler.ListLocations)
	locations.Get("/:id", catalogHandler.GetLocation)

	// Libro de movimientos y proyección de stock
	stockHandler := NewStockHandler(deps.StockSvc)
	stockGroup := protected.Group("/stock")
	stockGroup.Post("/movements", stockHandler.RegisterMovement)
	stockGroup.Get("/movements/product/:id", stockHandler.ListMovementsByProduct)
	stockGroup.Get("/movements/location/:id", stockHandler.ListMovementsByLocation)
	stockGroup.Patch("/movements/:id/notes", stockHandler.UpdateMovementNotes)
	stockGroup.Delete("/movements/:id", stockHandler.DeleteMovement)
	stockGroup.Get("/levels/location/:id", stockHandler.ListLevelsByLocation)
	stockGroup.Get("/levels/location/:id/low", stockHandler.ListBelowReorder)
	stockGroup.Get("/levels/:product/:location", stockHandler.GetLevel)
	stockGroup.Put("/levels/:product/:location/reorder", stockHandler.SetReorderLevel)

	// Facturas
	invoiceHandler := NewInvoiceHandler(deps.InvoiceSvc)
	invoices := protected.Group("/invoices")
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id/items", invoiceHandler.UpdateItems)
	invoices.Patch("/:id/status", invoiceHandler.ChangeStatus)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)
	invoices.Post("/:id/payments", invoiceHandler.RegisterPayment)

	// Recepciones de proveedor (solo admin y bodeguero)
	receiptHandler := NewReceiptHandler(deps.ReceiptSvc)
	receipts := protected.Group("/receipts", RequireRoles(entity.RoleAdmin, entity.RoleBodeguero))
	receipts.Post("/", receiptHandler.Create)
	receipts.Get("/", receiptHandler.List)
	receipts.Get("/:id", receiptHandler.GetByID)
	receipts.Post("/:id/distribute-costs", receiptHandler.DistributeCosts)
	receipts.Patch("/:id/status", receiptHandler.ChangeStatus)
	receipts.Post("/:id/cancel", receiptHandler.Cancel)

	// Pedidos
	orderHandler := NewOrderHandler(deps.OrderSvc)
	ordersGroup := protected.Group("/orders")
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Patch("/:id/status", orderHandler.ChangeStatus)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)

	// Finanzas: gastos y reportes (solo admin)
	financeHandler := NewFinanceHandler(deps.ExpenseSvc, deps.ReportSvc)
	expenses := protected.Group("/expenses", RequireRoles(entity.RoleAdmin))
	expenses.Post("/", financeHandler.RegisterExpense)
	expenses.Get("/", financeHandler.ListExpenses)

	reports := protected.Group("/reports", RequireRoles(entity.RoleAdmin))
	reports.Post("/generate", financeHandler.GenerateReport)
	reports.Post("/generate-all", financeHandler.GenerateAllReports)
	reports.Get("/year", financeHandler.ListReports)
	reports.Get("/", financeHandler.GetReport)
}
