package billing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/billing"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/notify"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/stock"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/testutil"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/config"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Armado del servicio bajo test
// ──────────────────────────────────────────────────────────────────────────────

type billingEnv struct {
	svc         *billing.InvoiceService
	invoiceRepo *testutil.InvoiceRepo
	movRepo     *testutil.MovementRepo
	levelRepo   *testutil.LevelRepo
	productRepo *testutil.ProductRepo
}

func newBillingEnv(t *testing.T, products []*entity.Product, locationIDs ...string) *billingEnv {
	t.Helper()
	movRepo := testutil.NewMovementRepo()
	levelRepo := testutil.NewLevelRepo()
	productRepo := testutil.NewProductRepo(products...)
	locationRepo := testutil.NewLocationRepo(locationIDs...)
	invoiceRepo := testutil.NewInvoiceRepo()
	dispatcher := notify.NewDispatcher(&testutil.Notifier{}, logger.Nop())
	tx := &testutil.TxRunner{
		MovRepo: movRepo, LevelRepo: levelRepo, ProductRepo: productRepo, InvoiceRepo: invoiceRepo,
	}

	// El motor de stock real: ApplyInTx opera sobre los repos del caller.
	stockSvc := stock.NewService(tx, productRepo, locationRepo, levelRepo, movRepo, dispatcher, logger.Nop())

	settings := config.CompanySettings{
		Currency:      "XOF",
		TaxRatePct:    decimal.Zero,
		InvoicePrefix: "FAC",
	}
	svc := billing.NewInvoiceService(tx, stockSvc, invoiceRepo, productRepo, locationRepo, dispatcher, settings, logger.Nop())
	return &billingEnv{svc: svc, invoiceRepo: invoiceRepo, movRepo: movRepo, levelRepo: levelRepo, productRepo: productRepo}
}

func billingProduct(id string, retail, cost int64) *entity.Product {
	return &entity.Product{
		ID:           id,
		SKU:          "SKU-" + id,
		Name:         "Producto " + id,
		RetailPrice:  decimal.NewFromInt(retail),
		UnitsPerPack: 1,
		Cost:         decimal.NewFromInt(cost),
	}
}

func decEq(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	exp, err := decimal.NewFromString(expected)
	require.NoError(t, err)
	assert.True(t, exp.Equal(actual), "esperado %s, obtenido %s %v", expected, actual, msgAndArgs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales
// ──────────────────────────────────────────────────────────────────────────────

// Dos líneas, una con descuento de línea, descuento global e IVA:
//
//	línea 1: 10 x 100 con 10% => bruto 1000, neto 900, costo 600, margen 300
//	línea 2:  5 x 200 sin descuento => neto 1000, costo 600, margen 400
//	subtotal 1900, IVA 19% = 361, descuento global 50
//	total 1900 + 361 - 50 = 2211; utilidad 700 - 50 = 650
func TestCalculateTotals_DescuentosEImpuesto(t *testing.T) {
	items := []*entity.InvoiceItem{
		{Quantity: 10, UnitPrice: decimal.NewFromInt(100), DiscountPct: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(60)},
		{Quantity: 5, UnitPrice: decimal.NewFromInt(200), UnitCost: decimal.NewFromInt(120)},
	}
	totals := billing.CalculateTotals(items, decimal.NewFromInt(50), decimal.NewFromInt(19))

	decEq(t, "1900", totals.Subtotal)
	decEq(t, "361", totals.TaxTotal)
	decEq(t, "2211", totals.Total)
	decEq(t, "650", totals.Profit)
}

func TestCalculateTotals_SinImpuestoNiDescuento(t *testing.T) {
	items := []*entity.InvoiceItem{
		{Quantity: 3, UnitPrice: decimal.NewFromInt(500), UnitCost: decimal.NewFromInt(300)},
	}
	totals := billing.CalculateTotals(items, decimal.Zero, decimal.Zero)

	decEq(t, "1500", totals.Subtotal)
	decEq(t, "0", totals.TaxTotal)
	decEq(t, "1500", totals.Total)
	decEq(t, "600", totals.Profit)
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y consecutivo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_BorradorNoTocaStock(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 50, 0)

	inv, err := env.svc.Create(context.Background(), billing.CreateInvoiceInput{
		LocationID: "loc1",
		ClientName: "Cliente Uno",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status)
	assert.False(t, inv.StockDeducted)
	assert.Equal(t, fmt.Sprintf("FAC-%d-00001", time.Now().Year()), inv.Number)
	assert.Equal(t, int64(50), env.levelRepo.Quantity("p1", "loc1"), "un borrador no compromete stock")
	assert.Empty(t, env.movRepo.Movements)

	// La línea snapshotea precio de lista y costo del producto.
	require.Len(t, inv.Items, 1)
	decEq(t, "100", inv.Items[0].UnitPrice)
	decEq(t, "60", inv.Items[0].UnitCost)
}

func TestCreate_ConsecutivoPorAnio(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	ctx := context.Background()
	in := billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 1}},
	}

	first, err := env.svc.Create(ctx, in)
	require.NoError(t, err)
	second, err := env.svc.Create(ctx, in)
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("FAC-%d-00001", year), first.Number)
	assert.Equal(t, fmt.Sprintf("FAC-%d-00002", year), second.Number)
}

func TestCreate_ColisionDeConsecutivoReintenta(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.invoiceRepo.ForcedDuplicates = 1

	inv, err := env.svc.Create(context.Background(), billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err, "una colisión aislada debe resolverse con reintento")
	assert.NotEmpty(t, inv.Number)
}

func TestCreate_ColisionPersistenteRetornaConflict(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.invoiceRepo.ForcedDuplicates = 3

	_, err := env.svc.Create(context.Background(), billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreate_EstadoInicialComprometidoDescuentaStock(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 50, 0)

	inv, err := env.svc.Create(context.Background(), billing.CreateInvoiceInput{
		LocationID:    "loc1",
		InitialStatus: entity.InvoiceStatusSent,
		ActorID:       "vendedor-1",
		Items:         []billing.ItemInput{{ProductID: "p1", Quantity: 8}},
	})
	require.NoError(t, err)

	assert.True(t, inv.StockDeducted)
	assert.Equal(t, int64(42), env.levelRepo.Quantity("p1", "loc1"))

	exits := env.movRepo.ByKind(entity.MovementKindExit)
	require.Len(t, exits, 1)
	assert.Equal(t, inv.Number, exits[0].Reference, "el movimiento referencia el consecutivo de la factura")
	assert.Equal(t, "vendedor-1", exits[0].CreatedBy)
}

func TestCreate_EntradasInvalidas(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	ctx := context.Background()

	_, err := env.svc.Create(ctx, billing.CreateInvoiceInput{LocationID: "loc1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 1, DiscountPct: decimal.NewFromInt(101)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "descuento de línea fuera de rango")

	_, err = env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "fantasma",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "ubicación inexistente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Guarda de idempotencia del descuento de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestDeductStock_ExactamenteUnaVez(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 50, 0)
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeductStock(ctx, inv.ID, "user-1"))
	assert.Equal(t, int64(40), env.levelRepo.Quantity("p1", "loc1"))

	// Segunda llamada: no-op, ni movimiento ni cambio de proyección.
	require.NoError(t, env.svc.DeductStock(ctx, inv.ID, "user-1"))
	assert.Equal(t, int64(40), env.levelRepo.Quantity("p1", "loc1"))
	assert.Len(t, env.movRepo.Movements, 1)
}

func TestRestoreStock_RevierteConDevolucion(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 50, 0)
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.DeductStock(ctx, inv.ID, "user-1"))
	require.NoError(t, env.svc.RestoreStock(ctx, inv.ID, "user-1"))

	assert.Equal(t, int64(50), env.levelRepo.Quantity("p1", "loc1"), "restaurar deja el stock como antes")

	returns := env.movRepo.ByKind(entity.MovementKindReturn)
	require.Len(t, returns, 1)
	assert.True(t, returns[0].Correction, "la restauración es un movimiento de corrección")
	assert.Equal(t, inv.Number, returns[0].Reference)

	// Sin deducción previa, restaurar es no-op.
	require.NoError(t, env.svc.RestoreStock(ctx, inv.ID, "user-1"))
	assert.Len(t, env.movRepo.ByKind(entity.MovementKindReturn), 1)
}

func TestDeductStock_InsuficienteRechaza(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 5, 0)
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	err = env.svc.DeductStock(ctx, inv.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados
// ──────────────────────────────────────────────────────────────────────────────

func TestChangeStatus_DraftASentDescuentaUnaVez(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 50, 0)
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	inv, err = env.svc.ChangeStatus(ctx, inv.ID, entity.InvoiceStatusSent, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusSent, inv.Status)
	assert.True(t, inv.StockDeducted)
	assert.Equal(t, int64(40), env.levelRepo.Quantity("p1", "loc1"))

	// sent -> paid: el stock ya está comprometido, no se descuenta otra vez.
	inv, err = env.svc.ChangeStatus(ctx, inv.ID, entity.InvoiceStatusPaid, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(inv.Total), "paid fija el monto pagado al total")
	assert.Equal(t, int64(40), env.levelRepo.Quantity("p1", "loc1"))
	assert.Len(t, env.movRepo.ByKind(entity.MovementKindExit), 1)
}

func TestChangeStatus_TransicionInvalida(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.svc.ChangeStatus(ctx, inv.ID, entity.InvoiceStatusPartiallyPaid, "user-1")
	require.Error(t, err)

	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "invoice", transitionErr.Document)
	assert.Equal(t, entity.InvoiceStatusDraft, transitionErr.From)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCancel_RestauraStockComprometido(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 50, 0)
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID:    "loc1",
		InitialStatus: entity.InvoiceStatusSent,
		Items:         []billing.ItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(40), env.levelRepo.Quantity("p1", "loc1"))

	inv, err = env.svc.Cancel(ctx, inv.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, inv.Status)
	assert.False(t, inv.StockDeducted)
	assert.Equal(t, int64(50), env.levelRepo.Quantity("p1", "loc1"))

	// Cancelada es terminal.
	_, err = env.svc.ChangeStatus(ctx, inv.ID, entity.InvoiceStatusSent, "user-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reemplazo de líneas
// ──────────────────────────────────────────────────────────────────────────────

// Con stock ya debitado, reemplazar líneas restaura el juego viejo y debita el
// nuevo en la misma operación: la proyección final refleja solo el juego nuevo.
func TestUpdateItems_RestauraYRedescuenta(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{
		billingProduct("p1", 100, 60),
		billingProduct("p2", 200, 120),
	}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 50, 0)
	env.levelRepo.Seed("p2", "loc1", 30, 0)
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID:    "loc1",
		InitialStatus: entity.InvoiceStatusSent,
		Items:         []billing.ItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(40), env.levelRepo.Quantity("p1", "loc1"))

	inv, err = env.svc.UpdateItems(ctx, inv.ID, []billing.ItemInput{
		{ProductID: "p2", Quantity: 6},
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, int64(50), env.levelRepo.Quantity("p1", "loc1"), "el juego viejo queda restaurado")
	assert.Equal(t, int64(24), env.levelRepo.Quantity("p2", "loc1"), "el juego nuevo queda debitado")
	assert.True(t, inv.StockDeducted)

	// Totales recalculados sobre el juego nuevo.
	decEq(t, "1200", inv.Total)
}

func TestUpdateItems_FacturaCanceladaRechaza(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = env.svc.Cancel(ctx, inv.ID, "user-1")
	require.NoError(t, err)

	_, err = env.svc.UpdateItems(ctx, inv.ID, []billing.ItemInput{{ProductID: "p1", Quantity: 2}}, "user-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterPayment_ParcialSobreBorradorRechaza(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	_, err = env.svc.RegisterPayment(ctx, inv.ID, decimal.NewFromInt(300), "user-1")
	require.Error(t, err, "un pago parcial sobre borrador exige enviar primero")

	var transitionErr *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestRegisterPayment_CompletoSobreBorradorPagaYDescuenta(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 50, 0)
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID: "loc1",
		Items:      []billing.ItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	inv, err = env.svc.RegisterPayment(ctx, inv.ID, decimal.NewFromInt(1000), "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(inv.Total))
	assert.Equal(t, int64(40), env.levelRepo.Quantity("p1", "loc1"), "la transición a paid descuenta el stock")
}

func TestRegisterPayment_ParcialesAcumulanHastaPaid(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 50, 0)
	ctx := context.Background()

	inv, err := env.svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID:    "loc1",
		InitialStatus: entity.InvoiceStatusSent,
		Items:         []billing.ItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	inv, err = env.svc.RegisterPayment(ctx, inv.ID, decimal.NewFromInt(400), "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPartiallyPaid, inv.Status)
	decEq(t, "400", inv.AmountPaid)

	inv, err = env.svc.RegisterPayment(ctx, inv.ID, decimal.NewFromInt(600), "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(inv.Total))

	// No hubo segundo descuento de stock en todo el flujo.
	assert.Len(t, env.movRepo.ByKind(entity.MovementKindExit), 1)
}

func TestRegisterPayment_MontoInvalido(t *testing.T) {
	env := newBillingEnv(t, []*entity.Product{billingProduct("p1", 100, 60)}, "loc1")
	_, err := env.svc.RegisterPayment(context.Background(), "cualquiera", decimal.Zero, "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// flakyInvoiceRepo falla la próxima escritura de cabecera. Simula la
// conexión que se cae a mitad de una operación.
type flakyInvoiceRepo struct {
	*testutil.InvoiceRepo
	failNextUpdate bool
}

func (r *flakyInvoiceRepo) Update(inv *entity.Invoice) error {
	if r.failNextUpdate {
		r.failNextUpdate = false
		return errors.New("conexión perdida")
	}
	return r.InvoiceRepo.Update(inv)
}

// flakyTxRunner entrega el repo flaky dentro de la transacción de facturas.
type flakyTxRunner struct {
	*testutil.TxRunner
	invoiceRepo repository.InvoiceRepository
}

func (t *flakyTxRunner) RunInvoice(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return fn(t.MovRepo, t.LevelRepo, t.ProductRepo, t.invoiceRepo)
}

// Un pago parcial que falla al persistir no puede dejar la factura a medio
// camino: el monto acumulado y la transición viajan en una sola escritura,
// así que tras el error la factura conserva su estado previo completo.
func TestRegisterPayment_FalloDePersistenciaConservaEstadoPrevio(t *testing.T) {
	movRepo := testutil.NewMovementRepo()
	levelRepo := testutil.NewLevelRepo()
	productRepo := testutil.NewProductRepo(billingProduct("p1", 100, 60))
	locationRepo := testutil.NewLocationRepo("loc1")
	invoiceRepo := &flakyInvoiceRepo{InvoiceRepo: testutil.NewInvoiceRepo()}
	levelRepo.Seed("p1", "loc1", 50, 0)

	inner := &testutil.TxRunner{
		MovRepo: movRepo, LevelRepo: levelRepo, ProductRepo: productRepo, InvoiceRepo: invoiceRepo.InvoiceRepo,
	}
	tx := &flakyTxRunner{TxRunner: inner, invoiceRepo: invoiceRepo}
	dispatcher := notify.NewDispatcher(&testutil.Notifier{}, logger.Nop())
	stockSvc := stock.NewService(tx, productRepo, locationRepo, levelRepo, movRepo, dispatcher, logger.Nop())
	settings := config.CompanySettings{Currency: "XOF", TaxRatePct: decimal.Zero, InvoicePrefix: "FAC"}
	svc := billing.NewInvoiceService(tx, stockSvc, invoiceRepo, productRepo, locationRepo, dispatcher, settings, logger.Nop())
	ctx := context.Background()

	inv, err := svc.Create(ctx, billing.CreateInvoiceInput{
		LocationID:    "loc1",
		InitialStatus: entity.InvoiceStatusSent,
		Items:         []billing.ItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	invoiceRepo.failNextUpdate = true
	_, err = svc.RegisterPayment(ctx, inv.ID, decimal.NewFromInt(600), "user-1")
	require.Error(t, err)

	stored, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusSent, stored.Status, "la factura conserva su estado previo")
	decEq(t, "0", stored.AmountPaid)

	// El reintento aplica monto y transición juntos.
	paid, err := svc.RegisterPayment(ctx, inv.ID, decimal.NewFromInt(600), "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPartiallyPaid, paid.Status)
	decEq(t, "600", paid.AmountPaid)
}
