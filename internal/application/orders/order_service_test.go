package orders_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/notify"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/orders"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/stock"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/testutil"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/config"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Armado del servicio bajo test
// ──────────────────────────────────────────────────────────────────────────────

type ordersEnv struct {
	svc       *orders.OrderService
	orderRepo *testutil.OrderRepo
	movRepo   *testutil.MovementRepo
	levelRepo *testutil.LevelRepo
}

func newOrdersEnv(t *testing.T, products []*entity.Product, locationIDs ...string) *ordersEnv {
	t.Helper()
	movRepo := testutil.NewMovementRepo()
	levelRepo := testutil.NewLevelRepo()
	productRepo := testutil.NewProductRepo(products...)
	locationRepo := testutil.NewLocationRepo(locationIDs...)
	orderRepo := testutil.NewOrderRepo()
	dispatcher := notify.NewDispatcher(&testutil.Notifier{}, logger.Nop())
	tx := &testutil.TxRunner{
		MovRepo: movRepo, LevelRepo: levelRepo, ProductRepo: productRepo, OrderRepo: orderRepo,
	}

	stockSvc := stock.NewService(tx, productRepo, locationRepo, levelRepo, movRepo, dispatcher, logger.Nop())

	settings := config.CompanySettings{OrderPrefix: "CMD"}
	svc := orders.NewOrderService(tx, stockSvc, orderRepo, productRepo, locationRepo, dispatcher, settings, logger.Nop())
	return &ordersEnv{svc: svc, orderRepo: orderRepo, movRepo: movRepo, levelRepo: levelRepo}
}

func orderProduct(id string, retail, wholesale int64) *entity.Product {
	return &entity.Product{
		ID:             id,
		SKU:            "SKU-" + id,
		Name:           "Producto " + id,
		RetailPrice:    decimal.NewFromInt(retail),
		WholesalePrice: decimal.NewFromInt(wholesale),
		UnitsPerPack:   1,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_PendingNoTocaStock(t *testing.T) {
	env := newOrdersEnv(t, []*entity.Product{orderProduct("p1", 100, 80)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 30, 0)

	ord, err := env.svc.Create(context.Background(), orders.CreateOrderInput{
		LocationID: "loc1",
		ClientName: "Cliente Pedido",
		Items:      []orders.OrderItemInput{{ProductID: "p1", Quantity: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusPending, ord.Status)
	assert.False(t, ord.StockDeducted)
	assert.Equal(t, fmt.Sprintf("CMD-%d-00001", time.Now().Year()), ord.Number)
	assert.Equal(t, int64(30), env.levelRepo.Quantity("p1", "loc1"))

	// Precio de lista snapshoteado y total de líneas.
	require.Len(t, ord.Items, 1)
	assert.True(t, decimal.NewFromInt(100).Equal(ord.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(500).Equal(ord.Total))
}

func TestCreate_ValidatedDescuentaDeInmediato(t *testing.T) {
	env := newOrdersEnv(t, []*entity.Product{orderProduct("p1", 100, 80)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 30, 0)

	ord, err := env.svc.Create(context.Background(), orders.CreateOrderInput{
		LocationID:    "loc1",
		InitialStatus: entity.OrderStatusValidated,
		Items:         []orders.OrderItemInput{{ProductID: "p1", Quantity: 5}},
	})
	require.NoError(t, err)

	assert.True(t, ord.StockDeducted)
	assert.Equal(t, int64(25), env.levelRepo.Quantity("p1", "loc1"))

	exits := env.movRepo.ByKind(entity.MovementKindExit)
	require.Len(t, exits, 1)
	assert.Equal(t, ord.Number, exits[0].Reference)
}

func TestCreate_EstadoInicialInvalido(t *testing.T) {
	env := newOrdersEnv(t, []*entity.Product{orderProduct("p1", 100, 80)}, "loc1")

	_, err := env.svc.Create(context.Background(), orders.CreateOrderInput{
		LocationID:    "loc1",
		InitialStatus: entity.OrderStatusShipped,
		Items:         []orders.OrderItemInput{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "solo pending o validated como estado inicial")
}

func TestCreate_LineaMayoristaUsaPrecioMayorista(t *testing.T) {
	env := newOrdersEnv(t, []*entity.Product{orderProduct("p1", 100, 80)}, "loc1")

	ord, err := env.svc.Create(context.Background(), orders.CreateOrderInput{
		LocationID: "loc1",
		Items:      []orders.OrderItemInput{{ProductID: "p1", Quantity: 3, PackMode: true}},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(ord.Items[0].UnitPrice))
}

// ──────────────────────────────────────────────────────────────────────────────
// Efecto de stock por diff de la máquina de estados
// ──────────────────────────────────────────────────────────────────────────────

// El flujo completo del pedido: entrar al conjunto que compromete stock
// descuenta una vez; moverse dentro del conjunto no toca el inventario;
// cancelar restaura.
func TestChangeStatus_DiffDeCompromiso(t *testing.T) {
	env := newOrdersEnv(t, []*entity.Product{orderProduct("p1", 100, 80)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 30, 0)
	ctx := context.Background()

	ord, err := env.svc.Create(ctx, orders.CreateOrderInput{
		LocationID: "loc1",
		Items:      []orders.OrderItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	// pending -> validated: entra al conjunto, descuenta.
	ord, err = env.svc.ChangeStatus(ctx, ord.ID, entity.OrderStatusValidated, "user-1")
	require.NoError(t, err)
	assert.True(t, ord.StockDeducted)
	assert.Equal(t, int64(20), env.levelRepo.Quantity("p1", "loc1"))

	// validated -> shipped -> delivered: dentro del conjunto, cero movimientos nuevos.
	ord, err = env.svc.ChangeStatus(ctx, ord.ID, entity.OrderStatusShipped, "user-1")
	require.NoError(t, err)
	ord, err = env.svc.ChangeStatus(ctx, ord.ID, entity.OrderStatusDelivered, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), env.levelRepo.Quantity("p1", "loc1"))
	assert.Len(t, env.movRepo.ByKind(entity.MovementKindExit), 1)

	// delivered -> cancelled: sale del conjunto, restaura.
	ord, err = env.svc.Cancel(ctx, ord.ID, "user-1")
	require.NoError(t, err)
	assert.False(t, ord.StockDeducted)
	assert.Equal(t, int64(30), env.levelRepo.Quantity("p1", "loc1"))

	returns := env.movRepo.ByKind(entity.MovementKindReturn)
	require.Len(t, returns, 1)
	assert.True(t, returns[0].Correction)
}

func TestChangeStatus_CancelarPendingNoTocaStock(t *testing.T) {
	env := newOrdersEnv(t, []*entity.Product{orderProduct("p1", 100, 80)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 30, 0)
	ctx := context.Background()

	ord, err := env.svc.Create(ctx, orders.CreateOrderInput{
		LocationID: "loc1",
		Items:      []orders.OrderItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	ord, err = env.svc.Cancel(ctx, ord.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, ord.Status)
	assert.Equal(t, int64(30), env.levelRepo.Quantity("p1", "loc1"))
	assert.Empty(t, env.movRepo.Movements, "cancelar un pedido nunca comprometido no genera movimientos")
}

func TestChangeStatus_TransicionInvalida(t *testing.T) {
	env := newOrdersEnv(t, []*entity.Product{orderProduct("p1", 100, 80)}, "loc1")
	ctx := context.Background()

	ord, err := env.svc.Create(ctx, orders.CreateOrderInput{
		LocationID: "loc1",
		Items:      []orders.OrderItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)

	// pending -> shipped se salta la validación.
	_, err = env.svc.ChangeStatus(ctx, ord.ID, entity.OrderStatusShipped, "user-1")
	require.Error(t, err)

	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "order", transitionErr.Document)
	assert.Equal(t, entity.OrderStatusPending, transitionErr.From)
	assert.Equal(t, entity.OrderStatusShipped, transitionErr.To)
}

func TestChangeStatus_ValidarSinStockSuficienteRechaza(t *testing.T) {
	env := newOrdersEnv(t, []*entity.Product{orderProduct("p1", 100, 80)}, "loc1")
	env.levelRepo.Seed("p1", "loc1", 5, 0)
	ctx := context.Background()

	ord, err := env.svc.Create(ctx, orders.CreateOrderInput{
		LocationID: "loc1",
		Items:      []orders.OrderItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.NoError(t, err)

	_, err = env.svc.ChangeStatus(ctx, ord.ID, entity.OrderStatusValidated, "user-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}
