package stock_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/billing"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/notify"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/purchasing"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/stock"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/testutil"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/config"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/logger"
)

// Flujo completo sobre los servicios reales compartiendo el mismo libro y la
// misma proyección: recepción mayorista en bodega, traslado a tienda, venta
// al detalle y cancelación de la venta. El total del producto se conserva en
// cada paso y la cancelación devuelve la tienda a su estado previo exacto.
func TestFlujoCompleto_RecepcionTrasladoVentaYCancelacion(t *testing.T) {
	product := &entity.Product{
		ID:           "p1",
		SKU:          "SKU-p1",
		Name:         "Producto p1",
		RetailPrice:  decimal.NewFromInt(150),
		UnitsPerPack: 10,
	}
	movRepo := testutil.NewMovementRepo()
	levelRepo := testutil.NewLevelRepo()
	productRepo := testutil.NewProductRepo(product)
	locationRepo := testutil.NewLocationRepo("bodega", "tienda")
	invoiceRepo := testutil.NewInvoiceRepo()
	receiptRepo := testutil.NewReceiptRepo()
	dispatcher := notify.NewDispatcher(&testutil.Notifier{}, logger.Nop())
	tx := &testutil.TxRunner{
		MovRepo: movRepo, LevelRepo: levelRepo, ProductRepo: productRepo,
		InvoiceRepo: invoiceRepo, ReceiptRepo: receiptRepo,
	}

	stockSvc := stock.NewService(tx, productRepo, locationRepo, levelRepo, movRepo, dispatcher, logger.Nop())
	receiptSvc := purchasing.NewReceiptService(tx, stockSvc, receiptRepo, productRepo, locationRepo, dispatcher,
		config.CompanySettings{ReceiptPrefix: "REC"}, logger.Nop())
	invoiceSvc := billing.NewInvoiceService(tx, stockSvc, invoiceRepo, productRepo, locationRepo, dispatcher,
		config.CompanySettings{Currency: "XOF", TaxRatePct: decimal.Zero, InvoicePrefix: "FAC"}, logger.Nop())
	ctx := context.Background()

	// Recepción de 10 paquetes mayoristas (10 unidades c/u) en bodega.
	_, err := receiptSvc.Create(ctx, purchasing.CreateReceiptInput{
		LocationID:    "bodega",
		SupplierName:  "Proveedor Uno",
		InitialStatus: entity.ReceiptStatusReceived,
		Items: []purchasing.ReceiptItemInput{
			{ProductID: "p1", Quantity: 10, UnitCost: decimal.NewFromInt(1000), PackMode: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), levelRepo.Quantity("p1", "bodega"))

	// Traslado de 2 paquetes a tienda.
	_, err = stockSvc.RecordTransfer(ctx, stock.MovementInput{
		ProductID: "p1", Quantity: 2, PackMode: true,
		SourceLocationID: "bodega", DestLocationID: "tienda",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(80), levelRepo.Quantity("p1", "bodega"))
	assert.Equal(t, int64(20), levelRepo.Quantity("p1", "tienda"))

	// Venta al detalle de 5 unidades en tienda.
	inv, err := invoiceSvc.Create(ctx, billing.CreateInvoiceInput{
		LocationID:    "tienda",
		ClientName:    "Cliente Final",
		InitialStatus: entity.InvoiceStatusSent,
		Items:         []billing.ItemInput{{ProductID: "p1", Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), levelRepo.Quantity("p1", "tienda"))
	assert.Equal(t, int64(80), levelRepo.Quantity("p1", "bodega"))

	// Cancelación de la venta: la tienda recupera sus 20, la bodega no cambia.
	_, err = invoiceSvc.Cancel(ctx, inv.ID, "vendedor-1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), levelRepo.Quantity("p1", "tienda"))
	assert.Equal(t, int64(80), levelRepo.Quantity("p1", "bodega"))

	total, err := stockSvc.GetTotalStock(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), total, "el total del producto se conserva")
}
