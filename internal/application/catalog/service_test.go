package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/catalog"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/testutil"
)

func newCatalogSvc() (*catalog.Service, *testutil.ProductRepo, *testutil.LocationRepo) {
	productRepo := testutil.NewProductRepo()
	locationRepo := testutil.NewLocationRepo()
	return catalog.NewService(productRepo, locationRepo), productRepo, locationRepo
}

func TestCreateProduct_Valido(t *testing.T) {
	svc, productRepo, _ := newCatalogSvc()

	p, err := svc.CreateProduct(context.Background(), catalog.CreateProductInput{
		SKU:            "AZ-001",
		Name:           "Azúcar 1kg",
		RetailPrice:    decimal.NewFromInt(600),
		WholesalePrice: decimal.NewFromInt(500),
		Cost:           decimal.NewFromInt(400),
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.Equal(t, int64(1), p.UnitsPerPack, "sin paquete declarado la unidad de venta es la pieza")
	assert.NotNil(t, productRepo.Products[p.ID])
}

func TestCreateProduct_SKUDuplicado(t *testing.T) {
	svc, _, _ := newCatalogSvc()

	in := catalog.CreateProductInput{
		SKU:         "AZ-001",
		Name:        "Azúcar 1kg",
		RetailPrice: decimal.NewFromInt(600),
	}
	_, err := svc.CreateProduct(context.Background(), in)
	require.NoError(t, err)

	in.Name = "Azúcar 1kg (relanzamiento)"
	_, err = svc.CreateProduct(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateProduct_EntradasInvalidas(t *testing.T) {
	svc, _, _ := newCatalogSvc()

	casos := []struct {
		nombre string
		in     catalog.CreateProductInput
	}{
		{"sin SKU", catalog.CreateProductInput{Name: "X", RetailPrice: decimal.NewFromInt(1)}},
		{"sin nombre", catalog.CreateProductInput{SKU: "X-1", RetailPrice: decimal.NewFromInt(1)}},
		{"precio negativo", catalog.CreateProductInput{SKU: "X-1", Name: "X", RetailPrice: decimal.NewFromInt(-5)}},
		{"costo negativo", catalog.CreateProductInput{SKU: "X-1", Name: "X", Cost: decimal.NewFromInt(-5)}},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), c.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestUpdateProduct_NoTocaElCosto(t *testing.T) {
	svc, productRepo, _ := newCatalogSvc()

	p, err := svc.CreateProduct(context.Background(), catalog.CreateProductInput{
		SKU:         "AZ-001",
		Name:        "Azúcar 1kg",
		RetailPrice: decimal.NewFromInt(600),
		Cost:        decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), p.ID, catalog.UpdateProductInput{
		Name:           "Azúcar refinada 1kg",
		RetailPrice:    decimal.NewFromInt(650),
		WholesalePrice: decimal.NewFromInt(520),
		UnitsPerPack:   12,
	})
	require.NoError(t, err)

	assert.Equal(t, "Azúcar refinada 1kg", updated.Name)
	assert.True(t, updated.RetailPrice.Equal(decimal.NewFromInt(650)))
	assert.Equal(t, int64(12), updated.UnitsPerPack)
	// El costo solo lo fija la recepción de mercancía.
	assert.True(t, updated.Cost.Equal(decimal.NewFromInt(400)))
	assert.True(t, productRepo.Products[p.ID].Cost.Equal(decimal.NewFromInt(400)))
}

func TestUpdateProduct_Inexistente(t *testing.T) {
	svc, _, _ := newCatalogSvc()

	_, err := svc.UpdateProduct(context.Background(), "fantasma", catalog.UpdateProductInput{
		Name:        "X",
		RetailPrice: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateLocation_CodigoDuplicado(t *testing.T) {
	svc, _, _ := newCatalogSvc()

	_, err := svc.CreateLocation(context.Background(), catalog.CreateLocationInput{
		Code: "BOD-CENTRAL", Name: "Bodega central", IsWarehouse: true,
	})
	require.NoError(t, err)

	_, err = svc.CreateLocation(context.Background(), catalog.CreateLocationInput{
		Code: "BOD-CENTRAL", Name: "Otra bodega",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestGetLocation_Inexistente(t *testing.T) {
	svc, _, _ := newCatalogSvc()

	_, err := svc.GetLocation(context.Background(), "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
