package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/repository"
)

// Service administra el catálogo: productos y ubicaciones. No toca stock; las
// existencias viven en la proyección y solo las muta el motor de movimientos.
type Service struct {
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
}

// NewService construye el servicio de catálogo.
func NewService(productRepo repository.ProductRepository, locationRepo repository.LocationRepository) *Service {
	return &Service{productRepo: productRepo, locationRepo: locationRepo}
}

// CreateProductInput entrada para CreateProduct.
type CreateProductInput struct {
	SKU            string
	Name           string
	Description    string
	RetailPrice    decimal.Decimal
	WholesalePrice decimal.Decimal
	UnitsPerPack   int64
	Cost           decimal.Decimal
}

// CreateProduct persiste un producto nuevo validando unicidad de SKU.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.RetailPrice.IsNegative() || in.WholesalePrice.IsNegative() || in.Cost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitsPerPack < 1 {
		in.UnitsPerPack = 1
	}
	existing, err := s.productRepo.GetBySKU(in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:             uuid.New().String(),
		SKU:            in.SKU,
		Name:           in.Name,
		Description:    in.Description,
		RetailPrice:    in.RetailPrice,
		WholesalePrice: in.WholesalePrice,
		UnitsPerPack:   in.UnitsPerPack,
		Cost:           in.Cost,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProductInput entrada para UpdateProduct. El costo NO se edita aquí:
// lo fija la recepción de mercancía con el flete ya prorrateado.
type UpdateProductInput struct {
	Name           string
	Description    string
	RetailPrice    decimal.Decimal
	WholesalePrice decimal.Decimal
	UnitsPerPack   int64
}

// UpdateProduct actualiza los datos comerciales del producto.
func (s *Service) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*entity.Product, error) {
	if in.Name == "" || in.RetailPrice.IsNegative() || in.WholesalePrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	product.Name = in.Name
	product.Description = in.Description
	product.RetailPrice = in.RetailPrice
	product.WholesalePrice = in.WholesalePrice
	if in.UnitsPerPack >= 1 {
		product.UnitsPerPack = in.UnitsPerPack
	}
	product.UpdatedAt = time.Now()
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct obtiene un producto por ID.
func (s *Service) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// ListProducts lista productos paginados.
func (s *Service) ListProducts(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return s.productRepo.List(limit, offset)
}

// CreateLocationInput entrada para CreateLocation.
type CreateLocationInput struct {
	Code        string
	Name        string
	Address     string
	IsWarehouse bool
}

// CreateLocation persiste una ubicación nueva validando unicidad de código.
func (s *Service) CreateLocation(ctx context.Context, in CreateLocationInput) (*entity.Location, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := s.locationRepo.GetByCode(in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	loc := &entity.Location{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Name:        in.Name,
		Address:     in.Address,
		IsWarehouse: in.IsWarehouse,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.locationRepo.Create(loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// GetLocation obtiene una ubicación por ID.
func (s *Service) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	loc, err := s.locationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	return loc, nil
}

// ListLocations lista ubicaciones paginadas.
func (s *Service) ListLocations(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	return s.locationRepo.List(limit, offset)
}
