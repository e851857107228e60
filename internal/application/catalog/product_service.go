package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/catalog"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	repo      catalog.ProductRepository
	fodecRate decimal.Decimal
}

// NewProductService creates a new ProductService
func NewProductService(repo catalog.ProductRepository, calc *fiscal.Calculator) *ProductService {
	if calc == nil {
		calc = fiscal.NewCalculator(fiscal.DefaultSettings())
	}
	return &ProductService{
		repo:      repo,
		fodecRate: calc.Settings().FODECRate,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	reference := strings.ToUpper(strings.TrimSpace(req.Reference))
	exists, err := s.repo.ExistsByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to check reference: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("Product with reference %s already exists", reference))
	}

	product, err := catalog.NewProduct(reference, catalog.ProductDetails{
		Designation: req.Designation,
		Unit:        req.Unit,
		UnitPriceHT: req.UnitPriceHT,
		TVARate:     fiscal.TVARate(req.TVARate),
		FODEC:       req.FODEC,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	response := ToProductResponse(product, s.fodecRate)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product, s.fodecRate)
	return &response, nil
}

// List retrieves a paginated list of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "reference"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		Status: catalog.ProductStatus(filter.Status),
	}

	products, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i], s.fodecRate)
	}
	return responses, total, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	details := catalog.ProductDetails{
		Designation: product.Designation,
		Unit:        product.Unit,
		UnitPriceHT: product.UnitPriceHT,
		TVARate:     product.TVARate,
		FODEC:       product.FODEC,
	}
	if req.Designation != nil {
		details.Designation = *req.Designation
	}
	if req.Unit != nil {
		details.Unit = *req.Unit
	}
	if req.UnitPriceHT != nil {
		details.UnitPriceHT = *req.UnitPriceHT
	}
	if req.TVARate != nil {
		details.TVARate = fiscal.TVARate(*req.TVARate)
	}
	if req.FODEC != nil {
		details.FODEC = *req.FODEC
	}

	if err := product.Update(details); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	response := ToProductResponse(product, s.fodecRate)
	return &response, nil
}

// Delete deletes a product. Document lines keep their copied reference and
// designation.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// Activate activates a product
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.transition(ctx, id, (*catalog.Product).Activate)
}

// Deactivate deactivates a product
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.transition(ctx, id, (*catalog.Product).Deactivate)
}

func (s *ProductService) transition(ctx context.Context, id uuid.UUID, apply func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(product); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	response := ToProductResponse(product, s.fodecRate)
	return &response, nil
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Product")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}
