package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnitrack/backend/internal/domain/catalog"
	"github.com/omnitrack/backend/internal/domain/shared"
	"github.com/omnitrack/backend/internal/domain/shared/valueobject"
)

// ProductService handles product catalog operations. Stock mutations are
// out of scope here; everything that moves AvailableQuantity goes
// through the stock ledger.
type ProductService struct {
	productRepo       catalog.ProductRepository
	eventPublisher    shared.EventPublisher
	logger            *zap.Logger
	defaultLowStockAt int64
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// WithDefaultLowStockThreshold sets the threshold applied to products
// created without an explicit one
func (s *ProductService) WithDefaultLowStockThreshold(threshold int64) *ProductService {
	if threshold > 0 {
		s.defaultLowStockAt = threshold
	}
	return s
}

// Create creates a new product with its initial stock
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	exists, err := s.productRepo.ExistsBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "SKU already in use: "+sku)
	}

	threshold := req.LowStockThreshold
	if threshold == 0 {
		threshold = s.defaultLowStockAt
	}

	unitPrice := valueobject.NewMoneyUSD(req.UnitPrice)
	product, err := catalog.NewProduct(req.Name, req.Category, sku, unitPrice, req.InitialStock, threshold)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		product.Description = req.Description
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetBySKU retrieves a product by SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, strings.ToUpper(strings.TrimSpace(sku)))
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Category != nil {
		domainFilter.Filters["category"] = *filter.Category
	}

	found, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, len(found))
	for i := range found {
		responses[i] = ToProductResponse(&found[i])
	}
	return responses, total, nil
}

// Update updates a product's descriptive details
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	name := product.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := product.Description
	if req.Description != nil {
		description = *req.Description
	}
	category := product.Category
	if req.Category != nil {
		category = *req.Category
	}
	if err := product.Update(name, description, category); err != nil {
		return nil, err
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// UpdatePrice changes a product's unit price. Existing orders keep the
// price snapshotted at checkout.
func (s *ProductService) UpdatePrice(ctx context.Context, productID uuid.UUID, req UpdatePriceRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.UpdatePrice(valueobject.NewMoneyUSD(req.UnitPrice)); err != nil {
		return nil, err
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// UpdateThreshold changes a product's low-stock threshold
func (s *ProductService) UpdateThreshold(ctx context.Context, productID uuid.UUID, req UpdateThresholdRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.SetLowStockThreshold(req.LowStockThreshold); err != nil {
		return nil, err
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, product.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
	product.ClearDomainEvents()
}
