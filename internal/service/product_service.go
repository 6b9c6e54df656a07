package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Listing limits
const (
	DefaultPageSize = 50
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*MaxPageSize inside a postgres OFFSET
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Defaults applied to fields a create request leaves out
const (
	DefaultProductName        = "Sample Name"
	DefaultProductDescription = "Sample description"
	DefaultProductImage       = "/images/sample.jpg"
	DefaultProductBrand       = "Sample Brand"
	DefaultProductCategory    = "Electronics"
)

// ProductInput is a create or update request. Empty strings and nil
// pointers/lists mean "not provided".
type ProductInput struct {
	Name             string              `json:"name" validate:"max=255"`
	Image            string              `json:"image" validate:"max=500"`
	AdditionalImages []string            `json:"additionalImages"`
	Brand            string              `json:"brand" validate:"max=255"`
	Category         string              `json:"category" validate:"max=255"`
	Description      string              `json:"description"`
	Price            *float64            `json:"price" validate:"omitempty,gte=0"`
	Stock            *int                `json:"countInStock" validate:"omitempty,gte=0"`
	Sizes            []string            `json:"sizes"`
	Colors           []string            `json:"colors"`
	ColorImages      []domain.ColorImage `json:"colorImages"`
	Variants         []domain.Variant    `json:"variants"`
}

// ListProductsQuery holds the raw listing parameters
type ListProductsQuery struct {
	Category string
	Query    string
	Page     int
	PageSize int
	Sort     string
	Order    string
}

// ProductPage is one page of a catalog listing
type ProductPage struct {
	Products []*domain.Product `json:"products"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Total    int               `json:"total"`
}

// ProductService defines the interface for catalog business logic
type ProductService interface {
	List(ctx context.Context, query ListProductsQuery) (*ProductPage, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, createdBy uuid.UUID, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	productRepo repository.ProductRepository
	catalog     cache.Catalog
	logger      *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, catalog cache.Catalog, logger *zap.Logger) ProductService {
	if catalog == nil {
		catalog = cache.NewNoop()
	}
	return &productService{
		productRepo: productRepo,
		catalog:     catalog,
		logger:      logger,
	}
}

func (q ListProductsQuery) filter() repository.ProductFilter {
	page := q.Page
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}

	pageSize := q.PageSize
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	order := repository.SortOrderDesc
	if strings.EqualFold(q.Order, "asc") {
		order = repository.SortOrderAsc
	}

	sortBy := q.Sort
	if sortBy == "createdAt" {
		sortBy = "created_at"
	}

	return repository.ProductFilter{
		Category:  strings.TrimSpace(q.Category),
		Query:     strings.TrimSpace(q.Query),
		Page:      page,
		PageSize:  pageSize,
		SortBy:    sortBy,
		SortOrder: order,
	}
}

func listCacheKey(f repository.ProductFilter) string {
	return fmt.Sprintf("list:%s|%s|%d|%d|%s|%s", f.Category, f.Query, f.Page, f.PageSize, f.SortBy, f.SortOrder)
}

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

// List returns one page of the catalog
func (s *productService) List(ctx context.Context, query ListProductsQuery) (*ProductPage, error) {
	filter := query.filter()
	key := listCacheKey(filter)

	var cached ProductPage
	slot, ok := s.catalog.Get(ctx, key, &cached)
	if ok {
		return &cached, nil
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	page := &ProductPage{
		Products: products,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
	}
	s.catalog.Set(ctx, slot, page)

	return page, nil
}

// Get returns a single product
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	key := productCacheKey(id)

	var cached domain.Product
	slot, ok := s.catalog.Get(ctx, key, &cached)
	if ok {
		return &cached, nil
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	s.catalog.Set(ctx, slot, product)
	return product, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// Create adds a product, filling defaults for omitted fields
func (s *productService) Create(ctx context.Context, createdBy uuid.UUID, input ProductInput) (*domain.Product, error) {
	now := time.Now()
	product := &domain.Product{
		ID:               uuid.New(),
		Name:             orDefault(input.Name, DefaultProductName),
		Image:            orDefault(input.Image, DefaultProductImage),
		AdditionalImages: input.AdditionalImages,
		Brand:            orDefault(input.Brand, DefaultProductBrand),
		Category:         orDefault(input.Category, DefaultProductCategory),
		Description:      orDefault(input.Description, DefaultProductDescription),
		Sizes:            input.Sizes,
		Colors:           input.Colors,
		ColorImages:      input.ColorImages,
		Variants:         input.Variants,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if createdBy != uuid.Nil {
		product.CreatedBy = &createdBy
	}

	if product.Price < 0 || product.Stock < 0 {
		return nil, ErrInvalidProduct
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.catalog.Invalidate(ctx)
	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("created_by", createdBy.String()),
	)

	return product, nil
}

// Update applies the provided fields. Numbers and lists are replaced whenever
// present, so a price or stock of 0 is a valid explicit value.
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	applyString := func(dst *string, value string) {
		if strings.TrimSpace(value) != "" {
			*dst = value
		}
	}
	applyString(&product.Name, input.Name)
	applyString(&product.Image, input.Image)
	applyString(&product.Brand, input.Brand)
	applyString(&product.Category, input.Category)
	applyString(&product.Description, input.Description)

	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.AdditionalImages != nil {
		product.AdditionalImages = input.AdditionalImages
	}
	if input.Sizes != nil {
		product.Sizes = input.Sizes
	}
	if input.Colors != nil {
		product.Colors = input.Colors
	}
	if input.ColorImages != nil {
		product.ColorImages = input.ColorImages
	}
	if input.Variants != nil {
		product.Variants = input.Variants
	}

	if product.Price < 0 || product.Stock < 0 {
		return nil, ErrInvalidProduct
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.catalog.Invalidate(ctx)
	return product, nil
}

// Delete removes a product; historical orders keep their snapshots
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.catalog.Invalidate(ctx)
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}
