package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog browse and admin product management operations.
type Service interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ListResult, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    *string
	Category    string
	Stock       int
	IsActive    *bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	Category    *string
	Stock       *int
	IsActive    *bool
}

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context, filters ListFilters, page pagination.Params) ([]models.Product, int64, error)
}

type service struct {
	repo productRepository
	logg *logger.Logger
}

// NewService builds a product service backed by the provided repository.
func NewService(repo productRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ListResult, error) {
	filters := input.Filters
	if filters.MinPrice != nil && filters.MaxPrice != nil && filters.MinPrice.GreaterThan(*filters.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minPrice cannot exceed maxPrice")
	}
	if filters.Sort != "" && !filters.Sort.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort")
	}

	page := input.Pagination.Normalize()
	rows, total, err := s.repo.ListActive(ctx, filters, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return &ListResult{
		Products:   items,
		Pagination: pagination.NewMeta(page, total),
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	product := &models.Product{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price.Round(2),
		ImageURL:    trimOptional(input.ImageURL),
		Category:    strings.TrimSpace(input.Category),
		Stock:       input.Stock,
		IsActive:    active,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	if s.logg != nil {
		s.logg.InfoFields(ctx, "product.created", map[string]any{"product_id": created.ID.String()})
	}
	dto := FromModel(created)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := applyUpdateToProduct(product, input); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	dto := FromModel(updated)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if s.logg != nil {
		s.logg.InfoFields(ctx, "product.deleted", map[string]any{"product_id": productID.String()})
	}
	return nil
}

func (s *service) find(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return err
		}
		product.Price = input.Price.Round(2)
	}
	if input.ImageURL != nil {
		product.ImageURL = trimOptional(input.ImageURL)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
