package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shopfront-backend/api/responses"
	"github.com/angelmondragon/shopfront-backend/api/validators"
	productsvc "github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/pagination"
)

const (
	maxSearchLength   = 100
	maxCategoryLength = 100
)

type createProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"imageUrl" validate:"omitempty,url"`
	Category    string          `json:"category" validate:"max=100"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsActive    *bool           `json:"isActive"`
}

func (r createProductRequest) toInput() productsvc.CreateProductInput {
	return productsvc.CreateProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Stock:       r.Stock,
		IsActive:    r.IsActive,
	}
}

type updateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"imageUrl"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool            `json:"isActive"`
}

func (r updateProductRequest) toInput() productsvc.UpdateProductInput {
	return productsvc.UpdateProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Stock:       r.Stock,
		IsActive:    r.IsActive,
	}
}

// ProductList serves the public catalog browse endpoint.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := parseProductListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseProductListQuery(r *http.Request) (productsvc.ListProductsInput, error) {
	page, err := validators.ParseQueryInt(r, "page", pagination.DefaultPage, 1, 1_000_000)
	if err != nil {
		return productsvc.ListProductsInput{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return productsvc.ListProductsInput{}, err
	}
	minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
	if err != nil {
		return productsvc.ListProductsInput{}, err
	}
	maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
	if err != nil {
		return productsvc.ListProductsInput{}, err
	}
	sort, err := enums.ParseProductSort(validators.QueryString(r, "sort", 0))
	if err != nil {
		return productsvc.ListProductsInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort").WithDetails(map[string]any{"field": "sort"})
	}

	return productsvc.ListProductsInput{
		Filters: productsvc.ListFilters{
			Search:   validators.QueryString(r, "search", maxSearchLength),
			Category: validators.QueryString(r, "category", maxCategoryLength),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
			Sort:     sort,
		},
		Pagination: pagination.Params{Page: page, Limit: limit},
	}, nil
}

// ProductDetail returns a single product by id.
func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminCreateProduct adds a catalog entry.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial update.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product. Carts keep their lines for it.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "product deleted"})
	}
}
