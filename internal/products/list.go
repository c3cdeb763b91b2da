package product

import (
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	"github.com/angelmondragon/shopfront-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     enums.ProductSort
}

// ListProductsInput captures the inputs needed to paginate/filter the catalog.
type ListProductsInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListResult is a page of products plus pagination metadata.
type ListResult struct {
	Products   []ProductDTO    `json:"products"`
	Pagination pagination.Meta `json:"pagination"`
}
