package cart

import (
	"encoding/json"
	"time"

	cartsvc "github.com/angelmondragon/shopfront-backend/internal/cart"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
	"github.com/google/uuid"
)

// ProductRef is the product summary embedded in each line. Only the id is
// rendered once the product has been deleted from the catalog.
type ProductRef struct {
	ID       uuid.UUID    `json:"_id"`
	Name     string       `json:"name,omitempty"`
	Price    *json.Number `json:"price,omitempty"`
	ImageURL *string      `json:"imageUrl,omitempty"`
}

// ItemResponse is one cart line. Price is the unit price snapshotted when
// the line was last added or updated, not the live catalog price.
type ItemResponse struct {
	Product  ProductRef  `json:"product"`
	Quantity int         `json:"quantity"`
	Price    json.Number `json:"price"`
}

// Response is the cart payload returned by every cart endpoint. Totals are
// computed from the snapshot prices.
type Response struct {
	ID         uuid.UUID      `json:"_id"`
	User       uuid.UUID      `json:"user"`
	Items      []ItemResponse `json:"items"`
	TotalPrice json.Number    `json:"totalPrice"`
	TotalItems int            `json:"totalItems"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func newResponse(view *cartsvc.View) Response {
	items := make([]ItemResponse, 0, len(view.Lines))
	for _, line := range view.Lines {
		ref := ProductRef{ID: line.ProductID}
		if line.Product != nil {
			price := types.Money(line.Product.Price)
			ref.Name = line.Product.Name
			ref.Price = &price
			ref.ImageURL = line.Product.ImageURL
		}
		items = append(items, ItemResponse{
			Product:  ref,
			Quantity: line.Quantity,
			Price:    types.Money(line.UnitPrice),
		})
	}

	return Response{
		ID:         view.ID,
		User:       view.UserID,
		Items:      items,
		TotalPrice: types.Money(view.Totals.TotalPrice),
		TotalItems: view.Totals.TotalItems,
		CreatedAt:  view.CreatedAt,
		UpdatedAt:  view.UpdatedAt,
	}
}
