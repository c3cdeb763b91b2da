package cart

// AddItemRequest is the body of POST /api/cart/items.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemRequest is the body of PUT /api/cart/items/{productId}. Zero removes the line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}
