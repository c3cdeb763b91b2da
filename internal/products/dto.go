package product

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
	"github.com/google/uuid"
)

// ProductDTO is the public product payload.
type ProductDTO struct {
	ID          uuid.UUID   `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	ImageURL    *string     `json:"imageUrl,omitempty"`
	Category    string      `json:"category"`
	Stock       int         `json:"stock"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// FromModel maps a product row to its DTO.
func FromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       types.Money(p.Price),
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
