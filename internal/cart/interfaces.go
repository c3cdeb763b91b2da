package cart

import (
	"context"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	LockByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	CreateIfAbsent(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	InsertItem(ctx context.Context, item *models.CartItem) error
	UpdateItem(ctx context.Context, cartID, productID uuid.UUID, quantity int, unitPrice decimal.Decimal) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error)
	ClearItems(ctx context.Context, cartID uuid.UUID) (int64, error)
	Touch(ctx context.Context, cartID uuid.UUID) error
}

// ProductReader is the read surface the cart needs from the catalog.
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Locker serializes cart mutations per key.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
