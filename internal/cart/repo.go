package cart

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence operations for carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUser loads the user's cart with its items in insertion order.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// LockByUser loads the user's cart row with FOR UPDATE, then its items.
// SQLite ignores the locking clause; the per-user Locker still serializes writers.
func (r *Repository) LockByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	record.Items = items
	return &record, nil
}

// CreateIfAbsent inserts the user's cart unless one already exists, then
// returns the locked row. Concurrent creators converge on the same cart.
func (r *Repository) CreateIfAbsent(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	record := models.Cart{UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&record).Error
	if err != nil {
		return nil, err
	}
	return r.LockByUser(ctx, userID)
}

// InsertItem adds a new line.
func (r *Repository) InsertItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItem sets the absolute quantity and unit price of an existing line.
func (r *Repository) UpdateItem(ctx context.Context, cartID, productID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]any{
			"quantity":   quantity,
			"unit_price": unitPrice,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteItem removes a line and reports whether one existed.
func (r *Repository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ClearItems removes every line of the cart and returns how many were deleted.
func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// Touch bumps the cart's updated_at.
func (r *Repository) Touch(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", time.Now().UTC()).Error
}

func (r *Repository) listItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
