package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the persisted per-user aggregate. Items are keyed by product id.
type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is a cart line. UnitPrice is the product price snapshotted at the
// last add or update touching this line.
type Item struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals are derived from items on every read and never stored.
type Totals struct {
	TotalItems int
	TotalPrice decimal.Decimal
}

// ComputeTotals sums quantities and quantity × unit price across items.
func ComputeTotals(items []Item) Totals {
	totals := Totals{TotalPrice: decimal.Zero}
	for _, item := range items {
		totals.TotalItems += item.Quantity
		totals.TotalPrice = totals.TotalPrice.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return totals
}

// Quantity returns the quantity held for productID, or zero when absent.
func (c *Cart) Quantity(productID uuid.UUID) int {
	if c == nil {
		return 0
	}
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// ProductSummary is the live product display data joined onto a line at read time.
type ProductSummary struct {
	ID       uuid.UUID
	Name     string
	Price    decimal.Decimal
	ImageURL *string
}

// Line pairs a persisted item with its product summary. Product is nil when
// the product row no longer exists.
type Line struct {
	Item
	Product *ProductSummary
}

// View is the joined cart returned by every service operation.
type View struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Lines     []Line
	Totals    Totals
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InsufficientStockDetails is attached to INSUFFICIENT_STOCK errors.
type InsufficientStockDetails struct {
	AvailableStock      int `json:"availableStock"`
	CurrentCartQuantity int `json:"currentCartQuantity"`
}
