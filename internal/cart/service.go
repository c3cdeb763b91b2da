package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	opGet    = "get"
	opAdd    = "add_item"
	opUpdate = "update_item"
	opRemove = "remove_item"
	opClear  = "clear"

	defaultLockWait = 3 * time.Second
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the per-user cart operations. Every mutation returns the
// joined cart as it stands after the change.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error)
	UpdateItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*View, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products ProductReader
	locker   Locker
	logg     *logger.Logger
	metrics  *metrics.CartMetrics
	lockWait time.Duration
	maxLine  int
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Repo            CartRepository
	Tx              txRunner
	Products        ProductReader
	Locker          Locker
	Logger          *logger.Logger
	Metrics         *metrics.CartMetrics
	LockWait        time.Duration
	// MaxLineQuantity caps a single line on top of stock. Zero means no cap.
	MaxLineQuantity int
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("cart locker required")
	}
	lockWait := params.LockWait
	if lockWait <= 0 {
		lockWait = defaultLockWait
	}
	if params.MaxLineQuantity < 0 {
		return nil, fmt.Errorf("max line quantity cannot be negative")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		products: params.Products,
		locker:   params.Locker,
		logg:     params.Logger,
		metrics:  params.Metrics,
		lockWait: lockWait,
		maxLine:  params.MaxLineQuantity,
	}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (view *View, err error) {
	defer s.observe(opGet, time.Now(), &err)

	if err := validateUser(userID); err != nil {
		return nil, err
	}
	return s.load(ctx, userID)
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (view *View, err error) {
	defer s.observe(opAdd, time.Now(), &err)

	if err := validateUser(userID); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if s.exceedsLineCap(quantity) {
		return nil, s.lineLimitError()
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	var lineQuantity int
	view, err = s.mutate(ctx, userID, func(repo CartRepository) error {
		record, err := repo.LockByUser(ctx, userID)
		if isNotFound(err) {
			record, err = repo.CreateIfAbsent(ctx, userID)
		}
		if err != nil {
			return err
		}

		existing := toDomain(record)
		current := existing.Quantity(productID)
		lineQuantity = current + quantity
		if lineQuantity > product.Stock {
			return insufficientStock(product.Stock, current)
		}
		if s.exceedsLineCap(lineQuantity) {
			return s.lineLimitError()
		}

		price := product.Price.Round(2)
		if current == 0 {
			err = repo.InsertItem(ctx, &models.CartItem{
				CartID:    record.ID,
				ProductID: productID,
				Quantity:  quantity,
				UnitPrice: price,
			})
		} else {
			err = repo.UpdateItem(ctx, record.ID, productID, lineQuantity, price)
		}
		if err != nil {
			return err
		}
		return repo.Touch(ctx, record.ID)
	})
	if err != nil {
		return nil, err
	}

	s.info(ctx, "cart.item_added", map[string]any{
		"user_id":       userID.String(),
		"product_id":    productID.String(),
		"quantity":      quantity,
		"line_quantity": lineQuantity,
	})
	return view, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (view *View, err error) {
	if quantity == 0 {
		return s.remove(ctx, opUpdate, userID, productID)
	}
	defer s.observe(opUpdate, time.Now(), &err)

	if err := validateUser(userID); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if s.exceedsLineCap(quantity) {
		return nil, s.lineLimitError()
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	var previous int
	view, err = s.mutate(ctx, userID, func(repo CartRepository) error {
		record, err := repo.LockByUser(ctx, userID)
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		if err != nil {
			return err
		}

		existing := toDomain(record)
		previous = existing.Quantity(productID)
		if previous == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
		}
		if quantity > product.Stock {
			return insufficientStock(product.Stock, previous)
		}
		if err := repo.UpdateItem(ctx, record.ID, productID, quantity, product.Price.Round(2)); err != nil {
			return err
		}
		return repo.Touch(ctx, record.ID)
	})
	if err != nil {
		return nil, err
	}

	s.info(ctx, "cart.item_updated", map[string]any{
		"user_id":    userID.String(),
		"product_id": productID.String(),
		"previous":   previous,
		"quantity":   quantity,
	})
	return view, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	return s.remove(ctx, opRemove, userID, productID)
}

// remove backs both RemoveItem and UpdateItemQuantity(0). It never consults the
// catalog so lines of deleted products can still be dropped.
func (s *service) remove(ctx context.Context, op string, userID, productID uuid.UUID) (view *View, err error) {
	defer s.observe(op, time.Now(), &err)

	if err := validateUser(userID); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}

	var removed bool
	view, err = s.mutate(ctx, userID, func(repo CartRepository) error {
		record, err := repo.LockByUser(ctx, userID)
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		if err != nil {
			return err
		}
		removed, err = repo.DeleteItem(ctx, record.ID, productID)
		if err != nil || !removed {
			return err
		}
		return repo.Touch(ctx, record.ID)
	})
	if err != nil {
		return nil, err
	}

	s.info(ctx, "cart.item_removed", map[string]any{
		"user_id":    userID.String(),
		"product_id": productID.String(),
		"removed":    removed,
	})
	return view, nil
}

func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) (view *View, err error) {
	defer s.observe(opClear, time.Now(), &err)

	if err := validateUser(userID); err != nil {
		return nil, err
	}

	var cleared int64
	view, err = s.mutate(ctx, userID, func(repo CartRepository) error {
		record, err := repo.LockByUser(ctx, userID)
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		if err != nil {
			return err
		}
		if cleared, err = repo.ClearItems(ctx, record.ID); err != nil {
			return err
		}
		return repo.Touch(ctx, record.ID)
	})
	if err != nil {
		return nil, err
	}

	s.info(ctx, "cart.cleared", map[string]any{
		"user_id":       userID.String(),
		"removed_lines": cleared,
	})
	return view, nil
}

// mutate runs fn under the per-user lock inside a transaction, then reloads
// the joined cart before releasing the lock.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, fn func(repo CartRepository) error) (*View, error) {
	started := time.Now()
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	unlock, err := s.locker.Lock(lockCtx, LockKey(userID))
	cancel()
	s.metrics.ObserveLockWait(time.Since(started))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart is busy")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire cart lock")
	}
	defer unlock()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(s.repo.WithTx(tx))
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return s.load(ctx, userID)
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*View, error) {
	record, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.enrich(ctx, toDomain(record))
}

// enrich joins live product display data onto the persisted lines. It never
// changes snapshot prices or totals.
func (s *service) enrich(ctx context.Context, c Cart) (*View, error) {
	view := &View{
		ID:        c.ID,
		UserID:    c.UserID,
		Lines:     make([]Line, 0, len(c.Items)),
		Totals:    ComputeTotals(c.Items),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if len(c.Items) == 0 {
		return view, nil
	}

	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	rows, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	byID := make(map[uuid.UUID]*ProductSummary, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &ProductSummary{
			ID:       rows[i].ID,
			Name:     rows[i].Name,
			Price:    rows[i].Price,
			ImageURL: rows[i].ImageURL,
		}
	}
	for _, item := range c.Items {
		view.Lines = append(view.Lines, Line{Item: item, Product: byID[item.ProductID]})
	}
	return view, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) exceedsLineCap(quantity int) bool {
	return s.maxLine > 0 && quantity > s.maxLine
}

func (s *service) lineLimitError() error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity cannot exceed %d per product", s.maxLine))
}

func (s *service) observe(op string, started time.Time, errp *error) {
	s.metrics.Observe(op, outcomeFor(*errp), time.Since(started))
}

func (s *service) info(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.InfoFields(ctx, msg, fields)
}

func outcomeFor(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch code := pkgerrors.As(err).Code(); code {
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound, pkgerrors.CodeInsufficientStock, pkgerrors.CodeConflict:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailure
	}
}

func insufficientStock(available, current int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(InsufficientStockDetails{
			AvailableStock:      available,
			CurrentCartQuantity: current,
		})
}

func validateUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	return nil
}

func toDomain(record *models.Cart) Cart {
	c := Cart{
		ID:        record.ID,
		UserID:    record.UserID,
		Items:     make([]Item, 0, len(record.Items)),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	for _, row := range record.Items {
		c.Items = append(c.Items, Item{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
		})
	}
	return c
}
