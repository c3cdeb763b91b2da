package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	"github.com/angelmondragon/shopfront-backend/pkg/pagination"
)

// Repository is the gorm-backed user store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) users(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{})
}

func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail expects the email already normalized to lower case.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	user := new(models.User)
	if err := r.db.WithContext(ctx).Where(query, arg).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ExistsByEmailOrUsername reports whether either identifier is taken.
func (r *Repository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var n int64
	err := r.users(ctx).Where("email = ? OR username = ?", email, username).Count(&n).Error
	return n > 0, err
}

// List pages through users newest first; id breaks ties so pages are stable.
func (r *Repository) List(ctx context.Context, page pagination.Params) ([]models.User, int64, error) {
	page = page.Normalize()

	var total int64
	if err := r.users(ctx).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]models.User, 0, page.Limit)
	err := r.users(ctx).
		Order("created_at DESC, id ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.users(ctx).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash stores a rehashed password after a parameter upgrade.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.users(ctx).Where("id = ?", id).UpdateColumn("password_hash", hash).Error
}

// UpdateRole returns gorm.ErrRecordNotFound when no user has id.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error {
	res := r.users(ctx).Where("id = ?", id).Update("role", role)
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return gorm.ErrRecordNotFound
	}
	return nil
}
