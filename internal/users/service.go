package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the admin user management operations.
type Service interface {
	ListUsers(ctx context.Context, page pagination.Params) (*ListResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpdateRole(ctx context.Context, actorID, id uuid.UUID, role enums.UserRole) (*UserDTO, error)
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, page pagination.Params) ([]models.User, int64, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error
}

type service struct {
	repo userStore
}

// NewService builds the admin user service.
func NewService(repo userStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListUsers(ctx context.Context, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()
	rows, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ListResult{Users: out, Pagination: pagination.NewMeta(page, total)}, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(user), nil
}

func (s *service) UpdateRole(ctx context.Context, actorID, id uuid.UUID, role enums.UserRole) (*UserDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if actorID == id && role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admins cannot demote themselves")
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, mapLookupError(err)
	}
	return s.GetUser(ctx, id)
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
}
