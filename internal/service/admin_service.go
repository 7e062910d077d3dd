package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/helpdesk-service/internal/auth"
	"github.com/campus-kit/helpdesk-service/internal/config"
	"github.com/campus-kit/helpdesk-service/internal/domain"
	"github.com/campus-kit/helpdesk-service/internal/repository"
	apperrors "github.com/campus-kit/helpdesk-service/pkg/util"
)

// AdminService manages administrator accounts. Listing is open to admins
// holding the ManageUsers flag; granting or revoking access requires a
// super-admin actor.
type AdminService struct {
	admins     repository.AdminRepository
	bcryptCost int
}

// NewAdminService constructs the service.
func NewAdminService(cfg config.Config, admins repository.AdminRepository) *AdminService {
	return &AdminService{admins: admins, bcryptCost: cfg.Auth.BcryptCost}
}

// AdminCreateInput carries fields for a new administrator account.
type AdminCreateInput struct {
	Name        string
	Email       string
	Password    string
	Role        domain.AdminRole
	Permissions domain.AdminPermissions
}

// AdminUpdateInput carries optional fields; nil means unchanged.
type AdminUpdateInput struct {
	Name        *string
	Permissions *domain.AdminPermissions
	Active      *bool
}

func requireSuperAdmin(actor domain.Actor) error {
	if actor.Admin == nil || actor.Admin.Role != domain.AdminRoleSuperAdmin || !actor.Admin.Active {
		return apperrors.NewAccessDenied("super admin role required")
	}
	return nil
}

// ListAdmins returns administrator accounts matching the filter.
func (s *AdminService) ListAdmins(ctx context.Context, actor domain.Actor, filter repository.AdminFilter) ([]domain.Admin, error) {
	if actor.Admin == nil || !actor.Admin.CanManageUsers() {
		return nil, apperrors.NewAccessDenied("manage users permission required")
	}
	admins, err := s.admins.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return admins, nil
}

// CreateAdmin provisions a new administrator.
func (s *AdminService) CreateAdmin(ctx context.Context, actor domain.Actor, input AdminCreateInput) (*domain.Admin, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if input.Role != domain.AdminRoleAdmin && input.Role != domain.AdminRoleSuperAdmin {
		return nil, apperrors.NewValidationError("unknown admin role", map[string]any{"role": input.Role})
	}
	if _, err := s.admins.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	admin := &domain.Admin{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Permissions:  input.Permissions,
		Active:       true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, apperrors.MapError(err)
	}
	return admin, nil
}

// UpdateAdmin patches name, permission flags, or active state.
func (s *AdminService) UpdateAdmin(ctx context.Context, actor domain.Actor, adminID string, input AdminUpdateInput) (*domain.Admin, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return nil, err
	}
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("admin", map[string]any{"admin_id": adminID})
		}
		return nil, apperrors.MapError(err)
	}

	if input.Active != nil && !*input.Active && admin.ID == actor.ID {
		return nil, apperrors.NewConflict("cannot deactivate own account", nil)
	}

	if input.Name != nil {
		admin.Name = *input.Name
	}
	if input.Permissions != nil {
		admin.Permissions = *input.Permissions
	}
	if input.Active != nil {
		admin.Active = *input.Active
	}

	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, apperrors.MapError(err)
	}
	return admin, nil
}
