package dto

import (
	"time"

	"github.com/campus-kit/helpdesk-service/internal/domain"
)

// AdminPermissionsPayload mirrors the per-admin capability flags.
type AdminPermissionsPayload struct {
	ManageTickets bool `json:"manage_tickets"`
	ManageUsers   bool `json:"manage_users"`
	ViewAnalytics bool `json:"view_analytics"`
}

// CreateAdminRequest provisions an administrator account.
type CreateAdminRequest struct {
	Name        string                  `json:"name"`
	Email       string                  `json:"email"`
	Password    string                  `json:"password"`
	Role        string                  `json:"role"`
	Permissions AdminPermissionsPayload `json:"permissions"`
}

// UpdateAdminRequest patches an administrator; omitted fields stay.
type UpdateAdminRequest struct {
	Name        *string                  `json:"name"`
	Permissions *AdminPermissionsPayload `json:"permissions"`
	Active      *bool                    `json:"active"`
}

// AdminResponse is the public projection of an administrator.
type AdminResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Email       string                  `json:"email"`
	Role        string                  `json:"role"`
	Permissions AdminPermissionsPayload `json:"permissions"`
	Active      bool                    `json:"active"`
	CreatedAt   time.Time               `json:"created_at"`
}

// ToDomain converts the payload to domain permission flags.
func (p AdminPermissionsPayload) ToDomain() domain.AdminPermissions {
	return domain.AdminPermissions{
		ManageTickets: p.ManageTickets,
		ManageUsers:   p.ManageUsers,
		ViewAnalytics: p.ViewAnalytics,
	}
}

// NewAdminResponse maps the domain admin.
func NewAdminResponse(a *domain.Admin) AdminResponse {
	return AdminResponse{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Role:  string(a.Role),
		Permissions: AdminPermissionsPayload{
			ManageTickets: a.Permissions.ManageTickets,
			ManageUsers:   a.Permissions.ManageUsers,
			ViewAnalytics: a.Permissions.ViewAnalytics,
		},
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

// NewAdminList maps a slice of admins.
func NewAdminList(admins []domain.Admin) []AdminResponse {
	result := make([]AdminResponse, 0, len(admins))
	for i := range admins {
		result = append(result, NewAdminResponse(&admins[i]))
	}
	return result
}
