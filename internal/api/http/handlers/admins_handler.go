package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/helpdesk-service/internal/api/dto"
	"github.com/campus-kit/helpdesk-service/internal/domain"
	"github.com/campus-kit/helpdesk-service/internal/repository"
	"github.com/campus-kit/helpdesk-service/internal/service"
	apperrors "github.com/campus-kit/helpdesk-service/pkg/util"
)

// AdminsHandler exposes administrator management endpoints.
type AdminsHandler struct {
	admins *service.AdminService
}

// NewAdminsHandler constructs the handler.
func NewAdminsHandler(admins *service.AdminService) *AdminsHandler {
	return &AdminsHandler{admins: admins}
}

// List handles GET /admin/admins.
func (h *AdminsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	filter := repository.AdminFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if role := c.Query("role"); role != "" {
		r := domain.AdminRole(role)
		filter.Role = &r
	}
	if active := c.Query("active"); active != "" {
		b := active == "true"
		filter.Active = &b
	}

	admins, err := h.admins.ListAdmins(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"admins": dto.NewAdminList(admins), "count": len(admins)})
}

// Create handles POST /admin/admins.
func (h *AdminsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req dto.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		return apperrors.NewValidationError("name, email and a password of at least 8 characters are required", nil)
	}

	admin, err := h.admins.CreateAdmin(c.UserContext(), actor, service.AdminCreateInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        domain.AdminRole(req.Role),
		Permissions: req.Permissions.ToDomain(),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAdminResponse(admin))
}

// Update handles PATCH /admin/admins/:id.
func (h *AdminsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req dto.UpdateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	input := service.AdminUpdateInput{Name: req.Name, Active: req.Active}
	if req.Permissions != nil {
		permissions := req.Permissions.ToDomain()
		input.Permissions = &permissions
	}

	admin, err := h.admins.UpdateAdmin(c.UserContext(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAdminResponse(admin))
}
