package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gasworks/servicedesk/internal/api/dto"
	"github.com/gasworks/servicedesk/internal/domain"
	"github.com/gasworks/servicedesk/internal/service"
	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

// ServiceTypesHandler exposes the request categories.
type ServiceTypesHandler struct {
	types *service.ServiceTypeService
}

// NewServiceTypesHandler constructs handler.
func NewServiceTypesHandler(types *service.ServiceTypeService) *ServiceTypesHandler {
	return &ServiceTypesHandler{types: types}
}

// ListActive GET /service-types lists the categories open for new requests.
func (h *ServiceTypesHandler) ListActive(c *fiber.Ctx) error {
	types, err := h.types.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceTypeResponses(types)})
}

// ListAll GET /staff/service-types includes deactivated categories.
func (h *ServiceTypesHandler) ListAll(c *fiber.Ctx) error {
	types, err := h.types.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceTypeResponses(types)})
}

// Get GET /staff/service-types/:id.
func (h *ServiceTypesHandler) Get(c *fiber.Ctx) error {
	serviceType, err := h.types.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceTypeResponse(serviceType)})
}

// Create POST /staff/service-types.
func (h *ServiceTypesHandler) Create(c *fiber.Ctx) error {
	var req dto.ServiceTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.types.Create(c.UserContext(), serviceTypeInput(req, true))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": serviceTypeResponse(created)})
}

// Update PUT /staff/service-types/:id.
func (h *ServiceTypesHandler) Update(c *fiber.Ctx) error {
	var req dto.ServiceTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.types.Update(c.UserContext(), c.Params("id"), serviceTypeInput(req, true))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceTypeResponse(updated)})
}

// Delete DELETE /staff/service-types/:id. Types still referenced by
// requests are rejected with a conflict.
func (h *ServiceTypesHandler) Delete(c *fiber.Ctx) error {
	if err := h.types.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func serviceTypeInput(req dto.ServiceTypeRequest, defaultActive bool) service.ServiceTypeInput {
	active := defaultActive
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return service.ServiceTypeInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    active,
	}
}

func serviceTypeResponses(types []domain.ServiceType) []dto.ServiceTypeResponse {
	items := make([]dto.ServiceTypeResponse, 0, len(types))
	for i := range types {
		items = append(items, serviceTypeResponse(&types[i]))
	}
	return items
}

func serviceTypeResponse(serviceType *domain.ServiceType) dto.ServiceTypeResponse {
	return dto.ServiceTypeResponse{
		ID:          serviceType.ID,
		Name:        serviceType.Name,
		Description: serviceType.Description,
		IsActive:    serviceType.IsActive,
		CreatedAt:   serviceType.CreatedAt,
		UpdatedAt:   serviceType.UpdatedAt,
	}
}
