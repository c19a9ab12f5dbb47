package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gasworks/servicedesk/internal/api/dto"
	"github.com/gasworks/servicedesk/internal/auth"
	"github.com/gasworks/servicedesk/internal/domain"
	"github.com/gasworks/servicedesk/internal/service"
	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

// SupportHandler manages the staff queue endpoints.
type SupportHandler struct {
	requests  *service.RequestService
	lifecycle *service.LifecycleService
	queue     *service.QueueService
}

// NewSupportHandler constructs handler.
func NewSupportHandler(requests *service.RequestService, lifecycle *service.LifecycleService, queue *service.QueueService) *SupportHandler {
	return &SupportHandler{requests: requests, lifecycle: lifecycle, queue: queue}
}

// Search GET /staff/requests. Combines a free-text query over request
// number, customer username/email and description with a status filter.
func (h *SupportHandler) Search(c *fiber.Ctx) error {
	requests, err := h.queue.Search(c.UserContext(), c.Query("search"), c.Query("status"))
	if err != nil {
		return err
	}
	items := make([]dto.StaffRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, staffRequestResponse(&requests[i], nil, nil))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Counts GET /staff/requests/counts returns live per-status totals.
func (h *SupportHandler) Counts(c *fiber.Ctx) error {
	counts, err := h.queue.CountsByStatus(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.StatusCountsResponse{Counts: make(map[domain.RequestStatus]int, len(counts))}
	for status, count := range counts {
		resp.Counts[status] = int(count)
		resp.Total += int(count)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get GET /staff/requests/:number returns the unscoped detail view
// including support notes and assignee.
func (h *SupportHandler) Get(c *fiber.Ctx) error {
	detail, err := h.requests.GetDetail(c.UserContext(), c.Params("number"), nil)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffRequestResponse(detail.Request, detail.StatusUpdates, detail.Attachments)})
}

// Transition POST /staff/requests/:number/status moves a request to a new
// status and appends the audit entry.
func (h *SupportHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, entry, err := h.lifecycle.Transition(c.UserContext(), principal.User, c.Params("number"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"request":       staffRequestResponse(updated, nil, nil),
		"status_update": statusUpdateResponses([]domain.StatusUpdate{*entry})[0],
	}})
}

// Update PUT /staff/requests/:number edits priority, assignee, support
// notes and optionally the status in one call.
func (h *SupportHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.StaffUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.StaffUpdateInput{
		AssignedStaffID: req.AssignedStaffID,
		ClearAssignee:   req.ClearAssignee,
		SupportNotes:    req.SupportNotes,
		StatusNotes:     req.StatusNotes,
	}
	if req.Priority != "" {
		priority := req.Priority
		input.Priority = &priority
	}
	if req.Status != "" {
		status := req.Status
		input.Status = &status
	}

	updated, err := h.lifecycle.UpdateDetails(c.UserContext(), principal.User, c.Params("number"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffRequestResponse(updated, nil, nil)})
}

// Assignable GET /staff/assignable lists active staff accounts.
func (h *SupportHandler) Assignable(c *fiber.Ctx) error {
	staff, err := h.queue.ListAssignableStaff(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.StaffMemberResponse, 0, len(staff))
	for _, member := range staff {
		items = append(items, dto.StaffMemberResponse{
			ID:       member.ID,
			Username: member.Username,
			Email:    member.Email,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func staffRequestResponse(req *domain.ServiceRequest, updates []domain.StatusUpdate, attachments []domain.Attachment) dto.StaffRequestResponse {
	return dto.StaffRequestResponse{
		RequestDetailResponse: dto.RequestDetailResponse{
			RequestSummary: requestSummary(req),
			StatusUpdates:  statusUpdateResponses(updates),
			Attachments:    attachmentResponses(attachments),
		},
		CustomerID:      req.CustomerID,
		AssignedStaffID: req.AssignedStaffID,
		SupportNotes:    req.SupportNotes,
	}
}
