package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gasworks/servicedesk/internal/api/dto"
	"github.com/gasworks/servicedesk/internal/auth"
	"github.com/gasworks/servicedesk/internal/domain"
	"github.com/gasworks/servicedesk/internal/service"
	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

// RequestsHandler manages the customer-facing request endpoints.
type RequestsHandler struct {
	requests    *service.RequestService
	attachments *service.AttachmentService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requests *service.RequestService, attachments *service.AttachmentService) *RequestsHandler {
	return &RequestsHandler{requests: requests, attachments: attachments}
}

// Create POST /requests. Accepts JSON or multipart form with an optional
// "attachment" file part.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.RequestCreateInput{
		ServiceTypeID: req.ServiceTypeID,
		Description:   req.Description,
		Priority:      domain.RequestPriority(req.Priority),
	}

	if fileHeader, err := c.FormFile("attachment"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable attachment", nil)
		}
		defer closeUpload(file)
		input.Attachment = &service.AttachmentUpload{
			Filename: fileHeader.Filename,
			Content:  file,
		}
	}

	created, err := h.requests.Create(c.UserContext(), principal.User, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestSummary(created)})
}

// List GET /requests returns the caller's own requests, newest first.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	requests, err := h.requests.ListForCustomer(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, requestSummary(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /requests/:number returns a request with its audit trail and
// attachment list. Other customers' requests surface as not found.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	detail, err := h.requests.GetDetail(c.UserContext(), c.Params("number"), &principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(detail)})
}

// AddAttachment POST /requests/:number/attachments.
func (h *RequestsHandler) AddAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	fileHeader, err := c.FormFile("attachment")
	if err != nil || fileHeader == nil {
		return apperrors.NewValidationError("attachment file required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable attachment", nil)
	}
	defer closeUpload(file)

	attachment, err := h.attachments.Attach(c.UserContext(), principal.User, c.Params("number"), service.AttachmentUpload{
		Filename: fileHeader.Filename,
		Content:  file,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

// ListAttachments GET /requests/:number/attachments.
func (h *RequestsHandler) ListAttachments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	attachments, err := h.attachments.List(c.UserContext(), principal.User, c.Params("number"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, attachmentResponse(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func closeUpload(file multipart.File) {
	_ = file.Close()
}

func requestSummary(req *domain.ServiceRequest) dto.RequestSummary {
	return dto.RequestSummary{
		RequestNumber: req.RequestNumber,
		ServiceTypeID: req.ServiceTypeID,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
	}
}

func requestDetail(detail *service.RequestDetail) dto.RequestDetailResponse {
	return dto.RequestDetailResponse{
		RequestSummary: requestSummary(detail.Request),
		StatusUpdates:  statusUpdateResponses(detail.StatusUpdates),
		Attachments:    attachmentResponses(detail.Attachments),
	}
}

func statusUpdateResponses(updates []domain.StatusUpdate) []dto.StatusUpdateResponse {
	items := make([]dto.StatusUpdateResponse, 0, len(updates))
	for _, update := range updates {
		items = append(items, dto.StatusUpdateResponse{
			ID:             update.ID,
			PreviousStatus: update.PreviousStatus,
			NewStatus:      update.NewStatus,
			UpdatedByID:    update.UpdatedByID,
			Notes:          update.Notes,
			CreatedAt:      update.CreatedAt,
		})
	}
	return items
}

func attachmentResponses(attachments []domain.Attachment) []dto.AttachmentResponse {
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, attachmentResponse(&attachments[i]))
	}
	return items
}

func attachmentResponse(att *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:         att.ID,
		Filename:   att.Filename,
		SizeBytes:  att.SizeBytes,
		UploadedAt: att.UploadedAt,
	}
}
