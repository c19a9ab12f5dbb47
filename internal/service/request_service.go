package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gasworks/servicedesk/internal/domain"
	"github.com/gasworks/servicedesk/internal/events"
	"github.com/gasworks/servicedesk/internal/repository"
	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

// maxRequestNumberAttempts bounds the retry loop around request-number
// collisions. Collisions are detected by the store's unique constraint,
// never by a pre-check.
const maxRequestNumberAttempts = 5

// RequestService coordinates service-request creation and retrieval.
type RequestService struct {
	requests    repository.RequestRepository
	updates     repository.StatusUpdateRepository
	types       repository.ServiceTypeRepository
	attachments *AttachmentService
	dispatcher  events.Dispatcher
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo      repository.RequestRepository
	StatusUpdateRepo repository.StatusUpdateRepository
	ServiceTypeRepo  repository.ServiceTypeRepository
	Attachments      *AttachmentService
	Dispatcher       events.Dispatcher
}

// RequestCreateInput describes a creation payload. Attachment is optional.
type RequestCreateInput struct {
	ServiceTypeID string
	Description   string
	Priority      domain.RequestPriority
	Attachment    *AttachmentUpload
}

// RequestDetail bundles a request with its audit trail and attachments.
type RequestDetail struct {
	Request       *domain.ServiceRequest
	StatusUpdates []domain.StatusUpdate
	Attachments   []domain.Attachment
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:    deps.RequestRepo,
		updates:     deps.StatusUpdateRepo,
		types:       deps.ServiceTypeRepo,
		attachments: deps.Attachments,
		dispatcher:  deps.Dispatcher,
	}
}

// Create files a new service request for a customer. The request and its
// initial status update are persisted as one unit; the request number is
// regenerated and the insert retried when the store reports a collision.
func (s *RequestService) Create(ctx context.Context, customer *domain.User, input RequestCreateInput) (*domain.ServiceRequest, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(input.Priority)})
	}

	serviceType, err := s.types.GetByID(ctx, input.ServiceTypeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown service type", map[string]any{"service_type_id": input.ServiceTypeID})
		}
		return nil, err
	}
	if !serviceType.IsActive {
		return nil, apperrors.NewValidationError("service type is not available", map[string]any{"service_type_id": serviceType.ID})
	}

	req := &domain.ServiceRequest{
		CustomerID:    customer.ID,
		ServiceTypeID: serviceType.ID,
		Description:   description,
		Status:        domain.StatusPending,
		Priority:      priority,
	}

	created := false
	for attempt := 0; attempt < maxRequestNumberAttempts; attempt++ {
		req.RequestNumber = generateRequestNumber()
		initial := &domain.StatusUpdate{
			PreviousStatus: domain.StatusInitial,
			NewStatus:      domain.StatusPending,
			UpdatedByID:    &customer.ID,
			Notes:          domain.InitialUpdateNotes,
		}
		err := s.requests.CreateWithInitialUpdate(ctx, req, initial)
		if errors.Is(err, repository.ErrDuplicateRequestNumber) {
			continue
		}
		if err != nil {
			return nil, err
		}
		created = true
		break
	}
	if !created {
		return nil, apperrors.NewGenerationExhausted(maxRequestNumberAttempts)
	}

	if input.Attachment != nil {
		if _, err := s.attachments.attachToRequest(ctx, customer, req, *input.Attachment); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventRequestCreated,
		RequestNumber: req.RequestNumber,
		Actor:         actorFor(customer),
		Payload: events.RequestCreatedPayload{
			ServiceTypeID: req.ServiceTypeID,
			Priority:      req.Priority,
			Description:   req.Description,
		},
	})
	return req, nil
}

// Get fetches a request by number. A non-nil customerID scopes the lookup
// to that customer; requests owned by anyone else surface as NotFound.
func (s *RequestService) Get(ctx context.Context, number string, customerID *string) (*domain.ServiceRequest, error) {
	req, err := s.requests.GetByNumber(ctx, number, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_number": number})
		}
		return nil, err
	}
	return req, nil
}

// GetDetail returns a request plus its audit trail and attachments,
// applying the same ownership scoping as Get.
func (s *RequestService) GetDetail(ctx context.Context, number string, customerID *string) (*RequestDetail, error) {
	req, err := s.Get(ctx, number, customerID)
	if err != nil {
		return nil, err
	}
	updates, err := s.updates.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachments.listForRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return &RequestDetail{Request: req, StatusUpdates: updates, Attachments: attachments}, nil
}

// ListForCustomer returns the customer's own requests, newest first.
func (s *RequestService) ListForCustomer(ctx context.Context, customerID string) ([]domain.ServiceRequest, error) {
	return s.requests.List(ctx, repository.RequestFilter{CustomerID: &customerID})
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}

// generateRequestNumber produces a candidate identifier: fixed prefix plus
// an 8 character uppercase hex token.
func generateRequestNumber() string {
	return "SR-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func actorFor(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: user.ID, Role: user.Role}
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
