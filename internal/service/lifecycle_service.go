package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gasworks/servicedesk/internal/domain"
	"github.com/gasworks/servicedesk/internal/events"
	"github.com/gasworks/servicedesk/internal/repository"
	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

// LifecycleService owns the status state machine and its audit trail.
// Any of the five states may follow any other; re-recording the current
// status is also accepted and still appends an audit entry.
type LifecycleService struct {
	requests   repository.RequestRepository
	updates    repository.StatusUpdateRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	RequestRepo      repository.RequestRepository
	StatusUpdateRepo repository.StatusUpdateRepository
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
}

// StaffUpdateInput captures a staff edit of a request. Nil fields are left
// unchanged. ClearAssignee takes precedence over AssignedStaffID.
type StaffUpdateInput struct {
	Priority        *domain.RequestPriority
	AssignedStaffID *string
	ClearAssignee   bool
	SupportNotes    *string
	Status          *domain.RequestStatus
	StatusNotes     string
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		requests:   deps.RequestRepo,
		updates:    deps.StatusUpdateRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Transition moves a request to newStatus and appends the audit entry.
// Both writes commit together or not at all.
func (s *LifecycleService) Transition(ctx context.Context, actor *domain.User, number string, newStatus domain.RequestStatus, notes string) (*domain.ServiceRequest, *domain.StatusUpdate, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(newStatus)})
	}

	req, err := s.requests.GetByNumber(ctx, number, nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("service request", map[string]any{"request_number": number})
		}
		return nil, nil, err
	}

	previous := req.Status
	req.Status = newStatus

	update := &domain.StatusUpdate{
		PreviousStatus: previous,
		NewStatus:      newStatus,
		Notes:          strings.TrimSpace(notes),
	}
	if actor != nil {
		update.UpdatedByID = &actor.ID
	}

	if err := s.requests.UpdateWithAudit(ctx, req, update); err != nil {
		return nil, nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:          events.EventRequestStatusChanged,
		RequestNumber: req.RequestNumber,
		Actor:         actorFor(actor),
		Payload: events.RequestStatusChangedPayload{
			PreviousStatus: previous,
			NewStatus:      newStatus,
			Notes:          update.Notes,
		},
	})
	return req, update, nil
}

// UpdateDetails applies a staff edit. A status change rides along as a
// transition: the audit entry is written in the same transaction as the
// request mutation. Edits that leave the status untouched append nothing
// to the trail.
func (s *LifecycleService) UpdateDetails(ctx context.Context, actor *domain.User, number string, input StaffUpdateInput) (*domain.ServiceRequest, error) {
	if input.Status != nil && !domain.ValidStatus(*input.Status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(*input.Status)})
	}
	if input.Priority != nil && !domain.ValidPriority(*input.Priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(*input.Priority)})
	}

	req, err := s.requests.GetByNumber(ctx, number, nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_number": number})
		}
		return nil, err
	}

	assigneeChanged := false
	if input.ClearAssignee {
		if req.AssignedStaffID != nil {
			assigneeChanged = true
		}
		req.AssignedStaffID = nil
	} else if input.AssignedStaffID != nil {
		if req.AssignedStaffID == nil || *req.AssignedStaffID != *input.AssignedStaffID {
			if err := s.validateAssignee(ctx, *input.AssignedStaffID); err != nil {
				return nil, err
			}
			assigneeChanged = true
		}
		req.AssignedStaffID = input.AssignedStaffID
	}
	if input.Priority != nil {
		req.Priority = *input.Priority
	}
	if input.SupportNotes != nil {
		req.SupportNotes = *input.SupportNotes
	}

	var update *domain.StatusUpdate
	previous := req.Status
	if input.Status != nil && *input.Status != req.Status {
		req.Status = *input.Status
		update = &domain.StatusUpdate{
			PreviousStatus: previous,
			NewStatus:      *input.Status,
			Notes:          strings.TrimSpace(input.StatusNotes),
		}
		if actor != nil {
			update.UpdatedByID = &actor.ID
		}
	}

	if err := s.requests.UpdateWithAudit(ctx, req, update); err != nil {
		return nil, err
	}

	if update != nil {
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:          events.EventRequestStatusChanged,
			RequestNumber: req.RequestNumber,
			Actor:         actorFor(actor),
			Payload: events.RequestStatusChangedPayload{
				PreviousStatus: previous,
				NewStatus:      req.Status,
				Notes:          update.Notes,
			},
		})
	}
	if assigneeChanged {
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:          events.EventRequestAssigned,
			RequestNumber: req.RequestNumber,
			Actor:         actorFor(actor),
			Payload: events.RequestAssignedPayload{
				AssignedStaffID: req.AssignedStaffID,
			},
		})
	}
	return req, nil
}

func (s *LifecycleService) validateAssignee(ctx context.Context, staffID string) error {
	assignee, err := s.users.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("unknown assignee", map[string]any{"assigned_staff_id": staffID})
		}
		return err
	}
	if !assignee.IsStaff() || !assignee.Active {
		return apperrors.NewValidationError("assignee must be an active staff account", map[string]any{"assigned_staff_id": staffID})
	}
	return nil
}

// History returns a request's audit trail, newest first. A non-nil
// customerID scopes the lookup to that customer.
func (s *LifecycleService) History(ctx context.Context, number string, customerID *string) ([]domain.StatusUpdate, error) {
	req, err := s.requests.GetByNumber(ctx, number, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_number": number})
		}
		return nil, err
	}
	return s.updates.ListByRequest(ctx, req.ID)
}
