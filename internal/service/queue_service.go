package service

import (
	"context"
	"strings"

	"github.com/gasworks/servicedesk/internal/domain"
	"github.com/gasworks/servicedesk/internal/repository"
	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

// QueueService is the staff-facing read view over the request store.
type QueueService struct {
	requests repository.RequestRepository
	users    repository.UserRepository
}

// NewQueueService constructs the service.
func NewQueueService(requests repository.RequestRepository, users repository.UserRepository) *QueueService {
	return &QueueService{requests: requests, users: users}
}

// Search lists requests matching a free-text query AND a status filter.
// The query matches request number, customer username/email and
// description case-insensitively. statusFilter "" or "all" disables the
// status constraint.
func (s *QueueService) Search(ctx context.Context, query, statusFilter string) ([]domain.ServiceRequest, error) {
	filter := repository.RequestFilter{}
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		filter.Search = &trimmed
	}
	if statusFilter != "" && statusFilter != "all" {
		status := domain.RequestStatus(statusFilter)
		if !domain.ValidStatus(status) {
			return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": statusFilter})
		}
		filter.Status = &status
	}
	return s.requests.List(ctx, filter)
}

// CountsByStatus aggregates the whole request population for the dashboard
// tiles. Counts are recomputed on every call, never cached; statuses with
// no requests report zero.
func (s *QueueService) CountsByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	counts, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, status := range domain.RequestStatuses {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}
	return counts, nil
}

// ListAssignableStaff returns the active staff accounts a request may be
// assigned to. This is a derived view computed per call, not stored state.
func (s *QueueService) ListAssignableStaff(ctx context.Context) ([]domain.User, error) {
	return s.users.ListActiveStaff(ctx)
}
