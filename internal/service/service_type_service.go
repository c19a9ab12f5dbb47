package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gasworks/servicedesk/internal/domain"
	"github.com/gasworks/servicedesk/internal/persistence"
	"github.com/gasworks/servicedesk/internal/repository"
	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

const activeTypesCacheKey = "service_types:active"

// ServiceTypeService manages the request categories. The active list is
// cached in Redis and invalidated on every write; the cache is best effort
// and a cold or unreachable Redis falls through to Postgres.
type ServiceTypeService struct {
	types    repository.ServiceTypeRepository
	cache    *persistence.Redis
	cacheTTL time.Duration
}

// ServiceTypeInput describes a create/update payload.
type ServiceTypeInput struct {
	Name        string
	Description string
	IsActive    bool
}

// NewServiceTypeService constructs the service.
func NewServiceTypeService(types repository.ServiceTypeRepository, cache *persistence.Redis, cacheTTL time.Duration) *ServiceTypeService {
	return &ServiceTypeService{types: types, cache: cache, cacheTTL: cacheTTL}
}

// ListActive returns the categories customers may file requests under.
func (s *ServiceTypeService) ListActive(ctx context.Context) ([]domain.ServiceType, error) {
	if raw, ok := s.cache.GetCached(ctx, activeTypesCacheKey); ok {
		var cached []domain.ServiceType
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	}

	result, err := s.types.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(result); err == nil {
		s.cache.SetCached(ctx, activeTypesCacheKey, string(encoded), s.cacheTTL)
	}
	return result, nil
}

// ListAll returns every category including deactivated ones (staff view).
func (s *ServiceTypeService) ListAll(ctx context.Context) ([]domain.ServiceType, error) {
	return s.types.List(ctx, false)
}

// Get fetches one category.
func (s *ServiceTypeService) Get(ctx context.Context, id string) (*domain.ServiceType, error) {
	serviceType, err := s.types.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service type", map[string]any{"id": id})
		}
		return nil, err
	}
	return serviceType, nil
}

// Create adds a category.
func (s *ServiceTypeService) Create(ctx context.Context, input ServiceTypeInput) (*domain.ServiceType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	serviceType := &domain.ServiceType{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsActive:    input.IsActive,
	}
	if err := s.types.Create(ctx, serviceType); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, activeTypesCacheKey)
	return serviceType, nil
}

// Update edits a category.
func (s *ServiceTypeService) Update(ctx context.Context, id string, input ServiceTypeInput) (*domain.ServiceType, error) {
	serviceType, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		serviceType.Name = name
	}
	serviceType.Description = strings.TrimSpace(input.Description)
	serviceType.IsActive = input.IsActive

	if err := s.types.Update(ctx, serviceType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service type", map[string]any{"id": id})
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, activeTypesCacheKey)
	return serviceType, nil
}

// Delete removes a category. Deletion is rejected while any request still
// references the type; deactivate instead.
func (s *ServiceTypeService) Delete(ctx context.Context, id string) error {
	err := s.types.Delete(ctx, id)
	switch {
	case err == nil:
		s.cache.Invalidate(ctx, activeTypesCacheKey)
		return nil
	case errors.Is(err, repository.ErrServiceTypeReferenced):
		return apperrors.NewReferentialIntegrity("service type is referenced by existing requests", map[string]any{"id": id})
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("service type", map[string]any{"id": id})
	default:
		return err
	}
}
