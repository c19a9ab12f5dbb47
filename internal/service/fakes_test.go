package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gasworks/servicedesk/internal/domain"
	"github.com/gasworks/servicedesk/internal/events"
	"github.com/gasworks/servicedesk/internal/repository"
)

// ----- Fake request repo -----

type fakeRequestRepo struct {
	mu       sync.Mutex
	nextID   int
	requests map[string]*domain.ServiceRequest // keyed by request number
	updates  []domain.StatusUpdate
	users    map[string]*domain.User // customer lookup for search

	failCreates int // number of leading creates to reject as duplicates
	createCalls int
	createErr   error
	updateErr   error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests: make(map[string]*domain.ServiceRequest),
		users:    make(map[string]*domain.User),
	}
}

func (r *fakeRequestRepo) genID(prefix string) string {
	r.nextID++
	return fmt.Sprintf("%s-%d", prefix, r.nextID)
}

func (r *fakeRequestRepo) CreateWithInitialUpdate(ctx context.Context, req *domain.ServiceRequest, initial *domain.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	if r.createCalls <= r.failCreates {
		return repository.ErrDuplicateRequestNumber
	}
	if _, exists := r.requests[req.RequestNumber]; exists {
		return repository.ErrDuplicateRequestNumber
	}

	req.ID = r.genID("req")
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt

	stored := *req
	r.requests[req.RequestNumber] = &stored

	entry := *initial
	entry.ID = r.genID("upd")
	entry.ServiceRequestID = req.ID
	entry.CreatedAt = time.Now()
	r.updates = append(r.updates, entry)
	return nil
}

func (r *fakeRequestRepo) GetByNumber(ctx context.Context, number string, customerID *string) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if customerID != nil && req.CustomerID != *customerID {
		return nil, pgx.ErrNoRows
	}
	out := *req
	return &out, nil
}

func (r *fakeRequestRepo) List(ctx context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ServiceRequest
	for _, req := range r.requests {
		if filter.CustomerID != nil && req.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.Search != nil && !r.matchesSearch(req, *filter.Search) {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (r *fakeRequestRepo) matchesSearch(req *domain.ServiceRequest, term string) bool {
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(req.RequestNumber), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(req.Description), needle) {
		return true
	}
	if user, ok := r.users[req.CustomerID]; ok {
		if strings.Contains(strings.ToLower(user.Username), needle) {
			return true
		}
		if strings.Contains(strings.ToLower(user.Email), needle) {
			return true
		}
	}
	return false
}

func (r *fakeRequestRepo) UpdateWithAudit(ctx context.Context, req *domain.ServiceRequest, update *domain.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.requests[req.RequestNumber]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *req
	stored.UpdatedAt = time.Now()
	if update != nil {
		entry := *update
		entry.ID = r.genID("upd")
		entry.ServiceRequestID = stored.ID
		entry.CreatedAt = time.Now()
		r.updates = append(r.updates, entry)
	}
	return nil
}

func (r *fakeRequestRepo) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.RequestStatus]int64)
	for _, req := range r.requests {
		counts[req.Status]++
	}
	return counts, nil
}

func (r *fakeRequestRepo) updatesFor(requestID string) []domain.StatusUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StatusUpdate
	for i := len(r.updates) - 1; i >= 0; i-- { // newest first
		if r.updates[i].ServiceRequestID == requestID {
			out = append(out, r.updates[i])
		}
	}
	return out
}

// ----- Fake status update repo -----

type fakeStatusUpdateRepo struct {
	requests *fakeRequestRepo
}

func (r *fakeStatusUpdateRepo) ListByRequest(ctx context.Context, serviceRequestID string) ([]domain.StatusUpdate, error) {
	return r.requests.updatesFor(serviceRequestID), nil
}

// ----- Fake service type repo -----

type fakeServiceTypeRepo struct {
	mu         sync.Mutex
	nextID     int
	types      map[string]*domain.ServiceType
	referenced map[string]bool
	listCalls  int
}

func newFakeServiceTypeRepo() *fakeServiceTypeRepo {
	return &fakeServiceTypeRepo{
		types:      make(map[string]*domain.ServiceType),
		referenced: make(map[string]bool),
	}
}

func (r *fakeServiceTypeRepo) add(name string, active bool) *domain.ServiceType {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	st := &domain.ServiceType{
		ID:       fmt.Sprintf("type-%d", r.nextID),
		Name:     name,
		IsActive: active,
	}
	r.types[st.ID] = st
	return st
}

func (r *fakeServiceTypeRepo) Create(ctx context.Context, serviceType *domain.ServiceType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	serviceType.ID = fmt.Sprintf("type-%d", r.nextID)
	serviceType.CreatedAt = time.Now()
	serviceType.UpdatedAt = serviceType.CreatedAt
	stored := *serviceType
	r.types[serviceType.ID] = &stored
	return nil
}

func (r *fakeServiceTypeRepo) Update(ctx context.Context, serviceType *domain.ServiceType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.types[serviceType.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *serviceType
	return nil
}

func (r *fakeServiceTypeRepo) GetByID(ctx context.Context, id string) (*domain.ServiceType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.types[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *st
	return &out, nil
}

func (r *fakeServiceTypeRepo) List(ctx context.Context, activeOnly bool) ([]domain.ServiceType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var out []domain.ServiceType
	for _, st := range r.types {
		if activeOnly && !st.IsActive {
			continue
		}
		out = append(out, *st)
	}
	return out, nil
}

func (r *fakeServiceTypeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[id]; !ok {
		return pgx.ErrNoRows
	}
	if r.referenced[id] {
		return repository.ErrServiceTypeReferenced
	}
	delete(r.types, id)
	return nil
}

// ----- Fake attachment repo -----

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	nextID      int
	attachments []domain.Attachment
	createErr   error
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	attachment.ID = fmt.Sprintf("att-%d", r.nextID)
	attachment.UploadedAt = time.Now()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByRequest(ctx context.Context, serviceRequestID string) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Attachment
	for _, att := range r.attachments {
		if att.ServiceRequestID == serviceRequestID {
			out = append(out, att)
		}
	}
	return out, nil
}

// ----- Fake user repo -----

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *user
	return &out, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			out := *user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListActiveStaff(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if user.Role == domain.RoleStaff && user.Active {
			out = append(out, *user)
		}
	}
	return out, nil
}

// ----- Fake profile repo -----

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.CustomerProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*domain.CustomerProfile)}
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *domain.CustomerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *profile
	r.profiles[profile.UserID] = &stored
	return nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, profile *domain.CustomerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.profiles[profile.UserID]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *profile
	return nil
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.CustomerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *profile
	return &out, nil
}

// ----- Fake password reset repo -----

type fakePasswordResetRepo struct {
	mu     sync.Mutex
	nextID int
	tokens map[string]*repository.PasswordResetToken
}

func newFakePasswordResetRepo() *fakePasswordResetRepo {
	return &fakePasswordResetRepo{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (r *fakePasswordResetRepo) Create(ctx context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	token.ID = fmt.Sprintf("reset-%d", r.nextID)
	token.CreatedAt = time.Now()
	stored := *token
	r.tokens[token.Token] = &stored
	return nil
}

func (r *fakePasswordResetRepo) GetByToken(ctx context.Context, token string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tokens[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *stored
	return &out, nil
}

func (r *fakePasswordResetRepo) MarkUsed(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, token := range r.tokens {
		if token.ID == id {
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

// ----- In-memory blob store -----

type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (s *memBlobStore) Put(ctx context.Context, key string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.blobs[key]; exists {
		return "", fmt.Errorf("blob %s already exists", key)
	}
	s.blobs[key] = data
	return key, nil
}

func (s *memBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memBlobStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// ----- Capturing dispatcher -----

type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *captureDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
