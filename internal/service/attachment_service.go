package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gasworks/servicedesk/internal/blob"
	"github.com/gasworks/servicedesk/internal/domain"
	"github.com/gasworks/servicedesk/internal/events"
	"github.com/gasworks/servicedesk/internal/repository"
	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

// AttachmentService associates uploaded files with service requests. File
// bytes go to the blob store; only the storage key and original filename
// are persisted here.
type AttachmentService struct {
	requests    repository.RequestRepository
	attachments repository.AttachmentRepository
	store       blob.Store
	dispatcher  events.Dispatcher
}

// AttachmentUpload is an incoming file.
type AttachmentUpload struct {
	Filename string
	Content  io.Reader
}

// NewAttachmentService constructs the service.
func NewAttachmentService(requests repository.RequestRepository, attachments repository.AttachmentRepository, store blob.Store, dispatcher events.Dispatcher) *AttachmentService {
	return &AttachmentService{
		requests:    requests,
		attachments: attachments,
		store:       store,
		dispatcher:  dispatcher,
	}
}

// Attach stores a file against a request. Customers may attach only to
// their own requests; foreign requests surface as NotFound.
func (a *AttachmentService) Attach(ctx context.Context, actor *domain.User, number string, upload AttachmentUpload) (*domain.Attachment, error) {
	var scope *string
	if actor != nil && !actor.IsStaff() {
		scope = &actor.ID
	}
	req, err := a.requests.GetByNumber(ctx, number, scope)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_number": number})
		}
		return nil, err
	}
	return a.attachToRequest(ctx, actor, req, upload)
}

// List returns a request's attachments in upload order, with customer
// ownership scoping.
func (a *AttachmentService) List(ctx context.Context, actor *domain.User, number string) ([]domain.Attachment, error) {
	var scope *string
	if actor != nil && !actor.IsStaff() {
		scope = &actor.ID
	}
	req, err := a.requests.GetByNumber(ctx, number, scope)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_number": number})
		}
		return nil, err
	}
	return a.listForRequest(ctx, req)
}

func (a *AttachmentService) listForRequest(ctx context.Context, req *domain.ServiceRequest) ([]domain.Attachment, error) {
	return a.attachments.ListByRequest(ctx, req.ID)
}

func (a *AttachmentService) attachToRequest(ctx context.Context, actor *domain.User, req *domain.ServiceRequest, upload AttachmentUpload) (*domain.Attachment, error) {
	if upload.Content == nil {
		return nil, apperrors.NewValidationError("attachment content is required", nil)
	}

	key := attachmentKey(req.RequestNumber, upload.Filename)
	counter := &countingReader{r: upload.Content}
	storedKey, err := a.store.Put(ctx, key, counter)
	if err != nil {
		return nil, err
	}

	filename := strings.TrimSpace(upload.Filename)
	if filename == "" {
		filename = path.Base(storedKey)
	}

	attachment := &domain.Attachment{
		ServiceRequestID: req.ID,
		StorageKey:       storedKey,
		Filename:         filename,
		SizeBytes:        counter.n,
	}
	if err := a.attachments.Create(ctx, attachment); err != nil {
		// keep metadata and blob consistent on failure
		_ = a.store.Remove(ctx, storedKey)
		return nil, err
	}

	publishEvent(ctx, a.dispatcher, events.Event{
		Type:          events.EventAttachmentAdded,
		RequestNumber: req.RequestNumber,
		Actor:         actorFor(actor),
		Payload: events.AttachmentAddedPayload{
			AttachmentID: attachment.ID,
			Filename:     attachment.Filename,
			SizeBytes:    attachment.SizeBytes,
		},
	})
	return attachment, nil
}

// attachmentKey builds the blob key: a per-request prefix plus a fresh
// unique filename that preserves the original extension.
func attachmentKey(requestNumber, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("request_attachments/%s/%s%s", requestNumber, name, ext)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
