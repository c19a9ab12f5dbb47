package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

func TestAttach_KeyFormatAndOwnership(t *testing.T) {
	f := newRequestFixture()
	serviceType := f.types.add("Gas Leak", true)
	owner := testCustomer("cust-1")

	req, err := f.service.Create(context.Background(), owner, RequestCreateInput{
		ServiceTypeID: serviceType.ID,
		Description:   "no heat",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	att, err := f.service.attachments.Attach(context.Background(), owner, req.RequestNumber, AttachmentUpload{
		Filename: "Meter Photo.JPG",
		Content:  strings.NewReader("data"),
	})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	keyPattern := regexp.MustCompile(`^request_attachments/` + regexp.QuoteMeta(req.RequestNumber) + `/[0-9a-f]{32}\.jpg$`)
	if !keyPattern.MatchString(att.StorageKey) {
		t.Fatalf("unexpected storage key %q", att.StorageKey)
	}
	if att.Filename != "Meter Photo.JPG" {
		t.Fatalf("original filename should be preserved, got %q", att.Filename)
	}

	stranger := testCustomer("cust-2")
	_, err = f.service.attachments.Attach(context.Background(), stranger, req.RequestNumber, AttachmentUpload{
		Filename: "x.txt",
		Content:  strings.NewReader("x"),
	})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("foreign request should be not found, got %v", err)
	}
}

func TestAttach_StaffMayAttachToAnyRequest(t *testing.T) {
	f := newRequestFixture()
	serviceType := f.types.add("Gas Leak", true)

	req, err := f.service.Create(context.Background(), testCustomer("cust-1"), RequestCreateInput{
		ServiceTypeID: serviceType.ID,
		Description:   "no heat",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.service.attachments.Attach(context.Background(), testStaff("staff-1"), req.RequestNumber, AttachmentUpload{
		Filename: "site-visit.pdf",
		Content:  strings.NewReader("pdf"),
	}); err != nil {
		t.Fatalf("staff attach: %v", err)
	}
}

func TestAttach_DefaultsFilenameFromKey(t *testing.T) {
	f := newRequestFixture()
	serviceType := f.types.add("Gas Leak", true)
	owner := testCustomer("cust-1")

	req, err := f.service.Create(context.Background(), owner, RequestCreateInput{
		ServiceTypeID: serviceType.ID,
		Description:   "no heat",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	att, err := f.service.attachments.Attach(context.Background(), owner, req.RequestNumber, AttachmentUpload{
		Content: strings.NewReader("anonymous"),
	})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if att.Filename == "" {
		t.Fatal("filename should default to the stored key's basename")
	}
	if strings.Contains(att.Filename, "/") {
		t.Fatalf("default filename should be a basename, got %q", att.Filename)
	}
}

func TestAttach_RemovesBlobWhenMetadataFails(t *testing.T) {
	f := newRequestFixture()
	serviceType := f.types.add("Gas Leak", true)
	owner := testCustomer("cust-1")

	req, err := f.service.Create(context.Background(), owner, RequestCreateInput{
		ServiceTypeID: serviceType.ID,
		Description:   "no heat",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	f.attRepo.createErr = errors.New("insert failed")
	_, err = f.service.attachments.Attach(context.Background(), owner, req.RequestNumber, AttachmentUpload{
		Filename: "a.txt",
		Content:  strings.NewReader("orphan"),
	})
	if err == nil {
		t.Fatal("expected metadata failure to propagate")
	}
	if len(f.blobs.blobs) != 0 {
		t.Fatalf("orphaned blob left behind: %d blobs", len(f.blobs.blobs))
	}
}

func TestAttach_RequiresContent(t *testing.T) {
	f := newRequestFixture()
	serviceType := f.types.add("Gas Leak", true)
	owner := testCustomer("cust-1")

	req, err := f.service.Create(context.Background(), owner, RequestCreateInput{
		ServiceTypeID: serviceType.ID,
		Description:   "no heat",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = f.service.attachments.Attach(context.Background(), owner, req.RequestNumber, AttachmentUpload{Filename: "empty.txt"})
	if code := apperrors.ToDomainError(err).Code; code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
}

func TestListAttachments_ScopedLikeReads(t *testing.T) {
	f := newRequestFixture()
	serviceType := f.types.add("Gas Leak", true)
	owner := testCustomer("cust-1")

	req, err := f.service.Create(context.Background(), owner, RequestCreateInput{
		ServiceTypeID: serviceType.ID,
		Description:   "no heat",
		Attachment: &AttachmentUpload{
			Filename: "one.txt",
			Content:  strings.NewReader("1"),
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := f.service.attachments.List(context.Background(), owner, req.RequestNumber)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(list))
	}

	stranger := testCustomer("cust-2")
	if _, err := f.service.attachments.List(context.Background(), stranger, req.RequestNumber); !apperrors.IsNotFound(err) {
		t.Fatalf("foreign list should be not found, got %v", err)
	}
}
