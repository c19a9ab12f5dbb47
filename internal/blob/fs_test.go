package blob

import (
	"context"
	"io"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	return store
}

func TestPutOpenRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key, err := store.Put(ctx, "request_attachments/SR-ABCD1234/photo.jpg", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if key != "request_attachments/SR-ABCD1234/photo.jpg" {
		t.Fatalf("unexpected key %q", key)
	}

	reader, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.Open(ctx, key); err == nil {
		t.Fatal("removed blob should not open")
	}
}

func TestPut_NeverOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, "a/b.txt", strings.NewReader("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := store.Put(ctx, "a/b.txt", strings.NewReader("second")); err == nil {
		t.Fatal("second Put with the same key should fail")
	}

	reader, err := store.Open(ctx, "a/b.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(reader)
	reader.Close()
	if string(data) != "first" {
		t.Fatalf("original content clobbered: %q", data)
	}
}

func TestPut_RejectsUnsafeKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "   ", "../escape.txt", "/etc/passwd", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x")); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}
