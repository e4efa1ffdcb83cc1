package idempotency

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStore struct {
	keys map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: map[string]string{}}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	return f.keys[key], nil
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = "1"
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return strings.Join([]string{"cd", "idempotency", scope, id}, ":")
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func TestCheckAndMarkProcessed(t *testing.T) {
	mgr, err := NewManager(newFakeStore(), time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ctx := context.Background()
	eventID := uuid.New()

	seen, err := mgr.CheckAndMarkProcessed(ctx, "invoice-worker", eventID)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if seen {
		t.Fatal("first check should report unprocessed")
	}

	seen, err = mgr.CheckAndMarkProcessed(ctx, "invoice-worker", eventID)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !seen {
		t.Fatal("second check should report already processed")
	}
}

func TestDeleteAllowsReplay(t *testing.T) {
	mgr, err := NewManager(newFakeStore(), time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ctx := context.Background()
	eventID := uuid.New()

	if _, err := mgr.CheckAndMarkProcessed(ctx, "invoice-worker", eventID); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := mgr.Delete(ctx, "invoice-worker", eventID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, err := mgr.CheckAndMarkProcessed(ctx, "invoice-worker", eventID)
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if seen {
		t.Fatal("event should be replayable after delete")
	}
}

func TestManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, time.Hour); err == nil {
		t.Fatal("expected error for nil store")
	}
	mgr, err := NewManager(newFakeStore(), time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := mgr.CheckAndMarkProcessed(context.Background(), "", uuid.New()); err == nil {
		t.Fatal("expected error for empty consumer")
	}
	if _, err := mgr.CheckAndMarkProcessed(context.Background(), "c", uuid.Nil); err == nil {
		t.Fatal("expected error for nil event id")
	}
}
