package cleanup

import (
	"context"
	"errors"
	"testing"

	"github.com/fraccaro/event-calendar-backend/internal/media"
)

type fakeStore struct {
	deleted []string
	fail    map[string]bool
}

func (f *fakeStore) Upload(ctx context.Context, file media.File) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeStore) Delete(ctx context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	if f.fail[ref] {
		return errors.New("delete failed")
	}
	return nil
}

func TestInlineQueueDeletesEveryRef(t *testing.T) {
	store := &fakeStore{}
	q := NewInlineQueue(store)

	q.Submit(context.Background(), "/uploads/events/a.jpg", "/uploads/events/b.jpg", "/uploads/events/c.jpg")

	if len(store.deleted) != 3 {
		t.Fatalf("deleted %d refs, want 3", len(store.deleted))
	}
}

func TestInlineQueueFailureDoesNotStopOthers(t *testing.T) {
	store := &fakeStore{fail: map[string]bool{"/uploads/events/b.jpg": true}}
	q := NewInlineQueue(store)

	q.Submit(context.Background(), "/uploads/events/a.jpg", "/uploads/events/b.jpg", "/uploads/events/c.jpg")

	// Every ref is still attempted; the failure is swallowed.
	if len(store.deleted) != 3 {
		t.Fatalf("attempted %d deletions, want 3", len(store.deleted))
	}
	if store.deleted[2] != "/uploads/events/c.jpg" {
		t.Errorf("last attempted ref = %q, want c.jpg", store.deleted[2])
	}
}
