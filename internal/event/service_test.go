package event

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/fraccaro/event-calendar-backend/internal/media"
)

type fakeRepo struct {
	events     map[uint]*Event
	nextID     uint
	updates    int
	updateErr  error
	createErr  error
	deletedIDs []uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: make(map[uint]*Event), nextID: 1}
}

func (r *fakeRepo) Create(ctx context.Context, e *Event) error {
	if r.createErr != nil {
		return r.createErr
	}
	e.ID = r.nextID
	r.nextID++
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uint) (*Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeRepo) List(ctx context.Context) ([]Event, error) {
	var out []Event
	for _, e := range r.events {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, e *Event) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uint) error {
	delete(r.events, id)
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

type fakeMediaStore struct {
	uploads   int
	failAfter int // fail the Nth upload (1-based); 0 means never fail
	deleted   []string
}

func (s *fakeMediaStore) Upload(ctx context.Context, f media.File) (string, error) {
	s.uploads++
	if s.failAfter > 0 && s.uploads >= s.failAfter {
		return "", errors.New("storage unavailable")
	}
	return fmt.Sprintf("/uploads/events/img%d.jpg", s.uploads), nil
}

func (s *fakeMediaStore) Delete(ctx context.Context, ref string) error {
	s.deleted = append(s.deleted, ref)
	return nil
}

type fakeQueue struct {
	submitted []string
}

func (q *fakeQueue) Submit(ctx context.Context, refs ...string) {
	q.submitted = append(q.submitted, refs...)
}

func newTestService() (*Service, *fakeRepo, *fakeMediaStore, *fakeQueue) {
	repo := newFakeRepo()
	store := &fakeMediaStore{}
	queue := &fakeQueue{}
	svc := NewService(repo, store, queue, NewPDFExporter("./testdata", time.Second), nil)
	return svc, repo, store, queue
}

func testImages(n int) []media.File {
	files := make([]media.File, n)
	for i := range files {
		files[i] = media.File{
			Name:        fmt.Sprintf("photo%d.jpg", i+1),
			ContentType: "image/jpeg",
			Data:        []byte("fake image bytes"),
		}
	}
	return files
}

func TestCreateEvent(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, CreateInput{
		Title:       "Summer Festival",
		Description: "Annual open-air festival",
		Date:        time.Date(2026, 7, 4, 18, 0, 0, 0, time.UTC),
		Location:    "Riverside Park",
		Images:      testImages(2),
	}, nil, "127.0.0.1")
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if ev.ID == 0 {
		t.Error("expected assigned ID")
	}
	if len(ev.ImageGallery) != 2 {
		t.Errorf("expected 2 gallery entries, got %d", len(ev.ImageGallery))
	}
}

func TestCreateEventEmptyGallery(t *testing.T) {
	svc, _, _, _ := newTestService()

	ev, err := svc.CreateEvent(context.Background(), CreateInput{
		Title:       "No Photos Yet",
		Description: "Placeholder",
		Date:        time.Now(),
	}, nil, "")
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ev.ImageGallery == nil {
		t.Error("gallery should serialize as an empty array, not null")
	}
	if len(ev.ImageGallery) != 0 {
		t.Errorf("expected empty gallery, got %v", ev.ImageGallery)
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing title", CreateInput{Description: "d", Date: time.Now()}},
		{"missing description", CreateInput{Title: "t", Date: time.Now()}},
		{"missing date", CreateInput{Title: "t", Description: "d"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateEvent(ctx, tc.in, nil, "")
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreateEventUploadFailure(t *testing.T) {
	svc, repo, store, queue := newTestService()
	store.failAfter = 3

	_, err := svc.CreateEvent(context.Background(), CreateInput{
		Title:       "Doomed",
		Description: "Third upload fails",
		Date:        time.Now(),
		Images:      testImages(3),
	}, nil, "")
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}

	if len(repo.events) != 0 {
		t.Error("no record should be written when an upload fails")
	}
	// The two refs stored before the failure are orphans now.
	if len(queue.submitted) != 2 {
		t.Errorf("expected 2 refs submitted for cleanup, got %v", queue.submitted)
	}
}

func TestUpdateEventReconcilesGallery(t *testing.T) {
	svc, repo, _, queue := newTestService()
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, CreateInput{
		Title:       "Gallery Night",
		Description: "d",
		Date:        time.Now(),
		Images:      testImages(3),
	}, nil, "")
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	orig := append([]string(nil), ev.ImageGallery...)

	// Keep the last two, in reversed order, and add one new image.
	keep := []string{orig[2], orig[1]}
	updated, err := svc.UpdateEvent(ctx, ev.ID, FieldUpdates{}, keep, testImages(1), nil, "")
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}

	got := []string(updated.ImageGallery)
	if len(got) != 3 {
		t.Fatalf("expected 3 gallery entries, got %v", got)
	}
	if !reflect.DeepEqual(got[:2], keep) {
		t.Errorf("kept entries should lead in the client's order: got %v, want %v", got[:2], keep)
	}
	if got[2] == orig[0] || got[2] == orig[1] || got[2] == orig[2] {
		t.Errorf("third entry should be the new upload, got %q", got[2])
	}

	if len(queue.submitted) != 1 || queue.submitted[0] != orig[0] {
		t.Errorf("dropped ref %q should be submitted for cleanup, got %v", orig[0], queue.submitted)
	}
	if repo.updates != 1 {
		t.Errorf("expected a single record write, got %d", repo.updates)
	}
}

func TestUpdateEventClearGallery(t *testing.T) {
	svc, _, _, queue := newTestService()
	ctx := context.Background()

	ev, _ := svc.CreateEvent(ctx, CreateInput{
		Title:       "t",
		Description: "d",
		Date:        time.Now(),
		Images:      testImages(2),
	}, nil, "")

	updated, err := svc.UpdateEvent(ctx, ev.ID, FieldUpdates{}, nil, nil, nil, "")
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}

	if len(updated.ImageGallery) != 0 {
		t.Errorf("expected empty gallery, got %v", updated.ImageGallery)
	}
	if len(queue.submitted) != 2 {
		t.Errorf("both original refs should be submitted for cleanup, got %v", queue.submitted)
	}
}

func TestUpdateEventScalarFields(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	date := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ev, _ := svc.CreateEvent(ctx, CreateInput{
		Title:       "Old Title",
		Description: "Old description",
		Date:        date,
		Location:    "Old Hall",
		Contacts:    "old@example.com",
	}, nil, "")

	newTitle := "New Title"
	updated, err := svc.UpdateEvent(ctx, ev.ID, FieldUpdates{Title: &newTitle}, nil, nil, nil, "")
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}

	if updated.Title != newTitle {
		t.Errorf("title = %q, want %q", updated.Title, newTitle)
	}
	if updated.Description != "Old description" || updated.Location != "Old Hall" || updated.Contacts != "old@example.com" {
		t.Error("fields without updates must stay unchanged")
	}
	if !updated.Date.Equal(date) {
		t.Errorf("date changed to %v", updated.Date)
	}
}

func TestUpdateEventUploadFailureAborts(t *testing.T) {
	svc, repo, store, queue := newTestService()
	ctx := context.Background()

	ev, _ := svc.CreateEvent(ctx, CreateInput{
		Title:       "t",
		Description: "d",
		Date:        time.Now(),
		Images:      testImages(1),
	}, nil, "")
	queue.submitted = nil
	store.failAfter = store.uploads + 1

	_, err := svc.UpdateEvent(ctx, ev.ID, FieldUpdates{}, []string(ev.ImageGallery), testImages(1), nil, "")
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}

	if repo.updates != 0 {
		t.Error("record must not be written when an upload fails")
	}

	stored, _ := repo.GetByID(ctx, ev.ID)
	if !reflect.DeepEqual([]string(stored.ImageGallery), []string(ev.ImageGallery)) {
		t.Errorf("stored gallery changed: %v", stored.ImageGallery)
	}
}

func TestUpdateEventNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.UpdateEvent(context.Background(), 99, FieldUpdates{}, nil, nil, nil, "")
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestDeleteEvent(t *testing.T) {
	svc, repo, _, queue := newTestService()
	ctx := context.Background()

	ev, _ := svc.CreateEvent(ctx, CreateInput{
		Title:       "t",
		Description: "d",
		Date:        time.Now(),
		Images:      testImages(3),
	}, nil, "")

	if err := svc.DeleteEvent(ctx, ev.ID, nil, ""); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	if len(queue.submitted) != 3 {
		t.Errorf("all 3 gallery refs should be submitted for cleanup, got %v", queue.submitted)
	}
	if _, err := repo.GetByID(ctx, ev.ID); !errors.Is(err, ErrEventNotFound) {
		t.Error("record should be gone")
	}
}

func TestDeleteEventNotFound(t *testing.T) {
	svc, _, _, queue := newTestService()
	err := svc.DeleteEvent(context.Background(), 404, nil, "")
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
	if len(queue.submitted) != 0 {
		t.Error("nothing should be queued for a missing event")
	}
}

func TestExportPDFFilename(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	ev, _ := svc.CreateEvent(ctx, CreateInput{
		Title:       "Export Me",
		Description: "d",
		Date:        time.Now(),
	}, nil, "")

	_, filename, err := svc.ExportPDF(ctx, ev.ID)
	if err != nil {
		t.Fatalf("ExportPDF: %v", err)
	}
	want := fmt.Sprintf("event_%d.pdf", ev.ID)
	if filename != want {
		t.Errorf("filename = %q, want %q", filename, want)
	}
}
