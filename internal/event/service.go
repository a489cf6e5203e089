package event

import (
	"context"
	"fmt"
	"time"

	"github.com/fraccaro/event-calendar-backend/internal/auditlog"
	"github.com/fraccaro/event-calendar-backend/internal/cleanup"
	"github.com/fraccaro/event-calendar-backend/internal/media"
)

// Service wraps business logic for calendar events, including the gallery
// reconciliation that keeps the record store and the media store in step.
type Service struct {
	Repo     Repository
	Store    media.Store
	Cleanup  cleanup.Queue
	Exporter *PDFExporter
	AuditSvc auditlog.Service
}

func NewService(r Repository, store media.Store, q cleanup.Queue, exporter *PDFExporter, auditSvc auditlog.Service) *Service {
	return &Service{
		Repo:     r,
		Store:    store,
		Cleanup:  q,
		Exporter: exporter,
		AuditSvc: auditSvc,
	}
}

// CreateInput carries a new event's fields plus its image payloads
type CreateInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Contacts    string
	Images      []media.File
}

// FieldUpdates carries an update's scalar fields; nil means "leave unchanged"
type FieldUpdates struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Contacts    *string
}

// ===========================
// Create Event
func (s *Service) CreateEvent(ctx context.Context, in CreateInput, actor *uint, ip string) (*Event, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}

	gallery, err := s.uploadAll(ctx, in.Images)
	if err != nil {
		return nil, err
	}

	e := &Event{
		Title:        in.Title,
		Description:  in.Description,
		Date:         in.Date,
		Location:     in.Location,
		Contacts:     in.Contacts,
		ImageGallery: gallery,
	}

	if err := s.Repo.Create(ctx, e); err != nil {
		// The record never existed; the blobs just stored are orphans.
		s.Cleanup.Submit(ctx, gallery...)
		s.audit(ctx, actor, nil, "EVENT_CREATED", map[string]interface{}{
			"title": in.Title,
			"error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.audit(ctx, actor, &e.ID, "EVENT_CREATED", map[string]interface{}{
		"event_id": e.ID,
		"title":    e.Title,
		"date":     e.Date.Format(time.RFC3339),
		"images":   len(e.ImageGallery),
	}, ip, "success")

	return e, nil
}

// ===========================
// Get / List
func (s *Service) GetEvent(ctx context.Context, id uint) (*Event, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	return s.Repo.List(ctx)
}

// ===========================
// Update Event (gallery reconciliation)
//
// keepURLs is the client's verbatim keep-list: entries of the stored
// gallery the client wants retained, in their desired order. Whatever is
// in the stored gallery but not in keepURLs is submitted for remote
// deletion (best-effort). New images are uploaded in submission order and
// appended after the kept ones; any single upload failure aborts the whole
// update before the record is touched.
func (s *Service) UpdateEvent(ctx context.Context, id uint, updates FieldUpdates, keepURLs []string, newImages []media.File, actor *uint, ip string) (*Event, error) {
	e, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(keepURLs))
	for _, ref := range keepURLs {
		keep[ref] = true
	}

	var toDelete []string
	for _, ref := range e.ImageGallery {
		if !keep[ref] {
			toDelete = append(toDelete, ref)
		}
	}
	s.Cleanup.Submit(ctx, toDelete...)

	newRefs, err := s.uploadAll(ctx, newImages)
	if err != nil {
		s.audit(ctx, actor, &e.ID, "EVENT_UPDATED", map[string]interface{}{
			"event_id": id,
			"error":    err.Error(),
		}, ip, "failure")
		return nil, err
	}

	// Kept images first, in the client's order, then new uploads.
	final := make([]string, 0, len(keepURLs)+len(newRefs))
	final = append(final, keepURLs...)
	final = append(final, newRefs...)
	e.ImageGallery = final

	if updates.Title != nil {
		e.Title = *updates.Title
	}
	if updates.Description != nil {
		e.Description = *updates.Description
	}
	if updates.Date != nil {
		e.Date = *updates.Date
	}
	if updates.Location != nil {
		e.Location = *updates.Location
	}
	if updates.Contacts != nil {
		e.Contacts = *updates.Contacts
	}

	if err := s.Repo.Update(ctx, e); err != nil {
		s.audit(ctx, actor, &e.ID, "EVENT_UPDATED", map[string]interface{}{
			"event_id": id,
			"error":    err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.audit(ctx, actor, &e.ID, "EVENT_UPDATED", map[string]interface{}{
		"event_id":       e.ID,
		"title":          e.Title,
		"kept_images":    len(keepURLs),
		"new_images":     len(newRefs),
		"dropped_images": len(toDelete),
	}, ip, "success")

	return e, nil
}

// ===========================
// Delete Event
//
// Every gallery entry is submitted for remote deletion, then the record is
// removed. If the record removal fails after deletions went through, the
// blobs are gone for good; the record store stays the authority on whether
// the event exists.
func (s *Service) DeleteEvent(ctx context.Context, id uint, actor *uint, ip string) error {
	e, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.Cleanup.Submit(ctx, e.ImageGallery...)

	if err := s.Repo.Delete(ctx, id); err != nil {
		s.audit(ctx, actor, &id, "EVENT_DELETED", map[string]interface{}{
			"event_id": id,
			"error":    err.Error(),
		}, ip, "failure")
		return err
	}

	s.audit(ctx, actor, &id, "EVENT_DELETED", map[string]interface{}{
		"event_id": id,
		"title":    e.Title,
		"images":   len(e.ImageGallery),
	}, ip, "success")

	return nil
}

// ===========================
// Export PDF
func (s *Service) ExportPDF(ctx context.Context, id uint) ([]byte, string, error) {
	e, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, err := s.Exporter.Export(ctx, e)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("event_%d.pdf", e.ID)
	return data, filename, nil
}

// uploadAll stores every payload in submission order. All-or-nothing: on
// the first failure, refs already stored for this request are handed to
// the cleanup queue and ErrUploadFailed is returned.
func (s *Service) uploadAll(ctx context.Context, files []media.File) ([]string, error) {
	refs := make([]string, 0, len(files))
	for _, f := range files {
		ref, err := s.Store.Upload(ctx, f)
		if err != nil {
			s.Cleanup.Submit(ctx, refs...)
			return nil, fmt.Errorf("%w: %s: %v", ErrUploadFailed, f.Name, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *Service) audit(ctx context.Context, userID *uint, eventID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.AuditSvc == nil {
		return
	}
	_ = s.AuditSvc.LogAction(ctx, userID, eventID, action, details, ip, status)
}
