package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	r.POST("/events", h.CreateEvent)
	r.GET("/events", h.ListEvents)
	r.GET("/events/:id", h.GetEvent)
	r.PUT("/events/:id", h.UpdateEvent)
	r.DELETE("/events/:id", h.DeleteEvent)
	r.GET("/events/:id/export-pdf", h.ExportEventPDF)
	return r
}

func addImagePart(t *testing.T, w *multipart.Writer, filename string) {
	t.Helper()
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, galleryField, filename))
	hdr.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	part.Write([]byte("fake image bytes"))
}

func TestCreateEventHandler(t *testing.T) {
	svc, _, _, _ := newTestService()
	router := newTestRouter(svc)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("title", "Launch Party")
	w.WriteField("description", "Office rooftop")
	w.WriteField("date", "2026-09-12")
	w.WriteField("location", "HQ Rooftop")
	addImagePart(t, w, "rooftop.jpg")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/events", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var ev Event
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if ev.Title != "Launch Party" {
		t.Errorf("title = %q", ev.Title)
	}
	if len(ev.ImageGallery) != 1 {
		t.Errorf("gallery = %v", ev.ImageGallery)
	}
}

func TestCreateEventHandlerTooManyImages(t *testing.T) {
	svc, _, _, _ := newTestService()
	router := newTestRouter(svc)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("title", "t")
	w.WriteField("description", "d")
	w.WriteField("date", "2026-09-12")
	for i := 0; i < MaxImagesPerRequest+1; i++ {
		addImagePart(t, w, fmt.Sprintf("img%d.jpg", i))
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/events", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetEventHandlerInvalidID(t *testing.T) {
	svc, _, _, _ := newTestService()
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/events/not-a-number", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Event not found (invalid ID format)") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestUpdateEventHandlerKeepList(t *testing.T) {
	svc, _, _, queue := newTestService()
	router := newTestRouter(svc)

	ev, err := svc.CreateEvent(context.Background(), CreateInput{
		Title:       "t",
		Description: "d",
		Date:        time.Now(),
		Images:      testImages(2),
	}, nil, "")
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	queue.submitted = nil

	keepJSON, _ := json.Marshal([]string{ev.ImageGallery[1]})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("existingImageUrls", string(keepJSON))
	w.Close()

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/events/%d", ev.ID), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var updated Event
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(updated.ImageGallery) != 1 || updated.ImageGallery[0] != ev.ImageGallery[1] {
		t.Errorf("gallery = %v, want only %q", updated.ImageGallery, ev.ImageGallery[1])
	}
	if len(queue.submitted) != 1 || queue.submitted[0] != ev.ImageGallery[0] {
		t.Errorf("dropped ref should be queued, got %v", queue.submitted)
	}
}

func TestDeleteEventHandler(t *testing.T) {
	svc, _, _, _ := newTestService()
	router := newTestRouter(svc)

	ev, _ := svc.CreateEvent(context.Background(), CreateInput{
		Title:       "t",
		Description: "d",
		Date:        time.Now(),
	}, nil, "")

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/events/%d", ev.ID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "deleted successfully") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestExportEventPDFHandler(t *testing.T) {
	svc, _, _, _ := newTestService()
	router := newTestRouter(svc)

	ev, _ := svc.CreateEvent(context.Background(), CreateInput{
		Title:       "t",
		Description: "d",
		Date:        time.Now(),
	}, nil, "")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/events/%d/export-pdf", ev.ID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	wantDisp := fmt.Sprintf("attachment; filename=event_%d.pdf", ev.ID)
	if disp := rec.Header().Get("Content-Disposition"); disp != wantDisp {
		t.Errorf("disposition = %q, want %q", disp, wantDisp)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF document")
	}
}

func TestParseKeepList(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		want   int
	}{
		{"json array", []string{`["/uploads/events/a.jpg","/uploads/events/b.jpg"]`}, 2},
		{"repeated field", []string{"/uploads/events/a.jpg", "/uploads/events/b.jpg"}, 2},
		{"empty", nil, 0},
		{"blank entries ignored", []string{""}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseKeepList(tc.values)
			if len(got) != tc.want {
				t.Errorf("parseKeepList(%v) = %v", tc.values, got)
			}
		})
	}
}
