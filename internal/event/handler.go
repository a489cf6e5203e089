package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fraccaro/event-calendar-backend/internal/media"
	"github.com/fraccaro/event-calendar-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// galleryField is the multipart field name carrying image files.
const galleryField = "imageGallery"

// ===========================
// 🎯 Create Event - POST /events
// @Summary Create a new event
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} Event
// @Router /events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})
		return
	}

	files := form.File[galleryField]
	if len(files) > MaxImagesPerRequest {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("too many images: at most %d per request", MaxImagesPerRequest)})
		return
	}

	date, err := parseEventDate(c.PostForm("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format"})
		return
	}

	images, err := readUploads(files)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := CreateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Date:        date,
		Location:    c.PostForm("location"),
		Contacts:    c.PostForm("contacts"),
		Images:      images,
	}

	actor := actorFromContext(c)
	ip := middleware.GetIPFromContext(c)

	ev, err := h.Service.CreateEvent(c.Request.Context(), in, actor, ip)
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ev)
}

// ===========================
// 🔍 Get Event - GET /events/:id
func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	ev, err := h.Service.GetEvent(c.Request.Context(), id)
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, ev)
}

// ===========================
// 📆 List Events - GET /events
func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.Service.ListEvents(c.Request.Context())
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// ===========================
// ✏️ Update Event - PUT /events/:id
//
// Scalar fields arrive as form values; an absent or empty value leaves the
// stored field untouched. The existingImageUrls field names the gallery
// entries to keep (JSON array or repeated form field); everything else in
// the stored gallery is queued for deletion. New files on imageGallery are
// appended after the kept entries.
func (h *Handler) UpdateEvent(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})
		return
	}

	files := form.File[galleryField]
	if len(files) > MaxImagesPerRequest {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("too many images: at most %d per request", MaxImagesPerRequest)})
		return
	}

	var updates FieldUpdates
	if v := c.PostForm("title"); v != "" {
		updates.Title = &v
	}
	if v := c.PostForm("description"); v != "" {
		updates.Description = &v
	}
	if v := c.PostForm("location"); v != "" {
		updates.Location = &v
	}
	if v := c.PostForm("contacts"); v != "" {
		updates.Contacts = &v
	}
	if v := c.PostForm("date"); v != "" {
		date, err := parseEventDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format"})
			return
		}
		updates.Date = &date
	}

	keepURLs := parseKeepList(form.Value["existingImageUrls"])

	images, err := readUploads(files)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := actorFromContext(c)
	ip := middleware.GetIPFromContext(c)

	ev, err := h.Service.UpdateEvent(c.Request.Context(), id, updates, keepURLs, images, actor, ip)
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, ev)
}

// ===========================
// 🗑️ Delete Event - DELETE /events/:id
func (h *Handler) DeleteEvent(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	actor := actorFromContext(c)
	ip := middleware.GetIPFromContext(c)

	if err := h.Service.DeleteEvent(c.Request.Context(), id, actor, ip); err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event and associated images deleted successfully"})
}

// ===========================
// 📄 Export Event PDF - GET /events/:id/export-pdf
func (h *Handler) ExportEventPDF(c *gin.Context) {
	id, ok := eventIDParam(c)
	if !ok {
		return
	}

	data, filename, err := h.Service.ExportPDF(c.Request.Context(), id)
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// eventIDParam parses the :id path segment; a malformed value is reported
// as not-found rather than bad-request so probing invalid IDs and missing
// IDs look the same.
func eventIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found (invalid ID format)"})
		return 0, false
	}
	return uint(id), true
}

// parseEventDate accepts RFC3339 timestamps and bare dates.
func parseEventDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// parseKeepList handles both encodings clients send: a single JSON-encoded
// array, or the field repeated once per URL.
func parseKeepList(values []string) []string {
	keep := []string{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if v[0] == '[' {
			var refs []string
			if err := json.Unmarshal([]byte(v), &refs); err == nil {
				keep = append(keep, refs...)
				continue
			}
		}
		keep = append(keep, v)
	}
	return keep
}

func readUploads(files []*multipart.FileHeader) ([]media.File, error) {
	out := make([]media.File, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, media.MaxFileSize+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}
		out = append(out, media.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return out, nil
}

func actorFromContext(c *gin.Context) *uint {
	return middleware.GetUserIDFromContext(c)
}

func respondEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, media.ErrNotAnImage), errors.Is(err, media.ErrFileTooBig):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to store one or more images"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
