package reports

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fraccaro/event-calendar-backend/internal/event"
)

type Handler struct {
	EventSvc *event.Service
	Exporter Exporter
}

func NewHandler(eventSvc *event.Service, exporter Exporter) *Handler {
	return &Handler{EventSvc: eventSvc, Exporter: exporter}
}

// ===========================
// 📊 Events Report - GET /events/report?format=csv|excel|pdf
func (h *Handler) ExportEventsReport(c *gin.Context) {
	format := c.DefaultQuery("format", FormatCSV)

	events, err := h.EventSvc.ListEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}

	rows := make([]EventReportRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, EventReportRow{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date.Format("2006-01-02 15:04:05"),
			Location:    e.Location,
			Contacts:    e.Contacts,
			ImageCount:  len(e.ImageGallery),
			CreatedAt:   e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	data, filename, contentType, err := h.Exporter.Export(format, rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}
