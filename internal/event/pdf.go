package event

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a single event into a downloadable PDF document.
type PDFExporter struct {
	UploadDir string
	Client    *http.Client
}

func NewPDFExporter(uploadDir string, timeout time.Duration) *PDFExporter {
	return &PDFExporter{
		UploadDir: uploadDir,
		Client:    &http.Client{Timeout: timeout},
	}
}

// outlineSection is one labelled block of the document body. Keeping the
// text content separate from the gofpdf calls lets the content be checked
// without parsing compressed PDF streams.
type outlineSection struct {
	Label string
	Text  string
	Link  string
}

// headerOutline is the part of the document rendered before the gallery.
func headerOutline(e *Event) []outlineSection {
	description := e.Description
	if description == "" {
		description = "No description provided."
	}

	return []outlineSection{
		{Label: "Date", Text: e.Date.Format("January 2, 2006")},
		{Label: "Event", Text: e.Title},
		{Label: "Description", Text: description},
	}
}

// footerOutline is the part rendered after the gallery. Empty optional
// fields still get a section, with a placeholder.
func footerOutline(e *Event) []outlineSection {
	contacts := outlineSection{Label: "Contacts", Text: e.Contacts}
	if contacts.Text == "" {
		contacts.Text = "No contact information provided."
	}

	location := outlineSection{Label: "Location", Text: "No location provided."}
	if e.Location != "" {
		location.Text = e.Location
		location.Link = "https://www.google.com/maps?q=" + url.QueryEscape(e.Location)
	}

	return []outlineSection{contacts, location}
}

// Export renders the event as a portrait A4 document: date, title and
// description first, then the gallery images in stored order, then contact
// and location details. Unreachable images degrade to a placeholder line
// rather than failing the export.
func (x *PDFExporter) Export(ctx context.Context, e *Event) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Event Details")
	pdf.Ln(14)

	for _, s := range headerOutline(e) {
		x.renderSection(pdf, s)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Images")
	pdf.Ln(10)

	if len(e.ImageGallery) == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.Cell(0, 6, "No images available for this event.")
		pdf.Ln(10)
	}

	for _, ref := range e.ImageGallery {
		x.renderImage(ctx, pdf, ref)
	}

	for _, s := range footerOutline(e) {
		x.renderSection(pdf, s)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (x *PDFExporter) renderSection(pdf *gofpdf.Fpdf, s outlineSection) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, s.Label)
	pdf.Ln(8)

	if s.Link != "" {
		pdf.SetFont("Arial", "U", 11)
		pdf.SetTextColor(0, 0, 255)
		pdf.WriteLinkString(6, s.Text, s.Link)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(10)
		return
	}

	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, s.Text, "", "L", false)
	pdf.Ln(4)
}

func (x *PDFExporter) renderImage(ctx context.Context, pdf *gofpdf.Fpdf, ref string) {
	data, imgType, err := x.fetchImage(ctx, ref)
	if err != nil {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "Image not found: "+ref)
		pdf.Ln(8)
		return
	}

	opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
	name := fmt.Sprintf("gallery_%s", ref)
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		// Bad image data poisons the document; reset and degrade.
		pdf.ClearError()
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "Image not found: "+ref)
		pdf.Ln(8)
		return
	}

	width := 160.0
	height := info.Height() * width / info.Width()
	if _, pageH := pdf.GetPageSize(); pdf.GetY()+height > pageH-20 {
		pdf.AddPage()
	}
	pdf.ImageOptions(name, pdf.GetX(), pdf.GetY(), width, height, false, opts, 0, "")
	pdf.SetY(pdf.GetY() + height + 6)
}

// fetchImage resolves a gallery ref to raw bytes. Local refs are read from
// the upload directory; anything else is fetched over HTTP with the
// exporter's bounded client.
func (x *PDFExporter) fetchImage(ctx context.Context, ref string) ([]byte, string, error) {
	imgType := imageTypeFromExt(ref)
	if imgType == "" {
		return nil, "", fmt.Errorf("unsupported image extension: %s", ref)
	}

	if rel, ok := strings.CutPrefix(ref, "/uploads/"); ok {
		path := filepath.Join(x.UploadDir, filepath.Clean("/"+rel))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", err
		}
		return data, imgType, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := x.Client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, imgType, nil
}

func imageTypeFromExt(ref string) string {
	ext := strings.ToLower(filepath.Ext(ref))
	if i := strings.IndexByte(ext, '?'); i >= 0 {
		ext = ext[:i]
	}
	switch ext {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return ""
	}
}
