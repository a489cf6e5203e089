package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Exporter renders the events table in a downloadable format.
type Exporter interface {
	Export(format string, rows []EventReportRow) ([]byte, string, string, error)
}

type exporter struct{}

func NewExporter() Exporter {
	return &exporter{}
}

// Export returns data, filename and content type for the requested format.
func (e *exporter) Export(format string, rows []EventReportRow) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatCSV:
		data, err := e.exportCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("events_report_%s.csv", timestamp)
		return data, filename, "text/csv", nil

	case FormatExcel:
		data, err := e.exportExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("events_report_%s.xlsx", timestamp)
		return data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("events_report_%s.pdf", timestamp)
		return data, filename, "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported report format: %s", format)
	}
}

func (e *exporter) exportCSV(rows []EventReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Description", "Date", "Location", "Contacts", "Images", "Created At"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Title,
			r.Description,
			r.Date,
			r.Location,
			r.Contacts,
			strconv.Itoa(r.ImageCount),
			r.CreatedAt,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *exporter) exportExcel(rows []EventReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Events"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "Title", "Description", "Date", "Location", "Contacts", "Images", "Created At"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Title)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Location)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Contacts)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.ImageCount)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), r.CreatedAt)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportPDF(rows []EventReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Events Report")
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 10)
	widths := []float64{12, 45, 70, 30, 45, 40, 15, 30}
	headers := []string{"ID", "Title", "Description", "Date", "Location", "Contacts", "Images", "Created At"}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		desc := r.Description
		if len(desc) > 50 {
			desc = desc[:47] + "..."
		}

		pdf.CellFormat(widths[0], 6, strconv.FormatUint(uint64(r.ID), 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.Title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, r.Location, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 6, r.Contacts, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[6], 6, strconv.Itoa(r.ImageCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[7], 6, r.CreatedAt, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
