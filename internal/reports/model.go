package reports

// Supported output formats
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// EventReportRow is one event flattened for tabular export.
type EventReportRow struct {
	ID          uint
	Title       string
	Description string
	Date        string
	Location    string
	Contacts    string
	ImageCount  int
	CreatedAt   string
}
