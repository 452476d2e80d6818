package reporter

import (
	"fmt"
	"os"
	"time"

	"github.com/opscart/kube-trim/pkg/models"
)

// ReportFormat represents the output format
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatCSV  ReportFormat = "csv"
)

// Report is the final recommendation set plus run metadata, ready for
// export when the collection session ends.
type Report struct {
	SessionID       string
	GeneratedAt     time.Time
	SampleCount     int
	Recommendations []models.Recommendation
}

// WriteFile renders the report in the given format to path.
func WriteFile(report *Report, format ReportFormat, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		return GenerateCSV(report, f)
	case FormatHTML:
		return GenerateHTML(report, f)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}
