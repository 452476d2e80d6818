package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

// GenerateCSV creates a CSV report
func GenerateCSV(report *Report, writer io.Writer) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	header := []string{
		"Image",
		"Avg CPU (m)",
		"Max CPU (m)",
		"Avg Memory (Mi)",
		"Max Memory (Mi)",
		"Requested Memory (Mi)",
		"Recommended CPU (m)",
		"Recommended Memory (Mi)",
		"CPU Over-Provisioned",
		"Memory Over-Provisioned",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range report.Recommendations {
		row := []string{
			rec.Image,
			fmt.Sprintf("%.2f", rec.AvgCPU),
			fmt.Sprintf("%d", rec.MaxCPU),
			fmt.Sprintf("%.2f", rec.AvgMemory),
			fmt.Sprintf("%d", rec.MaxMemory),
			fmt.Sprintf("%d", rec.RequestedMemory),
			fmt.Sprintf("%.2f", rec.RecommendedCPU),
			fmt.Sprintf("%.2f", rec.RecommendedMemory),
			fmt.Sprintf("%.2f", rec.CPUOverProvisionedRatio),
			fmt.Sprintf("%.2f", rec.MemoryOverProvisionedRatio),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	// Summary rows
	w.Write([]string{})
	w.Write([]string{"SUMMARY"})
	w.Write([]string{"Session", report.SessionID})
	w.Write([]string{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05")})
	w.Write([]string{"Pod Samples", fmt.Sprintf("%d", report.SampleCount)})
	w.Write([]string{"Images", fmt.Sprintf("%d", len(report.Recommendations))})

	return nil
}
