// Package report composes the PDF grading report for a completed job.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
)

// Renderer defines the interface for producing the report artifact.
// Version: 1.0
type Renderer interface {
	// Render produces the report bytes for a job's outcomes.
	Render(job *domain.GradingJob, results []domain.GradeResult, overall domain.OverallResult) ([]byte, error)
}

// PDFRenderer renders the grading report as a PDF. Results are grouped by
// section label with unlabelled sections last, matching the order callers
// see in the web report.
type PDFRenderer struct{}

// NewPDFRenderer creates a new PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the PDF bytes for a job's outcomes.
func (r *PDFRenderer) Render(job *domain.GradingJob, results []domain.GradeResult, overall domain.OverallResult) ([]byte, error) {
	sorted := make([]domain.GradeResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Section != b.Section {
			// Unlabelled sections sort last.
			if a.Section == "" {
				return false
			}
			if b.Section == "" {
				return true
			}
			return a.Section < b.Section
		}
		if a.QuestionType != b.QuestionType {
			return a.QuestionType < b.QuestionType
		}
		return a.QuestionID < b.QuestionID
	})

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Grading Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Grading Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Attempt: "+job.AttemptID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated: "+time.Now().UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall: %.2f (%s)", overall.Score, overall.Band), "", 1, "L", false, 0, "")
	if overall.Notes != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, overall.Notes, "", "L", false)
	}
	pdf.Ln(4)

	currentSection := "\x00"
	for _, res := range sorted {
		if res.Section != currentSection {
			currentSection = res.Section
			label := currentSection
			if label == "" {
				label = "Other"
			}
			pdf.SetFont("Helvetica", "B", 13)
			pdf.CellFormat(0, 8, label, "", 1, "L", false, 0, "")
		}

		pdf.SetFont("Helvetica", "B", 10)
		heading := fmt.Sprintf("%s #%d - %.2f", res.QuestionType, res.QuestionID, res.Score)
		if res.Fallback {
			heading += " (not graded)"
		}
		pdf.CellFormat(0, 6, heading, "", 1, "L", false, 0, "")

		if res.Rationale != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 5, res.Rationale, "", "L", false)
		}
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// ArtifactKey returns the storage key for a job's report, partitioned by
// year/month like the rest of the reports bucket.
func ArtifactKey(jobID string, now time.Time) string {
	return fmt.Sprintf("%s/%s.pdf", now.UTC().Format("2006/01"), jobID)
}
