package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/ucl-grp21/student-records-api/internal/models"
)

// TranscriptPDF renders a student's transcript as a tabular PDF document.
type TranscriptPDF struct{}

// NewTranscriptPDF constructs the renderer.
func NewTranscriptPDF() *TranscriptPDF {
	return &TranscriptPDF{}
}

// Render produces the PDF bytes for a transcript. Rows without a score show
// a dash: the student is registered but has not been graded yet.
func (e *TranscriptPDF) Render(t *models.Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "ACADEMIC TRANSCRIPT", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s %s (%s)", t.FirstName, t.LastName, t.Username), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Student ID: %d", t.StudentID), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{40, 110, 40}
	headers := []string{"Module", "Title", "Score"}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range t.Rows {
		score := "-"
		if row.Score != nil {
			score = fmt.Sprintf("%d", *row.Score)
		}
		pdf.CellFormat(widths[0], 7, row.ModuleCode, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, row.ModuleName, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, score, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	average := "no graded modules"
	if t.Average >= 0 {
		average = fmt.Sprintf("%.2f", t.Average)
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Average: %s", average), "", 1, "L", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render transcript pdf: %w", err)
	}
	return buf.Bytes(), nil
}
