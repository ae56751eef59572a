package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucl-grp21/student-records-api/internal/models"
)

func TestTranscriptPDFRender(t *testing.T) {
	score := 85
	transcript := &models.Transcript{
		StudentID:  1,
		FirstName:  "Alice",
		LastName:   "Smith",
		Username:   "asmith",
		GradeCount: 1,
		Average:    85,
		Rows: []models.TranscriptRow{
			{ModuleCode: "COMP0010", ModuleName: "Software Engineering", Score: &score},
			{ModuleCode: "COMP0016", ModuleName: "Systems Engineering"},
		},
	}

	data, err := NewTranscriptPDF().Render(transcript)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestTranscriptPDFRenderNil(t *testing.T) {
	_, err := NewTranscriptPDF().Render(nil)
	require.Error(t, err)
}
