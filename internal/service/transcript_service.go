package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/ucl-grp21/student-records-api/internal/models"
	appErrors "github.com/ucl-grp21/student-records-api/pkg/errors"
)

// NoGradesAverage is returned when a student has no recorded grades. It is a
// sentinel, not a valid average; callers must treat it as "no data".
const NoGradesAverage = -1

type transcriptGradeReader interface {
	ScoresByStudent(ctx context.Context, studentID int64) ([]int, error)
	TranscriptRows(ctx context.Context, studentID int64) ([]models.TranscriptRow, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type transcriptRenderer interface {
	Render(t *models.Transcript) ([]byte, error)
}

// AverageResult reports the mean score over a student's grades.
type AverageResult struct {
	StudentID  int64   `json:"student_id"`
	Average    float64 `json:"average"`
	GradeCount int     `json:"grade_count"`
}

// TranscriptService computes grade averages and assembles transcripts.
type TranscriptService struct {
	grades   transcriptGradeReader
	students studentFinder
	renderer transcriptRenderer
	logger   *zap.Logger
}

// NewTranscriptService constructs TranscriptService.
func NewTranscriptService(grades transcriptGradeReader, students studentFinder, renderer transcriptRenderer, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{grades: grades, students: students, renderer: renderer, logger: logger}
}

// ComputeAverage returns the unweighted mean of the student's scores, or the
// -1 sentinel when no grades are recorded.
func (s *TranscriptService) ComputeAverage(ctx context.Context, studentID int64) (*AverageResult, error) {
	if _, err := s.findStudent(ctx, studentID); err != nil {
		return nil, err
	}
	scores, err := s.grades.ScoresByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	result := &AverageResult{StudentID: studentID, GradeCount: len(scores), Average: NoGradesAverage}
	if len(scores) == 0 {
		return result, nil
	}
	sum := 0
	for _, score := range scores {
		sum += score
	}
	result.Average = float64(sum) / float64(len(scores))
	return result, nil
}

// Transcript assembles the per-module view of a student's registrations and
// grades together with the overall average.
func (s *TranscriptService) Transcript(ctx context.Context, studentID int64) (*models.Transcript, error) {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	rows, err := s.grades.TranscriptRows(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript rows")
	}

	transcript := &models.Transcript{
		StudentID: student.ID,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Username:  student.Username,
		Rows:      rows,
		Average:   NoGradesAverage,
	}
	sum := 0
	for _, row := range rows {
		if row.Score != nil {
			sum += *row.Score
			transcript.GradeCount++
		}
	}
	if transcript.GradeCount > 0 {
		transcript.Average = float64(sum) / float64(transcript.GradeCount)
	}
	return transcript, nil
}

// RenderPDF renders the student's transcript as a PDF document.
func (s *TranscriptService) RenderPDF(ctx context.Context, studentID int64) ([]byte, error) {
	transcript, err := s.Transcript(ctx, studentID)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.Render(transcript)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
	}
	return data, nil
}

func (s *TranscriptService) findStudent(ctx context.Context, studentID int64) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
