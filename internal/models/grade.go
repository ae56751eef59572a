package models

import "time"

// Grade is a scored outcome for a student in a module. A grade may only
// exist when the (student, module) pair holds a registration.
type Grade struct {
	ID         int64     `db:"id" json:"id"`
	StudentID  int64     `db:"student_id" json:"student_id"`
	ModuleCode string    `db:"module_code" json:"module_code"`
	Score      int       `db:"score" json:"score"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TranscriptRow is one registered module on a transcript. Score is nil when
// the module has not been graded yet.
type TranscriptRow struct {
	ModuleCode string `db:"module_code" json:"module_code"`
	ModuleName string `db:"module_name" json:"module_name"`
	MNC        bool   `db:"mnc" json:"mnc"`
	Score      *int   `db:"score" json:"score,omitempty"`
}

// Transcript aggregates a student's registered modules and grades. Average
// is the unweighted mean of recorded scores, or -1 when no grades exist.
type Transcript struct {
	StudentID  int64           `json:"student_id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Username   string          `json:"username"`
	Rows       []TranscriptRow `json:"rows"`
	GradeCount int             `json:"grade_count"`
	Average    float64         `json:"average"`
}
