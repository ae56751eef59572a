package models

import "time"

// Registration asserts that a student is enrolled in a module. At most one
// registration may exist per (student, module) pair; it is the prerequisite
// for recording a grade.
type Registration struct {
	ID           int64     `db:"id" json:"id"`
	StudentID    int64     `db:"student_id" json:"student_id"`
	ModuleCode   string    `db:"module_code" json:"module_code"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// RegistrationDetail enriches Registration with student and module context.
type RegistrationDetail struct {
	Registration
	StudentUsername string `db:"student_username" json:"student_username"`
	ModuleName      string `db:"module_name" json:"module_name"`
}
