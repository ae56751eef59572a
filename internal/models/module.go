package models

import "time"

// Module is a taught course unit. The short code (e.g. COMP0010) is the
// primary key. MNC marks the module as mandatory non-condonable for its
// cohort.
type Module struct {
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	MNC       bool      `db:"mnc" json:"mnc"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
