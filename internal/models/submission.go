package models

import (
	"time"

	"gorm.io/datatypes"
)

// Answer is a single answered question inside a submission. The question is
// referenced by its exact text and resolved against the catalog at grouping
// time, never at persistence time.
type Answer struct {
	QuestionName   string  `json:"questionName"`
	SelectedAnswer string  `json:"selectedAnswer"`
	Points         float64 `json:"points"`
}

// Submission is one participant's recorded quiz run. The answers array is
// stored verbatim as a JSON column; DocumentURL stays empty until the results
// document has been uploaded.
type Submission struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	UserName    string                      `gorm:"size:255;not null" json:"userName"`
	UserSurname string                      `gorm:"size:255;not null" json:"userSurname"`
	UserEmail   string                      `gorm:"size:255;not null" json:"userEmail"`
	Answers     datatypes.JSONSlice[Answer] `gorm:"type:json" json:"answers"`
	TotalPoints float64                     `json:"totalPoints"`
	DocumentURL string                      `gorm:"size:512" json:"documentUrl"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// HasDocument reports whether the results document has been uploaded.
func (s Submission) HasDocument() bool {
	return s.DocumentURL != ""
}
