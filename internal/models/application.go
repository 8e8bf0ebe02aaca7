package models

import (
	"time"

	"github.com/google/uuid"
)

// CandidateApplication is a public job application submitted via the apply page.
type CandidateApplication struct {
	ID          uuid.UUID `json:"id"`
	ApplyingFor string    `json:"applying_for"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Degree      string    `json:"degree"`
	CoverLetter string    `json:"cover_letter,omitempty"`
	ResumeKey   string    `json:"resume_key"` // S3 object key
	CreatedAt   time.Time `json:"created_at"`
}
