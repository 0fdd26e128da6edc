package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultLanguage = "English"

// SlideContentRequest carries the parameters of one generation run. Pages is the
// total slide count including the cover.
type SlideContentRequest struct {
	Grade    int    `json:"grade"`
	Subject  string `json:"subject"`
	Topic    string `json:"topic"`
	Language string `json:"language"`
	Pages    int    `json:"pages"`
}

// Normalized trims text fields and fills the language and slide count defaults.
func (r SlideContentRequest) Normalized(defaultPages int) SlideContentRequest {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Topic = strings.TrimSpace(r.Topic)
	r.Language = strings.TrimSpace(r.Language)
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.Pages == 0 {
		r.Pages = defaultPages
	}
	return r
}

// Validate returns per-field messages; an empty map means the request is valid.
func (r SlideContentRequest) Validate(minPages, maxPages int) map[string]string {
	fields := make(map[string]string)
	if r.Grade < 1 {
		fields["grade"] = "Grade must be a positive number"
	}
	if r.Subject == "" {
		fields["subject"] = "Subject is required"
	}
	if r.Topic == "" {
		fields["topic"] = "Topic is required"
	}
	if r.Pages < minPages || r.Pages > maxPages {
		fields["pages"] = fmt.Sprintf("Number of slides must be between %d and %d", minPages, maxPages)
	}
	return fields
}

type GeneratePPTResponse struct {
	Filename  string `json:"filename"`
	PublicURL string `json:"public_url"`
}

type Presentation struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Grade      int       `json:"grade"`
	Subject    string    `json:"subject"`
	Topic      string    `json:"topic"`
	Language   string    `json:"language"`
	SlideCount int       `json:"slide_count"`
	Filename   string    `json:"filename"`
	StorageKey string    `json:"-"`
	PublicURL  string    `json:"public_url"`
	CreatedAt  time.Time `json:"created_at"`
}

// PresentationPage is one page of a user's history with the bounds actually applied.
type PresentationPage struct {
	Presentations []*Presentation `json:"presentations"`
	Total         int             `json:"total"`
	Limit         int             `json:"limit"`
	Offset        int             `json:"offset"`
}
