package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const JobTypeDeckGeneration = "deck-generation"

const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

type Job struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Type           string          `json:"type"`
	ConfigJSON     json.RawMessage `json:"config"`
	Status         string          `json:"status"` // "pending" | "processing" | "completed" | "failed"
	ErrorMessage   *string         `json:"error_message"`
	PresentationID *uuid.UUID      `json:"presentation_id"`
	CreatedAt      time.Time       `json:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	JobID    uuid.UUID `json:"job_id"`
	Step     int       `json:"step"`
	StepName string    `json:"step_name"`
}

type CompletedEvent struct {
	JobID          uuid.UUID `json:"job_id"`
	PresentationID uuid.UUID `json:"presentation_id"`
	Filename       string    `json:"filename"`
	PublicURL      string    `json:"public_url"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
