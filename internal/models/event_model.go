package models

import "time"

// Event types published on the events queue.
const (
	EventAppealSubmitted = "appeal.submitted"
	EventAppealApproved  = "appeal.approved"
	EventAppealRejected  = "appeal.rejected"
)

// Event is a domain notification published after a state change commits.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	OccurredAt time.Time         `json:"occurredAt"`
	UserID     string            `json:"userId"`
	UserEmail  string            `json:"userEmail,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
}
