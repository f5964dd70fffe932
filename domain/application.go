package domain

import "time"

type ApplicationStatus string

const (
	StatusOpen   ApplicationStatus = "OPEN"
	StatusClosed ApplicationStatus = "CLOSED"
)

// Application is the stored outcome of a scored loan application.
type Application struct {
	ID             string            `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	FirstName      string            `json:"first_name,omitempty"`
	LastName       string            `json:"last_name,omitempty"`
	Payload        ApplicantPayload  `json:"payload"`
	ProbDefault    float64           `json:"prob_default"`
	SystemDecision Decision          `json:"system_decision"`
	FinalDecision  Decision          `json:"final_decision,omitempty"`
	PolicySource   string            `json:"policy_source"`
	Thresholds     Thresholds        `json:"thresholds"`
	Status         ApplicationStatus `json:"status"`
	ReviewNotes    string            `json:"review_notes,omitempty"`
	Advice         string            `json:"advice,omitempty"`
	AdviceSource   string            `json:"advice_source,omitempty"`
	ClientMessage  string            `json:"client_message,omitempty"`
}

type ReviewInput struct {
	Action Decision `json:"action"`
	Notes  string   `json:"notes"`
}
