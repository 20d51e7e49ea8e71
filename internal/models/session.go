package models

import "time"

// Session is what a booking session persists between jobs: the active project and
// the user driving the booking. Everything else about a deal lives in process variables.
type Session struct {
	ID              string    `json:"id"`
	ActiveProjectID string    `json:"activeProjectId,omitempty"`
	CurrentUser     *Actor    `json:"currentUser,omitempty"`
	LeadID          string    `json:"leadId,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
