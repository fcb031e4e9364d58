package models

import "time"

// SessionState is the lifecycle state a session reports.
type SessionState string

const (
	SessionStateInProgress SessionState = "IN_PROGRESS"
	SessionStateCompleted  SessionState = "COMPLETED"
	SessionStateFailed     SessionState = "FAILED"
)

// SessionList is the body of the sessions listing endpoint
// (`GET .../v1alpha/sessions`).
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// Session represents one session entry rendered by the sessions view.
// CreateTime marshals as RFC 3339, matching the ISO-8601 wire form.
type Session struct {
	Name       string       `json:"name"`
	State      SessionState `json:"state"`
	Prompt     string       `json:"prompt"`
	CreateTime time.Time    `json:"createTime"`
}
