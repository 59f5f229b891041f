package core

import "errors"

var (
	// ErrEmptyMessage rejects a turn with no message text.
	ErrEmptyMessage = errors.New("message is required")
	// ErrEmptySymptoms rejects a direct triage with no symptom text.
	ErrEmptySymptoms = errors.New("symptoms are required")
)
