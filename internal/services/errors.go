package services

import "errors"

var (
	// ErrAlreadyRunning is returned when a clusterization update finds the
	// run lock held by another instance. Not an error to the end user; the
	// HTTP layer maps it to an "already-running" status payload.
	ErrAlreadyRunning = errors.New("clusterization already running")

	// ErrInvalidEngagement rejects segment filters whose engagement level
	// falls outside [0,100].
	ErrInvalidEngagement = errors.New("engagement level outside [0,100]")

	// ErrNotFound is the service-level miss, wrapping gorm.ErrRecordNotFound
	// at the boundary.
	ErrNotFound = errors.New("not found")
)
