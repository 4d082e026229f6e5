package structs

import (
	"strings"
)

// State is the lifecycle state of a Job.
type State string

const (
	// transient states
	QUEUED  State = "QUEUED"
	RUNNING State = "RUNNING"

	// end state
	FINISHED State = "FINISHED"
)

// ResultStatus tags which variant a BuildResult holds.
type ResultStatus string

const (
	COMPLETED ResultStatus = "COMPLETED"
	FAILED    ResultStatus = "FAILED"
)

func IsFinalState(st State) bool {
	return st == FINISHED
}

// CanTransition reports whether a job may move from one state to another.
// Transitions are strictly forward; QUEUED may skip straight to FINISHED when
// a job is reaped or fails before a worker picks it up.
func CanTransition(from, to State) bool {
	switch from {
	case QUEUED:
		return to == RUNNING || to == FINISHED
	case RUNNING:
		return to == FINISHED
	default:
		return false
	}
}

func ToState(s string) State {
	switch strings.ToUpper(s) {
	case "QUEUED":
		return QUEUED
	case "RUNNING":
		return RUNNING
	case "FINISHED":
		return FINISHED
	default:
		return ""
	}
}

func ToResultStatus(s string) ResultStatus {
	switch strings.ToUpper(s) {
	case "COMPLETED":
		return COMPLETED
	case "FAILED":
		return FAILED
	default:
		return ""
	}
}
