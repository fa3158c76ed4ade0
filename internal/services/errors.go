package services

import "errors"

var (
	// ErrSessionNotFound: session absent, expired, or unreadable.
	ErrSessionNotFound = errors.New("session not found")
	// ErrConflict: another turn for the same session is in flight.
	ErrConflict = errors.New("turn in progress")
	// ErrAgentUnavailable: decision/scoring agent failed after its bounded
	// retry; no session state was committed.
	ErrAgentUnavailable = errors.New("agent unavailable")
	// ErrStoreUnavailable: ephemeral or durable store unreachable.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSourceMissing: finalize/evaluate had no source state to read.
	ErrSourceMissing = errors.New("source state missing")
	// ErrAlreadyEvaluated: an evaluation exists and overwrite was not
	// requested.
	ErrAlreadyEvaluated = errors.New("evaluation already exists")
)
