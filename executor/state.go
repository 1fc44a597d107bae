/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package executor

import "fmt"

// State is a stop on the task lifecycle. Tasks move strictly forward through
// Fetched → Parsed → Started → Executed → Persisted → Reported → Closed;
// Failed is reachable from any non-terminal state.
type State string

const (
	StateFetched   State = "Fetched"
	StateParsed    State = "Parsed"
	StateStarted   State = "Started"
	StateExecuted  State = "Executed"
	StatePersisted State = "Persisted"
	StateReported  State = "Reported"
	StateClosed    State = "Closed"
	StateFailed    State = "Failed"
)

// FailureReason labels why a task entered StateFailed.
type FailureReason string

const (
	ReasonMalformedTask    FailureReason = "malformed task"
	ReasonUnsupportedType  FailureReason = "unsupported type"
	ReasonExecutionError   FailureReason = "execution error"
	ReasonPersistenceError FailureReason = "persistence error"
	ReasonReportError      FailureReason = "report error"
)

// TaskError is the terminal failure of a single task. It is caught at the
// task boundary: batch processing reports it and continues with the next
// task.
type TaskError struct {
	Reason FailureReason
	Err    error
}

func (e *TaskError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
