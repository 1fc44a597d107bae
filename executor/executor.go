/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chainguard.dev/harvester/githubapi"
	"chainguard.dev/harvester/harvest"
	"chainguard.dev/harvester/resultstore"
	"chainguard.dev/harvester/tasks"
	"github.com/chainguard-dev/clog"
)

// Tracker is the slice of the API client used to report back to the tasks
// repository.
type Tracker interface {
	PostComment(ctx context.Context, owner, repo string, number int, body string) error
	CloseIssue(ctx context.Context, owner, repo string, number int) error
}

// ResultWriter persists a task result and returns a locator for it.
type ResultWriter interface {
	Put(ctx context.Context, path string, content []byte, message string) (string, error)
}

// Harvester is the collaborator that executes a harvest task's search.
type Harvester interface {
	Run(ctx context.Context, params harvest.Params) ([]harvest.Record, error)
}

// Result is the durable outcome document committed to the results
// repository.
type Result struct {
	TaskID      string    `json:"task_id"`
	TaskType    string    `json:"task_type"`
	ProcessedAt time.Time `json:"processed_at"`
	Result      any       `json:"result"`
}

// harvestOutcome is the harvest-specific result payload.
type harvestOutcome struct {
	Parameters harvest.Params   `json:"parameters"`
	Count      int              `json:"count"`
	Projects   []harvest.Record `json:"projects"`
}

// Executor owns the lifecycle of one task at a time. Tasks are processed
// sequentially; cross-process races on the results repository are defended
// by the store's optimistic revision check, not prevented.
type Executor struct {
	tracker   Tracker
	store     ResultWriter
	harvester Harvester
	owner     string
	repo      string

	identity string
	defaults harvest.Params
	now      func() time.Time
	observer func(State)
}

// Option configures an Executor.
type Option func(*Executor)

// WithIdentity overrides the bot identity named in tracker comments.
func WithIdentity(identity string) Option {
	return func(e *Executor) { e.identity = identity }
}

// WithDefaults overrides the parameter defaults applied to task payloads.
func WithDefaults(p harvest.Params) Option {
	return func(e *Executor) { e.defaults = p }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithObserver registers a callback invoked on every state transition.
func WithObserver(fn func(State)) Option {
	return func(e *Executor) { e.observer = fn }
}

// New constructs an Executor reporting to the given "owner/name" tracker
// repository.
func New(tracker Tracker, store ResultWriter, harvester Harvester, trackerRepo string, opts ...Option) (*Executor, error) {
	owner, repo, err := githubapi.SplitRepo(trackerRepo)
	if err != nil {
		return nil, fmt.Errorf("tracker repository: %w", err)
	}
	e := &Executor{
		tracker:   tracker,
		store:     store,
		harvester: harvester,
		owner:     owner,
		repo:      repo,
		identity:  "github-harvester-bot",
		defaults:  harvest.DefaultTaskParams(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute drives one task descriptor to a terminal state. The returned error
// is always a *TaskError; per-task failures are reported on the source issue
// and the issue is left open for manual intervention.
func (e *Executor) Execute(ctx context.Context, task tasks.Descriptor) error {
	log := clog.FromContext(ctx).With("issue", task.IssueNumber).With("task_id", task.ID)
	ctx = clog.WithLogger(ctx, log)
	e.transition(ctx, StateFetched)

	if task.ParseErr != nil {
		return e.fail(ctx, task, ReasonMalformedTask,
			fmt.Errorf("could not parse task JSON: %w", task.ParseErr))
	}
	e.transition(ctx, StateParsed)

	if task.Type != tasks.TypeHarvest {
		return e.fail(ctx, task, ReasonUnsupportedType,
			fmt.Errorf("expected task type %q, got %q", tasks.TypeHarvest, task.RawType))
	}

	// The started comment is best-effort: a missed progress note must not
	// abort a runnable task.
	started := fmt.Sprintf("🚀 Task `%s` (Type: `%s`) started execution by `%s`.", task.ID, task.RawType, e.identity)
	if err := e.tracker.PostComment(ctx, e.owner, e.repo, task.IssueNumber, started); err != nil {
		log.With("error", err.Error()).Warn("Failed to post started comment, continuing")
	}
	e.transition(ctx, StateStarted)

	params := harvest.ResolveParams(task.Payload, e.defaults)
	records, err := e.harvester.Run(ctx, params)
	if err != nil {
		return e.fail(ctx, task, ReasonExecutionError, err)
	}
	e.transition(ctx, StateExecuted)

	processedAt := e.now().UTC()
	content, err := json.MarshalIndent(Result{
		TaskID:      task.ID,
		TaskType:    task.RawType,
		ProcessedAt: processedAt,
		Result: harvestOutcome{
			Parameters: params,
			Count:      len(records),
			Projects:   records,
		},
	}, "", "  ")
	if err != nil {
		return e.fail(ctx, task, ReasonPersistenceError, fmt.Errorf("encoding result: %w", err))
	}

	path := resultstore.ResultPath(processedAt, tasks.TypeHarvest.String(), task.ID)
	message := fmt.Sprintf("feat: store results for harvest task %s", task.ID)
	locator, err := e.store.Put(ctx, path, content, message)
	if err != nil {
		return e.fail(ctx, task, ReasonPersistenceError, err)
	}
	e.transition(ctx, StatePersisted)
	log.With("path", path).With("locator", locator).Info("Result persisted")

	// The completion comment is only ever posted after a successful write:
	// no false "done" signals. The result is already durable, so a failure
	// here only fails the reporting tail and a re-run is safe.
	if err := e.tracker.PostComment(ctx, e.owner, e.repo, task.IssueNumber, completedComment(task, params, records, locator)); err != nil {
		return e.fail(ctx, task, ReasonReportError, err)
	}
	e.transition(ctx, StateReported)

	// Closing is best-effort cleanup: the result is persisted and reported,
	// so a failed close is logged, not failed.
	if err := e.tracker.CloseIssue(ctx, e.owner, e.repo, task.IssueNumber); err != nil {
		log.With("error", err.Error()).Warn("Failed to close issue, leaving open")
		return nil
	}
	e.transition(ctx, StateClosed)
	return nil
}

// ExecuteAll processes a batch of descriptors sequentially and returns how
// many failed. One failing task never aborts the others.
func (e *Executor) ExecuteAll(ctx context.Context, descriptors []tasks.Descriptor) int {
	var failed int
	for _, task := range descriptors {
		if err := e.Execute(ctx, task); err != nil {
			clog.FromContext(ctx).With("issue", task.IssueNumber).
				With("error", err.Error()).Warn("Task failed, continuing with next task")
			failed++
		}
	}
	return failed
}

// fail posts a failure comment (best-effort), leaves the issue open and
// returns the task's terminal error.
func (e *Executor) fail(ctx context.Context, task tasks.Descriptor, reason FailureReason, err error) error {
	e.transition(ctx, StateFailed)
	clog.FromContext(ctx).With("reason", string(reason)).With("error", err.Error()).Warn("Task failed")

	body := fmt.Sprintf("❌ Task failed: %s.\nError: %v", reason, err)
	if cerr := e.tracker.PostComment(ctx, e.owner, e.repo, task.IssueNumber, body); cerr != nil {
		clog.FromContext(ctx).With("error", cerr.Error()).Warn("Failed to post failure comment")
	}
	return &TaskError{Reason: reason, Err: err}
}

func (e *Executor) transition(ctx context.Context, s State) {
	clog.FromContext(ctx).With("state", string(s)).Info("Task transition")
	if e.observer != nil {
		e.observer(s)
	}
}
