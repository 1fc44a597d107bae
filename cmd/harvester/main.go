/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the GitHub project harvester.
//
// It runs in three modes:
//   - scheduled (default): harvest trending repositories and save the scored
//     records to the local filesystem.
//   - task mode (-task-mode -issue-number=N): process one harvest task from
//     the tasks repository and commit the result to the results repository.
//   - queue mode (-queue-mode): drain every pending task issue.
//
// Two overlapping runs are not prevented; lost updates to the results
// repository are defended by the store's optimistic revision check, and a
// run killed mid-task leaves its issue open with a started comment for
// manual reconciliation.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainguard.dev/harvester/executor"
	"chainguard.dev/harvester/githubapi"
	"chainguard.dev/harvester/harvest"
	"chainguard.dev/harvester/resultstore"
	"chainguard.dev/harvester/tasks"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	// GitHubToken authenticates every API call.
	GitHubToken string `env:"GITHUB_TOKEN,required"`

	// TasksRepo is the tracker repository used as the work queue.
	TasksRepo string `env:"TASKS_REPO,default=zipaJopa/agent-tasks"`
	// ResultsRepo is the repository used as the durable output store.
	ResultsRepo string `env:"RESULTS_REPO,default=zipaJopa/agent-results"`
	// TaskLabel filters tracker issues to queued work.
	TaskLabel string `env:"TASK_LABEL,default=in-progress"`
	// HarvestDir receives scheduled-mode output files.
	HarvestDir string `env:"HARVEST_DIR,default=harvested"`
}

func main() {
	taskMode := flag.Bool("task-mode", false, "process a single task issue (requires -issue-number)")
	queueMode := flag.Bool("queue-mode", false, "process every pending task issue")
	issueNumber := flag.Int("issue-number", 0, "issue number to process in task mode")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("run_id", uuid.NewString()))

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	client, err := githubapi.New(ctx, cfg.GitHubToken)
	if err != nil {
		clog.FatalContextf(ctx, "creating GitHub client: %v", err)
	}
	harvester := harvest.New(client)

	switch {
	case *taskMode:
		if *issueNumber <= 0 {
			clog.FatalContextf(ctx, "-issue-number is required in task mode")
		}
		if err := runTask(ctx, cfg, client, harvester, *issueNumber); err != nil {
			clog.ErrorContextf(ctx, "task failed: %v", err)
			os.Exit(1)
		}

	case *queueMode:
		if err := runQueue(ctx, cfg, client, harvester); err != nil {
			clog.ErrorContextf(ctx, "queue run failed: %v", err)
			os.Exit(1)
		}

	default:
		if err := runScheduled(ctx, cfg, harvester); err != nil {
			clog.ErrorContextf(ctx, "scheduled harvest failed: %v", err)
			os.Exit(1)
		}
	}
}

// newExecutor wires the executor against the tasks and results repositories.
func newExecutor(cfg config, client *githubapi.Client, harvester *harvest.Harvester) (*executor.Executor, error) {
	store, err := resultstore.New(client, cfg.ResultsRepo)
	if err != nil {
		return nil, err
	}
	return executor.New(client, store, harvester, cfg.TasksRepo)
}

// runTask processes exactly one task issue. Its failure is the process's
// failure: the exit status tells the scheduler the task did not complete.
func runTask(ctx context.Context, cfg config, client *githubapi.Client, harvester *harvest.Harvester, issueNumber int) error {
	owner, repo, err := githubapi.SplitRepo(cfg.TasksRepo)
	if err != nil {
		return err
	}

	clog.InfoContextf(ctx, "Processing harvest task from issue #%d", issueNumber)
	issue, err := client.GetIssue(ctx, owner, repo, issueNumber)
	if err != nil {
		return err
	}
	if issue == nil {
		// Absence is valid for reads in general, but the requested task
		// issue is a required resource.
		clog.FatalContextf(ctx, "issue #%d not found in %s", issueNumber, cfg.TasksRepo)
	}

	exec, err := newExecutor(cfg, client, harvester)
	if err != nil {
		return err
	}
	return exec.Execute(ctx, tasks.Parse(issue))
}

// runQueue drains the pending tasks. Per-task failures are reported on their
// issues and do not fail the run; only failing to enumerate the queue does.
func runQueue(ctx context.Context, cfg config, client *githubapi.Client, harvester *harvest.Harvester) error {
	source, err := tasks.NewSource(client, cfg.TasksRepo, cfg.TaskLabel)
	if err != nil {
		return err
	}
	pending, err := source.ListPending(ctx)
	if err != nil {
		return err
	}

	exec, err := newExecutor(cfg, client, harvester)
	if err != nil {
		return err
	}
	failed := exec.ExecuteAll(ctx, pending)
	clog.InfoContextf(ctx, "Queue run complete: %d tasks, %d failed", len(pending), failed)
	return nil
}

// runScheduled harvests with the scheduled defaults and saves locally.
func runScheduled(ctx context.Context, cfg config, harvester *harvest.Harvester) error {
	clog.InfoContextf(ctx, "Running scheduled harvest")
	records, err := harvester.Run(ctx, harvest.DefaultScheduledParams())
	if err != nil {
		return err
	}

	path, err := harvest.SaveLocal(cfg.HarvestDir, records, time.Now())
	if err != nil {
		return err
	}
	clog.InfoContextf(ctx, "Harvest complete: %d projects saved to %s", len(records), path)
	return nil
}
