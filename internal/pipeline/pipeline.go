// Package pipeline wires the cleaning and modeling stages into a
// dependency-ordered task graph and runs it.
//
// The runner is deliberately simple: stages execute sequentially, in
// declared order, one at a time. Every stage consumes the previous
// stage's output files, so there is nothing to parallelize. The first
// failing stage halts the whole run; the error names the stage so a
// failure is localized to one transformation. There are no retries and
// no partial re-runs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"olistdw/internal/metrics"
)

// Stage is one unit of the task graph.
type Stage struct {
	// Name identifies the stage in logs, metrics, and failure reports.
	Name string

	// Needs lists the names of stages that must have completed first.
	// The runner verifies the declared order satisfies them.
	Needs []string

	// Run executes the stage.
	Run func(ctx context.Context) error
}

// Runner executes a stage list.
type Runner struct {
	job string
	log *zap.Logger
}

// NewRunner returns a Runner labeled with the job name. A nil logger
// disables logging.
func NewRunner(job string, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{job: job, log: log}
}

// Run executes the stages in order, halting on the first failure. The
// returned error wraps the stage's own error and names the stage.
func (r *Runner) Run(ctx context.Context, stages []Stage) error {
	if err := checkOrder(stages); err != nil {
		return err
	}

	for _, s := range stages {
		r.log.Info("stage starting", zap.String("stage", s.Name))
		start := time.Now()

		err := s.Run(ctx)
		metrics.RecordStage(r.job, s.Name, err, time.Since(start))

		if err != nil {
			r.log.Error("stage failed",
				zap.String("stage", s.Name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return fmt.Errorf("stage %s: %w", s.Name, err)
		}
		r.log.Info("stage completed",
			zap.String("stage", s.Name),
			zap.Duration("elapsed", time.Since(start)))
	}

	r.log.Info("pipeline completed", zap.Int("stages", len(stages)))
	return nil
}

// checkOrder verifies every dependency appears earlier in the list, so
// a stage never runs before the stages that produce its inputs.
func checkOrder(stages []Stage) error {
	done := make(map[string]struct{}, len(stages))
	for _, s := range stages {
		if s.Name == "" {
			return fmt.Errorf("pipeline: stage with empty name")
		}
		if _, dup := done[s.Name]; dup {
			return fmt.Errorf("pipeline: duplicate stage %q", s.Name)
		}
		for _, need := range s.Needs {
			if _, ok := done[need]; !ok {
				return fmt.Errorf("pipeline: stage %q needs %q, which does not run before it", s.Name, need)
			}
		}
		done[s.Name] = struct{}{}
	}
	return nil
}
