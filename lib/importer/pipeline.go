package importer

import (
	"context"

	"log/slog"

	"github.com/semihsari152/coregame/lib/catalog"
	"github.com/semihsari152/coregame/lib/store"
	"github.com/semihsari152/coregame/models"
)

// stepPolicy is a step's failure policy. Fatal steps short-circuit the
// pipeline; soft steps log and continue, so degraded enrichment never
// aborts an import.
type stepPolicy int

const (
	fatal stepPolicy = iota
	soft
)

type step struct {
	name   string
	policy stepPolicy
	run    func(*pipelineRun) error
}

// pipelineRun carries one import's working state through the steps.
type pipelineRun struct {
	ctx     context.Context
	tx      *store.Tx
	record  *catalog.Record
	game    *models.Game
	refresh bool
	logger  *slog.Logger
}

// execute runs the steps in order. Between steps it honors
// cancellation; cancellation is fatal regardless of step policy since
// the caller has given up on the import.
func (r *pipelineRun) execute(steps []step) error {
	for _, s := range steps {
		if err := r.ctx.Err(); err != nil {
			return err
		}

		err := s.run(r)
		if err == nil {
			continue
		}
		if s.policy == fatal {
			r.logger.Error("Import step failed", slog.String("step", s.name), slog.Any("error", err))
			return err
		}
		r.logger.Warn("Import step degraded, continuing",
			slog.String("step", s.name),
			slog.Any("error", err))
	}
	return nil
}
