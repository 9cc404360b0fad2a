// Package schedule re-runs the analysis batch on a cron expression for
// unattended collection.
package schedule

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler wraps a single cron entry that re-runs the batch.
type Scheduler struct {
	cron *cron.Cron
}

// New registers run under the given cron spec (six fields, seconds first).
func New(spec string, run func()) (*Scheduler, error) {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(spec, run); err != nil {
		return nil, fmt.Errorf("register schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Info().Msg("scheduler stopped")
}
