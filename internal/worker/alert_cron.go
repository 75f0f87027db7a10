package worker

// alert_cron.go
// Periodic alert sweep. Runs on a cron schedule so low-stock and expiry
// alerts appear without waiting for an inventory write to trigger them.

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper is the slice of the alert service the scheduler needs.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// StartAlertScheduler registers the sweep on the given cron spec and starts
// the scheduler. The returned cron should be stopped on shutdown.
func StartAlertScheduler(ctx context.Context, sweeper Sweeper, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		created, err := sweeper.Sweep(ctx)
		if err != nil {
			log.Error().Err(err).Msg("alert sweep failed")
			return
		}
		if created > 0 {
			log.Info().Int("created", created).Msg("alert sweep completed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("schedule", spec).Msg("alert sweep scheduler started")
	return c, nil
}
