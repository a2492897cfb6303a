// Package maintenance runs periodic housekeeping jobs.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/quill-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const pruneTimeout = time.Minute

// Pruner deletes activity events older than the retention window on a cron schedule.
type Pruner struct {
	events    services.EventServiceProvider
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
}

// NewPruner creates a pruner running on schedule, a standard cron expression or descriptor.
func NewPruner(events services.EventServiceProvider, retention time.Duration, schedule string) (*Pruner, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", retention)
	}
	p := &Pruner{
		events:    events,
		retention: retention,
		cron:      cron.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	if _, err := p.cron.AddFunc(schedule, p.run); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	return p, nil
}

// Start runs one prune immediately and then starts the schedule.
func (p *Pruner) Start() {
	log.Info().Dur("retention", p.retention).Msg("Starting event pruner")
	p.run()
	p.cron.Start()
}

// Stop halts the schedule and waits for a running prune to finish or ctx to expire.
func (p *Pruner) Stop(ctx context.Context) {
	select {
	case <-p.cron.Stop().Done():
		log.Info().Msg("Stopped event pruner")
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Msg("Event pruner did not stop in time")
	}
}

// Prune deletes events created before now minus the retention window.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)
	removed, err := p.events.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return removed, nil
}

func (p *Pruner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	removed, err := p.Prune(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Event pruning failed")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Pruned old events")
	}
}
