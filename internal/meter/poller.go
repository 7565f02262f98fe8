package meter

import (
	"context"
	"time"

	"codeberg.org/mutker/rigsnr/internal/logger"
)

// Source yields one raw strength reading per call.
type Source interface {
	Strength(ctx context.Context) (int, error)
}

// Renderer displays the current metrics.
type Renderer interface {
	Render(m Metrics) error
}

// Poller samples the source at a fixed interval and feeds the tracker.
// Failed reads are retried after the same interval, forever.
type Poller struct {
	source        Source
	tracker       *Tracker
	renderer      Renderer
	interval      time.Duration
	logger        logger.Logger
	renderFailing bool
}

func NewPoller(source Source, tracker *Tracker, renderer Renderer, interval time.Duration, log logger.Logger) *Poller {
	return &Poller{
		source:   source,
		tracker:  tracker,
		renderer: renderer,
		interval: interval,
		logger:   log,
	}
}

// Run polls until ctx is cancelled. Every iteration, successful or not,
// is followed by a full interval of sleep. It finishes the sample in
// flight before returning.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Debug().Dur("interval", p.interval).Msg("Polling started")

	for {
		if ctx.Err() != nil {
			p.logger.Debug().Msg("Polling stopped")
			return nil
		}

		p.poll(ctx)

		if !wait(ctx, p.interval) {
			p.logger.Debug().Msg("Polling stopped")
			return nil
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	raw, err := p.source.Strength(ctx)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Sample read failed, retrying")
		return
	}

	metrics := p.tracker.Observe(raw)

	if err := p.renderer.Render(metrics); err != nil {
		if !p.renderFailing {
			p.logger.Warn().Err(err).Msg("Failed to render readout")
		}
		p.renderFailing = true

		return
	}
	p.renderFailing = false
}
