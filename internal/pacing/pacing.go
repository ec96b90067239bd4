// Package pacing enforces the one-request-per-interval budget of the
// upstream search API, with peak and off-peak intervals selected by
// time of day in the reference zone.
package pacing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/sportsbettor/ingest/internal/clock"
)

// Windows describes the tick intervals and the peak window boundaries,
// expressed as local hours in the reference zone.
type Windows struct {
	PeakStartHour int
	PeakEndHour   int
	Peak          time.Duration
	OffPeak       time.Duration
}

// IntervalFor selects the tick interval for the given instant. It is a pure
// function of time and configuration, evaluated fresh each tick. A window
// whose start equals its end has no peak hours; a window whose start is
// after its end wraps past midnight.
func IntervalFor(now time.Time, loc *time.Location, w Windows) time.Duration {
	h := now.In(loc).Hour()
	switch {
	case w.PeakStartHour == w.PeakEndHour:
		return w.OffPeak
	case w.PeakStartHour < w.PeakEndHour:
		if h >= w.PeakStartHour && h < w.PeakEndHour {
			return w.Peak
		}
	default:
		if h >= w.PeakStartHour || h < w.PeakEndHour {
			return w.Peak
		}
	}
	return w.OffPeak
}

// Pacer blocks each tick until the current interval has elapsed since the
// previous one. The first wait admits the tick immediately.
type Pacer struct {
	limiter *rate.Limiter
	loc     *time.Location
	windows Windows
	clk     clock.Clock
}

// New constructs a Pacer for the given windows and reference zone.
func New(windows Windows, loc *time.Location, clk clock.Clock) (*Pacer, error) {
	if windows.Peak <= 0 || windows.OffPeak <= 0 {
		return nil, fmt.Errorf("pacing intervals must be > 0")
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(windows.OffPeak), 1),
		loc:     loc,
		windows: windows,
		clk:     clk,
	}, nil
}

// Wait blocks until the next tick is due, re-evaluating the peak window at
// every call so interval changes take effect on the following tick.
func (p *Pacer) Wait(ctx context.Context) error {
	interval := IntervalFor(p.clk.Now(), p.loc, p.windows)
	p.limiter.SetLimit(rate.Every(interval))
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacing wait: %w", err)
	}
	return nil
}
