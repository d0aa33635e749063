// Package loop runs one estimation pass per tick: sample the sensor, update
// the history, project the stop and write the result to every route.
package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brake-hud.klederson.com/internal/config"
	"brake-hud.klederson.com/internal/estimator"
	"brake-hud.klederson.com/internal/history"
	"brake-hud.klederson.com/internal/monitoring"
	"brake-hud.klederson.com/internal/route"
)

// Sensor supplies the current speed in m/s.
type Sensor interface {
	CurrentSpeed() (float64, error)
}

// WriteFailure is a route whose surface rejected this tick's text.
type WriteFailure struct {
	Entry string
	Err   error
}

// Report describes one tick.
type Report struct {
	Tick        int
	Projection  estimator.Projection
	Compact     string
	Verbose     string
	Rendered    bool  // False when the estimate failed and nothing was written
	EstimateErr error // Set when rendering was skipped
	Written     int
	Failures    []WriteFailure
}

// Err joins the write failures of the tick, or returns nil.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("display %q: %w", f.Entry, f.Err))
	}
	return errors.Join(errs...)
}

// Loop owns the speed history and the active routes. It is not safe for
// concurrent use; ticks must not overlap.
type Loop struct {
	sensor     Sensor
	history    *history.Rolling[float64]
	routes     []route.Route
	tickPeriod time.Duration
	tickSecs   float64
	recency    int
	ticks      int
	last       Report
}

// New creates a loop with a zero-filled history of config.HistoryCapacity
// samples.
func New(s Sensor, routes []route.Route, tickPeriod time.Duration) (*Loop, error) {
	if tickPeriod <= 0 {
		return nil, fmt.Errorf("tick period must be positive, got %v", tickPeriod)
	}
	h, err := history.New[float64](config.HistoryCapacity)
	if err != nil {
		return nil, err
	}
	return &Loop{
		sensor:     s,
		history:    h,
		routes:     routes,
		tickPeriod: tickPeriod,
		tickSecs:   config.TickSeconds(tickPeriod),
		recency:    config.RecencyOffset,
	}, nil
}

// Tick runs one pass. A sensor failure aborts the tick and is returned;
// the history is left untouched. Estimate and write failures are recorded in
// the report and logged, and never stop the loop.
func (l *Loop) Tick(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	speed, err := l.sensor.CurrentSpeed()
	if err != nil {
		return Report{}, fmt.Errorf("reading speed: %w", err)
	}

	l.ticks++
	l.history.Push(speed)
	rep := Report{Tick: l.ticks}

	p, err := estimator.Estimate(l.history, l.recency, l.tickSecs)
	if err != nil {
		monitoring.Logf("tick %d: estimate failed, skipping render: %v", l.ticks, err)
		rep.EstimateErr = err
		l.last = rep
		return rep, nil
	}

	monitoring.Logf("Delta V per second: %s", FormatValue(p.Deceleration))
	monitoring.Logf("Seconds Until Standstill: %s", FormatValue(p.SecondsToRest))
	monitoring.Logf("Distance to Stop: %s", FormatValue(p.DistanceToRest))

	rep.Projection = p
	rep.Compact, rep.Verbose = Format(p)
	rep.Rendered = true

	for _, r := range l.routes {
		if err := r.Write(rep.Compact, rep.Verbose); err != nil {
			monitoring.Logf("display %q: write failed: %v", r.Entry(), err)
			rep.Failures = append(rep.Failures, WriteFailure{Entry: r.Entry(), Err: err})
			continue
		}
		rep.Written++
	}

	l.last = rep
	return rep, nil
}

// History returns the retained speeds, newest first.
func (l *Loop) History() []float64 {
	return l.history.Values()
}

// Routes returns the active routes in configuration order.
func (l *Loop) Routes() []route.Route {
	return l.routes
}

// Last returns the report of the most recent completed tick.
func (l *Loop) Last() Report {
	return l.last
}

// Ticks returns the number of ticks that read the sensor successfully.
func (l *Loop) Ticks() int {
	return l.ticks
}

// TickPeriod returns the interval between ticks.
func (l *Loop) TickPeriod() time.Duration {
	return l.tickPeriod
}
