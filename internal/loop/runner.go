package loop

import (
	"context"

	"brake-hud.klederson.com/internal/monitoring"
	"brake-hud.klederson.com/internal/timeutil"
)

// Run ticks l every tick period of clock until ctx is cancelled. Sensor
// failures skip the tick. onTick, when non-nil, receives every completed
// report.
func Run(ctx context.Context, l *Loop, clock timeutil.Clock, onTick func(Report)) error {
	ticker := clock.NewTicker(l.TickPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			rep, err := l.Tick(ctx)
			if err != nil {
				monitoring.Logf("tick skipped: %v", err)
				continue
			}
			if onTick != nil {
				onTick(rep)
			}
		}
	}
}
