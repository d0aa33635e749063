package loop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"brake-hud.klederson.com/internal/config"
	"brake-hud.klederson.com/internal/display"
	"brake-hud.klederson.com/internal/estimator"
	"brake-hud.klederson.com/internal/history"
	"brake-hud.klederson.com/internal/route"
	"brake-hud.klederson.com/internal/timeutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSensorDown = errors.New("sensor down")

// scriptedSensor replays speeds in order and repeats the last one.
type scriptedSensor struct {
	mu     sync.Mutex
	speeds []float64
	fail   bool
	calls  int
}

func (s *scriptedSensor) CurrentSpeed() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return 0, errSensorDown
	}
	v := s.speeds[0]
	if len(s.speeds) > 1 {
		s.speeds = s.speeds[1:]
	}
	return v, nil
}

func (s *scriptedSensor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *scriptedSensor) setFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

func newDisplays(t *testing.T) (*display.Registry, *display.Panel, *display.Group, []route.Route) {
	t.Helper()
	reg := display.NewRegistry()
	lcd := reg.AddPanel("LCD1")
	group := reg.AddGroup("LCDGroup", 2)

	set := route.Parse("LCD1:l;LCDGroup:0:s", reg)
	require.Empty(t, set.Failures)
	require.Len(t, set.Routes, 2)
	return reg, lcd, group, set.Routes
}

func tickN(t *testing.T, l *Loop, n int) Report {
	t.Helper()
	var rep Report
	for range n {
		var err error
		rep, err = l.Tick(context.Background())
		require.NoError(t, err)
	}
	return rep
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{3.3, "3.3"},
		{66.66000000000001, "66.66"},
		{66.65999999999999, "66.66"},
		{12.000000000000002, "12"},
		{0.0001, "0.0001"},
		{1234.5678, "1234.5678"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in), "FormatValue(%v)", tt.in)
	}
}

func TestTick_SampleSpacingSetsRate(t *testing.T) {
	// 2 m/s lost per sample is 12 m/s² at six samples a second and
	// 2 m/s² at one.
	tests := []struct {
		name   string
		period time.Duration
		decel  float64
	}{
		{"default", config.DefaultTickPeriod, 12},
		{"sixth of a second", time.Second / 6, 12},
		{"one second", time.Second, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&scriptedSensor{speeds: []float64{42, 40}}, nil, tt.period)
			require.NoError(t, err)
			rep := tickN(t, l, 2)
			assert.Equal(t, tt.decel, rep.Projection.Deceleration)
		})
	}
}

func TestFormat(t *testing.T) {
	compact, verbose := Format(estimator.Projection{SecondsToRest: 3.3, DistanceToRest: 66.66})
	assert.Equal(t, "T-3.3\nM-66.66", compact)
	assert.Equal(t, "Seconds Until Standstill: 3.3\nDistance to Stop: 66.66", verbose)

	compact, verbose = Format(estimator.Projection{})
	assert.Equal(t, "T-0\nM-0", compact)
	assert.Equal(t, "Seconds Until Standstill: 0\nDistance to Stop: 0", verbose)
}

func TestTick_BrakingWritesEveryRoute(t *testing.T) {
	_, lcd, group, routes := newDisplays(t)
	s := &scriptedSensor{speeds: []float64{50, 48, 46, 44, 42, 40}}

	l, err := New(s, routes, config.DefaultTickPeriod)
	require.NoError(t, err)

	rep := tickN(t, l, 6)
	require.True(t, rep.Rendered)
	assert.Equal(t, 6, rep.Tick)
	assert.Equal(t, 2, rep.Written)
	assert.Empty(t, rep.Failures)
	assert.NoError(t, rep.Err())

	assert.Equal(t, 12.0, rep.Projection.Deceleration)
	assert.Equal(t, 3.3, rep.Projection.SecondsToRest)
	assert.InDelta(t, 66.66, rep.Projection.DistanceToRest, 1e-9)

	assert.Equal(t, "T-3.3\nM-66.66", rep.Compact)
	assert.Equal(t, "Seconds Until Standstill: 3.3\nDistance to Stop: 66.66", lcd.State().Text)

	first, ok := group.Surface(0)
	require.True(t, ok)
	assert.Equal(t, "T-3.3\nM-66.66", first.State().Text)

	second, ok := group.Surface(1)
	require.True(t, ok)
	assert.Empty(t, second.State().Text)

	want := []float64{40, 42, 44, 46, 48, 50}
	if diff := cmp.Diff(want, l.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, rep, l.Last())
}

func TestTick_ConstantSpeedRendersZeros(t *testing.T) {
	_, lcd, _, routes := newDisplays(t)
	s := &scriptedSensor{speeds: []float64{30}}

	l, err := New(s, routes, time.Second/6)
	require.NoError(t, err)

	rep := tickN(t, l, 8)
	require.True(t, rep.Rendered)
	assert.Equal(t, "T-0\nM-0", rep.Compact)
	assert.Equal(t, "Seconds Until Standstill: 0\nDistance to Stop: 0", lcd.State().Text)
}

func TestTick_SensorErrorAbortsTick(t *testing.T) {
	_, lcd, _, routes := newDisplays(t)
	s := &scriptedSensor{speeds: []float64{10}, fail: true}

	l, err := New(s, routes, time.Second/6)
	require.NoError(t, err)

	_, err = l.Tick(context.Background())
	require.ErrorIs(t, err, errSensorDown)
	assert.Zero(t, l.Ticks())
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, l.History())
	assert.Zero(t, lcd.State().Writes)

	s.setFail(false)
	rep, err := l.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Tick)
}

func TestTick_WriteFailureIsIsolated(t *testing.T) {
	_, lcd, group, routes := newDisplays(t)
	require.True(t, lcd.ToggleOffline())
	s := &scriptedSensor{speeds: []float64{20, 18}}

	l, err := New(s, routes, time.Second/6)
	require.NoError(t, err)

	rep := tickN(t, l, 2)
	require.True(t, rep.Rendered)
	assert.Equal(t, 1, rep.Written)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "LCD1:l", rep.Failures[0].Entry)
	assert.ErrorIs(t, rep.Err(), display.ErrWrite)

	first, _ := group.Surface(0)
	assert.Equal(t, rep.Compact, first.State().Text)
}

func TestTick_EstimateFailureSkipsRendering(t *testing.T) {
	_, lcd, _, routes := newDisplays(t)
	s := &scriptedSensor{speeds: []float64{12}}

	l, err := New(s, routes, time.Second/6)
	require.NoError(t, err)
	l.recency = 10

	rep, err := l.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, rep.Rendered)
	assert.ErrorIs(t, rep.EstimateErr, history.ErrIndexOutOfRange)
	assert.Zero(t, lcd.State().Writes)
	assert.Equal(t, 12.0, l.History()[0])
}

func TestTick_CancelledContext(t *testing.T) {
	s := &scriptedSensor{speeds: []float64{12}}
	l, err := New(s, nil, time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.Tick(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.callCount())
}

func TestNew_RejectsBadTickPeriod(t *testing.T) {
	_, err := New(&scriptedSensor{speeds: []float64{0}}, nil, 0)
	assert.Error(t, err)
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	_, _, _, routes := newDisplays(t)
	s := &scriptedSensor{speeds: []float64{20, 18, 16}}
	l, err := New(s, routes, time.Second/6)
	require.NoError(t, err)

	clock := timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	reports := make(chan Report, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, l, clock, func(r Report) { reports <- r })
	}()

	require.Eventually(t, func() bool { return len(clock.Tickers()) == 1 }, time.Second, time.Millisecond)
	ticker := clock.Tickers()[0]

	ticker.Trigger(clock.Now())
	assert.Equal(t, 1, (<-reports).Tick)

	s.setFail(true)
	ticker.Trigger(clock.Now())
	require.Eventually(t, func() bool { return s.callCount() == 2 }, time.Second, time.Millisecond)
	s.setFail(false)
	ticker.Trigger(clock.Now())

	rep := <-reports
	assert.Equal(t, 2, rep.Tick)
	assert.True(t, rep.Rendered)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, ticker.Stopped())
}
