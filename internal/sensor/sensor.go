// Package sensor supplies the speed measurement the control loop samples
// every tick, from a serial doppler radar, a Bluetooth cycling speed sensor
// or a simulated drive.
package sensor

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrNoReading = errors.New("no speed reading yet")
	ErrStale     = errors.New("speed reading is stale")
)

// Sensor reports the current speed in m/s.
type Sensor interface {
	Name() string
	CurrentSpeed() (float64, error)
}

// latest is the most recent value published by a sensor's reader goroutine.
type latest struct {
	mu         sync.RWMutex
	value      float64
	at         time.Time
	ok         bool
	staleAfter time.Duration
	now        func() time.Time
}

func newLatest(staleAfter time.Duration) *latest {
	return &latest{staleAfter: staleAfter, now: time.Now}
}

func (l *latest) set(v float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = v
	l.at = l.now()
	l.ok = true
}

func (l *latest) get() (float64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.ok {
		return 0, ErrNoReading
	}
	if l.staleAfter > 0 {
		if age := l.now().Sub(l.at); age > l.staleAfter {
			return 0, fmt.Errorf("%w: last reading %v ago", ErrStale, age.Round(time.Millisecond))
		}
	}
	return l.value, nil
}
