package sensor

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"brake-hud.klederson.com/internal/config"
)

// MockControllers are the controller names offered in demo mode.
var MockControllers = []string{
	"Cockpit",
	"Passenger Seat",
	"Remote Control",
}

// Demo drive phases, in seconds.
const (
	demoCruise = 4.0
	demoStill  = 2.0
	demoAccel  = 4.0 // m/s²
)

// MockSensor simulates a vehicle that cruises, brakes to a stop, waits and
// accelerates back, over and over.
type MockSensor struct {
	mu     sync.Mutex
	name   string
	start  time.Time
	now    func() time.Time
	noise  float64
	rng    *rand.Rand
	cruise float64
	decel  float64
}

// NewMockSensor creates a demo sensor with the default drive profile.
func NewMockSensor(name string) *MockSensor {
	return &MockSensor{
		name:   name,
		start:  time.Now(),
		now:    time.Now,
		noise:  0.05,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cruise: config.DemoCruiseSpeed,
		decel:  config.DemoBrakeDecel,
	}
}

func (s *MockSensor) Name() string { return s.name }

// CurrentSpeed returns the profile speed at the current time plus a little
// noise.
func (s *MockSensor) CurrentSpeed() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.SpeedAt(s.now().Sub(s.start).Seconds())
	if s.noise > 0 && v > 0 {
		v += (s.rng.Float64() - 0.5) * 2 * s.noise
	}
	return math.Max(0, v), nil
}

// SpeedAt returns the noiseless profile speed t seconds into the drive.
func (s *MockSensor) SpeedAt(t float64) float64 {
	braking := s.cruise / s.decel
	accel := s.cruise / demoAccel
	cycle := demoCruise + braking + demoStill + accel

	t = math.Mod(t, cycle)
	switch {
	case t < demoCruise:
		return s.cruise
	case t < demoCruise+braking:
		return s.cruise - s.decel*(t-demoCruise)
	case t < demoCruise+braking+demoStill:
		return 0
	default:
		return demoAccel * (t - demoCruise - braking - demoStill)
	}
}
