// Package estimator projects when and where a decelerating vehicle will come
// to rest, from the recent speed history.
package estimator

import (
	"errors"
	"fmt"
	"math"

	"brake-hud.klederson.com/internal/history"
)

// Epsilon is the deceleration (m/s²) at or below which the vehicle is treated
// as not slowing down. Projections are zero in that state.
const Epsilon = 0.1

var ErrInvalidArgument = errors.New("invalid estimator argument")

// Projection is the result of one estimate.
type Projection struct {
	Velocity       float64 // Head sample, m/s
	Deceleration   float64 // m/s², positive while slowing
	SecondsToRest  float64 // Rounded to one decimal
	DistanceToRest float64 // Metres
}

// Slowing reports whether the projection was extrapolated rather than
// clamped to zero.
func (p Projection) Slowing() bool {
	return p.Deceleration > Epsilon
}

// Estimate compares the head of h with the sample recencyOffset ticks older
// and projects a constant-deceleration stop from the current velocity.
//
// tickSeconds is the time between consecutive samples; its reciprocal turns
// the per-sample difference into a per-second rate.
func Estimate(h *history.Rolling[float64], recencyOffset int, tickSeconds float64) (Projection, error) {
	if recencyOffset == 0 {
		return Projection{}, fmt.Errorf("%w: recency offset must be non-zero", ErrInvalidArgument)
	}
	if !(tickSeconds > 0) {
		return Projection{}, fmt.Errorf("%w: tick period %vs", ErrInvalidArgument, tickSeconds)
	}

	older, err := h.At(recencyOffset)
	if err != nil {
		return Projection{}, fmt.Errorf("recency offset %d: %w", recencyOffset, err)
	}

	v := h.Head()
	perSecond := 1 / tickSeconds
	rate := -((v - older) * perSecond / float64(recencyOffset))

	p := Projection{
		Velocity:     v,
		Deceleration: rate,
	}
	if rate <= Epsilon {
		return p, nil
	}

	p.SecondsToRest = roundTenth(v / rate)
	p.DistanceToRest = StoppingDistance(v, rate, p.SecondsToRest)
	return p, nil
}

// StoppingDistance is the distance covered in t seconds starting at v and
// slowing at a constant decel: v·t − ½·decel·t².
func StoppingDistance(v, decel, t float64) float64 {
	return t*v - 0.5*decel*t*t
}

// roundTenth rounds half-to-even at one decimal place.
func roundTenth(x float64) float64 {
	return math.RoundToEven(x*10) / 10
}
