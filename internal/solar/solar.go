// Package solar derives the display color temperature from the sun's
// elevation, warming the screen as the sun sets.
package solar

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sixdouglas/suncalc"
)

// Tracker maps wall-clock time to a color temperature for a fixed
// location: the day temperature at or above the day elevation, the
// night temperature at or below the night elevation, linear in between.
type Tracker struct {
	lat, lon float64

	dayKelvin   int
	nightKelvin int

	dayElevation   float64 // degrees
	nightElevation float64 // degrees
}

// NewTracker creates a tracker. nightElevation must be below
// dayElevation (validated by config).
func NewTracker(lat, lon float64, dayKelvin, nightKelvin int, dayElevation, nightElevation float64) *Tracker {
	return &Tracker{
		lat:            lat,
		lon:            lon,
		dayKelvin:      dayKelvin,
		nightKelvin:    nightKelvin,
		dayElevation:   dayElevation,
		nightElevation: nightElevation,
	}
}

// TemperatureAt returns the color temperature for the given instant.
func (t *Tracker) TemperatureAt(at time.Time) int {
	pos := suncalc.GetPosition(at, t.lat, t.lon)
	elevation := pos.Altitude * 180.0 / math.Pi
	return t.kelvinForElevation(elevation)
}

// kelvinForElevation interpolates between night and day temperatures
// over the twilight elevation band.
func (t *Tracker) kelvinForElevation(elevation float64) int {
	switch {
	case elevation >= t.dayElevation:
		return t.dayKelvin
	case elevation <= t.nightElevation:
		return t.nightKelvin
	}

	frac := (elevation - t.nightElevation) / (t.dayElevation - t.nightElevation)
	kelvin := float64(t.nightKelvin) + frac*float64(t.dayKelvin-t.nightKelvin)
	return int(math.Round(kelvin))
}

// Display is the sink the service drives.
type Display interface {
	SetTemperature(kelvin int) error
	Supported() bool
}

// Service periodically re-applies the sun-derived temperature.
type Service struct {
	tracker  *Tracker
	display  Display
	interval time.Duration

	done chan struct{}
}

// NewService creates the periodic applier.
func NewService(tracker *Tracker, display Display, interval time.Duration) *Service {
	return &Service{
		tracker:  tracker,
		display:  display,
		interval: interval,
	}
}

// Run starts the apply loop. It returns immediately and stops when the
// context is cancelled. The first apply happens right away.
func (s *Service) Run(ctx context.Context) {
	if !s.display.Supported() {
		log.Warn().Msg("Gamma control unsupported, solar temperature disabled")
		return
	}

	s.done = make(chan struct{})
	go func() {
		defer close(s.done)

		s.apply()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Debug().Msg("Solar service stopping")
				return
			case <-ticker.C:
				s.apply()
			}
		}
	}()
}

func (s *Service) apply() {
	kelvin := s.tracker.TemperatureAt(time.Now())
	if err := s.display.SetTemperature(kelvin); err != nil {
		log.Warn().Err(err).Int("kelvin", kelvin).Msg("Solar temperature apply failed")
		return
	}
	log.Debug().Int("kelvin", kelvin).Msg("Solar temperature applied")
}

// Wait blocks until the loop has exited (after context cancellation).
func (s *Service) Wait() {
	if s.done != nil {
		<-s.done
	}
}
