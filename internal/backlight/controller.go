// Package backlight adjusts the display backlight level, optionally
// smoothing changes over a short stepped transition.
package backlight

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrUnsupported is returned when no backlight device was found at
	// startup. All operations no-op and report failure.
	ErrUnsupported = errors.New("backlight control not supported")

	// ErrUnavailable is returned when the current level cannot be read.
	ErrUnavailable = errors.New("backlight level unavailable")
)

// transitionSteps is the fixed number of intermediate steps a smooth
// transition is divided into.
const transitionSteps = 10

// Device reads and writes the raw backlight level as a 0-100 percent.
type Device interface {
	Level() (int, error)
	SetLevel(percent int) error
}

// Controller drives a backlight device. Calls are synchronous; a smooth
// Set sleeps between steps and blocks its caller for the full duration.
type Controller struct {
	dev   Device
	sleep func(time.Duration)
}

// New creates a controller over the given device. A nil device means the
// startup probe failed; every operation then reports failure.
func New(dev Device) *Controller {
	return &Controller{dev: dev, sleep: time.Sleep}
}

// Supported reports whether a backlight device is attached.
func (c *Controller) Supported() bool {
	return c.dev != nil
}

// Level returns the current backlight level in percent.
func (c *Controller) Level() (int, error) {
	if c.dev == nil {
		return 0, ErrUnsupported
	}

	level, err := c.dev.Level()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read backlight level")
		return 0, ErrUnavailable
	}
	return level, nil
}

// Set changes the backlight to target percent, clamped to [0, 100].
// When smooth is requested and the current level is readable and differs
// from the target, the change runs as 10 intermediate steps with an
// inter-step delay of duration/10, followed by one final apply of the
// exact target. A failure mid-transition aborts the remaining steps.
func (c *Controller) Set(target int, smooth bool, duration time.Duration) error {
	if c.dev == nil {
		return ErrUnsupported
	}

	target = clamp(target, 0, 100)

	current, err := c.Level()
	if smooth && err == nil && current != target {
		return c.transition(current, target, duration)
	}

	if err := c.dev.SetLevel(target); err != nil {
		return fmt.Errorf("set backlight to %d%%: %w", target, err)
	}
	log.Debug().Int("percent", target).Msg("Backlight set")
	return nil
}

func (c *Controller) transition(current, target int, duration time.Duration) error {
	log.Debug().
		Int("from", current).
		Int("to", target).
		Dur("duration", duration).
		Msg("Smooth backlight transition")

	delay := duration / transitionSteps
	step := float64(target-current) / transitionSteps

	for k := 1; k <= transitionSteps; k++ {
		level := int(math.Round(float64(current) + step*float64(k)))
		if err := c.dev.SetLevel(level); err != nil {
			return fmt.Errorf("backlight transition step %d: %w", k, err)
		}
		c.sleep(delay)
	}

	// Final exact apply guards against rounding drift.
	if err := c.dev.SetLevel(target); err != nil {
		return fmt.Errorf("set backlight to %d%%: %w", target, err)
	}
	return nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
