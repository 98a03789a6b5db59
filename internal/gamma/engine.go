package gamma

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrUnsupported is returned when no gamma-capable display device is
// available. All engine operations fail with it until the process exits.
var ErrUnsupported = errors.New("gamma control not supported")

// Device applies a gamma ramp to the display subsystem. Applying mutates
// process-wide display state: the ramp stays in effect until overwritten
// or the session ends.
type Device interface {
	ApplyRamp(ramp Ramp) error
	Close() error
}

// Engine owns the display handle for gamma adjustment. The hosting
// application constructs it once and threads it through every call, so
// lifetime and reset-on-exit stay explicit.
type Engine struct {
	dev Device
}

// NewEngine creates an engine over the given device. A nil device means
// the capability probe failed at startup; every call then returns
// ErrUnsupported.
func NewEngine(dev Device) *Engine {
	return &Engine{dev: dev}
}

// Supported reports whether a gamma-capable device is attached.
func (e *Engine) Supported() bool {
	return e.dev != nil
}

// SetTemperature computes the ramp for the given color temperature and
// applies it. Failures are reported, never retried.
func (e *Engine) SetTemperature(kelvin int) error {
	if e.dev == nil {
		return ErrUnsupported
	}

	ramp := ComputeRamp(kelvin)
	if err := e.dev.ApplyRamp(ramp); err != nil {
		return fmt.Errorf("apply gamma ramp for %dK: %w", kelvin, err)
	}

	log.Debug().Int("kelvin", kelvin).Msg("Gamma ramp applied")
	return nil
}

// Apply sends a precomputed ramp to the display.
func (e *Engine) Apply(ramp Ramp) error {
	if e.dev == nil {
		return ErrUnsupported
	}
	return e.dev.ApplyRamp(ramp)
}

// Reset applies the linear identity ramp, restoring the default display
// calibration. There is no implicit undo; callers invoke this explicitly
// (typically at shutdown).
func (e *Engine) Reset() error {
	if e.dev == nil {
		return ErrUnsupported
	}

	if err := e.dev.ApplyRamp(LinearRamp()); err != nil {
		return fmt.Errorf("reset gamma ramp: %w", err)
	}

	log.Info().Msg("Gamma ramp reset to linear default")
	return nil
}

// Close releases the underlying display handle.
func (e *Engine) Close() error {
	if e.dev == nil {
		return nil
	}
	return e.dev.Close()
}
