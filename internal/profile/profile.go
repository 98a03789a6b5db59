// Package profile applies named (temperature, brightness) pairs to the
// display subsystem.
package profile

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nvezhov/eyeguardd/internal/eventbus"
)

// ErrUnknownProfile is returned when the requested profile name is not
// configured.
var ErrUnknownProfile = errors.New("unknown profile")

// Profile is a named pair of color temperature and backlight brightness
// applied together.
type Profile struct {
	Temperature int `json:"temperature"`
	Brightness  int `json:"brightness"`
}

// Display sets the color temperature of the screen.
type Display interface {
	SetTemperature(kelvin int) error
	Supported() bool
}

// Backlight sets the backlight level.
type Backlight interface {
	Set(target int, smooth bool, duration time.Duration) error
	Supported() bool
}

// BiasLight mirrors the applied profile to ambient lighting. Optional.
type BiasLight interface {
	Sync(temperature, brightness int) error
}

// Applier resolves profile names and fans one profile out to the gamma
// engine, the backlight and (best effort) the bias light.
type Applier struct {
	profiles  map[string]Profile
	display   Display
	backlight Backlight
	bias      BiasLight // may be nil

	smooth     bool
	transition time.Duration

	bus *eventbus.Bus // may be nil
}

// NewApplier creates an applier. bias and bus may be nil.
func NewApplier(
	profiles map[string]Profile,
	display Display,
	backlight Backlight,
	bias BiasLight,
	smooth bool,
	transition time.Duration,
	bus *eventbus.Bus,
) *Applier {
	return &Applier{
		profiles:   profiles,
		display:    display,
		backlight:  backlight,
		bias:       bias,
		smooth:     smooth,
		transition: transition,
		bus:        bus,
	}
}

// Names returns the configured profile names, sorted.
func (a *Applier) Names() []string {
	names := make([]string, 0, len(a.profiles))
	for name := range a.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a profile by name.
func (a *Applier) Get(name string) (Profile, bool) {
	p, ok := a.profiles[name]
	return p, ok
}

// Apply looks up and applies a named profile.
func (a *Applier) Apply(name string) error {
	p, ok := a.profiles[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}

	log.Info().
		Str("profile", name).
		Int("temperature", p.Temperature).
		Int("brightness", p.Brightness).
		Msg("Applying profile")

	err := a.ApplySettings(p)

	if a.bus != nil {
		a.bus.Publish(eventbus.Event{
			Type: eventbus.EventTypeProfileApplied,
			Data: map[string]interface{}{
				"profile":     name,
				"temperature": p.Temperature,
				"brightness":  p.Brightness,
				"ok":          err == nil,
			},
		})
	}
	return err
}

// ApplySettings applies a raw temperature/brightness pair. Temperature
// and brightness are applied independently; a failure on one does not
// block the other, and previously applied state is left untouched. The
// bias light is synchronized best effort: its failure is logged, never
// reported.
func (a *Applier) ApplySettings(p Profile) error {
	var errs []error

	if a.display.Supported() {
		if err := a.display.SetTemperature(p.Temperature); err != nil {
			errs = append(errs, err)
		}
	} else {
		log.Debug().Msg("Gamma control unsupported, skipping temperature")
	}

	if a.backlight.Supported() {
		if err := a.backlight.Set(p.Brightness, a.smooth, a.transition); err != nil {
			errs = append(errs, err)
		}
	} else {
		log.Debug().Msg("Backlight control unsupported, skipping brightness")
	}

	if a.bias != nil {
		if err := a.bias.Sync(p.Temperature, p.Brightness); err != nil {
			log.Warn().Err(err).Msg("Bias light sync failed")
		}
	}

	return errors.Join(errs...)
}
