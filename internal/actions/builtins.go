package actions

import (
	"context"
	"fmt"
	"time"
)

// ProfileApplier applies named display/backlight profiles.
type ProfileApplier interface {
	Apply(name string) error
	Names() []string
}

// ReminderControl starts and stops the work/rest cycle.
type ReminderControl interface {
	Start() error
	Stop()
	SetDurations(work, rest time.Duration) error
}

// Display adjusts the screen color temperature.
type Display interface {
	SetTemperature(kelvin int) error
	Reset() error
	Supported() bool
}

// Backlight adjusts the screen brightness.
type Backlight interface {
	Set(target int, smooth bool, duration time.Duration) error
	Supported() bool
}

// Deps carries the services the builtin actions operate on. Nil
// fields disable the corresponding actions.
type Deps struct {
	Profiles           ProfileApplier
	Reminder           ReminderControl
	Display            Display
	Backlight          Backlight
	SmoothTransition   bool
	TransitionDuration time.Duration
}

// RegisterBuiltins wires the standard action set into the registry.
func RegisterBuiltins(r *Registry, deps Deps) error {
	if deps.Profiles != nil {
		err := r.RegisterSimple("apply_profile", func(_ context.Context, args map[string]any) error {
			name, err := stringArg(args, "name")
			if err != nil {
				return err
			}
			return deps.Profiles.Apply(name)
		})
		if err != nil {
			return err
		}
	}

	if deps.Reminder != nil {
		if err := r.RegisterSimple("reminder_start", func(_ context.Context, _ map[string]any) error {
			return deps.Reminder.Start()
		}); err != nil {
			return err
		}
		if err := r.RegisterSimple("reminder_stop", func(_ context.Context, _ map[string]any) error {
			deps.Reminder.Stop()
			return nil
		}); err != nil {
			return err
		}
		err := r.RegisterSimple("reminder_set_durations", func(_ context.Context, args map[string]any) error {
			workHours, err := intArg(args, "work_hours")
			if err != nil {
				return err
			}
			restMinutes, err := intArg(args, "rest_minutes")
			if err != nil {
				return err
			}
			work := time.Duration(workHours) * time.Hour
			rest := time.Duration(restMinutes) * time.Minute
			return deps.Reminder.SetDurations(work, rest)
		})
		if err != nil {
			return err
		}
	}

	if deps.Display != nil {
		err := r.RegisterSimple("set_temperature", func(_ context.Context, args map[string]any) error {
			kelvin, err := intArg(args, "kelvin")
			if err != nil {
				return err
			}
			return deps.Display.SetTemperature(kelvin)
		})
		if err != nil {
			return err
		}
		if err := r.RegisterSimple("gamma_reset", func(_ context.Context, _ map[string]any) error {
			return deps.Display.Reset()
		}); err != nil {
			return err
		}
	}

	if deps.Backlight != nil {
		err := r.RegisterSimple("set_brightness", func(_ context.Context, args map[string]any) error {
			percent, err := intArg(args, "percent")
			if err != nil {
				return err
			}
			return deps.Backlight.Set(percent, deps.SmoothTransition, deps.TransitionDuration)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}

func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("argument %q must be a number", key)
	}
}
