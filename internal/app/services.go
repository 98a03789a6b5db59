package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nvezhov/eyeguardd/internal/actions"
	"github.com/nvezhov/eyeguardd/internal/autostart"
	"github.com/nvezhov/eyeguardd/internal/backlight"
	"github.com/nvezhov/eyeguardd/internal/biaslight"
	"github.com/nvezhov/eyeguardd/internal/config"
	"github.com/nvezhov/eyeguardd/internal/control"
	"github.com/nvezhov/eyeguardd/internal/db"
	"github.com/nvezhov/eyeguardd/internal/eventbus"
	"github.com/nvezhov/eyeguardd/internal/gamma"
	"github.com/nvezhov/eyeguardd/internal/hotkey"
	"github.com/nvezhov/eyeguardd/internal/notify"
	"github.com/nvezhov/eyeguardd/internal/profile"
	"github.com/nvezhov/eyeguardd/internal/reminder"
	"github.com/nvezhov/eyeguardd/internal/script"
	"github.com/nvezhov/eyeguardd/internal/solar"
	"github.com/nvezhov/eyeguardd/internal/stats"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB      *db.DB
	Stats   *stats.Store
	Session *stats.Session
	Bus     *eventbus.Bus

	// Hardware surfaces
	Gamma     *gamma.Engine
	Backlight *backlight.Controller
	Bias      *biaslight.Mirror

	// Domain services
	Profiles *profile.Applier
	Registry *actions.Registry
	Reminder *reminder.Service
	Notifier notify.Notifier
	Matcher  *hotkey.Matcher
	Solar    *solar.Service
	Script   *script.Runtime
	Control  *control.Server

	listener *hotkey.Listener
}

// NewServices creates all services with proper dependency injection.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	// Usage statistics database
	if cfg.Stats.Enabled {
		database, err := db.Open(cfg.Stats.Path)
		if err != nil {
			return nil, err
		}
		s.DB = database
		s.Stats = stats.NewStore(database)
		s.Session = stats.NewSession()
	}

	// Gamma control, degrades to unsupported without an X display
	if dev, err := gamma.NewX11Device(); err != nil {
		log.Warn().Err(err).Msg("Gamma control unavailable")
		s.Gamma = gamma.NewEngine(nil)
	} else {
		s.Gamma = gamma.NewEngine(dev)
	}

	// Backlight control, degrades to unsupported without sysfs access
	if dev, err := backlight.NewSysfsDevice(); err != nil {
		log.Warn().Err(err).Msg("Backlight control unavailable")
		s.Backlight = backlight.New(nil)
	} else {
		s.Backlight = backlight.New(dev)
	}

	if cfg.BiasLight.Enabled {
		s.Bias = biaslight.New(cfg.BiasLight.Bridge, cfg.BiasLight.Token, cfg.BiasLight.Group)
	}

	s.Bus = eventbus.New()

	if cfg.Notify.Enabled {
		s.Notifier = notify.NewExecNotifier(cfg.Notify.Command)
	} else {
		s.Notifier = notify.Noop{}
	}

	// Profile applier
	profiles := make(map[string]profile.Profile, len(cfg.Profiles))
	for name, p := range cfg.Profiles {
		profiles[name] = profile.Profile{Temperature: p.Temperature, Brightness: p.Brightness}
	}
	var bias profile.BiasLight
	if s.Bias != nil {
		bias = s.Bias
	}
	s.Profiles = profile.NewApplier(
		profiles,
		s.Gamma,
		s.Backlight,
		bias,
		cfg.Backlight.SmoothTransition,
		cfg.Backlight.TransitionDuration.Duration(),
		s.Bus,
	)

	// Work/rest reminder
	sched := reminder.New(
		cfg.Reminder.WorkDuration(),
		cfg.Reminder.RestDuration(),
		s.onReminderEvent,
		s.onReminderStatus,
	)
	s.Reminder = reminder.NewService(sched)

	// Action registry
	s.Registry = actions.NewRegistry()
	err := actions.RegisterBuiltins(s.Registry, actions.Deps{
		Profiles:           s.Profiles,
		Reminder:           s.Reminder,
		Display:            s.Gamma,
		Backlight:          s.Backlight,
		SmoothTransition:   cfg.Backlight.SmoothTransition,
		TransitionDuration: cfg.Backlight.TransitionDuration.Duration(),
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	// Hotkey chords map chord spec -> profile name
	s.Matcher = hotkey.NewMatcher()
	if cfg.Hotkeys.Enabled {
		s.Matcher.RegisterAll(cfg.Hotkeys.Chords)
	}

	if cfg.Solar.Enabled {
		tracker := solar.NewTracker(
			cfg.Solar.Latitude,
			cfg.Solar.Longitude,
			cfg.Solar.DayKelvin,
			cfg.Solar.NightKelvin,
			cfg.Solar.DayElevation,
			cfg.Solar.NightElevation,
		)
		s.Solar = solar.NewService(tracker, s.Gamma, cfg.Solar.Interval.Duration())
	}

	if cfg.Script != "" {
		s.Script = script.NewRuntime(s.Registry)
	}

	if cfg.Control.Enabled {
		var statsSrc control.StatsSource
		if s.Stats != nil {
			statsSrc = s.Stats
		}
		s.Control = control.NewServer(cfg.Control.Host, cfg.Control.Port, s.Registry, s.Reminder, statsSrc, s.Profiles)
	}

	return s, nil
}

// Start starts all services in the correct order.
func (s *Services) Start(ctx context.Context) error {
	// Startup display state
	startup := profile.Profile{
		Temperature: s.cfg.Display.TemperatureKelvin,
		Brightness:  s.cfg.Backlight.BrightnessPercent,
	}
	if err := s.Profiles.ApplySettings(startup); err != nil {
		log.Warn().Err(err).Msg("Startup display settings not fully applied")
	}

	// Load the hooks script before routing events into its worker
	if s.Script != nil {
		if err := s.Script.LoadScript(s.cfg.Script); err != nil {
			return err
		}
		for _, et := range []eventbus.EventType{
			eventbus.EventTypeRestStarted,
			eventbus.EventTypeRestEnded,
			eventbus.EventTypeStatus,
			eventbus.EventTypeHotkey,
			eventbus.EventTypeProfileApplied,
		} {
			et := et
			s.Bus.Subscribe(et, func(ev eventbus.Event) {
				s.Script.Dispatch(ctx, string(ev.Type), ev.Data)
			})
		}
		go s.Script.Run(ctx)
	}

	// The tick loop always runs so the cycle can be started later via
	// actions even when it is not enabled at boot.
	s.Reminder.Run(ctx)
	if s.cfg.Reminder.Enabled {
		if err := s.Reminder.Start(); err != nil {
			return err
		}
	}

	s.startHotkeys()

	if s.Solar != nil {
		s.Solar.Run(ctx)
	}

	if s.Control != nil {
		go func() {
			if err := s.Control.Run(ctx, s.cfg.ShutdownTimeout.Duration()); err != nil {
				log.Error().Err(err).Msg("Control server error")
			}
		}()
	}

	if mgr, err := autostart.New(s.cfg.Autostart.Command); err != nil {
		log.Warn().Err(err).Msg("Autostart registration unavailable")
	} else if err := mgr.Sync(s.cfg.Autostart.Enabled); err != nil {
		log.Warn().Err(err).Msg("Autostart sync failed")
	}

	return nil
}

func (s *Services) startHotkeys() {
	if !s.cfg.Hotkeys.Enabled || s.Matcher.ChordCount() == 0 {
		return
	}

	src, err := hotkey.NewEvdevSource(s.cfg.Hotkeys.Devices)
	if err != nil {
		log.Warn().Err(err).Msg("Hotkeys unavailable")
		return
	}

	s.listener = hotkey.NewListener(s.Matcher, src, func(name string) {
		s.Bus.Publish(eventbus.Event{
			Type: eventbus.EventTypeHotkey,
			Data: map[string]interface{}{"profile": name},
		})
		err := s.Registry.Invoke(context.Background(), "apply_profile", map[string]any{"name": name})
		if err != nil {
			log.Error().Err(err).Str("profile", name).Msg("Hotkey profile apply failed")
		}
	})
	s.listener.Start()
}

func (s *Services) onReminderEvent(ev reminder.Event) {
	switch ev.Type {
	case reminder.RestStarted:
		s.Bus.Publish(eventbus.Event{
			Type: eventbus.EventTypeRestStarted,
			Data: map[string]interface{}{"rest_seconds": ev.RestSeconds},
		})
		minutes := ev.RestSeconds / 60
		if err := s.Notifier.Notify("Time to rest", formatRestBody(minutes)); err != nil {
			log.Warn().Err(err).Msg("Rest notification failed")
		}
	case reminder.RestEnded:
		s.Bus.Publish(eventbus.Event{
			Type: eventbus.EventTypeRestEnded,
			Data: map[string]interface{}{},
		})
		if err := s.Notifier.Notify("Rest over", "Back to work."); err != nil {
			log.Warn().Err(err).Msg("Rest notification failed")
		}
	}
}

func (s *Services) onReminderStatus(text string) {
	s.Bus.Publish(eventbus.Event{
		Type: eventbus.EventTypeStatus,
		Data: map[string]interface{}{"text": text},
	})
}

// Stop gracefully stops all services.
func (s *Services) Stop() error {
	timeout := s.cfg.ShutdownTimeout.Duration()

	if s.listener != nil {
		s.listener.Stop(timeout)
	}

	s.Reminder.Shutdown()

	if s.Solar != nil {
		s.Solar.Wait()
	}

	if s.Script != nil {
		s.Script.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.Bus.Close(ctx)

	// Persist the session before the counter is cleared
	if s.Session != nil {
		if err := s.Session.Finish(s.Stats, s.Reminder.RestPeriodsToday()); err != nil {
			log.Error().Err(err).Msg("Failed to record usage session")
		}
		s.Reminder.ResetCounter()
	}

	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Gamma != nil {
		if err := s.Gamma.Reset(); err != nil && err != gamma.ErrUnsupported {
			log.Warn().Err(err).Msg("Gamma reset on shutdown failed")
		}
		s.Gamma.Close()
		s.Gamma = nil
	}
	if s.DB != nil {
		s.DB.Close()
		s.DB = nil
	}
}

func formatRestBody(minutes int) string {
	if minutes <= 0 {
		return "Look away from the screen for a moment."
	}
	if minutes == 1 {
		return "Look away from the screen for 1 minute."
	}
	return fmt.Sprintf("Look away from the screen for %d minutes.", minutes)
}
