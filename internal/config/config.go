// Package config loads the daemon configuration from YAML with
// environment variable expansion and defaults.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Display   DisplayConfig   `yaml:"display"`
	Backlight BacklightConfig `yaml:"backlight"`
	Reminder  ReminderConfig  `yaml:"reminder"`
	Hotkeys   HotkeyConfig    `yaml:"hotkeys"`
	Profiles  ProfilesConfig  `yaml:"profiles"`
	Solar     SolarConfig     `yaml:"solar"`
	BiasLight BiasLightConfig `yaml:"bias_light"`
	Stats     StatsConfig     `yaml:"stats"`
	Control   ControlConfig   `yaml:"control"`
	Notify    NotifyConfig    `yaml:"notify"`
	Autostart AutostartConfig `yaml:"autostart"`
	Log       LogConfig       `yaml:"log"`
	Script    string          `yaml:"script"` // optional Lua hooks file

	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DisplayConfig contains color temperature settings
type DisplayConfig struct {
	TemperatureKelvin int `yaml:"temperature_kelvin"` // applied at startup
}

// BacklightConfig contains backlight settings
type BacklightConfig struct {
	BrightnessPercent  int      `yaml:"brightness_percent"` // applied at startup
	SmoothTransition   bool     `yaml:"smooth_transition"`
	TransitionDuration Duration `yaml:"transition_duration"`
}

// ReminderConfig contains work/rest cycle settings
type ReminderConfig struct {
	Enabled     bool `yaml:"enabled"`
	WorkHours   int  `yaml:"work_hours"`
	RestMinutes int  `yaml:"rest_minutes"`
}

// HotkeyConfig contains the global hotkey settings
type HotkeyConfig struct {
	Enabled bool              `yaml:"enabled"`
	Devices []string          `yaml:"devices"` // input device paths, empty = scan
	Chords  map[string]string `yaml:"chords"`  // chord string -> profile name
}

// Profile is a named pair of temperature and brightness applied together
type Profile struct {
	Temperature int `yaml:"temperature"`
	Brightness  int `yaml:"brightness"`
}

// ProfilesConfig maps profile names to their settings
type ProfilesConfig map[string]Profile

// SolarConfig contains automatic sun-based temperature settings
type SolarConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Latitude       float64  `yaml:"lat"`
	Longitude      float64  `yaml:"lon"`
	DayKelvin      int      `yaml:"day_kelvin"`
	NightKelvin    int      `yaml:"night_kelvin"`
	DayElevation   float64  `yaml:"day_elevation"`   // degrees, full day temperature at/above
	NightElevation float64  `yaml:"night_elevation"` // degrees, full night temperature at/below
	Interval       Duration `yaml:"interval"`
}

// BiasLightConfig contains Hue bias lighting settings
type BiasLightConfig struct {
	Enabled bool     `yaml:"enabled"`
	Bridge  string   `yaml:"bridge"`
	Token   string   `yaml:"token"`
	Group   int      `yaml:"group"`
	Timeout Duration `yaml:"timeout"`
}

// StatsConfig contains usage statistics settings
type StatsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ControlConfig contains the HTTP control server settings
type ControlConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// NotifyConfig contains desktop notification settings
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Command string `yaml:"command"`
}

// AutostartConfig contains OS autostart registration settings
type AutostartConfig struct {
	Enabled bool   `yaml:"enabled"`
	Command string `yaml:"command"` // command line to register, default: current executable
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	UseJSON bool   `yaml:"json"`
	Colors  bool   `yaml:"colors"`
}

// GetLevel returns the configured log level with default
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// WorkDuration returns the configured work period
func (c *ReminderConfig) WorkDuration() time.Duration {
	return time.Duration(c.WorkHours) * time.Hour
}

// RestDuration returns the configured rest period
func (c *ReminderConfig) RestDuration() time.Duration {
	return time.Duration(c.RestMinutes) * time.Minute
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses the configuration file. A missing file is not an
// error: defaults describe a complete working setup, mirroring the
// merge-with-defaults behavior of the settings record.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to defaults
	case err != nil:
		return nil, err
	default:
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Display.TemperatureKelvin == 0 {
		cfg.Display.TemperatureKelvin = 6500
	}

	if cfg.Backlight.BrightnessPercent == 0 {
		cfg.Backlight.BrightnessPercent = 80
	}
	if cfg.Backlight.TransitionDuration == 0 {
		cfg.Backlight.TransitionDuration = Duration(200 * time.Millisecond)
	}

	if cfg.Reminder.WorkHours == 0 {
		cfg.Reminder.WorkHours = 1
	}
	if cfg.Reminder.RestMinutes == 0 {
		cfg.Reminder.RestMinutes = 5
	}

	if len(cfg.Profiles) == 0 {
		cfg.Profiles = ProfilesConfig{
			"Default":    {Temperature: 6500, Brightness: 80},
			"Night Mode": {Temperature: 3500, Brightness: 40},
			"Reading":    {Temperature: 4500, Brightness: 60},
		}
	}
	if len(cfg.Hotkeys.Chords) == 0 {
		cfg.Hotkeys.Chords = map[string]string{
			"<ctrl>+<alt>+1": "Night Mode",
			"<ctrl>+<alt>+2": "Reading",
			"<ctrl>+<alt>+0": "Default",
		}
	}

	if cfg.Solar.DayKelvin == 0 {
		cfg.Solar.DayKelvin = 6500
	}
	if cfg.Solar.NightKelvin == 0 {
		cfg.Solar.NightKelvin = 3500
	}
	if cfg.Solar.DayElevation == 0 {
		cfg.Solar.DayElevation = 10.0
	}
	if cfg.Solar.NightElevation == 0 {
		cfg.Solar.NightElevation = -6.0
	}
	if cfg.Solar.Interval == 0 {
		cfg.Solar.Interval = Duration(5 * time.Minute)
	}

	if cfg.BiasLight.Timeout == 0 {
		cfg.BiasLight.Timeout = Duration(5 * time.Second)
	}

	if cfg.Stats.Path == "" {
		cfg.Stats.Path = "./eyeguardd.sqlite"
	}

	if cfg.Control.Host == "" {
		cfg.Control.Host = "127.0.0.1"
	}
	if cfg.Control.Port == 0 {
		cfg.Control.Port = 9321
	}

	if cfg.Notify.Command == "" {
		cfg.Notify.Command = "notify-send"
	}

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
}

func (cfg *Config) validate() error {
	if cfg.Reminder.WorkHours < 0 || cfg.Reminder.RestMinutes < 0 {
		return fmt.Errorf("reminder durations must not be negative")
	}
	if cfg.Solar.NightElevation >= cfg.Solar.DayElevation {
		return fmt.Errorf("solar night_elevation must be below day_elevation")
	}
	if cfg.BiasLight.Enabled && cfg.BiasLight.Bridge == "" {
		return fmt.Errorf("bias_light enabled but no bridge configured")
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
