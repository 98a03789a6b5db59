// Package autostart toggles XDG autostart registration for the daemon.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const desktopFile = "eyeguardd.desktop"

const desktopTemplate = `[Desktop Entry]
Type=Application
Name=eyeguardd
Exec=%s
X-GNOME-Autostart-enabled=true
`

// Manager writes and removes the autostart desktop entry.
type Manager struct {
	dir     string
	command string
}

// New creates a manager registering the given command line. An empty
// command registers the current executable.
func New(command string) (*Manager, error) {
	if command == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		command = exe
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	return &Manager{
		dir:     filepath.Join(home, ".config", "autostart"),
		command: command,
	}, nil
}

// NewAt is like New with an explicit autostart directory.
func NewAt(dir, command string) *Manager {
	return &Manager{dir: dir, command: command}
}

// Enabled reports whether the autostart entry exists.
func (m *Manager) Enabled() bool {
	_, err := os.Stat(filepath.Join(m.dir, desktopFile))
	return err == nil
}

// Enable writes the autostart entry.
func (m *Manager) Enable() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create autostart directory: %w", err)
	}

	path := filepath.Join(m.dir, desktopFile)
	content := fmt.Sprintf(desktopTemplate, m.command)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}

	log.Info().Str("path", path).Msg("Autostart enabled")
	return nil
}

// Disable removes the autostart entry. Removing a missing entry is a
// success.
func (m *Manager) Disable() error {
	path := filepath.Join(m.dir, desktopFile)
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove autostart entry: %w", err)
	}

	log.Info().Str("path", path).Msg("Autostart disabled")
	return nil
}

// Sync makes the registration match the desired state.
func (m *Manager) Sync(enabled bool) error {
	if enabled == m.Enabled() {
		return nil
	}
	if enabled {
		return m.Enable()
	}
	return m.Disable()
}
