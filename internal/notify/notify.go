// Package notify forwards reminder events to a desktop notification
// mechanism.
package notify

import (
	"fmt"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Notifier shows a user-visible notification.
type Notifier interface {
	Notify(title, body string) error
}

// ExecNotifier shells out to a notification command (notify-send by
// default).
type ExecNotifier struct {
	command string
}

// NewExecNotifier probes for the command in PATH. When it is missing a
// Noop notifier is returned so callers never need a nil check.
func NewExecNotifier(command string) Notifier {
	if _, err := exec.LookPath(command); err != nil {
		log.Warn().Str("command", command).Msg("Notification command not found, notifications disabled")
		return Noop{}
	}
	return &ExecNotifier{command: command}
}

// Notify runs the notification command.
func (n *ExecNotifier) Notify(title, body string) error {
	cmd := exec.Command(n.command, "--app-name=eyeguardd", title, body)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w, output: %s", n.command, err, output)
	}
	return nil
}

// Noop discards notifications.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(title, body string) error { return nil }
