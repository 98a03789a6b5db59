package hotkey

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNoEvent is returned by a KeySource when no event arrived within the
// poll interval. The listener uses it to bound its blocking wait so a
// stop request is observed promptly.
var ErrNoEvent = errors.New("no key event")

// pollInterval bounds how long the listener blocks on its source before
// re-checking the stop signal.
const pollInterval = 100 * time.Millisecond

// KeyEvent is one low-level key press or release.
type KeyEvent struct {
	Key     Key
	Pressed bool
}

// KeySource delivers low-level key events. ReadKey blocks for at most
// the given timeout and returns ErrNoEvent when nothing arrived.
type KeySource interface {
	ReadKey(timeout time.Duration) (KeyEvent, error)
	Close() error
}

// Listener drains a KeySource on a dedicated goroutine, feeds the
// matcher, and reports fired chords through a callback. It never runs
// matching on the caller's goroutine, so UI or service responsiveness is
// unaffected.
type Listener struct {
	matcher *Matcher
	src     KeySource
	onMatch func(target string)

	stop chan struct{}
	done chan struct{}
}

// NewListener creates a listener. onMatch receives the fired chord's
// target, invoked on the listener goroutine once per satisfied chord
// per key-down.
func NewListener(matcher *Matcher, src KeySource, onMatch func(target string)) *Listener {
	return &Listener{
		matcher: matcher,
		src:     src,
		onMatch: onMatch,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the listener goroutine.
func (l *Listener) Start() {
	log.Info().Int("chords", l.matcher.ChordCount()).Msg("Hotkey listener started")
	go l.run()
}

func (l *Listener) run() {
	defer close(l.done)

	for {
		select {
		case <-l.stop:
			return
		default:
		}

		ev, err := l.src.ReadKey(pollInterval)
		if err != nil {
			if errors.Is(err, ErrNoEvent) {
				continue
			}
			log.Error().Err(err).Msg("Key source failed, hotkey listener exiting")
			return
		}

		if !ev.Pressed {
			l.matcher.KeyUp(ev.Key)
			continue
		}

		for _, target := range l.matcher.KeyDown(ev.Key) {
			log.Info().Str("target", target).Msg("Hotkey chord fired")
			l.onMatch(target)
		}
	}
}

// Stop signals the listener to terminate and blocks until the goroutine
// exits or the timeout elapses. A timeout is non-fatal: it is logged and
// resources are released best-effort.
func (l *Listener) Stop(timeout time.Duration) {
	close(l.stop)

	select {
	case <-l.done:
		log.Info().Msg("Hotkey listener stopped")
	case <-time.After(timeout):
		log.Warn().Msg("Hotkey listener did not stop cleanly")
	}

	if err := l.src.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close key source")
	}
}
