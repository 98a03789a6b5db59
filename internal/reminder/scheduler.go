// Package reminder implements the work/rest cycle state machine driven
// by a one-second tick.
package reminder

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrInvalidDuration reports a zero or negative work/rest duration. The
// scheduler rejects it before any state change.
var ErrInvalidDuration = errors.New("work and rest durations must be positive")

// Phase is the scheduler's lifecycle state. Exactly one phase holds at
// any instant.
type Phase int

const (
	Idle Phase = iota
	Working
	Resting
)

func (p Phase) String() string {
	switch p {
	case Working:
		return "working"
	case Resting:
		return "resting"
	default:
		return "idle"
	}
}

// EventType identifies a scheduler lifecycle notification.
type EventType int

const (
	// RestStarted fires when a work period ends; the event carries the
	// rest duration in seconds.
	RestStarted EventType = iota
	// RestEnded fires when a rest period ends, immediately before the
	// next work cycle begins.
	RestEnded
)

// Event is a scheduler lifecycle notification.
type Event struct {
	Type        EventType
	RestSeconds int
}

// Scheduler cycles between working and resting phases. It is not safe
// for concurrent use; all calls must come from one goroutine (the
// periodic tick is inherently serialized).
type Scheduler struct {
	workSeconds int
	restSeconds int

	phase     Phase
	remaining int

	restsToday int

	onEvent  func(Event)
	onStatus func(string)
}

// New creates an idle scheduler with the given cycle durations.
// onEvent and onStatus may be nil.
func New(work, rest time.Duration, onEvent func(Event), onStatus func(string)) *Scheduler {
	return &Scheduler{
		workSeconds: int(work.Seconds()),
		restSeconds: int(rest.Seconds()),
		phase:       Idle,
		onEvent:     onEvent,
		onStatus:    onStatus,
	}
}

// Start begins a work period. A non-positive work duration is a
// configuration error: it is reported and the scheduler stays idle.
func (s *Scheduler) Start() error {
	if s.workSeconds <= 0 {
		log.Warn().Int("work_seconds", s.workSeconds).Msg("Cannot start reminder cycle")
		return ErrInvalidDuration
	}

	log.Info().
		Int("work_seconds", s.workSeconds).
		Int("rest_seconds", s.restSeconds).
		Msg("Reminder cycle started")

	s.phase = Working
	s.remaining = s.workSeconds
	s.emitStatus()
	return nil
}

// Stop returns the scheduler to idle from any phase, zeroing the
// countdown.
func (s *Scheduler) Stop() {
	if s.phase != Idle {
		log.Info().Msg("Reminder cycle stopped")
	}
	s.phase = Idle
	s.remaining = 0
	s.emitStatus()
}

// SetDurations updates the configured durations. While the scheduler is
// active the cycle restarts from a fresh work period immediately; an
// in-progress countdown is discarded, not resumed.
func (s *Scheduler) SetDurations(work, rest time.Duration) error {
	if work <= 0 || rest <= 0 {
		return ErrInvalidDuration
	}

	s.workSeconds = int(work.Seconds())
	s.restSeconds = int(rest.Seconds())
	log.Info().
		Int("work_seconds", s.workSeconds).
		Int("rest_seconds", s.restSeconds).
		Msg("Reminder durations updated")

	if s.phase != Idle {
		return s.Start()
	}
	return nil
}

// Tick advances the state machine by one second. Invoked once per
// second while not idle.
func (s *Scheduler) Tick() {
	if s.phase == Idle {
		return
	}

	if s.remaining > 0 {
		s.remaining--
		s.emitStatus()
		return
	}

	switch s.phase {
	case Working:
		s.startRest()
	case Resting:
		s.endRest()
	}
}

func (s *Scheduler) startRest() {
	s.phase = Resting
	s.remaining = s.restSeconds
	s.restsToday++

	log.Info().
		Int("rest_seconds", s.restSeconds).
		Int("rests_today", s.restsToday).
		Msg("Work period finished, rest started")

	s.emitStatus()
	s.emit(Event{Type: RestStarted, RestSeconds: s.restSeconds})
}

func (s *Scheduler) endRest() {
	log.Info().Msg("Rest period finished, next work cycle begins")
	s.emit(Event{Type: RestEnded})
	// No idle gap between rest end and the next work cycle.
	s.Start()
}

// Phase returns the current lifecycle phase.
func (s *Scheduler) Phase() Phase {
	return s.phase
}

// Remaining returns the seconds left in the current phase.
func (s *Scheduler) Remaining() int {
	return s.remaining
}

// RestPeriodsToday returns the monotonically increasing count of
// completed rest periods since the last counter reset.
func (s *Scheduler) RestPeriodsToday() int {
	return s.restsToday
}

// ResetCounter zeroes the daily rest counter. The hosting application
// calls this after persisting the count at session end.
func (s *Scheduler) ResetCounter() {
	s.restsToday = 0
}

// Status projects the current state into a human-readable string.
// Deterministic and side-effect-free.
func (s *Scheduler) Status() string {
	switch s.phase {
	case Working:
		h := s.remaining / 3600
		m := (s.remaining % 3600) / 60
		sec := s.remaining % 60
		return fmt.Sprintf("working, %02d:%02d:%02d remaining", h, m, sec)
	case Resting:
		m := s.remaining / 60
		sec := s.remaining % 60
		return fmt.Sprintf("resting, %02d:%02d remaining", m, sec)
	default:
		return "idle"
	}
}

func (s *Scheduler) emit(ev Event) {
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}

func (s *Scheduler) emitStatus() {
	if s.onStatus != nil {
		s.onStatus(s.Status())
	}
}
