package reminder

import (
	"testing"
	"time"
)

type recorder struct {
	events   []Event
	statuses []string
}

func (r *recorder) scheduler(work, rest time.Duration) *Scheduler {
	return New(work, rest,
		func(ev Event) { r.events = append(r.events, ev) },
		func(st string) { r.statuses = append(r.statuses, st) },
	)
}

func TestFullCycle(t *testing.T) {
	rec := &recorder{}
	s := rec.scheduler(2*time.Second, time.Second)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Phase() != Working || s.Remaining() != 2 {
		t.Fatalf("after Start: phase=%v remaining=%d, want Working(2)", s.Phase(), s.Remaining())
	}

	type snapshot struct {
		phase     Phase
		remaining int
		rests     int
	}
	want := []snapshot{
		{Working, 1, 0},
		{Working, 0, 0},
		{Resting, 1, 1}, // work expired: rest starts, counter increments
		{Resting, 0, 1},
		{Working, 2, 1}, // rest expired: next work cycle, no idle gap
	}

	for i, w := range want {
		s.Tick()
		got := snapshot{s.Phase(), s.Remaining(), s.RestPeriodsToday()}
		if got != w {
			t.Fatalf("tick %d: got %+v, want %+v", i+1, got, w)
		}
	}

	if len(rec.events) != 2 {
		t.Fatalf("got %d events %v, want rest-started then rest-ended", len(rec.events), rec.events)
	}
	if rec.events[0].Type != RestStarted || rec.events[0].RestSeconds != 1 {
		t.Errorf("first event = %+v, want RestStarted with 1s", rec.events[0])
	}
	if rec.events[1].Type != RestEnded {
		t.Errorf("second event = %+v, want RestEnded", rec.events[1])
	}
}

func TestStart_RejectsInvalidWorkDuration(t *testing.T) {
	s := New(0, time.Minute, nil, nil)

	if err := s.Start(); err != ErrInvalidDuration {
		t.Fatalf("Start = %v, want ErrInvalidDuration", err)
	}
	if s.Phase() != Idle {
		t.Errorf("failed start left phase %v, want Idle", s.Phase())
	}
}

func TestStop_FromAnyPhase(t *testing.T) {
	s := New(2*time.Second, time.Second, nil, nil)

	s.Start()
	s.Tick()
	s.Stop()
	if s.Phase() != Idle || s.Remaining() != 0 {
		t.Errorf("after Stop: phase=%v remaining=%d, want Idle(0)", s.Phase(), s.Remaining())
	}

	// Stop while resting
	s.Start()
	s.Tick()
	s.Tick()
	s.Tick() // into Resting
	if s.Phase() != Resting {
		t.Fatalf("setup: phase=%v, want Resting", s.Phase())
	}
	s.Stop()
	if s.Phase() != Idle || s.Remaining() != 0 {
		t.Errorf("after Stop from Resting: phase=%v remaining=%d, want Idle(0)", s.Phase(), s.Remaining())
	}
}

func TestSetDurations_RestartsActiveCycle(t *testing.T) {
	s := New(2*time.Second, 60*time.Second, nil, nil)

	s.Start()
	s.Tick()
	s.Tick()
	s.Tick() // rest starts: Resting(60)
	if s.Phase() != Resting || s.Remaining() != 60 {
		t.Fatalf("setup: phase=%v remaining=%d, want Resting(60)", s.Phase(), s.Remaining())
	}

	// Mid-rest duration change discards remaining rest and begins a
	// fresh work period.
	if err := s.SetDurations(5*time.Second, 3*time.Second); err != nil {
		t.Fatalf("SetDurations: %v", err)
	}
	if s.Phase() != Working || s.Remaining() != 5 {
		t.Errorf("after SetDurations: phase=%v remaining=%d, want Working(5)", s.Phase(), s.Remaining())
	}
}

func TestSetDurations_WhileIdleDoesNotStart(t *testing.T) {
	s := New(time.Hour, 5*time.Minute, nil, nil)

	if err := s.SetDurations(2*time.Hour, 10*time.Minute); err != nil {
		t.Fatalf("SetDurations: %v", err)
	}
	if s.Phase() != Idle {
		t.Errorf("SetDurations while idle moved phase to %v", s.Phase())
	}
}

func TestSetDurations_RejectsInvalid(t *testing.T) {
	s := New(time.Hour, 5*time.Minute, nil, nil)
	s.Start()
	before := s.Remaining()

	if err := s.SetDurations(0, time.Minute); err != ErrInvalidDuration {
		t.Fatalf("SetDurations = %v, want ErrInvalidDuration", err)
	}
	if s.Remaining() != before || s.Phase() != Working {
		t.Error("rejected SetDurations must not change state")
	}
}

func TestTick_NoopWhileIdle(t *testing.T) {
	rec := &recorder{}
	s := rec.scheduler(time.Hour, time.Minute)

	s.Tick()
	if s.Phase() != Idle || len(rec.events) != 0 {
		t.Error("Tick while idle must not change state or emit events")
	}
}

func TestStatus(t *testing.T) {
	s := New(3661*time.Second, 65*time.Second, nil, nil)

	if got := s.Status(); got != "idle" {
		t.Errorf("idle status = %q", got)
	}

	s.Start()
	if got := s.Status(); got != "working, 01:01:01 remaining" {
		t.Errorf("working status = %q, want \"working, 01:01:01 remaining\"", got)
	}

	s.phase = Resting
	s.remaining = 65
	if got := s.Status(); got != "resting, 01:05 remaining" {
		t.Errorf("resting status = %q, want \"resting, 01:05 remaining\"", got)
	}
}
