package actions

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegistryInvoke(t *testing.T) {
	r := NewRegistry()

	var got map[string]any
	err := r.RegisterSimple("noop", func(_ context.Context, args map[string]any) error {
		got = args
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	args := map[string]any{"x": 1}
	if err := r.Invoke(context.Background(), "noop", args); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if got == nil || got["x"] != 1 {
		t.Errorf("action did not receive args: %v", got)
	}

	if err := r.Invoke(context.Background(), "missing", nil); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	fn := func(_ context.Context, _ map[string]any) error { return nil }

	if err := r.RegisterSimple("dup", fn); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.RegisterSimple("dup", fn); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

type fakeProfiles struct {
	applied []string
	err     error
}

func (f *fakeProfiles) Apply(name string) error {
	f.applied = append(f.applied, name)
	return f.err
}

func (f *fakeProfiles) Names() []string { return []string{"Default"} }

type fakeReminder struct {
	started int
	stopped int
	work    time.Duration
	rest    time.Duration
}

func (f *fakeReminder) Start() error { f.started++; return nil }
func (f *fakeReminder) Stop()        { f.stopped++ }

func (f *fakeReminder) SetDurations(work, rest time.Duration) error {
	f.work = work
	f.rest = rest
	return nil
}

type fakeDisplay struct {
	kelvin int
	resets int
}

func (f *fakeDisplay) SetTemperature(k int) error { f.kelvin = k; return nil }
func (f *fakeDisplay) Reset() error               { f.resets++; return nil }
func (f *fakeDisplay) Supported() bool            { return true }

type fakeBacklight struct {
	percent int
	smooth  bool
}

func (f *fakeBacklight) Set(target int, smooth bool, _ time.Duration) error {
	f.percent = target
	f.smooth = smooth
	return nil
}

func (f *fakeBacklight) Supported() bool { return true }

func TestBuiltins(t *testing.T) {
	profiles := &fakeProfiles{}
	reminder := &fakeReminder{}
	display := &fakeDisplay{}
	backlight := &fakeBacklight{}

	r := NewRegistry()
	err := RegisterBuiltins(r, Deps{
		Profiles:           profiles,
		Reminder:           reminder,
		Display:            display,
		Backlight:          backlight,
		SmoothTransition:   true,
		TransitionDuration: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("register builtins: %v", err)
	}

	want := []string{"apply_profile", "gamma_reset", "reminder_set_durations", "reminder_start", "reminder_stop", "set_brightness", "set_temperature"}
	names := r.Names()
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}

	ctx := context.Background()

	if err := r.Invoke(ctx, "apply_profile", map[string]any{"name": "Night Mode"}); err != nil {
		t.Fatalf("apply_profile: %v", err)
	}
	if len(profiles.applied) != 1 || profiles.applied[0] != "Night Mode" {
		t.Errorf("applied = %v", profiles.applied)
	}

	if err := r.Invoke(ctx, "apply_profile", nil); err == nil {
		t.Error("expected error for missing name argument")
	}

	if err := r.Invoke(ctx, "reminder_start", nil); err != nil {
		t.Fatalf("reminder_start: %v", err)
	}
	if err := r.Invoke(ctx, "reminder_stop", nil); err != nil {
		t.Fatalf("reminder_stop: %v", err)
	}
	if reminder.started != 1 || reminder.stopped != 1 {
		t.Errorf("reminder calls = %d/%d", reminder.started, reminder.stopped)
	}

	err = r.Invoke(ctx, "reminder_set_durations", map[string]any{"work_hours": 2, "rest_minutes": 10})
	if err != nil {
		t.Fatalf("reminder_set_durations: %v", err)
	}
	if reminder.work != 2*time.Hour || reminder.rest != 10*time.Minute {
		t.Errorf("durations = %v/%v", reminder.work, reminder.rest)
	}

	// JSON-decoded numbers arrive as float64.
	if err := r.Invoke(ctx, "set_temperature", map[string]any{"kelvin": float64(4500)}); err != nil {
		t.Fatalf("set_temperature: %v", err)
	}
	if display.kelvin != 4500 {
		t.Errorf("kelvin = %d, want 4500", display.kelvin)
	}

	if err := r.Invoke(ctx, "set_brightness", map[string]any{"percent": 35}); err != nil {
		t.Fatalf("set_brightness: %v", err)
	}
	if backlight.percent != 35 || !backlight.smooth {
		t.Errorf("backlight = %d smooth=%v", backlight.percent, backlight.smooth)
	}

	if err := r.Invoke(ctx, "gamma_reset", nil); err != nil {
		t.Fatalf("gamma_reset: %v", err)
	}
	if display.resets != 1 {
		t.Errorf("resets = %d", display.resets)
	}
}

func TestBuiltinsPropagateErrors(t *testing.T) {
	profiles := &fakeProfiles{err: errors.New("boom")}
	r := NewRegistry()
	if err := RegisterBuiltins(r, Deps{Profiles: profiles}); err != nil {
		t.Fatalf("register builtins: %v", err)
	}

	err := r.Invoke(context.Background(), "apply_profile", map[string]any{"name": "Default"})
	if err == nil {
		t.Fatal("expected error from profile applier")
	}
}
