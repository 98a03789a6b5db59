package profile

import (
	"errors"
	"testing"
	"time"
)

type fakeDisplay struct {
	kelvins   []int
	err       error
	supported bool
}

func (d *fakeDisplay) SetTemperature(k int) error {
	if d.err != nil {
		return d.err
	}
	d.kelvins = append(d.kelvins, k)
	return nil
}

func (d *fakeDisplay) Supported() bool { return d.supported }

type fakeBacklight struct {
	levels    []int
	err       error
	supported bool
}

func (b *fakeBacklight) Set(target int, smooth bool, d time.Duration) error {
	if b.err != nil {
		return b.err
	}
	b.levels = append(b.levels, target)
	return nil
}

func (b *fakeBacklight) Supported() bool { return b.supported }

type fakeBias struct {
	synced int
	err    error
}

func (f *fakeBias) Sync(temperature, brightness int) error {
	f.synced++
	return f.err
}

func newApplier(d *fakeDisplay, b *fakeBacklight, bias BiasLight) *Applier {
	profiles := map[string]Profile{
		"Night Mode": {Temperature: 3500, Brightness: 40},
	}
	return NewApplier(profiles, d, b, bias, false, 0, nil)
}

func TestApply(t *testing.T) {
	d := &fakeDisplay{supported: true}
	b := &fakeBacklight{supported: true}
	a := newApplier(d, b, nil)

	if err := a.Apply("Night Mode"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(d.kelvins) != 1 || d.kelvins[0] != 3500 {
		t.Errorf("display calls = %v, want [3500]", d.kelvins)
	}
	if len(b.levels) != 1 || b.levels[0] != 40 {
		t.Errorf("backlight calls = %v, want [40]", b.levels)
	}
}

func TestApply_UnknownProfile(t *testing.T) {
	a := newApplier(&fakeDisplay{supported: true}, &fakeBacklight{supported: true}, nil)

	err := a.Apply("Nope")
	if !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("Apply = %v, want ErrUnknownProfile", err)
	}
}

func TestApply_GammaFailureStillSetsBrightness(t *testing.T) {
	d := &fakeDisplay{supported: true, err: errors.New("x11 gone")}
	b := &fakeBacklight{supported: true}
	a := newApplier(d, b, nil)

	if err := a.Apply("Night Mode"); err == nil {
		t.Fatal("expected error from display")
	}
	if len(b.levels) != 1 {
		t.Errorf("backlight calls = %v, brightness should still apply", b.levels)
	}
}

func TestApply_SkipsUnsupportedSurfaces(t *testing.T) {
	d := &fakeDisplay{supported: false}
	b := &fakeBacklight{supported: false}
	a := newApplier(d, b, nil)

	if err := a.Apply("Night Mode"); err != nil {
		t.Fatalf("Apply with nothing supported = %v, want nil", err)
	}
	if len(d.kelvins) != 0 || len(b.levels) != 0 {
		t.Error("unsupported surfaces must not be called")
	}
}

func TestApply_BiasFailureIsNonFatal(t *testing.T) {
	d := &fakeDisplay{supported: true}
	b := &fakeBacklight{supported: true}
	bias := &fakeBias{err: errors.New("bridge unreachable")}
	a := newApplier(d, b, bias)

	if err := a.Apply("Night Mode"); err != nil {
		t.Fatalf("Apply = %v, bias failure must not propagate", err)
	}
	if bias.synced != 1 {
		t.Errorf("bias synced %d times, want 1", bias.synced)
	}
}

func TestNames_Sorted(t *testing.T) {
	a := NewApplier(map[string]Profile{
		"b": {}, "a": {}, "c": {},
	}, &fakeDisplay{}, &fakeBacklight{}, nil, false, 0, nil)

	names := a.Names()
	if len(names) != 3 || names[0] != "a" || names[2] != "c" {
		t.Errorf("Names = %v, want sorted", names)
	}
}
