package backlight

import (
	"errors"
	"testing"
	"time"
)

type fakeDevice struct {
	level    int
	levelErr error

	applied  []int
	failFrom int // fail SetLevel calls starting at this 1-based index, 0 = never
}

func (d *fakeDevice) Level() (int, error) {
	if d.levelErr != nil {
		return 0, d.levelErr
	}
	return d.level, nil
}

func (d *fakeDevice) SetLevel(percent int) error {
	if d.failFrom > 0 && len(d.applied)+1 >= d.failFrom {
		return errors.New("i/o error")
	}
	d.applied = append(d.applied, percent)
	d.level = percent
	return nil
}

func newTestController(dev Device) *Controller {
	c := New(dev)
	c.sleep = func(time.Duration) {}
	return c
}

func TestSet_SmoothTransition(t *testing.T) {
	dev := &fakeDevice{level: 80}
	c := newTestController(dev)

	if err := c.Set(20, true, 200*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if len(dev.applied) != 11 {
		t.Fatalf("applied %d levels %v, want 11 (10 steps + final)", len(dev.applied), dev.applied)
	}
	if dev.applied[0] != 74 {
		t.Errorf("first step = %d, want 74", dev.applied[0])
	}
	if dev.applied[10] != 20 {
		t.Errorf("final apply = %d, want exact target 20", dev.applied[10])
	}
	for i := 1; i < len(dev.applied); i++ {
		if dev.applied[i] > dev.applied[i-1] {
			t.Fatalf("step levels not monotonically decreasing: %v", dev.applied)
		}
	}
}

func TestSet_DirectWhenNotSmooth(t *testing.T) {
	dev := &fakeDevice{level: 80}
	c := newTestController(dev)

	if err := c.Set(20, false, 200*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(dev.applied) != 1 || dev.applied[0] != 20 {
		t.Errorf("applied = %v, want exactly [20]", dev.applied)
	}
}

func TestSet_DirectWhenCurrentUnavailable(t *testing.T) {
	dev := &fakeDevice{levelErr: errors.New("read failed")}
	c := newTestController(dev)

	if err := c.Set(50, true, 200*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(dev.applied) != 1 || dev.applied[0] != 50 {
		t.Errorf("applied = %v, want exactly [50]", dev.applied)
	}
}

func TestSet_DirectWhenAlreadyAtTarget(t *testing.T) {
	dev := &fakeDevice{level: 40}
	c := newTestController(dev)

	if err := c.Set(40, true, 200*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(dev.applied) != 1 || dev.applied[0] != 40 {
		t.Errorf("applied = %v, want exactly [40]", dev.applied)
	}
}

func TestSet_ClampsTarget(t *testing.T) {
	dev := &fakeDevice{level: 50}
	c := newTestController(dev)

	if err := c.Set(250, false, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if dev.applied[len(dev.applied)-1] != 100 {
		t.Errorf("applied %v, want clamp to 100", dev.applied)
	}

	if err := c.Set(-10, false, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if dev.applied[len(dev.applied)-1] != 0 {
		t.Errorf("applied %v, want clamp to 0", dev.applied)
	}
}

func TestSet_AbortsTransitionOnFailure(t *testing.T) {
	dev := &fakeDevice{level: 0, failFrom: 4}
	c := newTestController(dev)

	err := c.Set(100, true, 100*time.Millisecond)
	if err == nil {
		t.Fatal("expected error from failing device")
	}
	if len(dev.applied) != 3 {
		t.Errorf("applied %d levels %v, want transition aborted after 3", len(dev.applied), dev.applied)
	}
}

func TestController_Unsupported(t *testing.T) {
	c := New(nil)

	if c.Supported() {
		t.Error("nil device should report unsupported")
	}
	if _, err := c.Level(); err != ErrUnsupported {
		t.Errorf("Level = %v, want ErrUnsupported", err)
	}
	if err := c.Set(50, true, 0); err != ErrUnsupported {
		t.Errorf("Set = %v, want ErrUnsupported", err)
	}
}

func TestLevel_Unavailable(t *testing.T) {
	c := New(&fakeDevice{levelErr: errors.New("read failed")})
	if _, err := c.Level(); err != ErrUnavailable {
		t.Errorf("Level = %v, want ErrUnavailable", err)
	}
}
