package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnableDisable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "autostart")
	m := NewAt(dir, "/usr/bin/eyeguardd --config /etc/eyeguardd.yaml")

	if m.Enabled() {
		t.Fatal("expected entry to be absent initially")
	}

	if err := m.Enable(); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !m.Enabled() {
		t.Fatal("expected entry after Enable")
	}

	data, err := os.ReadFile(filepath.Join(dir, desktopFile))
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if !strings.Contains(string(data), "Exec=/usr/bin/eyeguardd --config /etc/eyeguardd.yaml") {
		t.Errorf("entry missing Exec line:\n%s", data)
	}

	if err := m.Disable(); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if m.Enabled() {
		t.Fatal("expected entry gone after Disable")
	}
}

func TestDisableMissingEntry(t *testing.T) {
	m := NewAt(t.TempDir(), "eyeguardd")
	if err := m.Disable(); err != nil {
		t.Fatalf("disable on missing entry: %v", err)
	}
}

func TestSync(t *testing.T) {
	m := NewAt(filepath.Join(t.TempDir(), "autostart"), "eyeguardd")

	if err := m.Sync(true); err != nil {
		t.Fatalf("sync enable: %v", err)
	}
	if !m.Enabled() {
		t.Fatal("expected entry after Sync(true)")
	}

	// Repeated sync is a no-op.
	if err := m.Sync(true); err != nil {
		t.Fatalf("sync idempotent: %v", err)
	}

	if err := m.Sync(false); err != nil {
		t.Fatalf("sync disable: %v", err)
	}
	if m.Enabled() {
		t.Fatal("expected entry gone after Sync(false)")
	}
}
