package backlight

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const sysfsRoot = "/sys/class/backlight"

// SysfsDevice drives the first addressable backlight device exposed by
// the kernel under /sys/class/backlight.
type SysfsDevice struct {
	dir string
	max int
}

// NewSysfsDevice probes the sysfs backlight tree and binds to the first
// device (alphabetically). Returns an error when none is present, which
// marks backlight control unsupported for the session.
func NewSysfsDevice() (*SysfsDevice, error) {
	return newSysfsDeviceAt(sysfsRoot)
}

func newSysfsDeviceAt(root string) (*SysfsDevice, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no backlight device under %s", root)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	dir := filepath.Join(root, names[0])
	max, err := readSysfsInt(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return nil, fmt.Errorf("read max_brightness: %w", err)
	}
	if max <= 0 {
		return nil, fmt.Errorf("device %s reports max_brightness %d", names[0], max)
	}

	log.Info().Str("device", names[0]).Int("max", max).Msg("Backlight device initialized")
	return &SysfsDevice{dir: dir, max: max}, nil
}

// Level reads the current brightness as a 0-100 percent.
func (d *SysfsDevice) Level() (int, error) {
	raw, err := readSysfsInt(filepath.Join(d.dir, "brightness"))
	if err != nil {
		return 0, err
	}
	return int(math.Round(float64(raw) / float64(d.max) * 100.0)), nil
}

// SetLevel writes a 0-100 percent brightness, scaled to the device's raw
// range.
func (d *SysfsDevice) SetLevel(percent int) error {
	raw := int(math.Round(float64(percent) / 100.0 * float64(d.max)))
	data := []byte(strconv.Itoa(raw))
	if err := os.WriteFile(filepath.Join(d.dir, "brightness"), data, 0o644); err != nil {
		return fmt.Errorf("write brightness: %w", err)
	}
	return nil
}

func readSysfsInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
