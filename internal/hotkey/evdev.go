package hotkey

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	inputDir = "/dev/input"

	// input_event on 64-bit: 16 bytes timeval + type + code + value
	eventSize = 24

	evKey = 0x01

	keyPress   = 1
	keyRelease = 0
)

// EvdevSource reads raw key events from the kernel evdev character
// devices. Each device gets a reader goroutine; events funnel into one
// channel the listener drains.
type EvdevSource struct {
	files  []*os.File
	events chan KeyEvent
	closed chan struct{}
}

// NewEvdevSource opens the given device paths, or every
// /dev/input/event* device when paths is empty. Devices that cannot be
// opened are skipped with a warning; at least one must open.
func NewEvdevSource(paths []string) (*EvdevSource, error) {
	if len(paths) == 0 {
		matches, err := filepath.Glob(filepath.Join(inputDir, "event*"))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", inputDir, err)
		}
		sort.Strings(matches)
		paths = matches
	}

	s := &EvdevSource{
		events: make(chan KeyEvent, 64),
		closed: make(chan struct{}),
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			log.Warn().Err(err).Str("device", path).Msg("Cannot open input device, skipping")
			continue
		}
		s.files = append(s.files, f)
	}

	if len(s.files) == 0 {
		return nil, fmt.Errorf("no readable input device")
	}

	for _, f := range s.files {
		go s.readDevice(f)
	}

	log.Info().Int("devices", len(s.files)).Msg("Evdev key source initialized")
	return s, nil
}

func (s *EvdevSource) readDevice(f *os.File) {
	buf := make([]byte, eventSize)

	for {
		select {
		case <-s.closed:
			return
		default:
		}

		// Deadline keeps the read from blocking past a close request.
		f.SetReadDeadline(time.Now().Add(pollInterval))
		if _, err := io.ReadFull(f, buf); err != nil {
			if os.IsTimeout(err) {
				continue
			}
			log.Warn().Err(err).Str("device", f.Name()).Msg("Input device read failed, reader exiting")
			return
		}

		typ := binary.LittleEndian.Uint16(buf[16:18])
		code := binary.LittleEndian.Uint16(buf[18:20])
		value := int32(binary.LittleEndian.Uint32(buf[20:24]))

		if typ != evKey {
			continue
		}
		if value != keyPress && value != keyRelease {
			continue // key repeat
		}

		key, ok := keycodeNames[code]
		if !ok {
			continue
		}

		select {
		case s.events <- KeyEvent{Key: key, Pressed: value == keyPress}:
		case <-s.closed:
			return
		default:
			// Channel full: drop rather than stall the device reader.
		}
	}
}

// ReadKey returns the next key event, or ErrNoEvent after the timeout.
func (s *EvdevSource) ReadKey(timeout time.Duration) (KeyEvent, error) {
	select {
	case ev := <-s.events:
		return ev, nil
	case <-s.closed:
		return KeyEvent{}, fmt.Errorf("key source closed")
	case <-time.After(timeout):
		return KeyEvent{}, ErrNoEvent
	}
}

// Close stops the device readers and closes the devices.
func (s *EvdevSource) Close() error {
	close(s.closed)
	for _, f := range s.files {
		f.Close()
	}
	return nil
}
