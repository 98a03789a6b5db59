package hotkey

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// binding ties one parsed chord to the target it fires.
type binding struct {
	chord  Chord
	target string
}

// Matcher maintains registered chords and the set of currently held
// keys. It is driven by key-down/key-up events and reports which
// targets fired. Bindings are keyed by chord string, so several chords
// may share one target; all satisfied chords fire on a key-down, there
// is no single-winner arbitration.
type Matcher struct {
	mu       sync.Mutex
	bindings map[string]binding
	held     map[Key]struct{}
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		bindings: make(map[string]binding),
		held:     make(map[Key]struct{}),
	}
}

// Register parses the chord string and binds it to the given target.
// Re-registering the same chord string replaces its target; distinct
// chord strings never displace each other. Registration of an
// unparseable chord string fails for that chord only.
func (m *Matcher) Register(spec, target string) error {
	chord, err := ParseChord(spec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.bindings[spec] = binding{chord: chord, target: target}
	m.mu.Unlock()

	log.Debug().Str("chord", chord.String()).Str("target", target).Msg("Hotkey chord registered")
	return nil
}

// RegisterAll registers every entry of the map (chord string -> target).
// Unparseable chords are skipped with a warning so one bad entry does
// not fail the whole set.
func (m *Matcher) RegisterAll(chords map[string]string) {
	for spec, target := range chords {
		if err := m.Register(spec, target); err != nil {
			log.Warn().Err(err).Str("chord", spec).Msg("Skipping unparseable hotkey")
		}
	}
}

// KeyDown adds the key to the held set and returns the targets of every
// chord whose key set is now fully held, sorted for determinism. One
// entry per satisfied chord per key-down, even when chords share keys
// or targets.
func (m *Matcher) KeyDown(k Key) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.held[k] = struct{}{}

	var fired []string
	for _, b := range m.bindings {
		if b.chord.Satisfied(m.held) {
			fired = append(fired, b.target)
		}
	}
	sort.Strings(fired)
	return fired
}

// KeyUp removes the key from the held set. Releases never fire chords.
func (m *Matcher) KeyUp(k Key) {
	m.mu.Lock()
	delete(m.held, k)
	m.mu.Unlock()
}

// ChordCount returns the number of registered chords.
func (m *Matcher) ChordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bindings)
}
