// Package hotkey matches global key chords against the live set of held
// keys, fed by a low-level key event source on its own goroutine.
package hotkey

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Key is a normalized key token: a modifier name ("ctrl", "alt",
// "shift", "cmd"), a special key name ("f1", "space", ...) or a single
// character ("a", "1").
type Key string

// Chord is an unordered set of keys that must all be held concurrently.
// Press order does not matter.
type Chord map[Key]struct{}

// ParseChord parses a chord string like "<ctrl>+<alt>+1" into a key
// set: any number of bracketed specials plus at most one ordinary key.
// Unparseable tokens and surplus ordinary keys are skipped with a
// warning; the chord may become unmatchable but parsing does not fail
// as a whole. An entirely empty result is an error.
func ParseChord(spec string) (Chord, error) {
	chord := make(Chord)
	haveOrdinary := false

	for _, part := range strings.Split(strings.ToLower(spec), "+") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "<") && strings.HasSuffix(part, ">") && len(part) > 2:
			name := part[1 : len(part)-1]
			if !knownSpecial(name) {
				log.Warn().Str("chord", spec).Str("token", part).Msg("Unknown special key, skipping")
				continue
			}
			chord[Key(name)] = struct{}{}
		case len(part) == 1:
			if haveOrdinary {
				log.Warn().Str("chord", spec).Str("token", part).Msg("Chord already has an ordinary key, skipping")
				continue
			}
			haveOrdinary = true
			chord[Key(part)] = struct{}{}
		default:
			log.Warn().Str("chord", spec).Str("token", part).Msg("Unsupported chord token, skipping")
		}
	}

	if len(chord) == 0 {
		return nil, fmt.Errorf("chord %q has no usable keys", spec)
	}
	return chord, nil
}

// Satisfied reports whether every key of the chord is present in held.
func (c Chord) Satisfied(held map[Key]struct{}) bool {
	for k := range c {
		if _, ok := held[k]; !ok {
			return false
		}
	}
	return true
}

func (c Chord) String() string {
	parts := make([]string, 0, len(c))
	for k := range c {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, "+")
}

func knownSpecial(name string) bool {
	switch name {
	case "ctrl", "alt", "shift", "cmd", "esc", "space", "tab", "enter":
		return true
	}
	if len(name) >= 2 && name[0] == 'f' {
		// f1..f12
		for _, r := range name[1:] {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}
