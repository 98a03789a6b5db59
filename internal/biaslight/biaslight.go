// Package biaslight mirrors the applied display profile to a Philips
// Hue group, keeping the lighting behind the monitor in step with the
// screen.
package biaslight

import (
	"fmt"
	"math"

	"github.com/amimof/huego"
	"github.com/rs/zerolog/log"
)

// Hue accepts color temperatures as mireds in this range.
const (
	minMired = 153 // ~6500K
	maxMired = 500 // 2000K
)

// Mirror drives one Hue light group.
type Mirror struct {
	bridge *huego.Bridge
	group  int
}

// New connects to the bridge. The connection is lazy on the Hue side;
// failures surface on the first Sync.
func New(bridgeHost, token string, group int) *Mirror {
	return &Mirror{
		bridge: huego.New(bridgeHost, token),
		group:  group,
	}
}

// Sync pushes the given temperature and brightness to the group. The
// screen's kelvin range is wider than what Hue lamps accept, so the
// mired value is clamped.
func (m *Mirror) Sync(temperature, brightness int) error {
	state := huego.State{
		On:  true,
		Bri: toBri(brightness),
		Ct:  toMired(temperature),
	}

	if _, err := m.bridge.SetGroupState(m.group, state); err != nil {
		return fmt.Errorf("set hue group %d state: %w", m.group, err)
	}

	log.Debug().
		Int("group", m.group).
		Uint16("mired", state.Ct).
		Uint8("bri", state.Bri).
		Msg("Bias light synced")
	return nil
}

// toMired converts kelvin to the Hue mired scale.
func toMired(kelvin int) uint16 {
	if kelvin < 1000 {
		kelvin = 1000
	}
	mired := 1000000 / kelvin
	if mired < minMired {
		mired = minMired
	}
	if mired > maxMired {
		mired = maxMired
	}
	return uint16(mired)
}

// toBri converts a 0-100 percent to the Hue 1-254 brightness scale.
func toBri(percent int) uint8 {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	bri := math.Round(float64(percent) / 100.0 * 254.0)
	if bri < 1 {
		bri = 1
	}
	return uint8(bri)
}
