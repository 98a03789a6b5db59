// Package gamma computes and applies display gamma ramps for color
// temperature adjustment.
package gamma

import "math"

// RampSize is the number of entries per color channel.
const RampSize = 256

// Kelvin bounds accepted by ComputeRamp. Values outside are clamped.
const (
	MinKelvin = 1000
	MaxKelvin = 10000
	// NeutralKelvin is the anchor point where all channel gains are 1.0
	// and the ramp equals the linear identity ramp.
	NeutralKelvin = 6500
)

// exponent used to approximate the perceptual-to-linear mapping
const gammaExponent = 2.2

// Ramp is a per-channel lookup table mapping 256 input intensity levels
// to 16-bit output intensities.
type Ramp struct {
	Red   [RampSize]uint16
	Green [RampSize]uint16
	Blue  [RampSize]uint16
}

// channelGains returns the (r, g, b) linear gain factors for a color
// temperature. Warmer temperatures reduce blue/green, colder reduce
// red/green. Gains never exceed 1.0 and never fall below fixed floors
// so no channel is crushed to black.
func channelGains(kelvin int) (r, g, b float64) {
	k := float64(clampInt(kelvin, MinKelvin, MaxKelvin))

	if k <= NeutralKelvin {
		warm := (k - MinKelvin) / (NeutralKelvin - MinKelvin)
		r = 1.0
		g = clampFloat(0.8+0.2*warm, 0.8, 1.0)
		b = clampFloat(0.6+0.4*warm, 0.6, 1.0)
		return r, g, b
	}

	cold := (k - NeutralKelvin) / (MaxKelvin - NeutralKelvin)
	r = clampFloat(1.0-0.2*cold, 0.8, 1.0)
	g = clampFloat(1.0-0.1*cold, 0.9, 1.0)
	b = 1.0
	return r, g, b
}

// ComputeRamp builds the gamma ramp for the given color temperature in
// degrees Kelvin. The input is clamped to [MinKelvin, MaxKelvin].
func ComputeRamp(kelvin int) Ramp {
	rGain, gGain, bGain := channelGains(kelvin)

	var ramp Ramp
	for i := 0; i < RampSize; i++ {
		norm := float64(i) / 255.0
		linear := math.Pow(norm, gammaExponent)

		ramp.Red[i] = encodeChannel(norm, linear, rGain)
		ramp.Green[i] = encodeChannel(norm, linear, gGain)
		ramp.Blue[i] = encodeChannel(norm, linear, bGain)
	}
	return ramp
}

// encodeChannel applies the channel gain in linear space and re-encodes.
// A unit gain skips the pow round trip entirely so the neutral ramp
// matches LinearRamp bit for bit.
func encodeChannel(norm, linear, gain float64) uint16 {
	if gain == 1.0 {
		return uint16(norm*65535.0 + 0.5)
	}
	return encode(linear * gain)
}

// LinearRamp returns the identity ramp used as the reset/default state.
func LinearRamp() Ramp {
	var ramp Ramp
	for i := 0; i < RampSize; i++ {
		val := uint16(float64(i)/255.0*65535.0 + 0.5)
		ramp.Red[i] = val
		ramp.Green[i] = val
		ramp.Blue[i] = val
	}
	return ramp
}

// encode re-applies the inverse gamma exponent to a linear intensity and
// scales it to the 16-bit output range with round-to-nearest.
func encode(linear float64) uint16 {
	v := clampFloat(math.Pow(linear, 1.0/gammaExponent), 0.0, 1.0)
	return uint16(v*65535.0 + 0.5)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
