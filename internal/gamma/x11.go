package gamma

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/rs/zerolog/log"
)

// X11Device applies gamma ramps through the RandR extension. One ramp is
// fanned out to every CRTC of the default screen; the core still treats
// this as a single "current display".
type X11Device struct {
	conn  *xgb.Conn
	crtcs []crtcInfo
}

type crtcInfo struct {
	id   randr.Crtc
	size int
}

// NewX11Device connects to the X server and enumerates gamma-capable
// CRTCs. It fails (and gamma control becomes unsupported) when there is
// no X display or no CRTC reports a gamma table.
func NewX11Device() (*X11Device, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X display: %w", err)
	}

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init randr extension: %w", err)
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	res, err := randr.GetScreenResourcesCurrent(conn, root).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("get screen resources: %w", err)
	}

	var crtcs []crtcInfo
	for _, crtc := range res.Crtcs {
		gs, err := randr.GetCrtcGammaSize(conn, crtc).Reply()
		if err != nil || gs.Size == 0 {
			log.Warn().Uint32("crtc", uint32(crtc)).Msg("CRTC has no gamma table, skipping")
			continue
		}
		crtcs = append(crtcs, crtcInfo{id: crtc, size: int(gs.Size)})
	}

	if len(crtcs) == 0 {
		conn.Close()
		return nil, fmt.Errorf("no gamma-capable CRTC found")
	}

	log.Info().Int("crtcs", len(crtcs)).Msg("X11 gamma device initialized")
	return &X11Device{conn: conn, crtcs: crtcs}, nil
}

// ApplyRamp sets the ramp on every CRTC, resampling to each CRTC's
// native gamma table size.
func (d *X11Device) ApplyRamp(ramp Ramp) error {
	for _, crtc := range d.crtcs {
		red := resample(ramp.Red[:], crtc.size)
		green := resample(ramp.Green[:], crtc.size)
		blue := resample(ramp.Blue[:], crtc.size)

		err := randr.SetCrtcGammaChecked(d.conn, crtc.id, uint16(crtc.size), red, green, blue).Check()
		if err != nil {
			return fmt.Errorf("set gamma on crtc %d: %w", crtc.id, err)
		}
	}
	return nil
}

// Close disconnects from the X server.
func (d *X11Device) Close() error {
	d.conn.Close()
	return nil
}

// resample stretches or shrinks a 256-entry channel to the CRTC's table
// size with nearest-neighbour index mapping.
func resample(channel []uint16, size int) []uint16 {
	if size == len(channel) {
		out := make([]uint16, size)
		copy(out, channel)
		return out
	}

	out := make([]uint16, size)
	if size == 1 {
		out[0] = channel[len(channel)-1]
		return out
	}
	for i := 0; i < size; i++ {
		src := (i*(len(channel)-1) + (size-1)/2) / (size - 1)
		out[i] = channel[src]
	}
	return out
}
