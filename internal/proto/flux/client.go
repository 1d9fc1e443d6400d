package flux

import (
	"context"
	"errors"
)

// ErrConnect means the bulb could not be reached while constructing its
// client. The caller should treat the device as not ready and retry later.
var ErrConnect = errors.New("flux bulb connect failed")

// ErrCommunication means a state fetch or control call failed at runtime.
// Cached state stays untouched; the next successful refresh reconciles.
var ErrCommunication = errors.New("flux bulb communication failed")

// Snapshot is the raw state frame reported by a bulb, as decoded by the
// protocol client library. Channel meanings depend on the bulb model; the
// light adapter interprets them per derived mode.
type Snapshot struct {
	IsOn       bool
	EffectCode byte
	Brightness uint8
	RGB        [3]uint8
	RGBW       [4]uint8
	// RGBWW is red, green, blue, warm white, cold white.
	RGBWW [5]uint8
	// RGBWCapable and RGBWProtocol are the bulb's self-reported capability
	// flags; mode derivation trusts these over any configured mode.
	RGBWCapable  bool
	RGBWProtocol bool
	// SubMode is the bulb's reported sub-mode string, e.g. "ww" when a
	// white-only strip is attached.
	SubMode string
}

// RGBWArgs carries the optional channel values of an RGBW control frame.
// Nil fields are omitted from the wire command.
type RGBWArgs struct {
	R, G, B    *uint8
	W, W2      *uint8
	Brightness *uint8
}

// ProtocolClient is the control surface of one Flux/MagicHome bulb. The TCP
// session, byte-level framing and state parsing live in the external bulb
// library; this service only consumes the capability.
type ProtocolClient interface {
	FetchState() (Snapshot, error)
	SetRGB(r, g, b uint8, brightness *uint8) error
	SetRGBW(args RGBWArgs) error
	SetWarmWhite(value uint8) error
	SetPresetPattern(code byte, speedPct int) error
	SetCustomPattern(colors [][3]uint8, speedPct int, transition Transition) error
	TurnOn() error
	TurnOff() error
	Close() error
}

// Dialer constructs a protocol client for a bulb address. Implemented by the
// external bulb library; a failure surfaces as ErrConnect.
type Dialer func(host string) (ProtocolClient, error)

// DiscoveredBulb is one result of a network scan.
type DiscoveredBulb struct {
	Host  string
	ID    string
	Model string
}

// Scanner finds bulbs on the local network. Like ProtocolClient it is an
// external capability; the adapter only schedules scans when automatic
// discovery is enabled.
type Scanner interface {
	Scan(ctx context.Context) ([]DiscoveredBulb, error)
}
