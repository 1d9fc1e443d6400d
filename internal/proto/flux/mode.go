package flux

import "fmt"

// Mode is the channel layout a bulb is driven in.
type Mode string

const (
	ModeRGB   Mode = "rgb"
	ModeRGBW  Mode = "rgbw"
	ModeRGBCW Mode = "rgbcw"
	ModeRGBWW Mode = "rgbww"
	// ModeWhite drives a white-only strip: brightness controls the white
	// channel and RGB values are ignored.
	ModeWhite Mode = "w"
)

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRGB, ModeRGBW, ModeRGBCW, ModeRGBWW, ModeWhite:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown light mode %q", s)
}

// DeriveMode computes the mode from a bulb's self-reported state. Only w,
// rgbw and rgb are detectable on the wire; rgbcw and rgbww exist solely as
// static configuration and are never auto-derived.
func DeriveMode(snap Snapshot) Mode {
	if snap.SubMode == "ww" {
		return ModeWhite
	}
	if snap.RGBWCapable && !snap.RGBWProtocol {
		return ModeRGBW
	}
	return ModeRGB
}
