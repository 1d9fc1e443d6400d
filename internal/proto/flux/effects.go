package flux

import "sort"

// Effect identifies a bulb lighting effect by name.
type Effect string

const (
	EffectColorloop    Effect = "colorloop"
	EffectRedFade      Effect = "red_fade"
	EffectGreenFade    Effect = "green_fade"
	EffectBlueFade     Effect = "blue_fade"
	EffectYellowFade   Effect = "yellow_fade"
	EffectCyanFade     Effect = "cyan_fade"
	EffectPurpleFade   Effect = "purple_fade"
	EffectWhiteFade    Effect = "white_fade"
	EffectRGCrossFade  Effect = "rg_cross_fade"
	EffectRBCrossFade  Effect = "rb_cross_fade"
	EffectGBCrossFade  Effect = "gb_cross_fade"
	EffectColorstrobe  Effect = "colorstrobe"
	EffectRedStrobe    Effect = "red_strobe"
	EffectGreenStrobe  Effect = "green_strobe"
	EffectBlueStrobe   Effect = "blue_strobe"
	EffectYellowStrobe Effect = "yellow_strobe"
	EffectCyanStrobe   Effect = "cyan_strobe"
	EffectPurpleStrobe Effect = "purple_strobe"
	EffectWhiteStrobe  Effect = "white_strobe"
	EffectColorjump    Effect = "colorjump"

	// EffectCustom marks a user-defined color sequence (wire code 0x60,
	// never sent as a preset).
	EffectCustom Effect = "custom"
	// EffectRandom is synthetic: it resolves to a concrete RGB command
	// client-side and has no wire code.
	EffectRandom Effect = "random"
)

// effectCodes is the firmware preset byte for each named effect. The values
// are part of the wire protocol and must not change.
var effectCodes = map[Effect]byte{
	EffectColorloop:    0x25,
	EffectRedFade:      0x26,
	EffectGreenFade:    0x27,
	EffectBlueFade:     0x28,
	EffectYellowFade:   0x29,
	EffectCyanFade:     0x2A,
	EffectPurpleFade:   0x2B,
	EffectWhiteFade:    0x2C,
	EffectRGCrossFade:  0x2D,
	EffectRBCrossFade:  0x2E,
	EffectGBCrossFade:  0x2F,
	EffectColorstrobe:  0x30,
	EffectRedStrobe:    0x31,
	EffectGreenStrobe:  0x32,
	EffectBlueStrobe:   0x33,
	EffectYellowStrobe: 0x34,
	EffectCyanStrobe:   0x35,
	EffectPurpleStrobe: 0x36,
	EffectWhiteStrobe:  0x37,
	EffectColorjump:    0x38,
}

const customPatternCode byte = 0x60

// presetCode returns the wire byte for a named preset effect.
func presetCode(e Effect) (byte, bool) {
	code, ok := effectCodes[e]
	return code, ok
}

// isPresetEffect reports whether the name maps to a firmware preset. Random
// and custom are selectable but are not presets.
func isPresetEffect(e Effect) bool {
	_, ok := effectCodes[e]
	return ok
}

// effectForCode maps a raw state effect byte back to a name. Unknown bytes
// return the empty effect, meaning no recognized effect is active.
func effectForCode(code byte) Effect {
	if code == customPatternCode {
		return EffectCustom
	}
	for effect, c := range effectCodes {
		if c == code {
			return effect
		}
	}
	return ""
}

// ParseEffect validates an effect name received from the platform.
func ParseEffect(name string) (Effect, bool) {
	e := Effect(name)
	if e == EffectRandom || e == EffectCustom {
		return e, true
	}
	if _, ok := effectCodes[e]; ok {
		return e, true
	}
	return "", false
}

// EffectNames lists every selectable effect: sorted presets, then random and
// custom. Published in entity metadata.
func EffectNames() []string {
	names := make([]string, 0, len(effectCodes)+2)
	for effect := range effectCodes {
		names = append(names, string(effect))
	}
	sort.Strings(names)
	return append(names, string(EffectRandom), string(EffectCustom))
}
