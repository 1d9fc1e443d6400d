package flux

import (
	"fmt"
	"math/rand"
)

// State is the normalized light state derived from a bulb snapshot or
// applied optimistically after a command.
type State struct {
	On         bool
	Brightness uint8
	Hue        float64
	Saturation float64
	WhiteValue uint8
	// WarmWhite and ColdWhite are the raw two-channel white values last seen
	// on an rgbcw/rgbww bulb; explicit-white commands rescale them.
	WarmWhite uint8
	ColdWhite uint8
	Mode      Mode
	// Effect is empty when no recognized effect is active.
	Effect Effect
}

// CommandIntent is one platform light command. Nil fields were not supplied
// by the caller and resolve against remembered state.
type CommandIntent struct {
	Hue        *float64
	Saturation *float64
	Brightness *uint8
	White      *uint8
	// ColorTempMired is the requested color temperature in mired (153..500).
	ColorTempMired *int
	Effect         Effect
}

// hasColor reports whether the intent carries an explicit color.
func (in CommandIntent) hasColor() bool {
	return in.Hue != nil || in.Saturation != nil
}

// Light adapts one Flux/MagicHome bulb into normalized platform light state.
// It holds the state confirmed by the last successful refresh and an
// optimistic pending overlay written by commands; the next refresh replaces
// both with device truth. A failed command never rolls the overlay back, so
// local state may diverge from the bulb until that refresh.
//
// Light performs no locking: callers serialize access per bulb.
type Light struct {
	name        string
	host        string
	effectSpeed int
	// configuredMode pins rgbcw/rgbww bulbs, which are not wire-detectable.
	// Any other configured value yields to per-refresh derivation.
	configuredMode Mode
	client         ProtocolClient
	randInt        func(n int) int

	confirmed State
	pending   *State

	lastBrightness uint8
	lastHue        float64
	lastSaturation float64
	hasLast        bool
}

// NewLight wraps an already-connected protocol client.
func NewLight(name, host string, mode Mode, effectSpeed int, client ProtocolClient) *Light {
	return &Light{
		name:           name,
		host:           host,
		configuredMode: mode,
		effectSpeed:    effectSpeed,
		client:         client,
		randInt:        rand.Intn,
	}
}

// Connect dials the bulb and wraps it in a Light. A dial failure is an
// ErrConnect: the device is not ready and construction should be retried.
func Connect(name, host string, mode Mode, effectSpeed int, dial Dialer) (*Light, error) {
	client, err := dial(host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, host, err)
	}
	return NewLight(name, host, mode, effectSpeed, client), nil
}

// SetRandSource overrides the random source used by the random effect.
func (l *Light) SetRandSource(randInt func(n int) int) { l.randInt = randInt }

func (l *Light) Name() string { return l.name }
func (l *Light) Host() string { return l.host }

// Close releases the underlying protocol client.
func (l *Light) Close() error { return l.client.Close() }

// view is the state visible to the platform: the pending overlay when a
// command outran the last refresh, else the confirmed state.
func (l *Light) view() State {
	if l.pending != nil {
		return *l.pending
	}
	return l.confirmed
}

// State returns the current normalized state.
func (l *Light) State() State { return l.view() }

// Confirmed returns the state from the last successful refresh, without any
// optimistic overlay.
func (l *Light) Confirmed() State { return l.confirmed }

// mutate copies the visible state into the pending overlay and applies fn.
func (l *Light) mutate(fn func(st *State)) {
	st := l.view()
	fn(&st)
	l.pending = &st
}

// resolveMode derives the mode from the snapshot unless the bulb is pinned
// to a two-channel white layout by configuration.
func (l *Light) resolveMode(snap Snapshot) Mode {
	if l.configuredMode == ModeRGBCW || l.configuredMode == ModeRGBWW {
		return l.configuredMode
	}
	return DeriveMode(snap)
}

// Refresh fetches a snapshot and rebuilds normalized state from it. On a
// fetch error the previous state is kept untouched and the error is
// reported as an ErrCommunication.
func (l *Light) Refresh() error {
	snap, err := l.client.FetchState()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
	}

	prev := l.view()
	st := State{Mode: l.resolveMode(snap), Brightness: prev.Brightness}

	switch st.Mode {
	case ModeRGBCW:
		st.WarmWhite = snap.RGBWW[3]
		st.ColdWhite = snap.RGBWW[4]
		if st.ColdWhite > st.WarmWhite {
			st.WhiteValue = st.ColdWhite
		} else {
			st.WhiteValue = st.WarmWhite
		}
		// A lit white channel means the bulb is in white mode; color
		// brightness does not apply there.
		if st.WarmWhite > 0 || st.ColdWhite > 0 {
			st.Brightness = 0
		}
	case ModeRGBWW:
		st.WarmWhite = snap.RGBWW[3]
		st.WhiteValue = st.WarmWhite
		if snap.SubMode == "ww" {
			st.Brightness = 0
		}
	default:
		st.WhiteValue = snap.RGBW[3]
		if st.Mode == ModeWhite {
			st.Brightness = st.WhiteValue
		} else {
			st.Brightness = snap.Brightness
		}
	}

	st.Hue, st.Saturation = RGBToHS(snap.RGB[0], snap.RGB[1], snap.RGB[2])
	st.Effect = effectForCode(snap.EffectCode)

	// A bulb reporting on with zero brightness is effectively off.
	st.On = snap.IsOn && st.Brightness > 0

	if st.On {
		l.lastBrightness = st.Brightness
		l.lastHue = st.Hue
		l.lastSaturation = st.Saturation
		l.hasLast = true
	}

	l.confirmed = st
	l.pending = nil
	return nil
}

// Apply resolves a command intent against the current state and issues the
// matching bulb call. Exactly one branch fires; the branches mirror the
// bulb's mutually exclusive channel semantics. Local state is updated
// optimistically whether or not the bulb call succeeds.
func (l *Light) Apply(intent CommandIntent) error {
	cur := l.view()

	switch {
	case intent.ColorTempMired != nil:
		return l.applyColorTemp(cur, intent)

	case intent.White != nil && (cur.Mode == ModeRGBCW || cur.Mode == ModeRGBWW):
		return l.applyWhite(cur, *intent.White)

	case intent.Effect == EffectRandom:
		return l.applyRandom()

	// Only recognized presets match here; custom and unrecognized names fall
	// through to the turn-on/color handling below.
	case isPresetEffect(intent.Effect):
		return l.applyPreset(intent.Effect)

	case intent.Brightness == nil && !intent.hasColor() && !cur.On:
		// Bare turn-on: the bulb restores its own remembered state.
		l.mutate(func(st *State) { st.On = true })
		if err := l.client.TurnOn(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
		}
		return nil

	default:
		return l.applyColorBrightness(cur, intent)
	}
}

func (l *Light) applyColorTemp(cur State, intent CommandIntent) error {
	white := cur.WhiteValue
	if intent.White != nil {
		white = *intent.White
	} else if white == 0 {
		white = 255
	}

	if cur.Mode == ModeRGBCW {
		warm, cold := whiteChannelsForMired(*intent.ColorTempMired, white)
		l.mutate(func(st *State) {
			st.On = true
			st.WarmWhite = warm
			st.ColdWhite = cold
			if cold > warm {
				st.WhiteValue = cold
			} else {
				st.WhiteValue = warm
			}
		})
		if err := l.client.SetRGBW(RGBWArgs{W: &warm, W2: &cold}); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
		}
		return nil
	}

	// Single white channel bulbs only have a warm and a cold bank; pick one
	// by the cutoff and drive it with the effective brightness.
	brightness := cur.Brightness
	if intent.Brightness != nil {
		brightness = *intent.Brightness
	}
	l.mutate(func(st *State) {
		st.On = true
		st.WhiteValue = brightness
	})
	var args RGBWArgs
	if *intent.ColorTempMired > warmVsColdCutoffMired {
		args.W = &brightness
	} else {
		args.W2 = &brightness
	}
	if err := l.client.SetRGBW(args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
	}
	return nil
}

func (l *Light) applyWhite(cur State, white uint8) error {
	if cur.Mode == ModeRGBWW {
		l.mutate(func(st *State) {
			st.On = true
			st.WhiteValue = white
			st.WarmWhite = white
		})
		if err := l.client.SetWarmWhite(white); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
		}
		return nil
	}

	// rgbcw: rescale the current channel balance by the requested white
	// level, from a full-scale baseline when both channels are dark. The
	// channel order is swapped relative to the color temperature command;
	// the firmware addresses the banks that way.
	cold, warm := cur.ColdWhite, cur.WarmWhite
	if cold == 0 && warm == 0 {
		cold, warm = 255, 255
	}
	scale := float64(white) / 255
	scaledCold := clampByte(float64(cold) * scale)
	scaledWarm := clampByte(float64(warm) * scale)

	l.mutate(func(st *State) {
		st.On = true
		st.WhiteValue = white
		st.WarmWhite = scaledWarm
		st.ColdWhite = scaledCold
	})
	if err := l.client.SetRGBW(RGBWArgs{W: &scaledCold, W2: &scaledWarm}); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
	}
	return nil
}

func (l *Light) applyRandom() error {
	r := uint8(l.randInt(256))
	g := uint8(l.randInt(256))
	b := uint8(l.randInt(256))

	l.mutate(func(st *State) {
		st.Hue, st.Saturation = RGBToHS(r, g, b)
	})
	if err := l.client.SetRGBW(RGBWArgs{R: &r, G: &g, B: &b}); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
	}
	return nil
}

func (l *Light) applyPreset(effect Effect) error {
	code, ok := presetCode(effect)
	if !ok {
		return fmt.Errorf("unknown effect %q", effect)
	}
	l.mutate(func(st *State) { st.Effect = effect })
	if err := l.client.SetPresetPattern(code, l.effectSpeed); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
	}
	return nil
}

func (l *Light) applyColorBrightness(cur State, intent CommandIntent) error {
	brightness := l.lastBrightness
	if intent.Brightness != nil {
		brightness = *intent.Brightness
	}

	var r, g, b uint8
	switch {
	case intent.hasColor():
		hue, sat := cur.Hue, cur.Saturation
		if intent.Hue != nil {
			hue = *intent.Hue
		}
		if intent.Saturation != nil {
			sat = *intent.Saturation
		}
		r, g, b = HSToRGB(hue, sat)
	case l.hasLast:
		r, g, b = HSToRGB(l.lastHue, l.lastSaturation)
	default:
		r, g, b = HSToRGB(cur.Hue, cur.Saturation)
	}

	white := cur.WhiteValue
	if intent.White != nil {
		white = *intent.White
	}

	l.mutate(func(st *State) {
		st.On = true
		st.Brightness = brightness
		st.Hue, st.Saturation = RGBToHS(r, g, b)
	})

	var err error
	switch cur.Mode {
	case ModeWhite:
		var zero uint8
		err = l.client.SetRGBW(RGBWArgs{R: &zero, G: &zero, B: &zero, W: &brightness})
	case ModeRGBW:
		err = l.client.SetRGBW(RGBWArgs{R: &r, G: &g, B: &b, W: &white, Brightness: &brightness})
	default:
		err = l.client.SetRGB(r, g, b, &brightness)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
	}
	return nil
}

// TurnOff remembers the visible brightness and color for the next bare
// turn-on, marks the light off, and tells the bulb. The local transition is
// kept even when the bulb call fails.
func (l *Light) TurnOff() error {
	cur := l.view()
	l.lastBrightness = cur.Brightness
	l.lastHue = cur.Hue
	l.lastSaturation = cur.Saturation
	l.hasLast = true

	l.mutate(func(st *State) { st.On = false })

	if err := l.client.TurnOff(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
	}
	return nil
}

// ApplyCustomEffect uploads a user-defined color sequence. An off bulb is
// turned on first so the pattern is visible immediately.
func (l *Light) ApplyCustomEffect(colors [][3]uint8, speedPct int, transition Transition) error {
	if err := ValidateCustomEffect(colors, speedPct, transition); err != nil {
		return err
	}
	if !l.view().On {
		if err := l.Apply(CommandIntent{}); err != nil {
			return err
		}
	}
	l.mutate(func(st *State) {
		st.On = true
		st.Effect = EffectCustom
	})
	if err := l.client.SetCustomPattern(colors, speedPct, transition); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommunication, l.host, err)
	}
	return nil
}
