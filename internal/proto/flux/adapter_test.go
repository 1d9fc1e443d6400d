package flux

import (
	"encoding/json"
	"testing"
)

func TestParseStateArgsTurnOff(t *testing.T) {
	cases := []map[string]any{
		{"on": false},
		{"state": "OFF"},
		{"brightness": float64(0)},
		{"on": true, "brightness": float64(0)},
	}
	for _, args := range cases {
		cmd, err := parseStateArgs(args)
		if err != nil {
			t.Fatalf("%v: unexpected error %v", args, err)
		}
		if !cmd.off {
			t.Fatalf("%v: expected turn off", args)
		}
	}
}

func TestParseStateArgsIntent(t *testing.T) {
	args := map[string]any{
		"on":          true,
		"brightness":  float64(128),
		"hue":         float64(210),
		"saturation":  float64(60),
		"white_value": float64(40),
		"effect":      "colorloop",
	}
	cmd, err := parseStateArgs(args)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if cmd.off {
		t.Fatalf("expected on command")
	}
	in := cmd.intent
	if in.Brightness == nil || *in.Brightness != 128 {
		t.Fatalf("unexpected brightness %+v", in.Brightness)
	}
	if in.Hue == nil || *in.Hue != 210 || in.Saturation == nil || *in.Saturation != 60 {
		t.Fatalf("unexpected color %+v/%+v", in.Hue, in.Saturation)
	}
	if in.White == nil || *in.White != 40 {
		t.Fatalf("unexpected white %+v", in.White)
	}
	if in.Effect != EffectColorloop {
		t.Fatalf("unexpected effect %q", in.Effect)
	}
}

func TestParseStateArgsColorForms(t *testing.T) {
	cmd, err := parseStateArgs(map[string]any{"color": map[string]any{"h": float64(120), "s": float64(80)}})
	if err != nil {
		t.Fatalf("hs form: %v", err)
	}
	if cmd.intent.Hue == nil || *cmd.intent.Hue != 120 || *cmd.intent.Saturation != 80 {
		t.Fatalf("hs form: unexpected intent %+v", cmd.intent)
	}

	cmd, err = parseStateArgs(map[string]any{"color": map[string]any{"r": float64(255), "g": float64(0), "b": float64(0)}})
	if err != nil {
		t.Fatalf("rgb form: %v", err)
	}
	if cmd.intent.Hue == nil || *cmd.intent.Hue != 0 || *cmd.intent.Saturation != 100 {
		t.Fatalf("rgb form: unexpected intent %+v", cmd.intent)
	}

	if _, err := parseStateArgs(map[string]any{"color": map[string]any{"x": 1}}); err == nil {
		t.Fatalf("expected error for unrecognized color form")
	}
}

func TestParseStateArgsColorTempClamped(t *testing.T) {
	cases := map[float64]int{
		100: 153,
		153: 153,
		370: 370,
		500: 500,
		900: 500,
	}
	for in, want := range cases {
		cmd, err := parseStateArgs(map[string]any{"color_temp": in})
		if err != nil {
			t.Fatalf("color_temp %v: %v", in, err)
		}
		if cmd.intent.ColorTempMired == nil || *cmd.intent.ColorTempMired != want {
			t.Fatalf("color_temp %v: expected %d, got %+v", in, want, cmd.intent.ColorTempMired)
		}
	}
}

func TestParseStateArgsErrors(t *testing.T) {
	cases := []map[string]any{
		{"brightness": float64(300)},
		{"hue": float64(400)},
		{"saturation": float64(-5)},
		{"white_value": float64(999)},
		{"effect": "disco"},
		{"on": []any{}},
	}
	for _, args := range cases {
		if _, err := parseStateArgs(args); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestParseCustomEffectArgs(t *testing.T) {
	ce, err := parseCustomEffectArgs(map[string]any{
		"colors":     []any{[]any{float64(255), float64(0), float64(0)}, []any{float64(0), float64(255), float64(0)}},
		"speed_pct":  float64(30),
		"transition": "jump",
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if ce == nil || len(ce.Colors) != 2 || ce.SpeedPct != 30 || ce.Transition != TransitionJump {
		t.Fatalf("unexpected effect %+v", ce)
	}

	// No inline colors means fall back to configuration.
	ce, err = parseCustomEffectArgs(map[string]any{"speed_pct": float64(30)})
	if err != nil || ce != nil {
		t.Fatalf("expected nil fallback, got %+v/%v", ce, err)
	}

	bad := []map[string]any{
		{"colors": []any{}},
		{"colors": []any{[]any{float64(1), float64(2)}}},
		{"colors": []any{[]any{float64(1), float64(2), float64(300)}}},
		{"colors": []any{[]any{float64(1), float64(2), float64(3)}}, "transition": "fade"},
		{"colors": []any{[]any{float64(1), float64(2), float64(3)}}, "speed_pct": float64(150)},
	}
	for _, args := range bad {
		if _, err := parseCustomEffectArgs(args); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestExternalIDForHost(t *testing.T) {
	cases := map[string]string{
		"192.168.1.10": "192_168_1_10",
		"bulb.local":   "bulb_local",
		" ":            "",
		"":             "",
	}
	for in, want := range cases {
		if got := externalIDForHost(in); got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestExternalFromHDP(t *testing.T) {
	cases := map[string]string{
		"flux_led/flux/192_168_1_10": "192_168_1_10",
		"192_168_1_10":               "192_168_1_10",
		"/flux_led/x/":               "x",
		"":                           "",
	}
	for in, want := range cases {
		if got := externalFromHDP(in); got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestStatePayloadPerMode(t *testing.T) {
	st := State{On: true, Brightness: 100, Hue: 10, Saturation: 20, WhiteValue: 30, WarmWhite: 40, ColdWhite: 50, Mode: ModeRGB, Effect: EffectColorloop}
	payload := statePayload(st)
	if _, ok := payload["white_value"]; ok {
		t.Fatalf("rgb payload must not carry white_value: %v", payload)
	}
	if payload["effect"] != "colorloop" || payload["on"] != true {
		t.Fatalf("unexpected payload %v", payload)
	}

	st.Mode = ModeRGBW
	payload = statePayload(st)
	if payload["white_value"] != 30 {
		t.Fatalf("rgbw payload missing white_value: %v", payload)
	}
	if _, ok := payload["warm_white"]; ok {
		t.Fatalf("rgbw payload must not carry channel split: %v", payload)
	}

	st.Mode = ModeRGBCW
	payload = statePayload(st)
	if payload["warm_white"] != 40 || payload["cold_white"] != 50 {
		t.Fatalf("rgbcw payload missing channels: %v", payload)
	}
}

func TestCapabilitiesForMode(t *testing.T) {
	props := func(mode Mode) map[string]bool {
		caps, inputs := CapabilitiesForMode(mode)
		if len(caps) != len(inputs) {
			t.Fatalf("%s: capability/input mismatch %d vs %d", mode, len(caps), len(inputs))
		}
		out := map[string]bool{}
		for _, c := range caps {
			out[c.Property] = true
		}
		return out
	}

	rgb := props(ModeRGB)
	if !rgb["color"] || !rgb["effect"] || rgb["white_value"] || rgb["color_temp"] {
		t.Fatalf("unexpected rgb surface %v", rgb)
	}
	rgbw := props(ModeRGBW)
	if !rgbw["white_value"] || !rgbw["color_temp"] {
		t.Fatalf("unexpected rgbw surface %v", rgbw)
	}
	rgbww := props(ModeRGBWW)
	if !rgbww["white_value"] || rgbww["color_temp"] {
		t.Fatalf("unexpected rgbww surface %v", rgbww)
	}
	white := props(ModeWhite)
	if white["color"] || white["effect"] || white["white_value"] {
		t.Fatalf("unexpected white surface %v", white)
	}

	caps, _ := CapabilitiesForMode(ModeRGBW)
	for _, c := range caps {
		if c.Property == "effect" {
			if len(c.Enum) != 22 {
				t.Fatalf("expected 22 selectable effects, got %d", len(c.Enum))
			}
		}
	}

	// Capability lists must marshal for jsonb storage and metadata topics.
	if _, err := json.Marshal(caps); err != nil {
		t.Fatalf("capabilities marshal failed: %v", err)
	}
}

func TestEffectSpeedResolution(t *testing.T) {
	a := New(nil, nil, nil, Options{EffectSpeed: 70})
	if got := a.effectSpeedFor(BulbConfig{}); got != 70 {
		t.Fatalf("expected global speed 70, got %d", got)
	}
	override := 20
	if got := a.effectSpeedFor(BulbConfig{EffectSpeed: &override}); got != 20 {
		t.Fatalf("expected device override 20, got %d", got)
	}
}

func TestOptionDefaults(t *testing.T) {
	a := New(nil, nil, nil, Options{EffectSpeed: -1})
	if a.opts.AdapterID != "flux" || a.opts.TopicPrefix != "smarthome" {
		t.Fatalf("unexpected defaults %+v", a.opts)
	}
	if a.opts.EffectSpeed != 50 {
		t.Fatalf("expected default effect speed 50, got %d", a.opts.EffectSpeed)
	}
	if a.opts.PollInterval <= 0 || a.opts.ScanInterval <= 0 {
		t.Fatalf("expected positive intervals, got %+v", a.opts)
	}
}

func TestHDPDeviceID(t *testing.T) {
	a := New(nil, nil, nil, Options{AdapterID: "flux"})
	if got := a.hdpDeviceID("192_168_1_10"); got != "flux_led/flux/192_168_1_10" {
		t.Fatalf("unexpected hdp id %q", got)
	}
	if got := a.hdpDeviceID("flux_led/flux/x"); got != "flux_led/flux/x" {
		t.Fatalf("qualified id must pass through, got %q", got)
	}
	if got := a.hdpDeviceID("  "); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}
