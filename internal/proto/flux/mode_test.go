package flux

import "testing"

func TestDeriveMode(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want Mode
	}{
		{"ww sub-mode wins", Snapshot{SubMode: "ww", RGBWCapable: true}, ModeWhite},
		{"rgbw capable", Snapshot{RGBWCapable: true}, ModeRGBW},
		{"rgbw protocol means plain rgb", Snapshot{RGBWCapable: true, RGBWProtocol: true}, ModeRGB},
		{"default rgb", Snapshot{}, ModeRGB},
	}
	for _, tc := range cases {
		if got := DeriveMode(tc.snap); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"rgb", "rgbw", "rgbcw", "rgbww", "w"} {
		if _, err := ParseMode(valid); err != nil {
			t.Fatalf("%q: unexpected error %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "RGB", "white", "cw"} {
		if _, err := ParseMode(invalid); err == nil {
			t.Fatalf("%q: expected error", invalid)
		}
	}
}

func TestConfiguredTwoChannelModePinned(t *testing.T) {
	// rgbcw and rgbww are not wire-detectable; once configured they never
	// yield to snapshot derivation.
	l, _ := newTestLight(ModeRGBCW, Snapshot{IsOn: true, RGBWCapable: true})
	if err := l.Refresh(); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if got := l.State().Mode; got != ModeRGBCW {
		t.Fatalf("expected pinned rgbcw, got %s", got)
	}

	l, _ = newTestLight(ModeRGB, Snapshot{IsOn: true, RGBWCapable: true})
	if err := l.Refresh(); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if got := l.State().Mode; got != ModeRGBW {
		t.Fatalf("configured rgb must yield to derivation, got %s", got)
	}
}

func TestParseTransition(t *testing.T) {
	for _, valid := range []string{"gradual", "jump", "strobe"} {
		if _, err := ParseTransition(valid); err != nil {
			t.Fatalf("%q: unexpected error %v", valid, err)
		}
	}
	if _, err := ParseTransition("fade"); err == nil {
		t.Fatalf("expected error for unknown transition")
	}
}
