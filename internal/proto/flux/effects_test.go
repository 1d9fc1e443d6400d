package flux

import "testing"

func TestEffectCodeTable(t *testing.T) {
	// Wire-compatibility table; any change here breaks real bulbs.
	want := map[Effect]byte{
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
	if len(effectCodes) != len(want) {
		t.Fatalf("expected %d preset codes, got %d", len(want), len(effectCodes))
	}
	for effect, code := range want {
		got, ok := presetCode(effect)
		if !ok || got != code {
			t.Fatalf("%s: expected 0x%02X, got 0x%02X (ok=%v)", effect, code, got, ok)
		}
		if back := effectForCode(code); back != effect {
			t.Fatalf("0x%02X: expected %s, got %s", code, effect, back)
		}
	}
}

func TestEffectForCodeSpecials(t *testing.T) {
	if got := effectForCode(0x60); got != EffectCustom {
		t.Fatalf("0x60: expected custom, got %q", got)
	}
	if got := effectForCode(0x00); got != "" {
		t.Fatalf("unmapped code: expected none, got %q", got)
	}
}

func TestParseEffect(t *testing.T) {
	cases := []struct {
		name string
		want Effect
		ok   bool
	}{
		{"colorjump", EffectColorjump, true},
		{"random", EffectRandom, true},
		{"custom", EffectCustom, true},
		{"disco", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseEffect(tc.name)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%q: expected %q/%v, got %q/%v", tc.name, tc.want, tc.ok, got, ok)
		}
	}
}

func TestEffectNames(t *testing.T) {
	names := EffectNames()
	if len(names) != len(effectCodes)+2 {
		t.Fatalf("expected %d names, got %d", len(effectCodes)+2, len(names))
	}
	if names[len(names)-2] != "random" || names[len(names)-1] != "custom" {
		t.Fatalf("expected random and custom last, got %v", names[len(names)-2:])
	}
	for i := 1; i < len(names)-2; i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("preset names not sorted: %v", names)
		}
	}
}
