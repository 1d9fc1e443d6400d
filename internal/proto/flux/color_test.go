package flux

import (
	"math"
	"testing"
)

func TestHueSaturationRoundTrip(t *testing.T) {
	for h := 0.0; h < 360; h += 15 {
		for s := 0.0; s <= 100; s += 10 {
			r, g, b := HSToRGB(h, s)
			gotH, gotS := RGBToHS(r, g, b)
			if s == 0 {
				// Grey has no hue; only saturation must survive.
				if gotS > 1 {
					t.Fatalf("h=%v s=%v: expected grey, got sat %v", h, s, gotS)
				}
				continue
			}
			hueDiff := math.Abs(gotH - h)
			if hueDiff > 180 {
				hueDiff = 360 - hueDiff
			}
			if hueDiff > 2 || math.Abs(gotS-s) > 2 {
				t.Fatalf("h=%v s=%v: round trip gave %v/%v", h, s, gotH, gotS)
			}
		}
	}
}

func TestRGBToHSPrimaries(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		hue     float64
		sat     float64
	}{
		{255, 0, 0, 0, 100},
		{0, 255, 0, 120, 100},
		{0, 0, 255, 240, 100},
		{255, 255, 255, 0, 0},
		{0, 0, 0, 0, 0},
	}
	for _, tc := range cases {
		hue, sat := RGBToHS(tc.r, tc.g, tc.b)
		if hue != tc.hue || sat != tc.sat {
			t.Fatalf("rgb(%d,%d,%d): expected %v/%v, got %v/%v", tc.r, tc.g, tc.b, tc.hue, tc.sat, hue, sat)
		}
	}
}

func TestWhiteChannelsForMired(t *testing.T) {
	// 500 mired is the 2700K floor: warm saturates and drags cold with it.
	warm, cold := whiteChannelsForMired(500, 255)
	if warm != 255 || cold != 255 {
		t.Fatalf("mired 500: expected 255/255, got %d/%d", warm, cold)
	}

	// 153 mired is 6500K: cold only.
	warm, cold = whiteChannelsForMired(153, 255)
	if warm != 0 || cold != 255 {
		t.Fatalf("mired 153: expected 0/255, got %d/%d", warm, cold)
	}

	// White level scales both channels.
	warm, cold = whiteChannelsForMired(500, 128)
	if warm != 128 || cold != 128 {
		t.Fatalf("mired 500 at half white: expected 128/128, got %d/%d", warm, cold)
	}

	// Anywhere the warm channel dominates, cold is forced to match.
	for mired := 300; mired <= 500; mired += 25 {
		warm, cold = whiteChannelsForMired(mired, 255)
		if warm > cold {
			t.Fatalf("mired %d: cold %d below warm %d", mired, cold, warm)
		}
	}
}

func TestClampByte(t *testing.T) {
	cases := map[float64]uint8{
		-3:    0,
		0:     0,
		127.4: 127,
		127.5: 128,
		255:   255,
		300:   255,
	}
	for in, want := range cases {
		if got := clampByte(in); got != want {
			t.Fatalf("clamp(%v): expected %d, got %d", in, want, got)
		}
	}
}
