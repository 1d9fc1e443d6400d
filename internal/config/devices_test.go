package config

import (
	"testing"

	"flux-adapter/internal/proto/flux"
)

func TestParseDevices(t *testing.T) {
	raw := []byte(`
devices:
  192.168.1.10:
    name: Kitchen strip
    mode: rgbcw
    effect_speed: 70
  192.168.1.11:
    name: Hallway
    protocol: ledenet
    custom_effect:
      colors:
        - [255, 0, 0]
        - [0, 0, 255]
      speed_pct: 30
      transition: jump
`)
	devices, err := ParseDevices(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}

	kitchen := devices["192.168.1.10"]
	if kitchen.Name != "Kitchen strip" || kitchen.Mode != "rgbcw" {
		t.Fatalf("unexpected device %+v", kitchen)
	}
	if kitchen.EffectSpeed == nil || *kitchen.EffectSpeed != 70 {
		t.Fatalf("unexpected effect speed %+v", kitchen.EffectSpeed)
	}

	hallway := devices["192.168.1.11"]
	if hallway.Mode != string(flux.ModeRGBW) {
		t.Fatalf("expected default rgbw mode, got %q", hallway.Mode)
	}
	ce := hallway.CustomEffect
	if ce == nil || ce.SpeedPct != 30 || ce.Transition != "jump" {
		t.Fatalf("unexpected custom effect %+v", ce)
	}
	colors := ce.RGBColors()
	if len(colors) != 2 || colors[0] != [3]uint8{255, 0, 0} || colors[1] != [3]uint8{0, 0, 255} {
		t.Fatalf("unexpected colors %v", colors)
	}
}

func TestParseDevicesDefaultsTransition(t *testing.T) {
	raw := []byte(`
devices:
  10.0.0.1:
    custom_effect:
      colors: [[1, 2, 3]]
      speed_pct: 50
`)
	devices, err := ParseDevices(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := devices["10.0.0.1"].CustomEffect.Transition; got != string(flux.TransitionGradual) {
		t.Fatalf("expected gradual default, got %q", got)
	}
}

func TestParseDevicesValidation(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"bad mode", "devices:\n  10.0.0.1:\n    mode: disco\n"},
		{"bad protocol", "devices:\n  10.0.0.1:\n    protocol: espurna\n"},
		{"speed out of range", "devices:\n  10.0.0.1:\n    effect_speed: 130\n"},
		{"no colors", "devices:\n  10.0.0.1:\n    custom_effect:\n      colors: []\n"},
		{"short color row", "devices:\n  10.0.0.1:\n    custom_effect:\n      colors: [[1, 2]]\n"},
		{"component out of range", "devices:\n  10.0.0.1:\n    custom_effect:\n      colors: [[1, 2, 300]]\n"},
		{"bad transition", "devices:\n  10.0.0.1:\n    custom_effect:\n      colors: [[1, 2, 3]]\n      transition: fade\n"},
		{"custom speed out of range", "devices:\n  10.0.0.1:\n    custom_effect:\n      colors: [[1, 2, 3]]\n      speed_pct: 101\n"},
	}
	for _, tc := range cases {
		if _, err := ParseDevices([]byte(tc.raw)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestParseDevicesEmpty(t *testing.T) {
	devices, err := ParseDevices([]byte(""))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(devices) != 0 {
		t.Fatalf("expected no devices, got %v", devices)
	}
}

func TestLoadDevicesMissingPath(t *testing.T) {
	devices, err := LoadDevices("")
	if err != nil {
		t.Fatalf("expected empty result for unset path, got %v", err)
	}
	if len(devices) != 0 {
		t.Fatalf("expected no devices, got %v", devices)
	}
}
