package config

import (
	"fmt"
	"os"

	"flux-adapter/internal/proto/flux"

	"gopkg.in/yaml.v3"
)

// DeviceConfig is one statically configured bulb, keyed by host address in
// the devices file.
type DeviceConfig struct {
	Name string `yaml:"name"`
	// Mode pins the channel layout. rgbcw and rgbww cannot be detected on the
	// wire, so they only ever come from here.
	Mode string `yaml:"mode"`
	// Protocol selects the wire dialect; only "ledenet" is recognized, empty
	// means the default dialect.
	Protocol string `yaml:"protocol"`
	// EffectSpeed overrides the global preset speed for this bulb.
	EffectSpeed *int `yaml:"effect_speed"`
	// CustomEffect is the pattern used when a custom-effect command arrives
	// without an inline pattern.
	CustomEffect *CustomEffectConfig `yaml:"custom_effect"`
}

type CustomEffectConfig struct {
	Colors     [][]int `yaml:"colors"`
	SpeedPct   int     `yaml:"speed_pct"`
	Transition string  `yaml:"transition"`
}

// RGBColors converts the YAML color rows to byte triplets. Validate must have
// accepted the config first.
func (c *CustomEffectConfig) RGBColors() [][3]uint8 {
	out := make([][3]uint8, len(c.Colors))
	for i, row := range c.Colors {
		out[i] = [3]uint8{uint8(row[0]), uint8(row[1]), uint8(row[2])}
	}
	return out
}

type devicesFile struct {
	Devices map[string]DeviceConfig `yaml:"devices"`
}

// LoadDevices reads and validates the static devices file. A missing path
// returns an empty map so the adapter can run discovery-only.
func LoadDevices(path string) (map[string]DeviceConfig, error) {
	if path == "" {
		return map[string]DeviceConfig{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read devices file: %w", err)
	}
	return ParseDevices(raw)
}

// ParseDevices decodes and validates devices file content.
func ParseDevices(raw []byte) (map[string]DeviceConfig, error) {
	var file devicesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse devices file: %w", err)
	}
	if file.Devices == nil {
		file.Devices = map[string]DeviceConfig{}
	}
	for host, dc := range file.Devices {
		if host == "" {
			return nil, fmt.Errorf("devices file: empty host key")
		}
		if dc.Mode == "" {
			dc.Mode = string(flux.ModeRGBW)
			file.Devices[host] = dc
		}
		if _, err := flux.ParseMode(dc.Mode); err != nil {
			return nil, fmt.Errorf("device %s: %w", host, err)
		}
		if dc.Protocol != "" && dc.Protocol != "ledenet" {
			return nil, fmt.Errorf("device %s: unknown protocol %q", host, dc.Protocol)
		}
		if dc.EffectSpeed != nil && (*dc.EffectSpeed < 0 || *dc.EffectSpeed > 100) {
			return nil, fmt.Errorf("device %s: effect speed %d out of range 0..100", host, *dc.EffectSpeed)
		}
		if ce := dc.CustomEffect; ce != nil {
			if err := validateCustomEffect(host, ce); err != nil {
				return nil, err
			}
		}
	}
	return file.Devices, nil
}

func validateCustomEffect(host string, ce *CustomEffectConfig) error {
	if len(ce.Colors) < 1 || len(ce.Colors) > 16 {
		return fmt.Errorf("device %s: custom effect needs 1..16 colors, got %d", host, len(ce.Colors))
	}
	for i, row := range ce.Colors {
		if len(row) != 3 {
			return fmt.Errorf("device %s: custom effect color %d needs 3 components", host, i)
		}
		for _, v := range row {
			if v < 0 || v > 255 {
				return fmt.Errorf("device %s: custom effect color %d component %d out of range 0..255", host, i, v)
			}
		}
	}
	if ce.Transition == "" {
		ce.Transition = string(flux.TransitionGradual)
	}
	return flux.ValidateCustomEffect(ce.RGBColors(), ce.SpeedPct, flux.Transition(ce.Transition))
}
