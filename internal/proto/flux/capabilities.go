package flux

import "flux-adapter/internal/model"

const (
	Manufacturer = "FluxLED/Magic Home"
	ModelName    = "LED Lights"
)

var rw = model.CapabilityAccess{Read: true, Write: true}

// CapabilitiesForMode builds the entity metadata for a bulb in the given
// channel layout. Unlike protocols that self-describe their features, Flux
// bulbs expose a fixed surface per mode.
func CapabilitiesForMode(mode Mode) ([]model.Capability, []model.DeviceInput) {
	caps := []model.Capability{
		{ID: "state", Name: "State", Kind: "light", Property: "state", ValueType: "boolean", Access: rw},
		{ID: "brightness", Name: "Brightness", Kind: "light", Property: "brightness", ValueType: "number",
			Access: rw, Range: &model.CapabilityRange{Min: 0, Max: 255, Step: 1}},
	}
	inputs := []model.DeviceInput{
		{ID: "state", Label: "State", Type: "toggle", CapabilityID: "state", Property: "state",
			Options: []model.InputOption{{Value: "OFF", Label: "Off"}, {Value: "ON", Label: "On"}}},
		{ID: "brightness", Label: "Brightness", Type: "slider", CapabilityID: "brightness", Property: "brightness",
			Range: &model.CapabilityRange{Min: 0, Max: 255, Step: 1}},
	}

	if mode != ModeWhite {
		caps = append(caps,
			model.Capability{ID: "color", Name: "Color", Kind: "light", Property: "color", ValueType: "object", Access: rw},
			model.Capability{ID: "effect", Name: "Effect", Kind: "light", Property: "effect", ValueType: "enum",
				Access: rw, Enum: EffectNames()})
		effectOpts := make([]model.InputOption, 0, len(EffectNames()))
		for _, name := range EffectNames() {
			effectOpts = append(effectOpts, model.InputOption{Value: name, Label: name})
		}
		inputs = append(inputs,
			model.DeviceInput{ID: "color", Label: "Color", Type: "color", CapabilityID: "color", Property: "color"},
			model.DeviceInput{ID: "effect", Label: "Effect", Type: "select", CapabilityID: "effect", Property: "effect",
				Options: effectOpts})
	}

	if mode == ModeRGBW || mode == ModeRGBCW || mode == ModeRGBWW {
		whiteRange := &model.CapabilityRange{Min: 0, Max: 255, Step: 1}
		caps = append(caps, model.Capability{ID: "white_value", Name: "White Level", Kind: "light",
			Property: "white_value", ValueType: "number", Access: rw, Range: whiteRange})
		inputs = append(inputs, model.DeviceInput{ID: "white_value", Label: "White Level", Type: "slider",
			CapabilityID: "white_value", Property: "white_value", Range: whiteRange})
	}

	if mode == ModeRGBW || mode == ModeRGBCW {
		tempRange := &model.CapabilityRange{Min: 153, Max: 500, Step: 1}
		caps = append(caps, model.Capability{ID: "color_temp", Name: "Color Temperature", Kind: "light",
			Property: "color_temp", ValueType: "number", Unit: "mired", Access: rw, Range: tempRange})
		inputs = append(inputs, model.DeviceInput{ID: "color_temp", Label: "Color Temperature", Type: "slider",
			CapabilityID: "color_temp", Property: "color_temp", Range: tempRange})
	}

	return caps, inputs
}
