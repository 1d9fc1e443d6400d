package flux

import "math"

// RGBToHS converts an RGB triplet to hue (0..360) and saturation (0..100),
// discarding value: the bulb carries brightness on its own channel.
func RGBToHS(r, g, b uint8) (hue, sat float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	delta := maxC - minC

	if maxC > 0 {
		sat = delta / maxC * 100
	}

	if delta > 0 {
		switch maxC {
		case rf:
			hue = 60 * math.Mod((gf-bf)/delta, 6)
		case gf:
			hue = 60 * ((bf-rf)/delta + 2)
		case bf:
			hue = 60 * ((rf-gf)/delta + 4)
		}
	}
	if hue < 0 {
		hue += 360
	}
	return hue, sat
}

// HSToRGB converts hue (0..360) and saturation (0..100) to an RGB triplet at
// full value, the inverse of RGBToHS.
func HSToRGB(hue, sat float64) (r, g, b uint8) {
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	s := math.Min(math.Max(sat/100, 0), 1)
	if s == 0 {
		return 255, 255, 255
	}

	c := s // chroma at full value
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := 1 - c

	var r1, g1, b1 float64
	switch {
	case hue < 60:
		r1, g1, b1 = c, x, 0
	case hue < 120:
		r1, g1, b1 = x, c, 0
	case hue < 180:
		r1, g1, b1 = 0, c, x
	case hue < 240:
		r1, g1, b1 = 0, x, c
	case hue < 300:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}

	r = uint8(math.Round((r1 + m) * 255))
	g = uint8(math.Round((g1 + m) * 255))
	b = uint8(math.Round((b1 + m) * 255))
	return r, g, b
}

// Mired endpoints the platform sends and the kelvin range the bulb firmware
// understands for its two-channel white mode.
const (
	miredWarm = 500
	miredCold = 153

	kelvinMin = 2700
	kelvinMax = 6500
)

// warmVsColdCutoffMired splits single-channel bulbs into a warm bucket and a
// cold bucket; there is no blending on those models.
const warmVsColdCutoffMired = 285

// whiteChannelsForMired maps a mired color temperature onto the warm and
// cold white channels of an RGBCW bulb, scaled by the requested white level.
// When the warm channel dominates, the firmware drives both banks at the
// warm rate, so cold is forced up to match.
func whiteChannelsForMired(mired int, white uint8) (warm, cold uint8) {
	kelvin := (float64(mired)-miredWarm)/(miredCold-miredWarm)*(kelvinMax-kelvinMin) + kelvinMin
	kelvin = math.Max(kelvin-kelvinMin, 0)

	warmF := 255 * (1 - kelvin/3800)
	coldF := math.Min(255*kelvin/3800, 255)

	scale := float64(white) / 255
	warmF *= scale
	coldF *= scale

	if warmF > coldF {
		coldF = warmF
	}
	return clampByte(warmF), clampByte(coldF)
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
