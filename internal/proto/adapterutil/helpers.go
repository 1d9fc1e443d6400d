package adapterutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"flux-adapter/internal/model"
)

func SanitizeString(s string) string {
	if s == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}

func SanitizeDeviceStrings(dev *model.Device) {
	if dev == nil {
		return
	}
	dev.ExternalID = SanitizeString(dev.ExternalID)
	dev.Host = SanitizeString(dev.Host)
	dev.Name = SanitizeString(dev.Name)
	dev.Mode = SanitizeString(dev.Mode)
	dev.Manufacturer = SanitizeString(dev.Manufacturer)
	dev.Model = SanitizeString(dev.Model)
}

func StringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case string:
			return val
		case fmt.Stringer:
			return val.String()
		default:
			return fmt.Sprint(val)
		}
	}
	return ""
}

func CoerceBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		s := strings.TrimSpace(strings.ToLower(val))
		if s == "on" || s == "true" || s == "1" || s == "yes" {
			return true, true
		}
		if s == "off" || s == "false" || s == "0" || s == "no" {
			return false, true
		}
	case float64:
		return val != 0, true
	case float32:
		return val != 0, true
	case int:
		return val != 0, true
	case int64:
		return val != 0, true
	}
	return false, false
}

func NumericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func UniqueStrings(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
