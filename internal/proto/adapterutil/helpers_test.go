package adapterutil

import (
	"testing"

	"flux-adapter/internal/model"
)

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("bulb\x00name"); got != "bulbname" {
		t.Fatalf("expected NUL stripped, got %q", got)
	}
	if got := SanitizeString(""); got != "" {
		t.Fatalf("expected empty passthrough, got %q", got)
	}
}

func TestSanitizeDeviceStrings(t *testing.T) {
	dev := &model.Device{Name: "a\x00b", Host: "10.0.0.1\x00", Mode: "rgbw"}
	SanitizeDeviceStrings(dev)
	if dev.Name != "ab" || dev.Host != "10.0.0.1" || dev.Mode != "rgbw" {
		t.Fatalf("unexpected device %+v", dev)
	}
	SanitizeDeviceStrings(nil)
}

func TestCoerceBool(t *testing.T) {
	cases := []struct {
		in   any
		want bool
		ok   bool
	}{
		{true, true, true},
		{"ON", true, true},
		{"off", false, true},
		{"1", true, true},
		{"no", false, true},
		{float64(0), false, true},
		{float64(2), true, true},
		{"maybe", false, false},
		{[]any{}, false, false},
	}
	for _, tc := range cases {
		got, ok := CoerceBool(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%v: expected %v/%v, got %v/%v", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestNumericValue(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(1.5), 1.5, true},
		{42, 42, true},
		{"3.25", 3.25, true},
		{"abc", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := NumericValue(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%v: expected %v/%v, got %v/%v", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestStringField(t *testing.T) {
	m := map[string]any{"a": "x", "b": 7}
	if got := StringField(m, "a"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
	if got := StringField(m, "b"); got != "7" {
		t.Fatalf("expected stringified 7, got %q", got)
	}
	if got := StringField(nil, "a"); got != "" {
		t.Fatalf("expected empty for nil map, got %q", got)
	}
}

func TestUniqueStrings(t *testing.T) {
	got := UniqueStrings([]string{"a", "", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
