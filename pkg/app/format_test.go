package app

import "testing"

func TestFormatDistance(t *testing.T) {
	cases := []struct {
		meters float64
		want   string
	}{
		{950.0, "0.95 km"},
		{0, "0.00 km"},
		{12345, "12.35 km"},
	}
	for _, c := range cases {
		if got := FormatDistance(c.meters); got != c.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", c.meters, got, c.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{180.0, "3.0 min"},
		{0, "0.0 min"},
		{90, "1.5 min"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.seconds); got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestFormatCoordinateComponent(t *testing.T) {
	if got := FormatCoordinateComponent(40.742); got != "40.742000" {
		t.Errorf("FormatCoordinateComponent(40.742) = %q", got)
	}
}
