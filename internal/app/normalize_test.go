package app_test

import (
	"testing"
	"time"

	"place_pulse/internal/app"
)

func TestNullify(t *testing.T) {
	cases := []struct {
		in   string
		want *string
	}{
		{"", nil},
		{"   ", nil},
		{"nan", nil},
		{"NaN", nil},
		{"NONE", nil},
		{"  Cafe X  ", strp("Cafe X")},
		{"nanette", strp("nanette")},
	}
	for _, c := range cases {
		got := app.Nullify(c.in)
		if (got == nil) != (c.want == nil) {
			t.Fatalf("Nullify(%q) = %v, want %v", c.in, got, c.want)
		}
		if got != nil && *got != *c.want {
			t.Fatalf("Nullify(%q) = %q, want %q", c.in, *got, *c.want)
		}
	}
}

func TestIntOrNull(t *testing.T) {
	if got := app.IntOrNull("4.0"); got == nil || *got != 4 {
		t.Fatalf("IntOrNull(4.0) = %v, want 4", got)
	}
	if got := app.IntOrNull("5"); got == nil || *got != 5 {
		t.Fatalf("IntOrNull(5) = %v, want 5", got)
	}
	for _, in := range []string{"", "nan", "abc", "NaN"} {
		if got := app.IntOrNull(in); got != nil {
			t.Fatalf("IntOrNull(%q) = %v, want nil", in, *got)
		}
	}
}

func TestFloatOrNull(t *testing.T) {
	if got := app.FloatOrNull("42.336216"); got == nil || *got != 42.336216 {
		t.Fatalf("FloatOrNull = %v", got)
	}
	for _, in := range []string{"", "none", "+Inf", "-Inf", "not a number"} {
		if got := app.FloatOrNull(in); got != nil {
			t.Fatalf("FloatOrNull(%q) = %v, want nil", in, *got)
		}
	}
}

func TestCanonicalPostal(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"02116.0", "02116"},
		{"02116", "02116"},
		{"90210.00", "90210"},
		{"1234.5", "1234.5"}, // non-zero fraction passes through
		{"EC1A 1BB", "EC1A 1BB"},
		{" 02116.0 ", "02116"},
	}
	for _, c := range cases {
		got := app.CanonicalPostal(c.in)
		if got == nil || *got != c.want {
			t.Fatalf("CanonicalPostal(%q) = %v, want %q", c.in, got, c.want)
		}
	}
	if got := app.CanonicalPostal("nan"); got != nil {
		t.Fatalf("CanonicalPostal(nan) = %v, want nil", *got)
	}
}

func TestTimestampOrNull(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2016-07-01T00:00:00Z", time.Date(2016, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"2016-07-01T12:30:00", time.Date(2016, 7, 1, 12, 30, 0, 0, time.UTC)},
		{"2016-07-01 12:30:00", time.Date(2016, 7, 1, 12, 30, 0, 0, time.UTC)},
		{"2016-07-01", time.Date(2016, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got := app.TimestampOrNull(c.in)
		if got == nil || !got.Equal(c.want) {
			t.Fatalf("TimestampOrNull(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	for _, in := range []string{"", "nan", "July 1st"} {
		if got := app.TimestampOrNull(in); got != nil {
			t.Fatalf("TimestampOrNull(%q) = %v, want nil", in, *got)
		}
	}
}
