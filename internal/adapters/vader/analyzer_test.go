package vader_test

import (
	"testing"

	"place_pulse/internal/adapters/vader"
)

// Lexicon scores drift between releases, so assert signs, not values.
func TestPolarity_Signs(t *testing.T) {
	a := vader.New()

	pos, err := a.Polarity("Absolutely wonderful, I loved every minute of it!")
	if err != nil {
		t.Fatalf("polarity: %v", err)
	}
	if pos <= 0 {
		t.Fatalf("positive text scored %v", pos)
	}

	neg, err := a.Polarity("Horrible experience, rude staff, terrible food.")
	if err != nil {
		t.Fatalf("polarity: %v", err)
	}
	if neg >= 0 {
		t.Fatalf("negative text scored %v", neg)
	}

	if pos <= neg {
		t.Fatalf("ordering broken: pos %v <= neg %v", pos, neg)
	}
}

func TestPolarity_RangeBound(t *testing.T) {
	a := vader.New()
	for _, text := range []string{
		"ok",
		"the room had a bed and a window",
		"best best best best best",
		"worst worst worst worst worst",
	} {
		p, err := a.Polarity(text)
		if err != nil {
			t.Fatalf("polarity(%q): %v", text, err)
		}
		if p < -1 || p > 1 {
			t.Fatalf("polarity(%q) = %v outside [-1, 1]", text, p)
		}
	}
}
