package app_test

import (
	"context"
	"errors"
	"testing"

	"place_pulse/internal/app"
	"place_pulse/internal/domain"
)

func strp(s string) *string { return &s }

// ---- fakes ----

// stubAnalyzer scores by lookup; unknown text is an analyzer fault.
type stubAnalyzer struct {
	scores map[string]float64
}

func (a *stubAnalyzer) Polarity(text string) (float64, error) {
	if p, ok := a.scores[text]; ok {
		return p, nil
	}
	return 0, errors.New("analyzer exploded")
}

type fakeClassifyStore struct {
	items   []domain.UnlabeledFeedback
	applied map[int64]string
	flushes []int
}

func (s *fakeClassifyStore) ListUnlabeled(ctx context.Context) ([]domain.UnlabeledFeedback, error) {
	return s.items, nil
}

func (s *fakeClassifyStore) ApplyLabels(ctx context.Context, updates []domain.LabelUpdate) error {
	if s.applied == nil {
		s.applied = map[int64]string{}
	}
	for _, u := range updates {
		s.applied[u.FeedbackID] = u.Label
	}
	s.flushes = append(s.flushes, len(updates))
	return nil
}

// ---- tests ----

func TestLabelForPolarity_Thresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.5, domain.SentimentPositive},
		{0.11, domain.SentimentPositive},
		{0.1, domain.SentimentNeutral}, // boundary is neutral
		{0.0, domain.SentimentNeutral},
		{-0.1, domain.SentimentNeutral}, // boundary is neutral
		{-0.11, domain.SentimentNegative},
		{-0.9, domain.SentimentNegative},
	}
	for _, c := range cases {
		if got := app.LabelForPolarity(c.score); got != c.want {
			t.Fatalf("LabelForPolarity(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestClassify_EmptyTextIsNeutral(t *testing.T) {
	// Analyzer would fault on any call; empty text must never reach it.
	svc := app.NewClassificationService(&fakeClassifyStore{}, &stubAnalyzer{}, 0)
	for _, text := range []string{"", "   ", "\t\n"} {
		if got := svc.Classify(text); got != domain.SentimentNeutral {
			t.Fatalf("Classify(%q) = %q, want neutral", text, got)
		}
	}
}

func TestRun_LabelsAndCounters(t *testing.T) {
	store := &fakeClassifyStore{items: []domain.UnlabeledFeedback{
		{ID: 1, Text: strp("loved it")},
		{ID: 2, Text: strp("terrible")},
		{ID: 3, Text: strp("it exists")},
		{ID: 4, Text: nil},
		{ID: 5, Text: strp("unscoreable")},
	}}
	an := &stubAnalyzer{scores: map[string]float64{
		"loved it":  0.8,
		"terrible":  -0.7,
		"it exists": 0.02,
	}}

	svc := app.NewClassificationService(store, an, 100)
	c, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if c.Scanned != 5 || c.Positive != 1 || c.Negative != 1 || c.Neutral != 3 {
		t.Fatalf("counters: %+v", c)
	}
	if c.Faults != 1 {
		t.Fatalf("faults = %d, want 1", c.Faults)
	}
	want := map[int64]string{
		1: domain.SentimentPositive,
		2: domain.SentimentNegative,
		3: domain.SentimentNeutral,
		4: domain.SentimentNeutral,
		5: domain.SentimentNeutral, // fault degrades to neutral
	}
	for id, label := range want {
		if store.applied[id] != label {
			t.Fatalf("feedback %d labeled %q, want %q", id, store.applied[id], label)
		}
	}
}

func TestRun_FlushCadence(t *testing.T) {
	var items []domain.UnlabeledFeedback
	scores := map[string]float64{"ok": 0.5}
	for i := int64(1); i <= 5; i++ {
		items = append(items, domain.UnlabeledFeedback{ID: i, Text: strp("ok")})
	}
	store := &fakeClassifyStore{items: items}

	svc := app.NewClassificationService(store, &stubAnalyzer{scores: scores}, 2)
	c, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.Flushes != 3 {
		t.Fatalf("flushes = %d, want 3 (2+2+1)", c.Flushes)
	}
	if got := store.flushes; len(got) != 3 || got[0] != 2 || got[1] != 2 || got[2] != 1 {
		t.Fatalf("flush sizes = %v, want [2 2 1]", got)
	}
}

func TestRun_NothingToDo(t *testing.T) {
	store := &fakeClassifyStore{}
	svc := app.NewClassificationService(store, &stubAnalyzer{}, 10)
	c, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.Scanned != 0 || c.Flushes != 0 || len(store.flushes) != 0 {
		t.Fatalf("expected no work, got %+v", c)
	}
}
