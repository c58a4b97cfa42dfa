package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"place_pulse/internal/adapters/observability"
	"place_pulse/internal/domain"
)

// Polarity thresholds. Scores at exactly ±0.1 resolve to neutral.
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

type ClassifyCounters struct {
	Scanned  int64
	Positive int64
	Neutral  int64
	Negative int64
	Faults   int64
	Flushes  int
}

// ClassificationService labels every feedback event whose sentiment is still
// null. Labels are flushed transactionally at a fixed cadence, matching the
// import pipeline's batching discipline.
type ClassificationService struct {
	store     domain.ClassifyStore
	analyzer  domain.PolarityAnalyzer
	batchSize int
}

func NewClassificationService(store domain.ClassifyStore, analyzer domain.PolarityAnalyzer, batchSize int) *ClassificationService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ClassificationService{store: store, analyzer: analyzer, batchSize: batchSize}
}

// LabelForPolarity maps a polarity score in [-1, 1] to a sentiment label.
func LabelForPolarity(p float64) string {
	switch {
	case p > positiveThreshold:
		return domain.SentimentPositive
	case p < negativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// Classify labels a single text. Empty or whitespace-only text is neutral
// without scoring; an analyzer fault degrades to neutral rather than
// aborting the pass.
func (s *ClassificationService) Classify(text string) string {
	label, _ := s.classifyOne(text)
	return label
}

func (s *ClassificationService) classifyOne(text string) (label string, fault bool) {
	if strings.TrimSpace(text) == "" {
		return domain.SentimentNeutral, false
	}
	p, err := s.analyzer.Polarity(text)
	if err != nil {
		return domain.SentimentNeutral, true
	}
	return LabelForPolarity(p), false
}

// Run scans all unlabeled feedback and writes labels in batches.
func (s *ClassificationService) Run(ctx context.Context) (ClassifyCounters, error) {
	items, err := s.store.ListUnlabeled(ctx)
	if err != nil {
		return ClassifyCounters{}, fmt.Errorf("list unlabeled feedback: %w", err)
	}
	log.Info().Int("unlabeled", len(items)).Msg("classification pass starting")

	var c ClassifyCounters
	pending := make([]domain.LabelUpdate, 0, s.batchSize)
	for _, it := range items {
		c.Scanned++

		text := ""
		if it.Text != nil {
			text = *it.Text
		}
		label, fault := s.classifyOne(text)
		if fault {
			c.Faults++
			log.Warn().Int64("feedback_id", it.ID).Msg("polarity analysis failed, labeled neutral")
		}
		switch label {
		case domain.SentimentPositive:
			c.Positive++
		case domain.SentimentNegative:
			c.Negative++
		default:
			c.Neutral++
		}
		observability.ObserveClassified(label)

		pending = append(pending, domain.LabelUpdate{FeedbackID: it.ID, Label: label})
		if len(pending) >= s.batchSize {
			if err := s.store.ApplyLabels(ctx, pending); err != nil {
				return c, fmt.Errorf("apply labels: %w", err)
			}
			c.Flushes++
			log.Info().Int64("scanned", c.Scanned).Msg("label batch applied")
			pending = pending[:0]
		}
	}

	if len(pending) > 0 {
		if err := s.store.ApplyLabels(ctx, pending); err != nil {
			return c, fmt.Errorf("apply final labels: %w", err)
		}
		c.Flushes++
	}
	return c, nil
}
