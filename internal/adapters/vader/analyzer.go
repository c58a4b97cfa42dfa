// Package vader scores text polarity with the VADER sentiment lexicon.
package vader

import (
	"fmt"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// Analyzer implements domain.PolarityAnalyzer. The compound score is
// normalized to [-1, 1], matching the classifier's thresholds.
type Analyzer struct{}

func New() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Polarity(text string) (score float64, err error) {
	// The lexicon walk is third-party code fed arbitrary review text; a
	// panic on one record must not take down the whole pass.
	defer func() {
		if r := recover(); r != nil {
			score = 0
			err = fmt.Errorf("vader: scoring failed: %v", r)
		}
	}()

	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	return sentitext.PolarityScore(parsed).Compound, nil
}
