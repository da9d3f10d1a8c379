package sentiment

import (
	"github.com/jonreiter/govader"
)

// Scorer produces a compound sentiment score in [-1, 1] for a block of text
type Scorer interface {
	Score(text string) float64
}

// Compile-time check
var _ Scorer = (*VaderScorer)(nil)

// VaderScorer scores text with the VADER lexicon model. VADER is tuned for
// short social-media text, which matches the post/comment/headline inputs
// this pipeline feeds it.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer creates a scorer with the default VADER lexicon
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Score returns the compound polarity of the text
func (s *VaderScorer) Score(text string) float64 {
	return s.analyzer.PolarityScores(text).Compound
}
