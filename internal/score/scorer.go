package score

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/crisisverify/internal/model"
)

// Fixed matching policy
const (
	// SignificantTokenLength is the length a token must exceed to take part in matching
	SignificantTokenLength = 3

	// MatchThreshold is the score a best match must exceed to drive the verdict
	MatchThreshold = 0.3

	// IndeterminateConfidence is reported when no usable match exists
	IndeterminateConfidence = 0.45
)

// Reason texts
const (
	ReasonIndeterminate = "Insufficient data to verify; flagged for manual review."
	reasonScam          = "Matches known misinformation pattern (Ref: %s)."
	reasonFalse         = "Official sources confirm this event is NOT occurring (Ref: %s)."
	reasonConfirmed     = "Corroborated by official data (Ref: %s)."
)

// Corpus is the read-only set of reference reports a query is scored against
type Corpus interface {
	Reports() []model.ReferenceReport
}

// Scorer matches queries against reference reports and derives verdicts.
// It holds no state and is safe for concurrent use.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Tokenize lower-cases "text location" and splits it on runs of whitespace
func Tokenize(q model.Query) []string {
	return strings.Fields(strings.ToLower(q.Text + " " + q.Location))
}

// Significant filters out tokens too short to carry meaning (articles, prepositions).
// Length is counted in characters, not bytes.
func Significant(tokens []string) []string {
	significant := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) > SignificantTokenLength {
			significant = append(significant, tok)
		}
	}
	return significant
}

// CountMatches counts significant tokens contained anywhere in content.
// Duplicate tokens each count.
func CountMatches(significant []string, content string) (int, []string) {
	var matched []string
	for _, tok := range significant {
		if strings.Contains(content, tok) {
			matched = append(matched, tok)
		}
	}
	return len(matched), matched
}

// Ratio divides the match count by the full (unfiltered) token count
func Ratio(matchCount, tokenCount int) float64 {
	return float64(matchCount) / float64(max(tokenCount, 1))
}

// ScoreReport scores a tokenized query against a single report
func (s *Scorer) ScoreReport(tokens []string, report model.ReferenceReport) float64 {
	count, _ := CountMatches(Significant(tokens), report.Content())
	return Ratio(count, len(tokens))
}

// Best returns the index of the highest-scoring report and its score.
// Ties keep the first report in corpus order. Returns -1 when the corpus is empty
// or nothing scores above zero.
func (s *Scorer) Best(tokens []string, reports []model.ReferenceReport) (int, float64) {
	significant := Significant(tokens)
	bestIdx := -1
	highest := 0.0

	for i, report := range reports {
		count, _ := CountMatches(significant, report.Content())
		score := Ratio(count, len(tokens))
		if score > highest {
			highest = score
			bestIdx = i
		}
	}

	return bestIdx, highest
}

// Verify returns the verdict for a query. It never fails: an empty corpus or a query
// without significant tokens yields the indeterminate verdict.
func (s *Scorer) Verify(q model.Query, corpus Corpus) model.Verdict {
	return s.Evaluate(q, corpus).Verdict
}

// Evaluate returns the verdict together with a transparent scoring breakdown
func (s *Scorer) Evaluate(q model.Query, corpus Corpus) model.Evaluation {
	tokens := Tokenize(q)
	significant := Significant(tokens)

	var reports []model.ReferenceReport
	if corpus != nil {
		reports = corpus.Reports()
	}

	bestIdx, highest := s.Best(tokens, reports)

	var best *model.ReferenceReport
	var matched []string
	matchCount := 0
	if bestIdx >= 0 {
		best = &reports[bestIdx]
		matchCount, matched = CountMatches(significant, best.Content())
	}

	verdict := MapVerdict(best, highest)

	match := model.Match{
		Score:     highest,
		Threshold: MatchThreshold,
		Accepted:  best != nil && highest > MatchThreshold,
		Data: map[string]interface{}{
			"tokens":             tokens,
			"token_count":        len(tokens),
			"significant_tokens": significant,
			"match_count":        matchCount,
			"matched_tokens":     matched,
			"reports_scored":     len(reports),
			"formula":            "match_count / max(token_count, 1)",
		},
	}
	if best != nil {
		match.ReportID = best.ID
	}

	return model.Evaluation{
		Query:   q,
		Verdict: verdict,
		Match:   match,
	}
}

// MapVerdict maps the best match and its score to a verdict.
// The matched report's confidence is passed through unchanged.
func MapVerdict(best *model.ReferenceReport, highest float64) model.Verdict {
	if best == nil || highest <= MatchThreshold {
		return model.Verdict{
			Status:     model.StatusPending,
			Confidence: IndeterminateConfidence,
			Reason:     ReasonIndeterminate,
		}
	}

	switch best.GroundTruth {
	case model.GroundTruthScam:
		return model.Verdict{
			Status:     model.StatusScam,
			Confidence: best.Confidence,
			Reason:     fmt.Sprintf(reasonScam, best.ID),
		}
	case model.GroundTruthFalse:
		// Shown with the scam badge; "false" has no status of its own
		return model.Verdict{
			Status:     model.StatusScam,
			Confidence: best.Confidence,
			Reason:     fmt.Sprintf(reasonFalse, best.ID),
		}
	default:
		return model.Verdict{
			Status:     model.StatusVerified,
			Confidence: best.Confidence,
			Reason:     fmt.Sprintf(reasonConfirmed, best.ID),
		}
	}
}
