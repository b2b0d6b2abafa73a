// Package scoring ranks geocoder candidates against the query they should
// answer. All sub-scores are additive and the functions are pure, so scoring
// the same inputs twice always yields the same number.
package scoring

import (
	"strings"

	"github.com/fheinonen/stopfinder/internal/models"
	"github.com/fheinonen/stopfinder/internal/normalize"
)

// Tuned behavioral constants. AmbiguityScoreDelta and WeakTokenLength are
// load-bearing for ranking compatibility; do not adjust them without a
// product decision.
const (
	AmbiguityScoreDelta = 8.0
	WeakTokenLength     = 4

	compactEqualScore       = 100.0
	compactLabelHasQuery    = 65.0
	compactQueryHasLabel    = 25.0
	unorderedCoverageMax    = 60.0
	orderedCoverageMax      = 20.0
	missingTokenPenaltyCap  = 24.0
	missingTokenFlatPenalty = 8.0
	variantTrustMax         = 10
	confidenceBonusMax      = 10.0
	variantScoreBonus       = 4.0
)

// Scorer scores candidate labels against queries. The municipality names are
// treated as weak tokens: common enough in the service area that missing one
// says little about match quality.
type Scorer struct {
	weakWords map[string]bool
}

// NewScorer creates a Scorer that treats the given municipality names as weak tokens.
func NewScorer(municipalities []string) *Scorer {
	weak := make(map[string]bool, len(municipalities))
	for _, muni := range municipalities {
		weak[strings.ToLower(strings.TrimSpace(muni))] = true
	}
	return &Scorer{weakWords: weak}
}

// TokenMatches reports whether two normalized tokens count as a fuzzy match.
// Equal tokens always match. Tokens shorter than 3 runes only match exactly.
// Otherwise one token being a prefix of the other matches, and from length 5
// up a substring containment matches too.
func TokenMatches(a, b string) bool {
	if a == b {
		return true
	}
	shorter, longer := a, b
	if len(b) < len(a) {
		shorter, longer = b, a
	}
	if len(shorter) < 3 {
		return false
	}
	if strings.HasPrefix(longer, shorter) {
		return true
	}
	if len(shorter) >= 5 && strings.Contains(longer, shorter) {
		return true
	}
	return false
}

// Score computes the effective score of a candidate. The label is scored
// against the original query, and again against the candidate's own source
// variant when that differs after normalization; the variant-based score
// carries a small bonus for being found via a corrective variant, and the
// maximum of the two wins.
func (s *Scorer) Score(queryMatch normalize.Match, cand models.GeocodeCandidate) float64 {
	labelMatch := normalize.ForMatch(cand.Label)

	score := s.scoreOnce(queryMatch, labelMatch, cand.VariantIndex, cand.Confidence)

	variantMatch := normalize.ForMatch(cand.VariantText)
	if variantMatch.Joined != queryMatch.Joined {
		alt := s.scoreOnce(variantMatch, labelMatch, cand.VariantIndex, cand.Confidence) + variantScoreBonus
		if alt > score {
			score = alt
		}
	}

	return score
}

// StrongTokenMatches counts how many strong query tokens have any fuzzy match
// in the label. This is the primary ranking key, independent of Score.
func (s *Scorer) StrongTokenMatches(queryMatch normalize.Match, label string) int {
	labelMatch := normalize.ForMatch(label)
	count := 0
	for _, tok := range queryMatch.Tokens {
		if s.isWeakToken(tok) {
			continue
		}
		if matchesAny(tok, labelMatch.Tokens) {
			count++
		}
	}
	return count
}

// scoreOnce evaluates every sub-score of one label against one query form.
func (s *Scorer) scoreOnce(
	query normalize.Match,
	label normalize.Match,
	variantIndex int,
	confidence *float64,
) float64 {
	score := 0.0

	// Compact containment: whole-phrase agreement beats any token arithmetic.
	if query.Compact != "" && label.Compact != "" {
		switch {
		case label.Compact == query.Compact:
			score += compactEqualScore
		case strings.Contains(label.Compact, query.Compact):
			score += compactLabelHasQuery
		case strings.Contains(query.Compact, label.Compact):
			score += compactQueryHasLabel
		}
	}

	if len(query.Tokens) > 0 {
		labelSet := make(map[string]bool, len(label.Tokens))
		for _, tok := range label.Tokens {
			labelSet[tok] = true
		}

		// Unordered coverage: exact membership is worth twice a fuzzy hit.
		covered := 0.0
		for _, tok := range query.Tokens {
			if labelSet[tok] {
				covered++
			} else if matchesAny(tok, label.Tokens) {
				covered += 0.5
			}
		}
		score += unorderedCoverageMax * covered / float64(len(query.Tokens))

		// Ordered coverage: credit only matches found at or after the cursor,
		// rewarding candidates that keep the query's word order.
		cursor := 0
		inOrder := 0
		for _, tok := range query.Tokens {
			for i := cursor; i < len(label.Tokens); i++ {
				if TokenMatches(tok, label.Tokens[i]) {
					inOrder++
					cursor = i + 1
					break
				}
			}
		}
		score += orderedCoverageMax * float64(inOrder) / float64(len(query.Tokens))

		// A strong query token absent from the label is a real mismatch;
		// longer tokens cost more, up to the cap.
		missedStrong := false
		for _, tok := range query.Tokens {
			if s.isWeakToken(tok) || matchesAny(tok, label.Tokens) {
				continue
			}
			missedStrong = true
			penalty := missingTokenFlatPenalty + 2.0*float64(max(0, len(tok)-WeakTokenLength))
			if penalty > missingTokenPenaltyCap {
				penalty = missingTokenPenaltyCap
			}
			score -= penalty
		}
		if missedStrong {
			score -= missingTokenFlatPenalty
		}
	}

	// Earlier variants are more trusted.
	if bonus := variantTrustMax - 2*variantIndex; bonus > 0 {
		score += float64(bonus)
	}

	if confidence != nil {
		conf := *confidence
		if conf < 0 {
			conf = 0
		} else if conf > 1 {
			conf = 1
		}
		score += confidenceBonusMax * conf
	}

	return score
}

func (s *Scorer) isWeakToken(tok string) bool {
	return len(tok) < WeakTokenLength || s.weakWords[tok]
}

func matchesAny(tok string, labelTokens []string) bool {
	for _, lt := range labelTokens {
		if TokenMatches(tok, lt) {
			return true
		}
	}
	return false
}
