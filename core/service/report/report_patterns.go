package report

import (
	"math"
	"sort"

	"report_server/core/domain"
)

// scoreThreshold separates positive from negative, inclusive on the
// positive side.
const scoreThreshold = 5.0

// neutralScore is assumed for entries whose day has no sentiment score.
const neutralScore = 5.0

const (
	maxPatterns = 10
	maxThemes   = 5
)

// scoreIndex looks up a day's score by ISO date string, defaulting missing
// days to neutral rather than excluding them.
type scoreIndex map[string]float64

func indexScores(scores []domain.DailyScore) scoreIndex {
	idx := make(scoreIndex, len(scores))
	for _, s := range scores {
		idx[s.Date] = s.Score
	}
	return idx
}

func (idx scoreIndex) lookup(date string) float64 {
	if score, ok := idx[date]; ok {
		return score
	}
	return neutralScore
}

// MinePatterns groups tag occurrences across entries, joins each occurrence
// to its day's score, and returns per-tag aggregates ranked by impact
// (frequency times deviation of the average from neutral), truncated to the
// top 10. Ties keep first-seen order: tag order is tracked explicitly so the
// result never depends on map iteration.
func (a *Analyzer) MinePatterns(entries []*domain.DiaryEntry, scores []domain.DailyScore) []domain.Pattern {
	idx := indexScores(scores)

	tagScores := make(map[string][]float64)
	var tagOrder []string

	for _, entry := range entries {
		score := idx.lookup(entry.RecordDateISO())
		for _, tag := range entry.Tags {
			if _, seen := tagScores[tag]; !seen {
				tagOrder = append(tagOrder, tag)
			}
			tagScores[tag] = append(tagScores[tag], score)
		}
	}

	patterns := make([]domain.Pattern, 0, len(tagOrder))
	for _, tag := range tagOrder {
		values := tagScores[tag]
		avg := round1(mean(values))

		correlation := domain.EvaluationNegative
		if avg >= scoreThreshold {
			correlation = domain.EvaluationPositive
		}

		patterns = append(patterns, domain.Pattern{
			Type:         a.classifier.Classify(tag),
			Value:        tag,
			Correlation:  correlation,
			Frequency:    len(values),
			AverageScore: avg,
		})
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patternImpact(patterns[i]) > patternImpact(patterns[j])
	})

	if len(patterns) > maxPatterns {
		patterns = patterns[:maxPatterns]
	}
	return patterns
}

func patternImpact(p domain.Pattern) float64 {
	return float64(p.Frequency) * math.Abs(p.AverageScore-scoreThreshold)
}

// ExtractThemes returns the up-to-5 most frequent tags among entries whose
// day score matches the evaluation polarity (>= threshold for positive,
// < threshold for negative). Ties keep first-seen order.
func (a *Analyzer) ExtractThemes(entries []*domain.DiaryEntry, scores []domain.DailyScore, evaluation domain.Evaluation) []string {
	idx := indexScores(scores)

	counts := make(map[string]int)
	var order []string

	for _, entry := range entries {
		score := idx.lookup(entry.RecordDateISO())

		matches := score >= scoreThreshold
		if evaluation == domain.EvaluationNegative {
			matches = score < scoreThreshold
		}
		if !matches {
			continue
		}

		for _, tag := range entry.Tags {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxThemes {
		order = order[:maxThemes]
	}
	return order
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
