package docgap

import (
	"fmt"
	"strings"
)

// Similarity thresholds used by the classifier. Comparisons are strict.
const (
	ResolvedThreshold     = 0.85
	PotentialGapThreshold = 0.6
)

// Classification is the verdict derived from an issue's evidence.
type Classification struct {
	Status          Status
	Confidence      int
	MissingElements []string
	PotentialGaps   []PotentialGap
	CriticalGaps    []string
}

// Classify applies the status decision table to evidence. The first
// matching rule wins:
//
//  1. no evidence: critical-gap, 95
//  2. a relevant page with no gaps scoring above 0.85: resolved, 90
//  3. a page scoring above 0.6: potential-gap, 75
//  4. a relevant page: confirmed, 70
//  5. otherwise: critical-gap, 85
func Classify(evidence []Evidence) Classification {
	missing := MissingElements(evidence)

	if len(evidence) == 0 {
		return Classification{
			Status:          StatusCriticalGap,
			Confidence:      95,
			MissingElements: missing,
			CriticalGaps:    []string{"No documentation pages found for this issue"},
		}
	}

	for _, e := range evidence {
		if e.HasRelevantContent && len(e.ContentGaps) == 0 && score(e) > ResolvedThreshold {
			return Classification{
				Status:          StatusResolved,
				Confidence:      90,
				MissingElements: missing,
			}
		}
	}

	var potential []PotentialGap
	for _, e := range evidence {
		if s := score(e); s > PotentialGapThreshold {
			potential = append(potential, PotentialGap{
				PageURL:         e.PageURL,
				PageTitle:       e.PageTitle,
				SemanticScore:   s,
				MissingElements: e.ContentGaps,
				Reason:          potentialGapReason(s, e.ContentGaps),
			})
		}
	}
	if len(potential) > 0 {
		return Classification{
			Status:          StatusPotentialGap,
			Confidence:      75,
			MissingElements: missing,
			PotentialGaps:   potential,
		}
	}

	for _, e := range evidence {
		if e.HasRelevantContent {
			return Classification{
				Status:          StatusConfirmed,
				Confidence:      70,
				MissingElements: missing,
			}
		}
	}

	critical := append([]string(nil), missing...)
	if len(critical) == 0 {
		critical = append(critical, "No relevant documentation content found")
	}
	return Classification{
		Status:          StatusCriticalGap,
		Confidence:      85,
		MissingElements: missing,
		CriticalGaps:    critical,
	}
}

// MissingElements returns the union of content gaps across evidence,
// deduplicated in first-seen order. It never returns nil.
func MissingElements(evidence []Evidence) []string {
	seen := make(map[string]bool)
	missing := []string{}
	for _, e := range evidence {
		for _, gap := range e.ContentGaps {
			if !seen[gap] {
				seen[gap] = true
				missing = append(missing, gap)
			}
		}
	}
	return missing
}

func score(e Evidence) float64 {
	if e.SemanticScore == nil {
		return 0
	}
	return *e.SemanticScore
}

func potentialGapReason(score float64, gaps []string) string {
	if len(gaps) == 0 {
		return fmt.Sprintf("Page is semantically similar (%.2f) but does not fully address the issue", score)
	}
	return fmt.Sprintf("Page is semantically similar (%.2f) but is missing: %s", score, strings.Join(gaps, "; "))
}
