package docgap

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxRecommendations caps the number of recommendations per issue.
const MaxRecommendations = 5

var numberedLineRe = regexp.MustCompile(`^\d+\.\s+`)

// ParseRecommendations splits model output into recommendations. A line
// starting with a number and a period opens a new recommendation; every other
// line, indented numbered sub-steps included, belongs to the current one
// verbatim. Text before the first numbered
// line is dropped, numbered lines inside a fenced code block do not split,
// and at most MaxRecommendations are returned.
func ParseRecommendations(text string) []string {
	var (
		recs    []string
		current strings.Builder
		started bool
		inFence bool
	)

	flush := func() {
		if !started {
			return
		}
		if rec := strings.TrimSpace(current.String()); rec != "" {
			recs = append(recs, rec)
		}
		current.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		if !inFence && numberedLineRe.MatchString(line) {
			flush()
			started = true
			current.WriteString(numberedLineRe.ReplaceAllString(line, ""))
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !started {
			continue
		}
		current.WriteString("\n")
		current.WriteString(line)
	}
	flush()

	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	return recs
}

// GenericRecommendations returns advice for an issue with no closely
// matching documentation page. No model call is involved.
func GenericRecommendations(issue *Issue) []string {
	topic := strings.ToLower(issue.Title)
	return []string{
		fmt.Sprintf("Create a dedicated guide covering %q with a step-by-step walkthrough", topic),
		"Add complete, copy-pasteable code examples showing the recommended setup",
		"Document the common errors developers hit and how to troubleshoot them",
		"Link the new content from related pages and the getting-started guide",
	}
}

// FallbackRecommendations returns advice used when generating tailored
// recommendations failed.
func FallbackRecommendations(issue *Issue) []string {
	topic := strings.ToLower(issue.Title)
	return []string{
		fmt.Sprintf("Review the existing documentation for %q and fill in missing steps", topic),
		"Add code examples that cover the scenario reported by developers",
		"Add a troubleshooting section with the exact error messages developers see",
		"Clarify production and configuration requirements with concrete values",
	}
}
