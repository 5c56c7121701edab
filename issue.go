package docgap

import "time"

// Status is the verdict for a single issue.
type Status string

// Validation statuses, ordered from best to worst documentation coverage.
const (
	StatusResolved     Status = "resolved"
	StatusConfirmed    Status = "confirmed"
	StatusPotentialGap Status = "potential-gap"
	StatusCriticalGap  Status = "critical-gap"
)

// Issue is a developer pain point to validate against the documentation.
// Issues are immutable input.
type Issue struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Frequency    int       `json:"frequency"`
	Sources      []string  `json:"sources"`
	LastSeen     time.Time `json:"lastSeen"`
	Severity     string    `json:"severity"`
	RelatedPages []string  `json:"relatedPages,omitempty"`

	// Optional rich fields. When present they sharpen the semantic query.
	FullContent   string   `json:"fullContent,omitempty"`
	CodeSnippets  []string `json:"codeSnippets,omitempty"`
	ErrorMessages []string `json:"errorMessages,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	StackTrace    string   `json:"stackTrace,omitempty"`
}

// Validate returns an error if the issue cannot be validated.
func (i *Issue) Validate() error {
	if i.ID == "" {
		return Errorf(EINVALID, "issue ID required")
	}
	if i.Title == "" {
		return Errorf(EINVALID, "issue %q: title required", i.ID)
	}
	return nil
}

// CandidatePage is a documentation page that may address an issue.
// Similarity is set only when the page came from semantic search.
type CandidatePage struct {
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// Evidence is what a single candidate page says about an issue.
type Evidence struct {
	PageURL            string   `json:"pageUrl"`
	PageTitle          string   `json:"pageTitle"`
	HasRelevantContent bool     `json:"hasRelevantContent"`
	ContentGaps        []string `json:"contentGaps"`
	CodeExamples       int      `json:"codeExamples"`
	ProductionGuidance bool     `json:"productionGuidance"`
	SemanticScore      *float64 `json:"semanticScore,omitempty"`
}

// PotentialGap describes a closely matching page that still lacks something.
type PotentialGap struct {
	PageURL         string   `json:"pageUrl"`
	PageTitle       string   `json:"pageTitle"`
	SemanticScore   float64  `json:"semanticScore"`
	MissingElements []string `json:"missingElements"`
	Reason          string   `json:"reason"`
}

// ValidationResult is the outcome of validating one issue.
type ValidationResult struct {
	IssueID         string         `json:"issueId"`
	IssueTitle      string         `json:"issueTitle"`
	Status          Status         `json:"status"`
	Evidence        []Evidence     `json:"evidence"`
	MissingElements []string       `json:"missingElements"`
	PotentialGaps   []PotentialGap `json:"potentialGaps"`
	CriticalGaps    []string       `json:"criticalGaps"`
	Confidence      int            `json:"confidence"`
	Recommendations []string       `json:"recommendations"`
}

// Summary counts validation results by status.
type Summary struct {
	TotalIssues   int `json:"totalIssues"`
	Resolved      int `json:"resolved"`
	Confirmed     int `json:"confirmed"`
	PotentialGaps int `json:"potentialGaps"`
	CriticalGaps  int `json:"criticalGaps"`
}

// Summarize counts results by status.
func Summarize(results []*ValidationResult) Summary {
	s := Summary{TotalIssues: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusResolved:
			s.Resolved++
		case StatusConfirmed:
			s.Confirmed++
		case StatusPotentialGap:
			s.PotentialGaps++
		case StatusCriticalGap:
			s.CriticalGaps++
		}
	}
	return s
}

// ValidationRequest is the entry contract of a validation run.
type ValidationRequest struct {
	Issues    []Issue `json:"issues"`
	Domain    string  `json:"domain"`
	SessionID string  `json:"sessionId"`
}

// Validate returns an error if the request is malformed.
func (r *ValidationRequest) Validate() error {
	if r.Domain == "" {
		return Errorf(EINVALID, "domain required")
	}
	if r.SessionID == "" {
		return Errorf(EINVALID, "session ID required")
	}
	for i := range r.Issues {
		if err := r.Issues[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidatorOutput is the result of a validation run.
// Error is set only when the run failed catastrophically.
type ValidatorOutput struct {
	ValidationResults []*ValidationResult   `json:"validationResults"`
	Summary           Summary               `json:"summary"`
	ProcessingTime    int64                 `json:"processingTime"`
	SitemapHealth     *SitemapHealthSummary `json:"sitemapHealth,omitempty"`
	Error             string                `json:"error,omitempty"`
}
