package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/docgap"
	"golang.org/x/sync/errgroup"
)

// Validator runs the validation pipeline for a batch of issues.
type Validator struct {
	Retriever   *Retriever
	Evidence    *EvidenceExtractor
	Recommender *Recommender

	// Health is optional. When nil the output carries no sitemap health.
	Health *HealthChecker

	// Store persists run output. Progress is optional.
	Store    docgap.ObjectStore
	Progress docgap.ProgressPublisher
	Logger   *slog.Logger
}

// ValidateIssue gathers evidence for issue from domain's documentation and
// classifies it.
func (v *Validator) ValidateIssue(ctx context.Context, issue *docgap.Issue, domain string) *docgap.ValidationResult {
	candidates := v.Retriever.Candidates(ctx, issue, domain)
	if len(candidates) == 0 {
		c := docgap.Classify(nil)
		return &docgap.ValidationResult{
			IssueID:         issue.ID,
			IssueTitle:      issue.Title,
			Status:          c.Status,
			Evidence:        []docgap.Evidence{},
			MissingElements: c.MissingElements,
			PotentialGaps:   []docgap.PotentialGap{},
			CriticalGaps:    c.CriticalGaps,
			Confidence:      c.Confidence,
			Recommendations: docgap.GenericRecommendations(issue),
		}
	}

	evidence := make([]docgap.Evidence, 0, len(candidates))
	for _, page := range candidates {
		evidence = append(evidence, v.Evidence.Extract(ctx, issue, page))
	}

	c := docgap.Classify(evidence)
	result := &docgap.ValidationResult{
		IssueID:         issue.ID,
		IssueTitle:      issue.Title,
		Status:          c.Status,
		Evidence:        evidence,
		MissingElements: c.MissingElements,
		PotentialGaps:   c.PotentialGaps,
		CriticalGaps:    c.CriticalGaps,
		Confidence:      c.Confidence,
		Recommendations: v.Recommender.Recommend(ctx, issue, evidence),
	}
	if result.PotentialGaps == nil {
		result.PotentialGaps = []docgap.PotentialGap{}
	}
	if result.CriticalGaps == nil {
		result.CriticalGaps = []string{}
	}
	return result
}

// Run validates every issue in req concurrently with a sitemap health
// check, persists the output under docgap.ResultsKey and returns it.
// Cancelling ctx does not abort a run that has started.
func (v *Validator) Run(ctx context.Context, req *docgap.ValidationRequest) (*docgap.ValidatorOutput, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	log := discard(v.Logger).With("session", req.SessionID, "domain", req.Domain)
	begin := time.Now()
	total := len(req.Issues)

	v.publish(ctx, req.SessionID, docgap.ProgressEvent{
		Type:    docgap.ProgressStarted,
		Message: fmt.Sprintf("Validating %d issues against %s", total, req.Domain),
		Total:   total,
	})

	results, health, err := v.fanOut(ctx, req, log)
	if err != nil {
		log.Error("validation run failed", "err", err)
		out := &docgap.ValidatorOutput{
			ValidationResults: []*docgap.ValidationResult{},
			Summary:           docgap.Summarize(nil),
			ProcessingTime:    time.Since(begin).Milliseconds(),
			Error:             err.Error(),
		}
		v.publish(ctx, req.SessionID, docgap.ProgressEvent{
			Type:    docgap.ProgressFailed,
			Message: err.Error(),
			Total:   total,
		})
		return out, nil
	}

	out := &docgap.ValidatorOutput{
		ValidationResults: results,
		Summary:           docgap.Summarize(results),
		ProcessingTime:    time.Since(begin).Milliseconds(),
		SitemapHealth:     health,
	}
	v.persist(ctx, req.SessionID, out, log)

	v.publish(ctx, req.SessionID, docgap.ProgressEvent{
		Type:      docgap.ProgressCompleted,
		Message:   fmt.Sprintf("Validated %d issues", total),
		Completed: total,
		Total:     total,
	})
	log.Info("validation run complete",
		"issues", total,
		"critical", out.Summary.CriticalGaps,
		"duration", time.Since(begin),
	)
	return out, nil
}

// fanOut validates issues and checks health concurrently. A panic in any
// task is returned as an error.
func (v *Validator) fanOut(ctx context.Context, req *docgap.ValidationRequest, log *slog.Logger) ([]*docgap.ValidationResult, *docgap.SitemapHealthSummary, error) {
	var (
		g         errgroup.Group
		results   = make([]*docgap.ValidationResult, len(req.Issues))
		health    *docgap.SitemapHealthSummary
		completed atomic.Int64
		total     = len(req.Issues)
	)

	for i := range req.Issues {
		issue := &req.Issues[i]
		g.Go(func() (err error) {
			defer recoverTask(&err, "issue "+issue.ID)

			r := v.ValidateIssue(ctx, issue, req.Domain)
			results[i] = r
			log.Debug("issue validated", "issue", issue.ID, "status", r.Status, "confidence", r.Confidence)
			v.publish(ctx, req.SessionID, docgap.ProgressEvent{
				Type:      docgap.ProgressIssueValidated,
				Message:   issue.Title,
				IssueID:   issue.ID,
				Status:    r.Status,
				Completed: int(completed.Add(1)),
				Total:     total,
			})
			return nil
		})
	}

	if v.Health != nil {
		g.Go(func() (err error) {
			defer recoverTask(&err, "health check")

			health = v.Health.Check(ctx, req.Domain)
			msg := "Sitemap health unavailable"
			if health != nil {
				msg = fmt.Sprintf("Sitemap health %.2f%%", health.HealthPercentage)
			}
			v.publish(ctx, req.SessionID, docgap.ProgressEvent{
				Type:    docgap.ProgressHealthChecked,
				Message: msg,
				Total:   total,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, health, nil
}

func recoverTask(err *error, task string) {
	if r := recover(); r != nil {
		*err = docgap.Errorf(docgap.EINTERNAL, "%s panicked: %v", task, r)
	}
}

func (v *Validator) persist(ctx context.Context, sessionID string, out *docgap.ValidatorOutput, log *slog.Logger) {
	if v.Store == nil {
		return
	}
	data, err := json.Marshal(out)
	if err != nil {
		log.Error("encode validation output", "err", err)
		return
	}
	key := docgap.ResultsKey(sessionID)
	if err := v.Store.Put(ctx, key, data); err != nil {
		log.Error("persist validation output", "key", key, "err", err)
	}
}

func (v *Validator) publish(ctx context.Context, sessionID string, event docgap.ProgressEvent) {
	if v.Progress == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	v.Progress.Publish(ctx, sessionID, event)
}

// LoadResults returns the persisted output of a validation session.
// Returns ENOTFOUND if the session has no results.
func LoadResults(ctx context.Context, store docgap.ObjectStore, sessionID string) (*docgap.ValidatorOutput, error) {
	if sessionID == "" {
		return nil, docgap.Errorf(docgap.EINVALID, "session ID required")
	}
	data, err := store.Get(ctx, docgap.ResultsKey(sessionID))
	if err != nil {
		return nil, err
	}
	var out docgap.ValidatorOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, docgap.Errorf(docgap.EINTERNAL, "decode results for session %s: %v", sessionID, err)
	}
	return &out, nil
}
