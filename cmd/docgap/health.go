package main

import (
	"fmt"

	"github.com/fwojciec/docgap"
)

// Run executes the health command.
func (c *HealthCmd) Run(deps *Dependencies) error {
	if c.Refresh {
		key := docgap.SitemapHealthKey(c.Domain)
		if err := deps.Store.Delete(deps.Ctx, key); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docgap.ErrorMessage(err))
			return err
		}
	}

	summary := deps.Health.Check(deps.Ctx, c.Domain)
	if summary == nil {
		err := docgap.Errorf(docgap.EINTERNAL, "sitemap health for %s is unavailable", docgap.NormalizeDomain(c.Domain))
		fmt.Fprintf(deps.Stderr, "error: %s\n", docgap.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s: %.2f%% healthy (%d of %d URLs)\n",
		docgap.NormalizeDomain(c.Domain), summary.HealthPercentage, summary.HealthyURLs, summary.TotalURLs)
	for _, issue := range summary.LinkIssues {
		fmt.Fprintf(deps.Stdout, "  %-13s %3d  %s\n", issue.IssueType, issue.Status, issue.URL)
	}
	return nil
}
