package main

import (
	"fmt"

	"github.com/fwojciec/docgap"
)

// Run executes the cache clear command.
func (c *CacheClearCmd) Run(deps *Dependencies) error {
	if c.Domain == "" && c.Session == "" && !c.All {
		err := docgap.Errorf(docgap.EINVALID, "nothing to clear: give a domain, --session or --all")
		fmt.Fprintf(deps.Stderr, "error: %s\n", docgap.ErrorMessage(err))
		return err
	}

	if c.All {
		if deps.Purge == nil {
			err := docgap.Errorf(docgap.EINVALID, "--all is not supported by the %s backend", deps.Config.Store.Backend)
			fmt.Fprintf(deps.Stderr, "error: %s\n", docgap.ErrorMessage(err))
			return err
		}
		n, err := deps.Purge(deps.Ctx, "")
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", err)
			return err
		}
		fmt.Fprintf(deps.Stdout, "Deleted %d cached entries\n", n)
		return nil
	}

	if c.Domain != "" {
		if err := clearDomain(deps, c.Domain); err != nil {
			return err
		}
		fmt.Fprintf(deps.Stdout, "Cleared embeddings and sitemap health for %s\n", docgap.NormalizeDomain(c.Domain))
	}
	if c.Session != "" {
		if err := deps.Store.Delete(deps.Ctx, docgap.ResultsKey(c.Session)); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docgap.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Cleared results of session %s\n", c.Session)
	}
	return nil
}

// clearDomain deletes the cached embeddings and sitemap health of domain.
func clearDomain(deps *Dependencies, domain string) error {
	for _, key := range []string{docgap.EmbeddingsKey(domain), docgap.SitemapHealthKey(domain)} {
		if err := deps.Store.Delete(deps.Ctx, key); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docgap.ErrorMessage(err))
			return err
		}
	}
	return nil
}
