package main

import (
	"fmt"

	"github.com/fwojciec/docgap"
)

// Run executes the embed command.
func (c *EmbedCmd) Run(deps *Dependencies) error {
	if c.Refresh {
		if err := deps.Store.Delete(deps.Ctx, docgap.EmbeddingsKey(c.Domain)); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docgap.ErrorMessage(err))
			return err
		}
	}

	pages, err := deps.Index.Load(deps.Ctx, c.Domain)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Embedded %d pages for %s\n", len(pages), docgap.NormalizeDomain(c.Domain))
	return nil
}
