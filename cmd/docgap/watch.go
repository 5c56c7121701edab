package main

import (
	"fmt"

	"github.com/fwojciec/docgap"
)

// Run executes the watch command. It returns when the session completes or
// fails, or when the context is canceled.
func (c *WatchCmd) Run(deps *Dependencies) error {
	if deps.Subscribe == nil {
		err := docgap.Errorf(docgap.EINVALID, "watch needs the redis store backend")
		fmt.Fprintf(deps.Stderr, "error: %s\n", docgap.ErrorMessage(err))
		return err
	}

	events, err := deps.Subscribe(deps.Ctx, c.Session)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	for event := range events {
		fmt.Fprintf(deps.Stdout, "%s  %-15s %d/%d  %s\n",
			event.Timestamp.Format("15:04:05"), event.Type, event.Completed, event.Total, event.Message)
		if event.Type == docgap.ProgressCompleted || event.Type == docgap.ProgressFailed {
			return nil
		}
	}
	return deps.Ctx.Err()
}
