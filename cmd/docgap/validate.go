package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/docgap"
)

// Run executes the validate command.
func (c *ValidateCmd) Run(deps *Dependencies) error {
	req, err := c.request(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docgap.ErrorMessage(err))
		return err
	}

	if c.Refresh {
		if err := clearDomain(deps, req.Domain); err != nil {
			return err
		}
	}

	fmt.Fprintf(deps.Stderr, "Validating %d issues against %s (session %s)\n", len(req.Issues), req.Domain, req.SessionID)

	out, err := deps.Validator.Run(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docgap.ErrorMessage(err))
		return err
	}

	w := deps.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := writeJSON(w, out); err != nil {
		return err
	}

	s := out.Summary
	fmt.Fprintf(deps.Stderr, "%d issues: %d resolved, %d confirmed, %d potential gaps, %d critical gaps\n",
		s.TotalIssues, s.Resolved, s.Confirmed, s.PotentialGaps, s.CriticalGaps)
	if out.Error != "" {
		return fmt.Errorf("validation failed: %s", out.Error)
	}
	return nil
}

// request reads the issues file. It holds either a JSON array of issues or
// a full validation request; flags override the request's fields.
func (c *ValidateCmd) request(deps *Dependencies) (*docgap.ValidationRequest, error) {
	var data []byte
	var err error
	if c.Issues == "-" {
		data, err = io.ReadAll(deps.Stdin)
	} else {
		data, err = os.ReadFile(c.Issues)
	}
	if err != nil {
		return nil, docgap.Errorf(docgap.EINVALID, "cannot read issues: %v", err)
	}

	req := &docgap.ValidationRequest{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &req.Issues)
	} else {
		err = json.Unmarshal(data, req)
	}
	if err != nil {
		return nil, docgap.Errorf(docgap.EINVALID, "cannot parse issues: %v", err)
	}

	if c.Domain != "" {
		req.Domain = c.Domain
	}
	if c.Session != "" {
		req.SessionID = c.Session
	}
	if req.SessionID == "" {
		req.SessionID = deps.NewSessionID()
	}
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
