package docgap

import "context"

// ContinuePrompt is the user turn appended after a truncated response.
const ContinuePrompt = "Please continue from where you left off. Complete all remaining recommendations without repeating what you already wrote."

// MaxContinuationAttempts bounds the number of generator calls for one
// long-form response.
const MaxContinuationAttempts = 5

// ContinuationState is the state of a continuation loop.
type ContinuationState int

const (
	// Accumulating means another generator call is needed.
	Accumulating ContinuationState = iota
	// Complete means the model finished on its own.
	Complete
	// Exhausted means the attempt budget ran out while output was still
	// truncated. The accumulated text is usable but incomplete.
	Exhausted
)

func (s ContinuationState) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case Complete:
		return "complete"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Continuation accumulates a long response across truncated generations.
// Values are immutable; Advance returns the next state.
type Continuation struct {
	Conversation []Turn
	Text         string
	Attempts     int
	State        ContinuationState
}

// StartContinuation returns the initial state for prompt.
func StartContinuation(prompt string) Continuation {
	return Continuation{
		Conversation: []Turn{{Role: RoleUser, Text: prompt}},
		State:        Accumulating,
	}
}

// Advance folds a generation into the continuation. A truncated generation
// extends the conversation with the partial text and ContinuePrompt, unless
// maxAttempts generations have been consumed. Advancing a finished
// continuation returns it unchanged.
func (c Continuation) Advance(gen Generation, maxAttempts int) Continuation {
	if c.State != Accumulating {
		return c
	}

	next := Continuation{
		Text:     c.Text + gen.Text,
		Attempts: c.Attempts + 1,
	}

	switch {
	case gen.StopReason != StopLength:
		next.Conversation = c.Conversation
		next.State = Complete
	case next.Attempts >= maxAttempts:
		next.Conversation = c.Conversation
		next.State = Exhausted
	default:
		conv := make([]Turn, 0, len(c.Conversation)+2)
		conv = append(conv, c.Conversation...)
		conv = append(conv,
			Turn{Role: RoleAssistant, Text: gen.Text},
			Turn{Role: RoleUser, Text: ContinuePrompt},
		)
		next.Conversation = conv
		next.State = Accumulating
	}
	return next
}

// Done reports whether no further generator calls are needed.
func (c Continuation) Done() bool {
	return c.State != Accumulating
}

// Continue drives a continuation loop against g until it completes or is
// exhausted. Every call sends the whole conversation. A generator error
// aborts the loop and is returned with the state reached so far.
func Continue(ctx context.Context, g Generator, prompt string, maxTokens, maxAttempts int) (Continuation, error) {
	c := StartContinuation(prompt)
	for !c.Done() {
		gen, err := g.Generate(ctx, c.Conversation, maxTokens)
		if err != nil {
			return c, err
		}
		if gen == nil {
			return c, Errorf(EINTERNAL, "generator returned nil result")
		}
		c = c.Advance(*gen, maxAttempts)
	}
	return c, nil
}
