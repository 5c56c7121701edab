package docgap_test

import (
	"testing"

	"github.com/fwojciec/docgap"
	"github.com/stretchr/testify/assert"
)

func TestParseRecommendations(t *testing.T) {
	t.Parallel()

	t.Run("attaches continuation lines to the current item", func(t *testing.T) {
		t.Parallel()

		got := docgap.ParseRecommendations("1. Fix A\ncode line\n2. Fix B")

		assert.Equal(t, []string{"Fix A\ncode line", "Fix B"}, got)
	})

	t.Run("drops preamble before the first numbered line", func(t *testing.T) {
		t.Parallel()

		got := docgap.ParseRecommendations("Here are my recommendations:\n\n1. Add an example")

		assert.Equal(t, []string{"Add an example"}, got)
	})

	t.Run("does not split inside fenced code blocks", func(t *testing.T) {
		t.Parallel()

		text := "1. Replace the list\n```\n1. first step\n2. second step\n```\n2. Add a note"

		got := docgap.ParseRecommendations(text)

		assert.Equal(t, []string{
			"Replace the list\n```\n1. first step\n2. second step\n```",
			"Add a note",
		}, got)
	})

	t.Run("keeps indented sub-steps inside their recommendation", func(t *testing.T) {
		t.Parallel()

		got := docgap.ParseRecommendations("1. Fix A\n   1. open the page\n   2. add a note\n2. Fix B")

		assert.Equal(t, []string{"Fix A\n   1. open the page\n   2. add a note", "Fix B"}, got)
	})

	t.Run("keeps at most five recommendations", func(t *testing.T) {
		t.Parallel()

		got := docgap.ParseRecommendations("1. a\n2. b\n3. c\n4. d\n5. e\n6. f\n7. g")

		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
	})

	t.Run("returns nothing for unnumbered text", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, docgap.ParseRecommendations("just some prose"))
	})
}

func TestGenericRecommendations(t *testing.T) {
	t.Parallel()

	issue := &docgap.Issue{ID: "1", Title: "Deploying to Vercel"}

	assert.Len(t, docgap.GenericRecommendations(issue), 4)
	assert.Contains(t, docgap.GenericRecommendations(issue)[0], "deploying to vercel")
	assert.Len(t, docgap.FallbackRecommendations(issue), 4)
}
