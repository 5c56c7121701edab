// Package htmltomarkdown renders extracted documentation content as Markdown
// for model prompts.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/docgap"
)

var _ docgap.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown.
type Converter struct {
	conv *converter.Converter
	opts []converter.ConvertOptionFunc
}

// Option configures a Converter.
type Option func(*Converter)

// WithBaseURL resolves relative links and images against baseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *Converter) {
		c.opts = append(c.opts, converter.WithDomain(baseURL))
	}
}

// NewConverter creates a new Converter with CommonMark and table support.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", docgap.Errorf(docgap.EINVALID, "empty HTML input")
	}
	return c.conv.ConvertString(html, c.opts...)
}
