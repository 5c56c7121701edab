// Package goquery extracts page content and code samples from HTML with
// CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Framework identifies the generator of a documentation site.
type Framework string

const (
	FrameworkUnknown    Framework = ""
	FrameworkDocusaurus Framework = "docusaurus"
	FrameworkMkDocs     Framework = "mkdocs"
	FrameworkSphinx     Framework = "sphinx"
	FrameworkVitePress  Framework = "vitepress"
	FrameworkVuePress   Framework = "vuepress"
	FrameworkGitBook    Framework = "gitbook"
	FrameworkNextra     Framework = "nextra"
	FrameworkMintlify   Framework = "mintlify"
)

// frameworkMarkers lists selectors unique to each framework, checked in
// order. VitePress precedes VuePress because it reuses some VuePress markup.
var frameworkMarkers = []struct {
	framework Framework
	selectors []string
}{
	{FrameworkDocusaurus, []string{"#__docusaurus_skipToContent_fallback", ".theme-doc-sidebar-container"}},
	{FrameworkMkDocs, []string{"[data-md-color-scheme]", "[data-md-component]", ".md-nav--primary"}},
	{FrameworkSphinx, []string{".toctree-wrapper", ".wy-nav-side", ".sphinxsidebar"}},
	{FrameworkVitePress, []string{"#VPContent", ".VPDoc"}},
	{FrameworkVuePress, []string{".theme-default-content", ".vuepress-navbar"}},
	{FrameworkGitBook, []string{"[data-testid='space.sidebar']", "[data-testid='page.desktopTableOfContents']"}},
	{FrameworkNextra, []string{".nextra-navbar", ".nextra-sidebar", ".nextra-toc"}},
	{FrameworkMintlify, []string{"#content-area", "#sidebar-content"}},
}

// contentRoots maps a framework to the selector of its main content region.
var contentRoots = map[Framework]string{
	FrameworkDocusaurus: "article .markdown, .theme-doc-markdown",
	FrameworkMkDocs:     ".md-content__inner, .md-content",
	FrameworkSphinx:     "div[role='main'], .document .body",
	FrameworkVitePress:  ".vp-doc",
	FrameworkVuePress:   ".theme-default-content",
	FrameworkGitBook:    "main",
	FrameworkNextra:     "article, main",
	FrameworkMintlify:   "#content-area",
}

// genericContentRoot is tried when the framework is unknown or its root is absent.
const genericContentRoot = "main, article, [role='main']"

// DetectFramework identifies the documentation framework of a parsed page.
func DetectFramework(doc *goquery.Document) Framework {
	if generator, ok := doc.Find("meta[name='generator']").Last().Attr("content"); ok {
		generator = strings.ToLower(generator)
		for _, fw := range []Framework{
			FrameworkSphinx, FrameworkGitBook, FrameworkDocusaurus, FrameworkMkDocs,
			FrameworkVitePress, FrameworkVuePress, FrameworkNextra, FrameworkMintlify,
		} {
			if strings.Contains(generator, string(fw)) {
				return fw
			}
		}
	}

	for _, m := range frameworkMarkers {
		for _, sel := range m.selectors {
			if doc.Find(sel).Length() > 0 {
				return m.framework
			}
		}
	}
	return FrameworkUnknown
}

// contentRoot returns the main content region of doc, falling back to <body>.
func contentRoot(doc *goquery.Document, fw Framework) *goquery.Selection {
	if sel, ok := contentRoots[fw]; ok {
		if root := doc.Find(sel).First(); root.Length() > 0 {
			return root
		}
	}
	if root := doc.Find(genericContentRoot).First(); root.Length() > 0 {
		return root
	}
	return doc.Find("body")
}
