// Package docgap validates reported developer pain points against a
// documentation site. For every issue it retrieves candidate pages, extracts
// evidence from them, classifies how well the documentation covers the issue
// and produces fix recommendations. A sitemap health check runs alongside.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, redis/).
package docgap
