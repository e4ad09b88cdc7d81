// Package renderer turns an activity report into an output document. Every
// implementation is a pure function of the report value; delivery (files,
// email) happens elsewhere.
package renderer

import "github.com/glt-tools/glt/pkg/domain/model"

type Renderer interface {
	Render(report *model.ActivityReport) ([]byte, error)
	Format() string
}

// New selects a renderer by format name. Unknown formats fall back to the
// plain Markdown renderer instead of failing at render time.
func New(format string) Renderer {
	switch format {
	case "html":
		return &HTML{}
	case "csv":
		return &CSV{}
	case "json":
		return &JSON{}
	case "markdown", "md":
		return &Markdown{}
	default:
		return &Markdown{}
	}
}
