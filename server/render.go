package server

import (
	"html/template"

	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// Renderer turns message text into sanitised HTML. Model output and user
// input are both untrusted, so everything goes through the UGC policy.
type Renderer struct {
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return &Renderer{policy: policy}
}

// Render converts markdown to safe HTML.
func (r *Renderer) Render(text string) template.HTML {
	// Autolink stays off; plain URLs remain text like the rest of the reply.
	extensions := parser.CommonExtensions &^ parser.Autolink
	p := parser.NewWithExtensions(extensions)

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML,
	})

	unsafe := gomarkdown.ToHTML([]byte(text), p, renderer)
	return template.HTML(r.policy.SanitizeBytes(unsafe))
}
