// Package richtext renders the Markdown blurbs maintained in the CRM into
// sanitised HTML.
package richtext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{md: md, policy: policy}
}

// Render converts Markdown to sanitised HTML.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// RenderPtr renders an optional blurb. Blank input and conversion errors
// yield nil.
func (r *Renderer) RenderPtr(markdown *string) *string {
	if r == nil || markdown == nil || strings.TrimSpace(*markdown) == "" {
		return nil
	}
	out, err := r.Render(*markdown)
	if err != nil {
		return nil
	}
	return &out
}
