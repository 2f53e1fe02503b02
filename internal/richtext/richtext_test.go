package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("**Gates open** at 8am\n\n- Parking on site\n- Food trucks")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>Gates open</strong>")
	assert.Contains(t, out, "<li>Parking on site</li>")
}

func TestRender_StripsScripts(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("hello <script>alert(1)</script> [x](javascript:alert(1))")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "hello")
}

func TestRender_Links(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("See https://example.com/map")
	require.NoError(t, err)
	assert.Contains(t, out, `href="https://example.com/map"`)
	assert.True(t, strings.Contains(out, `rel="nofollow`), out)
}

func TestRenderPtr(t *testing.T) {
	r := NewRenderer()

	assert.Nil(t, r.RenderPtr(nil))
	blank := "  \n"
	assert.Nil(t, r.RenderPtr(&blank))

	text := "_Welcome_"
	out := r.RenderPtr(&text)
	require.NotNil(t, out)
	assert.Contains(t, *out, "<em>Welcome</em>")

	var disabled *Renderer
	assert.Nil(t, disabled.RenderPtr(&text))
}
