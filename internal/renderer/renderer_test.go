package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/pagesmith/internal/engine"
)

func testCampaign() map[string]interface{} {
	return map[string]interface{}{
		"slug": "test-campaign",
		"name": "Test Campaign",
	}
}

func TestRenderPage_BodyOnly(t *testing.T) {
	e := engine.New(t.TempDir(), nil)

	out, err := RenderPage(e, Input{
		Body:     `<p>{{ .campaign.name }}</p>`,
		Campaign: testCampaign(),
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>Test Campaign</p>", out)
}

func TestRenderPage_LayoutInjection(t *testing.T) {
	e := engine.New(t.TempDir(), nil)

	out, err := RenderPage(e, Input{
		Body:     `<p>{{ .title }}</p>`,
		Layout:   `<html><body>{{ .content }}</body></html>`,
		Campaign: testCampaign(),
		FrontMatter: map[string]interface{}{
			"title": "Hello",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "<html><body><p>Hello</p></body></html>", out)
}

func TestRenderPage_ContentNotReEscaped(t *testing.T) {
	e := engine.New(t.TempDir(), nil)

	out, err := RenderPage(e, Input{
		Body:     `<em>raw markup</em>`,
		Layout:   `{{ .content }}`,
		Campaign: testCampaign(),
	})
	require.NoError(t, err)
	assert.Equal(t, "<em>raw markup</em>", out)
}

func TestRenderPage_LayoutSeesSharedContext(t *testing.T) {
	e := engine.New(t.TempDir(), nil)

	out, err := RenderPage(e, Input{
		Body:     `body`,
		Layout:   `<title>{{ .title }} | {{ .campaign.name }}</title>{{ .content }}`,
		Campaign: testCampaign(),
		FrontMatter: map[string]interface{}{
			"title": "Checkout",
		},
		Page: PageMeta{URL: "/test-campaign/checkout/", InputPath: "test-campaign/checkout.html"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<title>Checkout | Test Campaign</title>body", out)
}

func TestRenderPage_PageMetadata(t *testing.T) {
	e := engine.New(t.TempDir(), nil)

	out, err := RenderPage(e, Input{
		Body:     `{{ .page.url }} {{ .page.inputPath }}`,
		Campaign: testCampaign(),
		Page:     PageMeta{URL: "/test-campaign/", InputPath: "test-campaign/index.html"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/test-campaign/ test-campaign/index.html", out)
}

func TestRenderPage_MarkdownBody(t *testing.T) {
	e := engine.New(t.TempDir(), nil)

	out, err := RenderPage(e, Input{
		Body:     "# {{ .campaign.name }}\n\nSome **bold** copy.",
		Layout:   `<main>{{ .content }}</main>`,
		Campaign: testCampaign(),
		Markdown: true,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Test Campaign</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<main>")
}

func TestRenderPage_BodyError(t *testing.T) {
	e := engine.New(t.TempDir(), nil)

	_, err := RenderPage(e, Input{
		Body:     `{{ .broken `,
		Campaign: testCampaign(),
	})
	require.Error(t, err)
}

func TestRenderPage_LayoutError(t *testing.T) {
	e := engine.New(t.TempDir(), nil)

	_, err := RenderPage(e, Input{
		Body:     `fine`,
		Layout:   `{{ .broken `,
		Campaign: testCampaign(),
	})
	require.Error(t, err)
}
