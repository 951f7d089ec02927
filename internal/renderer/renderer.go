// Package renderer performs the two-pass rendering of a single page: the page
// body is rendered against the page and campaign context, then the layout is
// rendered with the previous result injected as the content value.
package renderer

import (
	"html/template"

	"github.com/forgeline/pagesmith/internal/engine"
)

// PageMeta is the page metadata exposed to templates under the "page" key
type PageMeta struct {
	URL       string
	InputPath string
}

// Input is everything a single page render needs. Layout is the raw layout
// source; empty means render the body only. Markdown marks the body as a
// markdown document converted after the first pass.
type Input struct {
	Body        string
	FrontMatter map[string]interface{}
	Campaign    map[string]interface{}
	Page        PageMeta
	Layout      string
	Markdown    bool
}

// RenderPage renders one page. Both passes see identical front-matter,
// campaign, and page values; each pass gets its own context map so nothing
// bound locally during the body pass (include scopes in particular) can leak
// into the layout pass.
func RenderPage(e *engine.Engine, in Input) (string, error) {
	body, err := e.Render(in.Body, baseContext(in))
	if err != nil {
		return "", err
	}

	if in.Markdown {
		body, err = e.Markdown(body)
		if err != nil {
			return "", err
		}
	}

	if in.Layout == "" {
		return body, nil
	}

	rc := baseContext(in)
	rc["content"] = template.HTML(body)
	return e.Render(in.Layout, rc)
}

func baseContext(in Input) engine.Context {
	rc := make(engine.Context, len(in.FrontMatter)+2)
	for k, v := range in.FrontMatter {
		rc[k] = v
	}
	rc["campaign"] = in.Campaign
	rc["page"] = map[string]interface{}{
		"url":       in.Page.URL,
		"inputPath": in.Page.InputPath,
	}
	return rc
}
