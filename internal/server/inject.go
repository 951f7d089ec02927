package server

import (
	"bytes"

	"golang.org/x/net/html"
)

// ReloadPath is the push-channel endpoint served by the DevServer and
// subscribed to by the injected snippet.
const ReloadPath = "/__reload"

// reloadScript is the observer snippet injected into every served HTML page.
// It subscribes to the reload push channel and refetches on any message.
const reloadScript = `<script>(function(){var es=new EventSource("` + ReloadPath + `");es.onmessage=function(){location.reload();};})();</script>`

// injectReloadScript inserts the reload observer immediately before the
// document's closing body tag, or appends it when no such tag exists. The
// tokenizer's raw token bytes reproduce the document unchanged around the
// insertion point.
func injectReloadScript(doc []byte) []byte {
	z := html.NewTokenizer(bytes.NewReader(doc))
	var out bytes.Buffer
	out.Grow(len(doc) + len(reloadScript))

	injected := false
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if !injected && tt == html.EndTagToken {
			if name, _ := z.TagName(); string(name) == "body" {
				out.WriteString(reloadScript)
				injected = true
			}
		}
		out.Write(z.Raw())
	}

	if !injected {
		out.WriteString(reloadScript)
	}
	return out.Bytes()
}
