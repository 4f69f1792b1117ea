package notify

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const descriptionLimit = 150

var (
	mdRenderer  = goldmark.New(goldmark.WithExtensions(extension.GFM))
	stripPolicy = bluemonday.StrictPolicy()
)

// formatDescription turns raw markdown into a short plain-text summary:
// render, strip every tag, unescape entities, collapse whitespace, truncate.
func formatDescription(source string) string {
	return truncate(stripMarkdown(source), descriptionLimit)
}

func stripMarkdown(source string) string {
	var buf bytes.Buffer
	text := source
	if err := mdRenderer.Convert([]byte(source), &buf); err == nil {
		text = buf.String()
	}
	text = stripPolicy.Sanitize(text)
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
