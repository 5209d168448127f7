package web

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// DefaultTitle is used when a page has no usable <title>.
const DefaultTitle = "Untitled"

// Extraction is the readable part of an HTML document.
type Extraction struct {
	Title string
	// Text is every text node outside script, style and noscript, in
	// document order. Whitespace is left for the normalizer to collapse.
	Text string
}

var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Extract parses body as HTML.
func Extract(body []byte) (Extraction, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Extraction{}, fmt.Errorf("parse html: %w", err)
	}

	var (
		title    string
		hasTitle bool
		text     strings.Builder
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skipped[n.Data] {
				return
			}
			if n.Data == "title" && !hasTitle {
				hasTitle = true
				title = strings.TrimSpace(nodeText(n))
			}
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if title == "" {
		title = DefaultTitle
	}
	return Extraction{Title: title, Text: text.String()}, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
