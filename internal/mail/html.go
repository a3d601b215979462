package mail

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "tr": {}, "li": {}, "h1": {}, "h2": {},
	"h3": {}, "h4": {}, "table": {}, "blockquote": {},
}

// HTMLToText reduces an HTML body to plain text by walking the parse
// tree, dropping script/style subtrees and inserting line breaks at
// block boundaries. Unparseable input is returned as-is.
func HTMLToText(raw []byte) string {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}

	var sb strings.Builder
	collectText(doc, &sb)

	return strings.TrimSpace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" || n.Data == "head" {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}

	if n.Type == html.ElementNode {
		if _, ok := blockElements[n.Data]; ok {
			sb.WriteString("\n")
		}
	}
}
