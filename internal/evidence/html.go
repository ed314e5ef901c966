package evidence

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// TextFromHTML extracts readable text from a page, preferring <main> or
// <article> over the whole <body> and skipping obvious boilerplate like
// <nav>, <header>, <footer>, scripts and styles.
func TextFromHTML(input []byte) string {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return ""
	}
	content := findFirst(node, "main")
	if content == nil {
		content = findFirst(node, "article")
	}
	if content == nil {
		content = findFirst(node, "body")
	}
	if content == nil {
		return ""
	}
	var b strings.Builder
	collectText(&b, content)
	return normalizeWhitespace(b.String())
}

var skipTags = map[string]struct{}{
	"script": {}, "style": {}, "nav": {}, "header": {}, "footer": {}, "aside": {}, "noscript": {},
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		if _, skip := skipTags[strings.ToLower(n.Data)]; skip {
			return
		}
	}
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			b.WriteString(t)
			b.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "br", "div":
			b.WriteString("\n")
		}
	}
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
