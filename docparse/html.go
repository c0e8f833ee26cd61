package docparse

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// extractHTML converts an HTML document to markdown text. The title is
// the document <title>, falling back to the first h1.
func extractHTML(data []byte) (string, Metadata, error) {
	root, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", Metadata{}, fmt.Errorf("parse html: %w", err)
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	content, err := conv.ConvertString(string(data))
	if err != nil {
		return "", Metadata{}, fmt.Errorf("convert html: %w", err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", Metadata{}, fmt.Errorf("no text content found in html")
	}

	title := htmlTitle(root)
	if title == "" {
		title = firstLine(content)
	}
	return content, Metadata{Title: title}, nil
}

func htmlTitle(root *html.Node) string {
	title := elementText(root, atom.Title)
	if title == "" {
		title = elementText(root, atom.H1)
	}
	return title
}

func elementText(n *html.Node, tag atom.Atom) string {
	if n.Type == html.ElementNode && n.DataAtom == tag {
		var sb strings.Builder
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			if n.Type == html.TextNode {
				sb.WriteString(n.Data)
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		walk(n)
		return strings.TrimSpace(sb.String())
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := elementText(c, tag); text != "" {
			return text
		}
	}
	return ""
}
