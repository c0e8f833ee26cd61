package docparse

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// extractText passes plain text through with normalized line endings.
func extractText(data []byte) (string, Metadata, error) {
	if !utf8.Valid(data) {
		return "", Metadata{}, fmt.Errorf("not valid utf-8 text")
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return "", Metadata{}, fmt.Errorf("no text content found")
	}
	return content, Metadata{Title: firstLine(content)}, nil
}

// extractMarkdown normalizes markdown through a render pass: goldmark
// renders to HTML, and the HTML path converts back to clean markdown.
// Broken constructs come out as plain text instead of failing.
func extractMarkdown(data []byte) (string, Metadata, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(data, &buf); err != nil {
		return "", Metadata{}, fmt.Errorf("render markdown: %w", err)
	}
	content, meta, err := extractHTML(buf.Bytes())
	if err != nil {
		return "", Metadata{}, err
	}
	if title := markdownTitle(string(data)); title != "" {
		meta.Title = title
	}
	return content, meta, nil
}

// markdownTitle returns the first ATX heading, if any.
func markdownTitle(src string) string {
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		title := strings.TrimSpace(strings.TrimLeft(line, "#"))
		title = strings.TrimSpace(strings.TrimRight(title, "#"))
		if title != "" {
			return title
		}
	}
	return ""
}
