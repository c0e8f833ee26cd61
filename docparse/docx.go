package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// extractDocx reads the raw paragraph text of word/document.xml. Author
// comes from docProps/core.xml when the archive carries one; the title
// is the first heading-styled paragraph, else the first line.
func extractDocx(data []byte) (string, Metadata, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", Metadata{}, fmt.Errorf("open archive: %w", err)
	}

	var docFile, coreFile *zip.File
	for _, f := range r.File {
		switch f.Name {
		case "word/document.xml":
			docFile = f
		case "docProps/core.xml":
			coreFile = f
		}
	}
	if docFile == nil {
		return "", Metadata{}, fmt.Errorf("word/document.xml not found in archive")
	}

	content, title, err := docxText(docFile)
	if err != nil {
		return "", Metadata{}, err
	}
	if content == "" {
		return "", Metadata{}, fmt.Errorf("no text content found in document")
	}
	if title == "" {
		title = firstLine(content)
	}

	meta := Metadata{Title: title}
	if coreFile != nil {
		meta.Author = docxAuthor(coreFile)
	}
	return content, meta, nil
}

func docxText(f *zip.File) (string, string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var sb strings.Builder
	var paragraph strings.Builder
	var title, style string
	inParagraph := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				paragraph.Reset()
				style = ""
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						style = attr.Value
					}
				}
			case "tab":
				if inParagraph {
					paragraph.WriteByte('\t')
				}
			case "br":
				if inParagraph {
					paragraph.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inParagraph {
				paragraph.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local != "p" || !inParagraph {
				continue
			}
			inParagraph = false
			text := strings.TrimSpace(paragraph.String())
			if text == "" {
				continue
			}
			if title == "" && headingStyle(style) {
				title = text
			}
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(text)
		}
	}
	return sb.String(), title, nil
}

// headingStyle reports whether a paragraph style name marks a heading,
// covering the localized style families Word emits.
func headingStyle(style string) bool {
	lower := strings.ToLower(style)
	if lower == "title" || lower == "subtitle" {
		return true
	}
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func docxAuthor(f *zip.File) string {
	rc, err := f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	inCreator := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inCreator = t.Name.Local == "creator"
		case xml.CharData:
			if inCreator {
				if author := strings.TrimSpace(string(t)); author != "" {
					return author
				}
			}
		case xml.EndElement:
			inCreator = false
		}
	}
}
