package convert

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

// buildDocx assembles a minimal DOCX archive from XML parts.
func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range parts {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func docXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
}

func TestConvertHeadingsAndParagraphs(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": docXML(
			`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Test Title</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>Body text.</w:t></w:r></w:p>`),
	})

	markup, err := Convert(data)
	if err != nil {
		t.Fatal(err)
	}
	if markup != "<h1>Test Title</h1><p>Body text.</p>" {
		t.Fatalf("unexpected markup: %q", markup)
	}
}

func TestConvertBoldRun(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": docXML(
			`<w:p><w:r><w:t>plain </w:t></w:r>` +
				`<w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r></w:p>`),
	})

	markup, err := Convert(data)
	if err != nil {
		t.Fatal(err)
	}
	if markup != "<p>plain <strong>bold</strong></p>" {
		t.Fatalf("unexpected markup: %q", markup)
	}
}

func TestConvertTable(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": docXML(
			`<w:tbl>` +
				`<w:tr><w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>b</w:t></w:r></w:p></w:tc></w:tr>` +
				`<w:tr><w:tc><w:p><w:r><w:t>c</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>d</w:t></w:r></w:p></w:tc></w:tr>` +
				`</w:tbl>`),
	})

	markup, err := Convert(data)
	if err != nil {
		t.Fatal(err)
	}
	want := "<table><tr><td><p>a</p></td><td><p>b</p></td></tr><tr><td><p>c</p></td><td><p>d</p></td></tr></table>"
	if markup != want {
		t.Fatalf("markup mismatch:\n got %q\nwant %q", markup, want)
	}
}

func TestConvertLists(t *testing.T) {
	numbering := `<?xml version="1.0" encoding="UTF-8"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:abstractNum w:abstractNumId="0"><w:lvl w:ilvl="0"><w:numFmt w:val="decimal"/></w:lvl></w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`
	listP := func(text string) string {
		return `<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr>` +
			`<w:r><w:t>` + text + `</w:t></w:r></w:p>`
	}
	data := buildDocx(t, map[string]string{
		"word/document.xml":  docXML(listP("first") + listP("second")),
		"word/numbering.xml": numbering,
	})

	markup, err := Convert(data)
	if err != nil {
		t.Fatal(err)
	}
	if markup != "<ol><li>first</li><li>second</li></ol>" {
		t.Fatalf("unexpected markup: %q", markup)
	}
}

func TestConvertHyperlink(t *testing.T) {
	rels := `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/" TargetMode="External"/>
</Relationships>`
	data := buildDocx(t, map[string]string{
		"word/document.xml": docXML(
			`<w:p><w:hyperlink r:id="rId1" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
				`<w:r><w:t>link</w:t></w:r></w:hyperlink></w:p>`),
		"word/_rels/document.xml.rels": rels,
	})

	markup, err := Convert(data)
	if err != nil {
		t.Fatal(err)
	}
	if markup != `<p><a href="https://example.com/">link</a></p>` {
		t.Fatalf("unexpected markup: %q", markup)
	}
}

func TestConvertStyledRun(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": docXML(
			`<w:p><w:r><w:rPr><w:color w:val="FF0000"/><w:sz w:val="28"/></w:rPr><w:t>red</w:t></w:r></w:p>`),
	})

	markup, err := Convert(data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(markup, "color: #FF0000") || !strings.Contains(markup, "font-size: 14pt") {
		t.Fatalf("expected styled span, got %q", markup)
	}
}

func TestConvertEscapesText(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": docXML(`<w:p><w:r><w:t>a &lt; b</w:t></w:r></w:p>`),
	})

	markup, err := Convert(data)
	if err != nil {
		t.Fatal(err)
	}
	if markup != "<p>a &lt; b</p>" {
		t.Fatalf("unexpected markup: %q", markup)
	}
}

func TestConvertMalformedInput(t *testing.T) {
	var convErr *ConversionError

	_, err := Convert([]byte("not a zip archive"))
	if err == nil {
		t.Fatal("expected error for malformed input")
	}
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *ConversionError, got %T", err)
	}

	// Valid archive, missing document part.
	data := buildDocx(t, map[string]string{"word/styles.xml": "<w:styles/>"})
	_, err = Convert(data)
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *ConversionError for missing document.xml, got %v", err)
	}
}
