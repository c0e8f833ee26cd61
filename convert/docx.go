package convert

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// markupWriter renders a DOCX body element as semantic HTML.
type markupWriter struct {
	sb        strings.Builder
	rels      map[string]string // relationship id → hyperlink target
	numbering map[string]string // numId → level-0 numFmt
}

func (w *markupWriter) String() string { return w.sb.String() }

// writeBody walks the top-level block elements. Consecutive list
// paragraphs are grouped into a single ul/ol.
func (w *markupWriter) writeBody(body *xmlquery.Node) {
	w.writeBlocks(body)
}

func (w *markupWriter) writeBlocks(parent *xmlquery.Node) {
	el := firstChildElement(parent)
	for el != nil {
		switch el.Data {
		case "p":
			if numID := listNumID(el); numID != "" {
				el = w.writeList(el, numID)
				continue
			}
			w.writeParagraph(el)
		case "tbl":
			w.writeTable(el)
		case "sectPr":
			// Section properties carry layout only — dropped.
		}
		el = nextElement(el)
	}
}

// writeList consumes a run of consecutive list paragraphs starting at el
// and returns the first element after the run.
func (w *markupWriter) writeList(el *xmlquery.Node, numID string) *xmlquery.Node {
	tag := "ul"
	if isOrderedFormat(w.numbering[numID]) {
		tag = "ol"
	}
	w.sb.WriteString("<" + tag + ">")
	for el != nil && el.Data == "p" && listNumID(el) != "" {
		w.sb.WriteString("<li>")
		w.writeInline(el)
		w.sb.WriteString("</li>")
		el = nextElement(el)
	}
	w.sb.WriteString("</" + tag + ">")
	return el
}

func isOrderedFormat(numFmt string) bool {
	switch numFmt {
	case "decimal", "lowerRoman", "upperRoman", "lowerLetter", "upperLetter":
		return true
	}
	return false
}

// listNumID returns the paragraph's numbering id, or "" for a plain
// paragraph.
func listNumID(p *xmlquery.Node) string {
	pPr := firstChildElement(p)
	if pPr == nil || pPr.Data != "pPr" {
		return ""
	}
	numPr := findElement(pPr, "numPr")
	if numPr == nil {
		return ""
	}
	if numID := findElement(numPr, "numId"); numID != nil {
		if v := attr(numID, "val"); v != "" {
			return v
		}
	}
	return "none"
}

func (w *markupWriter) writeParagraph(p *xmlquery.Node) {
	level := headingLevel(paragraphStyle(p))
	tag := "p"
	if level > 0 {
		tag = fmt.Sprintf("h%d", level)
	}
	w.sb.WriteString("<" + tag + ">")
	w.writeInline(p)
	w.sb.WriteString("</" + tag + ">")
}

// writeInline renders the run-level content of a paragraph or list item.
func (w *markupWriter) writeInline(p *xmlquery.Node) {
	for c := firstChildElement(p); c != nil; c = nextElement(c) {
		switch c.Data {
		case "r":
			w.writeRun(c)
		case "hyperlink":
			target := w.rels[attr(c, "id")]
			if target != "" {
				w.sb.WriteString(`<a href="` + html.EscapeString(target) + `">`)
			}
			for r := firstChildElement(c); r != nil; r = nextElement(r) {
				if r.Data == "r" {
					w.writeRun(r)
				}
			}
			if target != "" {
				w.sb.WriteString("</a>")
			}
		}
	}
}

// writeRun renders one text run with its formatting properties as nested
// inline tags. Style-level properties (color, highlight, font) collapse
// into a single span.
func (w *markupWriter) writeRun(r *xmlquery.Node) {
	props := runProps(r)

	var open, close []string
	if props.bold {
		open = append(open, "<strong>")
		close = append([]string{"</strong>"}, close...)
	}
	if props.italic {
		open = append(open, "<em>")
		close = append([]string{"</em>"}, close...)
	}
	if props.underline {
		open = append(open, "<u>")
		close = append([]string{"</u>"}, close...)
	}
	if props.strike {
		open = append(open, "<s>")
		close = append([]string{"</s>"}, close...)
	}
	if style := props.styleAttr(); style != "" {
		open = append(open, `<span style="`+html.EscapeString(style)+`">`)
		close = append([]string{"</span>"}, close...)
	}

	var text strings.Builder
	for c := firstChildElement(r); c != nil; c = nextElement(c) {
		switch c.Data {
		case "t":
			text.WriteString(innerText(c))
		case "tab":
			text.WriteString("\t")
		case "br":
			// Flush accumulated text so the break lands between runs.
			if text.Len() > 0 {
				w.writeWrapped(open, close, text.String())
				text.Reset()
			}
			w.sb.WriteString("<br>")
		}
	}
	if text.Len() > 0 {
		w.writeWrapped(open, close, text.String())
	}
}

func (w *markupWriter) writeWrapped(open, close []string, text string) {
	for _, t := range open {
		w.sb.WriteString(t)
	}
	w.sb.WriteString(html.EscapeString(text))
	for _, t := range close {
		w.sb.WriteString(t)
	}
}

func (w *markupWriter) writeTable(tbl *xmlquery.Node) {
	w.sb.WriteString("<table>")
	for row := firstChildElement(tbl); row != nil; row = nextElement(row) {
		if row.Data != "tr" {
			continue
		}
		w.sb.WriteString("<tr>")
		for cell := firstChildElement(row); cell != nil; cell = nextElement(cell) {
			if cell.Data != "tc" {
				continue
			}
			w.sb.WriteString("<td>")
			w.writeBlocks(cell)
			w.sb.WriteString("</td>")
		}
		w.sb.WriteString("</tr>")
	}
	w.sb.WriteString("</table>")
}

// paragraphStyle returns the paragraph's style name (e.g. "Heading1").
func paragraphStyle(p *xmlquery.Node) string {
	pPr := firstChildElement(p)
	if pPr == nil || pPr.Data != "pPr" {
		return ""
	}
	if style := findElement(pPr, "pStyle"); style != nil {
		return attr(style, "val")
	}
	return ""
}

// headingLevel maps a paragraph style name to a heading level 1-6, or 0
// for body text. Localized style names ("Titre1", "Überschrift1") are
// recognized alongside the English defaults.
func headingLevel(style string) int {
	lower := strings.ToLower(style)
	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if rest, ok := strings.CutPrefix(lower, prefix); ok {
			if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 6 {
				return n
			}
		}
	}
	return 0
}

// runProperties holds the formatting of one text run.
type runProperties struct {
	bold       bool
	italic     bool
	underline  bool
	strike     bool
	color      string
	highlight  string
	fontFamily string
	fontSize   string
}

// styleAttr renders the style-level properties as a CSS declaration list.
func (p runProperties) styleAttr() string {
	var parts []string
	if p.color != "" {
		parts = append(parts, "color: #"+p.color)
	}
	if p.highlight != "" {
		parts = append(parts, "background-color: "+p.highlight)
	}
	if p.fontFamily != "" {
		parts = append(parts, "font-family: "+p.fontFamily)
	}
	if p.fontSize != "" {
		parts = append(parts, "font-size: "+p.fontSize)
	}
	return strings.Join(parts, "; ")
}

func runProps(r *xmlquery.Node) runProperties {
	var props runProperties
	rPr := firstChildElement(r)
	if rPr == nil || rPr.Data != "rPr" {
		return props
	}
	for c := firstChildElement(rPr); c != nil; c = nextElement(c) {
		switch c.Data {
		case "b":
			props.bold = attr(c, "val") != "false" && attr(c, "val") != "0"
		case "i":
			props.italic = attr(c, "val") != "false" && attr(c, "val") != "0"
		case "u":
			props.underline = attr(c, "val") != "none"
		case "strike":
			props.strike = attr(c, "val") != "false" && attr(c, "val") != "0"
		case "color":
			if v := attr(c, "val"); v != "" && v != "auto" {
				props.color = v
			}
		case "highlight":
			if v := attr(c, "val"); v != "" && v != "none" {
				props.highlight = v
			}
		case "rFonts":
			if v := attr(c, "ascii"); v != "" {
				props.fontFamily = v
			}
		case "sz":
			// w:sz is in half-points.
			if half, err := strconv.Atoi(attr(c, "val")); err == nil && half > 0 {
				props.fontSize = strconv.Itoa(half/2) + "pt"
			}
		}
	}
	return props
}
