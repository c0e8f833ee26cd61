// Package docparse extracts plain text content and lightweight metadata
// from uploaded document files.
//
// Supported formats:
//   - .pdf   — page text via pdfcpu content streams
//   - .docx  — Microsoft Word (archive/zip → word/document.xml)
//   - .txt   — plain text passthrough
//   - .html  — converted to markdown text
//   - .md    — normalized through a markdown render pass
//
// Dispatch goes by declared MIME type first, file extension second,
// against a closed format registry resolved at construction. Parsing is
// pure: the same bytes always produce the same output.
package docparse

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// File is an uploaded document held in memory.
type File struct {
	Name string // original filename, used for extension dispatch
	Type string // declared MIME type, may be empty
	Data []byte
}

// Metadata carries best-effort document attributes. Fields the format
// cannot provide stay zero.
type Metadata struct {
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	WordCount int    `json:"wordCount,omitempty"`
}

// Parsed is the result of extracting a file.
type Parsed struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// ParseError reports a file that could not be parsed, keeping the
// low-level cause for the API error envelope.
type ParseError struct {
	Name   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("parse %s (%s): %v", e.Name, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Config configures the parser.
type Config struct {
	// MaxFileSize is the maximum file size to process (default: 25 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 25 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

type extractFunc func(data []byte) (string, Metadata, error)

type format struct {
	name    string
	mimes   []string
	exts    []string
	extract extractFunc
}

// Parser is the document extraction engine.
type Parser struct {
	cfg     Config
	logger  *slog.Logger
	formats []format
}

// New creates a Parser with the fixed format registry. Registry order
// only matters when MIME types overlap: the first match wins.
func New(cfg Config) *Parser {
	cfg.defaults()
	return &Parser{
		cfg:    cfg,
		logger: cfg.Logger,
		formats: []format{
			{
				name:    "pdf",
				mimes:   []string{"application/pdf"},
				exts:    []string{".pdf"},
				extract: extractPDF,
			},
			{
				name:    "docx",
				mimes:   []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
				exts:    []string{".docx"},
				extract: extractDocx,
			},
			{
				name:    "markdown",
				mimes:   []string{"text/markdown", "text/x-markdown"},
				exts:    []string{".md", ".markdown"},
				extract: extractMarkdown,
			},
			{
				name:    "html",
				mimes:   []string{"text/html"},
				exts:    []string{".html", ".htm"},
				extract: extractHTML,
			},
			{
				name:    "text",
				mimes:   []string{"text/plain"},
				exts:    []string{".txt", ".text"},
				extract: extractText,
			},
		},
	}
}

// Detect resolves the format for a file, by MIME type then extension.
func (p *Parser) Detect(file File) (string, bool) {
	f, ok := p.lookup(file)
	if !ok {
		return "", false
	}
	return f.name, true
}

func (p *Parser) lookup(file File) (format, bool) {
	mime := strings.ToLower(file.Type)
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	if mime != "" {
		for _, f := range p.formats {
			for _, m := range f.mimes {
				if m == mime {
					return f, true
				}
			}
		}
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	if ext != "" {
		for _, f := range p.formats {
			for _, e := range f.exts {
				if e == ext {
					return f, true
				}
			}
		}
	}
	return format{}, false
}

// SupportedFormats returns the names of all registered formats.
func (p *Parser) SupportedFormats() []string {
	names := make([]string, len(p.formats))
	for i, f := range p.formats {
		names[i] = f.name
	}
	return names
}

// Parse extracts the content and metadata of a file.
func (p *Parser) Parse(ctx context.Context, file File) (*Parsed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(file.Data) == 0 {
		return nil, &ParseError{Name: file.Name, Err: fmt.Errorf("empty file")}
	}
	if int64(len(file.Data)) > p.cfg.MaxFileSize {
		return nil, &ParseError{
			Name: file.Name,
			Err:  fmt.Errorf("file too large: %d bytes (max %d)", len(file.Data), p.cfg.MaxFileSize),
		}
	}

	f, ok := p.lookup(file)
	if !ok {
		return nil, &ParseError{
			Name: file.Name,
			Err:  fmt.Errorf("unsupported file type %q", file.Type),
		}
	}

	p.logger.Debug("parsing document", "name", file.Name, "format", f.name, "bytes", len(file.Data))

	content, meta, err := f.extract(file.Data)
	if err != nil {
		return nil, &ParseError{Name: file.Name, Format: f.name, Err: err}
	}
	if meta.WordCount == 0 {
		meta.WordCount = len(strings.Fields(content))
	}
	return &Parsed{Content: content, Metadata: meta}, nil
}

// firstLine returns the first non-empty line, capped for use as a title.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 200 {
			line = line[:200]
		}
		return line
	}
	return ""
}
