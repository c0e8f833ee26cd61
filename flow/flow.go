// Package flow implements the AI-assisted drafting operations: chat,
// suggest, extract, analyze and title. Each flow is a typed input to
// typed output function with exactly one external side effect, the
// model call.
//
// Every invocation moves through the same states: Received, Validated,
// ContextAssembled, ModelInvoked, then Succeeded, Degraded or Failed.
// Only chat can end Degraded — a model failure there turns into a safe
// fallback answer instead of an error, so a broken chat turn never
// reaches the client as an exception.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Client is the model-service surface the flows call. Satisfied by
// *llm.Client; tests substitute a fake.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// State tracks one flow invocation.
type State string

const (
	StateReceived         State = "received"
	StateValidated        State = "validated"
	StateContextAssembled State = "context_assembled"
	StateModelInvoked     State = "model_invoked"
	StateSucceeded        State = "succeeded"
	StateDegraded         State = "degraded"
	StateFailed           State = "failed"
)

// ValidationError reports missing or malformed flow input. Raised
// before any model call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
	}
	return "invalid input: " + e.Reason
}

// Config configures the flow service.
type Config struct {
	// MaxDocumentChars caps the document content included in a prompt
	// context. Zero means no ceiling.
	MaxDocumentChars int `json:"max_document_chars" yaml:"max_document_chars"`

	// Logger for per-invocation state logging.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// Service runs the flows against an injected model client. Constructed
// once at process start; holds no per-request state.
type Service struct {
	client Client
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Service.
func New(client Client, cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		client: client,
		cfg:    cfg,
		logger: cfg.Logger,
		now:    time.Now,
	}
}

func (s *Service) state(flowName string, st State) {
	s.logger.Debug("flow state", "flow", flowName, "state", string(st))
}

// truncateDocument applies the configured content ceiling, cutting at
// a rune boundary.
func (s *Service) truncateDocument(doc string) string {
	if s.cfg.MaxDocumentChars <= 0 {
		return doc
	}
	runes := []rune(doc)
	if len(runes) <= s.cfg.MaxDocumentChars {
		return doc
	}
	return string(runes[:s.cfg.MaxDocumentChars])
}

// documentBlock renders the uploaded-document section of a prompt
// context, empty when no document was supplied.
func (s *Service) documentBlock(document, documentName string) string {
	if strings.TrimSpace(document) == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Uploaded document:\n")
	if documentName != "" {
		sb.WriteString("Name: " + documentName + "\n")
	}
	sb.WriteString("Content:\n")
	sb.WriteString(s.truncateDocument(document))
	sb.WriteString("\n")
	return sb.String()
}

// stripExtension removes a trailing file extension from a name.
func stripExtension(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		return name[:idx]
	}
	return name
}
