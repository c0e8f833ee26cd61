package flow

import (
	"context"
	"encoding/json"
	"strings"
)

// ChatInput is one user turn of the assistant conversation.
type ChatInput struct {
	Question     string       `json:"question"`
	ChatHistory  []RawMessage `json:"chatHistory,omitempty"`
	Document     string       `json:"document,omitempty"`
	DocumentName string       `json:"documentName,omitempty"`
}

// ChatOutput is the shaped assistant reply.
type ChatOutput struct {
	Answer       string   `json:"answer"`
	Suggestions  []string `json:"suggestions,omitempty"`
	RelatedCases []string `json:"relatedCases,omitempty"`
}

// Fallback payloads for the degraded chat path. The client UI never
// has to special-case a broken chat turn.
var (
	degradedModelOutput = ChatOutput{
		Answer: "I apologize, but I encountered an issue processing your message. Please try again.",
		Suggestions: []string{
			"Could you rephrase your question?",
			"Would you like to upload a document for analysis?",
		},
	}
	degradedModelFailure = ChatOutput{
		Answer: "I apologize, but I encountered a technical issue. Please try again or contact support if the problem persists.",
		Suggestions: []string{
			"Try rephrasing your question",
			"Check your internet connection",
			"Contact support",
		},
	}
)

// Chat answers a legal question with conversation and document context.
// The model is called exactly once — on failure or malformed output the
// flow degrades to a fixed apology payload instead of returning an
// error. Only validation failures surface as errors.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	s.state("chat", StateReceived)

	if strings.TrimSpace(in.Question) == "" {
		s.state("chat", StateFailed)
		return nil, &ValidationError{Field: "question", Reason: "required"}
	}
	history := SanitizeHistory(in.ChatHistory)
	if err := ValidateHistory(history); err != nil {
		s.state("chat", StateFailed)
		return nil, err
	}
	s.state("chat", StateValidated)

	workflow := detectWorkflow(in.Question)
	prompt := s.chatPrompt(in, history, workflow)
	s.state("chat", StateContextAssembled)

	raw, err := s.client.Complete(ctx, systemPersona, prompt)
	s.state("chat", StateModelInvoked)
	if err != nil {
		s.logger.Warn("chat model call failed", "workflow", workflow, "error", err)
		s.state("chat", StateDegraded)
		out := degradedModelFailure
		return &out, nil
	}

	out, ok := shapeChatOutput(raw)
	if !ok {
		s.logger.Warn("chat model returned unusable output", "workflow", workflow)
		s.state("chat", StateDegraded)
		fallback := degradedModelOutput
		return &fallback, nil
	}
	s.state("chat", StateSucceeded)
	return out, nil
}

func (s *Service) chatPrompt(in ChatInput, history []Message, workflow string) string {
	var sb strings.Builder
	if block := renderHistory(history); block != "" {
		sb.WriteString(block)
		sb.WriteByte('\n')
	}
	if block := s.documentBlock(in.Document, in.DocumentName); block != "" {
		sb.WriteString(block)
		sb.WriteByte('\n')
	}
	sb.WriteString(instructionFor(workflow, strings.TrimSpace(in.Document) != ""))
	sb.WriteString("\n\nUser's current question: ")
	sb.WriteString(in.Question)
	return sb.String()
}

// shapeChatOutput accepts either a structured JSON reply or plain
// markdown text. Unexpected fields are defaulted, never surfaced as
// errors.
func shapeChatOutput(raw string) (*ChatOutput, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		var out ChatOutput
		if err := json.Unmarshal([]byte(raw), &out); err == nil && strings.TrimSpace(out.Answer) != "" {
			return &out, true
		}
		// JSON without an answer field: fall through and treat the
		// text itself as the answer.
	}
	return &ChatOutput{Answer: raw}, true
}
