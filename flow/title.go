package flow

import (
	"context"
	"strings"
)

// TitleInput asks for a conversation title. At least one field must be
// present.
type TitleInput struct {
	Message      string `json:"message,omitempty"`
	DocumentName string `json:"documentName,omitempty"`
}

// TitleOutput carries the generated title.
type TitleOutput struct {
	Title string `json:"title"`
}

// Title generates a short conversation title. A model failure falls
// back to a keyword-derived title so the caller always gets one.
func (s *Service) Title(ctx context.Context, in TitleInput) (*TitleOutput, error) {
	s.state("title", StateReceived)

	message := strings.TrimSpace(in.Message)
	if message == "" && strings.TrimSpace(in.DocumentName) == "" {
		s.state("title", StateFailed)
		return nil, &ValidationError{Reason: "message or documentName required"}
	}
	s.state("title", StateValidated)

	var sb strings.Builder
	if message != "" {
		sb.WriteString("User message: " + message + "\n")
	}
	if in.DocumentName != "" {
		sb.WriteString("Document: " + in.DocumentName + "\n")
	}
	sb.WriteByte('\n')
	sb.WriteString(titleInstruction)
	s.state("title", StateContextAssembled)

	raw, err := s.client.Complete(ctx, systemPersona, sb.String())
	s.state("title", StateModelInvoked)
	if err != nil || strings.TrimSpace(raw) == "" {
		if err != nil {
			s.logger.Warn("title model call failed", "error", err)
		}
		s.state("title", StateDegraded)
		return &TitleOutput{Title: fallbackTitle(in)}, nil
	}
	s.state("title", StateSucceeded)
	return &TitleOutput{Title: strings.Trim(strings.TrimSpace(raw), `"`)}, nil
}

// fallbackTitle derives a title without the model: the document name
// when one exists, a truncated long message, otherwise keywords from
// the message.
func fallbackTitle(in TitleInput) string {
	if name := strings.TrimSpace(in.DocumentName); name != "" {
		return "Document Review - " + stripExtension(name)
	}
	if msg := []rune(in.Message); len(msg) > 20 {
		return string(msg[:20]) + "..."
	}
	return smartFallbackTitle(in.Message)
}

var legalKeywords = map[string]bool{
	"contract": true, "breach": true, "dispute": true, "legal": true,
	"case": true, "court": true, "agreement": true, "liability": true,
	"damages": true, "defendant": true, "plaintiff": true, "lawsuit": true,
	"settlement": true, "arguments": true, "defense": true, "criminal": true,
	"civil": true, "property": true, "employment": true, "family": true,
	"immigration": true,
}

var titlePhrases = []struct {
	first, second string
	title         string
}{
	{"contract", "breach", "Contract Breach"},
	{"defendant", "arguments", "Defense Arguments"},
	{"legal", "advice", "Legal Advice"},
	{"case", "analysis", "Case Analysis"},
	{"criminal", "defense", "Criminal Defense"},
	{"property", "law", "Property Law"},
	{"employment", "law", "Employment Law"},
}

var fillerWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"that": true, "will": true, "can": true, "help": true, "need": true,
	"want": true, "would": true, "could": true, "should": true,
	"please": true, "thank": true, "thanks": true,
}

// smartFallbackTitle builds a title from legal keywords in the
// message, falling back to its first meaningful words.
func smartFallbackTitle(message string) string {
	words := strings.Fields(strings.ToLower(message))
	has := make(map[string]bool, len(words))
	var found []string
	for _, w := range words {
		has[w] = true
		if legalKeywords[w] {
			found = append(found, w)
		}
	}

	if len(found) > 0 {
		for _, p := range titlePhrases {
			if has[p.first] && has[p.second] {
				return p.title
			}
		}
		return strings.ToUpper(found[0][:1]) + found[0][1:]
	}

	var meaningful []string
	for _, w := range strings.Fields(message) {
		if len(w) > 3 && !fillerWords[strings.ToLower(w)] {
			meaningful = append(meaningful, w)
			if len(meaningful) == 3 {
				break
			}
		}
	}
	if len(meaningful) > 0 {
		return strings.Join(meaningful, " ")
	}
	return "Legal Discussion"
}
