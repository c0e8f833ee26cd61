package flow

import (
	"fmt"
	"strconv"
	"strings"
)

// Part is one text segment of a history message.
type Part struct {
	Text string `json:"text"`
}

// Message is a sanitized history message.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// RawMessage is a history message as received on the wire, before
// sanitization. Parts may be an array of segments, a bare string, or
// any other scalar shape a client produced.
type RawMessage struct {
	Role  string `json:"role"`
	Parts any    `json:"parts"`
}

// SanitizeHistory coerces raw history into the canonical shape.
// Sanitization and validation are two distinct steps: this one never
// fails, it repairs. Array parts keep only string-bearing segments;
// scalar parts become a single text segment rather than being dropped.
// Messages left with no usable parts are removed.
func SanitizeHistory(raw []RawMessage) []Message {
	out := make([]Message, 0, len(raw))
	for _, m := range raw {
		parts := sanitizeParts(m.Parts)
		if len(parts) == 0 {
			continue
		}
		out = append(out, Message{Role: m.Role, Parts: parts})
	}
	return out
}

func sanitizeParts(parts any) []Part {
	switch v := parts.(type) {
	case nil:
		return nil
	case []any:
		out := make([]Part, 0, len(v))
		for _, elem := range v {
			if text, ok := partText(elem); ok {
				out = append(out, Part{Text: text})
			}
		}
		return out
	default:
		if text := scalarText(v); text != "" {
			return []Part{{Text: text}}
		}
		return nil
	}
}

func partText(elem any) (string, bool) {
	switch v := elem.(type) {
	case string:
		return v, v != ""
	case map[string]any:
		if text, ok := v["text"].(string); ok && text != "" {
			return text, true
		}
	}
	return "", false
}

func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// ValidateHistory checks sanitized history. Unknown roles fail; the
// sanitizer never invents roles, so this catches genuinely malformed
// input.
func ValidateHistory(history []Message) error {
	for i, m := range history {
		switch m.Role {
		case "user", "assistant", "model":
		default:
			return &ValidationError{
				Field:  fmt.Sprintf("chatHistory[%d].role", i),
				Reason: fmt.Sprintf("unknown role %q", m.Role),
			}
		}
		if len(m.Parts) == 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("chatHistory[%d].parts", i),
				Reason: "no text segments",
			}
		}
	}
	return nil
}

// renderHistory flattens history into the prompt context block.
func renderHistory(history []Message) string {
	if len(history) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Previous conversation:\n")
	for _, m := range history {
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		for _, p := range m.Parts {
			sb.WriteString(p.Text)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
