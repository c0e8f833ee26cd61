package flow

import (
	"context"
	"strings"
)

// Suggest action types.
const (
	ActionCitation = "citation"
	ActionRephrase = "rephrase"
)

// SuggestInput is a request for help with selected document text.
type SuggestInput struct {
	SelectedText string `json:"selectedText"`
	ActionType   string `json:"actionType"`
}

// SuggestOutput carries the generated suggestion.
type SuggestOutput struct {
	Suggestion string `json:"suggestion"`
}

// seedCitation is one entry of the built-in citation knowledge base,
// matched against selected text by keyword.
type seedCitation struct {
	keywords []string
	citation string
	source   string
}

var seedCitations = []seedCitation{
	{
		keywords: []string{"court", "inherent power", "stay proceedings"},
		citation: "Order XLI, Rule 5, Code of Civil Procedure, 1908. This rule grants appellate courts the power to stay proceedings under the decree or order appealed from.",
		source:   "Civil Drafting Stay Application",
	},
	{
		keywords: []string{"national commission", "jurisdiction", "claims exceeding", "crore"},
		citation: "Consumer Protection Act, 2019, Section 58(1)(a)(i). The National Commission has jurisdiction for complaints where the value of goods or services paid as consideration exceeds ten crore rupees.",
		source:   "Appeal to National Commission under Section 19 of Consumer Protection Act",
	},
	{
		keywords: []string{"compensation", "motor accident", "just and reasonable"},
		citation: "Raj Kumar v. Ajay Kumar, (2011) 1 SCC 343. The Supreme Court reiterated that compensation in motor accident claims must be just, fair, and equitable.",
		source:   "Appeal under Section 173 of Motor Vehicles Act, 1988",
	},
	{
		keywords: []string{"market value", "land", "notification", "section 4"},
		citation: "Land Acquisition Act, 1894, Section 23(1). This section outlines matters to be considered in determining compensation, including the market value of the land at the date of the publication of the notification under section 4, sub-section (1).",
		source:   "Appeal under Section 54 of Land Acquisition Act",
	},
	{
		keywords: []string{"appeal", "limitation period", "sufficient cause"},
		citation: "Section 5, Limitation Act, 1963. This section allows for the extension of the prescribed period if the appellant satisfies the court that there was sufficient cause for not preferring the appeal within such period.",
		source:   "General Civil/Appellate Matters",
	},
}

// matchCitations returns the knowledge-base entries whose keywords
// appear in the selected text.
func matchCitations(selectedText string) []seedCitation {
	lower := strings.ToLower(selectedText)
	var out []seedCitation
	for _, entry := range seedCitations {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

// Suggest produces a citation or rephrasing suggestion for selected
// text. Citation requests are augmented with keyword-matched entries
// from the seed knowledge base. Model errors propagate.
func (s *Service) Suggest(ctx context.Context, in SuggestInput) (*SuggestOutput, error) {
	s.state("suggest", StateReceived)

	if strings.TrimSpace(in.SelectedText) == "" {
		s.state("suggest", StateFailed)
		return nil, &ValidationError{Field: "selectedText", Reason: "required"}
	}
	if in.ActionType != ActionCitation && in.ActionType != ActionRephrase {
		s.state("suggest", StateFailed)
		return nil, &ValidationError{Field: "actionType", Reason: "must be citation or rephrase"}
	}
	s.state("suggest", StateValidated)

	prompt := s.suggestPrompt(in)
	s.state("suggest", StateContextAssembled)

	raw, err := s.client.Complete(ctx, systemPersona, prompt)
	s.state("suggest", StateModelInvoked)
	if err != nil {
		s.state("suggest", StateFailed)
		return nil, err
	}
	s.state("suggest", StateSucceeded)
	return &SuggestOutput{Suggestion: strings.TrimSpace(raw)}, nil
}

func (s *Service) suggestPrompt(in SuggestInput) string {
	var sb strings.Builder
	sb.WriteString("A user selected the following text in their document:\n\"")
	sb.WriteString(in.SelectedText)
	sb.WriteString("\"\n\n")

	switch in.ActionType {
	case ActionCitation:
		sb.WriteString("This is a CITATION request.\n")
		if matches := matchCitations(in.SelectedText); len(matches) > 0 {
			sb.WriteString("Use the following retrieved citations as primary context. If they are not directly relevant, explain why and provide the best possible citation based on the selected text itself.\n")
			for _, m := range matches {
				sb.WriteString("- ")
				sb.WriteString(m.citation)
				sb.WriteString(" (source: ")
				sb.WriteString(m.source)
				sb.WriteString(")\n")
			}
		} else {
			sb.WriteString("No specific citations were retrieved for this text. Provide the most relevant legal citation you can determine; if the text is too generic, state that more context is needed.\n")
		}
	case ActionRephrase:
		sb.WriteString("This is a REPHRASE request. Provide a concise and improved version of the selected text, maintaining its legal meaning.\n")
	}

	sb.WriteString("\nProvide only the suggestion.")
	return sb.String()
}
