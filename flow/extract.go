package flow

import (
	"context"
	"strings"
	"time"
)

// ExtractInput asks for the case details of an uploaded document.
type ExtractInput struct {
	Document     string `json:"document"`
	DocumentName string `json:"documentName"`
}

// ExtractOutput is the structured extraction result. CaseName derives
// from the document name; the summary is the model's structured
// write-up of the case details.
type ExtractOutput struct {
	CaseName     string   `json:"caseName"`
	Summary      string   `json:"summary"`
	Suggestions  []string `json:"suggestions,omitempty"`
	RelatedCases []string `json:"relatedCases,omitempty"`
	ExtractedAt  string   `json:"extractedAt"`
}

// Extract pulls case details out of a document. Both fields are
// required. Unlike chat, model errors propagate so the caller can
// report the failure.
func (s *Service) Extract(ctx context.Context, in ExtractInput) (*ExtractOutput, error) {
	s.state("extract", StateReceived)

	if strings.TrimSpace(in.Document) == "" {
		s.state("extract", StateFailed)
		return nil, &ValidationError{Field: "document", Reason: "required"}
	}
	if strings.TrimSpace(in.DocumentName) == "" {
		s.state("extract", StateFailed)
		return nil, &ValidationError{Field: "documentName", Reason: "required"}
	}
	s.state("extract", StateValidated)

	var sb strings.Builder
	sb.WriteString(s.documentBlock(in.Document, in.DocumentName))
	sb.WriteByte('\n')
	sb.WriteString(extractInstruction)
	s.state("extract", StateContextAssembled)

	raw, err := s.client.Complete(ctx, systemPersona, sb.String())
	s.state("extract", StateModelInvoked)
	if err != nil {
		s.state("extract", StateFailed)
		return nil, err
	}

	s.state("extract", StateSucceeded)
	return &ExtractOutput{
		CaseName:    stripExtension(in.DocumentName),
		Summary:     strings.TrimSpace(raw),
		ExtractedAt: s.now().UTC().Format(time.RFC3339),
	}, nil
}
