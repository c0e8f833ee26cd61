package flow

import (
	"context"
	"encoding/json"
	"strings"
)

// AnalyzeInput asks for a full structured analysis of a document,
// typically to prefill a new case record.
type AnalyzeInput struct {
	Document     string `json:"document"`
	DocumentName string `json:"documentName"`
}

// CaseDetails is the full analysis result. Optional fields stay empty
// when the document does not mention them.
type CaseDetails struct {
	CaseName          string   `json:"caseName"`
	PetitionerName    string   `json:"petitionerName,omitempty"`
	RespondentName    string   `json:"respondentName,omitempty"`
	CaseNumber        string   `json:"caseNumber,omitempty"`
	CourtName         string   `json:"courtName,omitempty"`
	JudgeName         string   `json:"judgeName,omitempty"`
	PetitionerCounsel string   `json:"petitionerCounsel,omitempty"`
	RespondentCounsel string   `json:"respondentCounsel,omitempty"`
	CaseType          string   `json:"caseType,omitempty"`
	FilingDate        string   `json:"filingDate,omitempty"`
	NextHearingDate   string   `json:"nextHearingDate,omitempty"`
	Summary           string   `json:"summary"`
	Tags              []string `json:"tags"`
	LegalSections     []string `json:"legalSections"`
	KeyFacts          []string `json:"keyFacts"`
}

// Analyze extracts structured case details from a document. An empty
// document short-circuits to a stub result without a model call.
// Transport errors propagate; malformed or incomplete model output is
// repaired with defaults instead.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (*CaseDetails, error) {
	s.state("analyze", StateReceived)

	if strings.TrimSpace(in.DocumentName) == "" {
		s.state("analyze", StateFailed)
		return nil, &ValidationError{Field: "documentName", Reason: "required"}
	}
	if strings.TrimSpace(in.Document) == "" {
		s.state("analyze", StateSucceeded)
		return &CaseDetails{
			CaseName:      stripExtension(in.DocumentName),
			Summary:       "Document appears to be empty or could not be read. Please review manually.",
			Tags:          []string{"Empty Document"},
			LegalSections: []string{},
			KeyFacts:      []string{"Document content is empty or unreadable"},
		}, nil
	}
	s.state("analyze", StateValidated)

	var sb strings.Builder
	sb.WriteString(s.documentBlock(in.Document, in.DocumentName))
	sb.WriteByte('\n')
	sb.WriteString(analyzeInstruction)
	s.state("analyze", StateContextAssembled)

	raw, err := s.client.Complete(ctx, systemPersona, sb.String())
	s.state("analyze", StateModelInvoked)
	if err != nil {
		s.state("analyze", StateFailed)
		return nil, err
	}

	details := shapeCaseDetails(raw, in.DocumentName)
	s.state("analyze", StateSucceeded)
	return details, nil
}

// shapeCaseDetails decodes the model's JSON, tolerating code fences
// and filling every missing required field.
func shapeCaseDetails(raw, documentName string) *CaseDetails {
	var details CaseDetails
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &details); err != nil {
		return &CaseDetails{
			CaseName:      stripExtension(documentName),
			Summary:       "AI analysis failed. Please review the document manually.",
			Tags:          []string{"Analysis Failed"},
			LegalSections: []string{},
			KeyFacts:      []string{"AI could not process the document content"},
		}
	}
	if details.CaseName == "" {
		details.CaseName = stripExtension(documentName)
	}
	if details.Summary == "" {
		details.Summary = "Analysis incomplete. Please review manually."
	}
	if details.Tags == nil {
		details.Tags = []string{"Analysis Incomplete"}
	}
	if details.LegalSections == nil {
		details.LegalSections = []string{}
	}
	if details.KeyFacts == nil {
		details.KeyFacts = []string{"Analysis incomplete"}
	}
	return &details
}

// extractJSONObject strips markdown fences and surrounding prose,
// returning the outermost {...} span.
func extractJSONObject(raw string) string {
	raw = strings.TrimSpace(raw)
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}
