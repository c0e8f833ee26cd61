package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeClient struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastPrompt string
}

func (f *fakeClient) Complete(_ context.Context, system, prompt string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastPrompt = prompt
	return f.reply, f.err
}

func asValidationError(err error, target **ValidationError) bool {
	return errors.As(err, target)
}

func newService(client *fakeClient) *Service {
	return New(client, Config{})
}

// --- chat ---

func TestChatSuccess(t *testing.T) {
	client := &fakeClient{reply: "**Answer**\nSection 5 applies."}
	out, err := newService(client).Chat(context.Background(), ChatInput{Question: "Which section applies?"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out.Answer != "**Answer**\nSection 5 applies." {
		t.Errorf("answer = %q", out.Answer)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d", client.calls)
	}
}

func TestChatStructuredModelOutput(t *testing.T) {
	client := &fakeClient{reply: `{"answer":"Yes.","suggestions":["Ask about limitation"],"relatedCases":["Raj Kumar v. Ajay Kumar"]}`}
	out, err := newService(client).Chat(context.Background(), ChatInput{Question: "Is the appeal maintainable?"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out.Answer != "Yes." || len(out.Suggestions) != 1 || len(out.RelatedCases) != 1 {
		t.Errorf("out = %+v", out)
	}
}

func TestChatMissingQuestion(t *testing.T) {
	client := &fakeClient{}
	_, err := newService(client).Chat(context.Background(), ChatInput{})
	var verr *ValidationError
	if !asValidationError(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if client.calls != 0 {
		t.Errorf("model called %d times before validation", client.calls)
	}
}

func TestChatDegradesOnModelError(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	out, err := newService(client).Chat(context.Background(), ChatInput{Question: "hello"})
	if err != nil {
		t.Fatalf("degraded chat must not error, got %v", err)
	}
	if !strings.Contains(out.Answer, "I apologize") {
		t.Errorf("answer = %q, want apology", out.Answer)
	}
	if len(out.Suggestions) == 0 {
		t.Error("want fallback suggestions")
	}
}

func TestChatDegradesOnEmptyModelOutput(t *testing.T) {
	client := &fakeClient{reply: "   "}
	out, err := newService(client).Chat(context.Background(), ChatInput{Question: "hello"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out.Answer == "" {
		t.Fatal("degraded path must still produce a non-empty answer")
	}
}

func TestChatNoRetries(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	newService(client).Chat(context.Background(), ChatInput{Question: "q"})
	if client.calls != 1 {
		t.Errorf("calls = %d, want exactly 1", client.calls)
	}
}

func TestChatPromptCarriesHistoryAndDocument(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	_, err := newService(client).Chat(context.Background(), ChatInput{
		Question:     "What did I ask before?",
		ChatHistory:  []RawMessage{{Role: "user", Parts: "first question"}},
		Document:     "The lease runs for five years.",
		DocumentName: "lease.docx",
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	for _, want := range []string{"first question", "lease.docx", "five years"} {
		if !strings.Contains(client.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestChatRejectsBadHistoryRole(t *testing.T) {
	client := &fakeClient{}
	_, err := newService(client).Chat(context.Background(), ChatInput{
		Question:    "q",
		ChatHistory: []RawMessage{{Role: "wizard", Parts: "spell"}},
	})
	var verr *ValidationError
	if !asValidationError(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestDetectWorkflow(t *testing.T) {
	cases := []struct{ question, want string }{
		{"Please summarize this filing", workflowSummarize},
		{"translate this to hindi", workflowTranslate},
		{"generate arguments for my case", workflowArguments},
		{"find case law on this point", workflowCitations},
		{"what was my last question?", workflowGeneral},
		{"hello there", workflowGeneral},
		// context keywords outrank document actions
		{"summarize what I asked before", workflowGeneral},
	}
	for _, c := range cases {
		if got := detectWorkflow(c.question); got != c.want {
			t.Errorf("detectWorkflow(%q) = %q, want %q", c.question, got, c.want)
		}
	}
}

func TestDocumentTruncationAtRuneBoundary(t *testing.T) {
	s := New(&fakeClient{reply: "ok"}, Config{MaxDocumentChars: 3})
	got := s.truncateDocument("héllo")
	if got != "hél" {
		t.Errorf("truncated = %q, want %q", got, "hél")
	}
}

// --- suggest ---

func TestSuggestCitationUsesSeedBase(t *testing.T) {
	client := &fakeClient{reply: "Order XLI, Rule 5 applies."}
	out, err := newService(client).Suggest(context.Background(), SuggestInput{
		SelectedText: "The court has inherent power to stay proceedings pending appeal.",
		ActionType:   ActionCitation,
	})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if out.Suggestion == "" {
		t.Error("empty suggestion")
	}
	if !strings.Contains(client.lastPrompt, "Order XLI, Rule 5") {
		t.Errorf("prompt missing seed citation: %q", client.lastPrompt)
	}
}

func TestSuggestCitationNoMatch(t *testing.T) {
	client := &fakeClient{reply: "More context needed."}
	_, err := newService(client).Suggest(context.Background(), SuggestInput{
		SelectedText: "The weather was pleasant.",
		ActionType:   ActionCitation,
	})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if !strings.Contains(client.lastPrompt, "No specific citations were retrieved") {
		t.Errorf("prompt = %q", client.lastPrompt)
	}
}

func TestSuggestInvalidAction(t *testing.T) {
	_, err := newService(&fakeClient{}).Suggest(context.Background(), SuggestInput{
		SelectedText: "text", ActionType: "expand",
	})
	var verr *ValidationError
	if !asValidationError(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestSuggestPropagatesModelError(t *testing.T) {
	wantErr := errors.New("rate limited")
	_, err := newService(&fakeClient{err: wantErr}).Suggest(context.Background(), SuggestInput{
		SelectedText: "text", ActionType: ActionRephrase,
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want propagated model error", err)
	}
}

// --- extract ---

func TestExtractSuccess(t *testing.T) {
	client := &fakeClient{reply: "Case between A and B before the High Court."}
	s := newService(client)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	out, err := s.Extract(context.Background(), ExtractInput{
		Document:     "PETITIONER: A ... RESPONDENT: B",
		DocumentName: "writ-petition.docx",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out.CaseName != "writ-petition" {
		t.Errorf("caseName = %q", out.CaseName)
	}
	if out.Summary == "" {
		t.Error("empty summary")
	}
	if out.ExtractedAt != "2026-03-01T12:00:00Z" {
		t.Errorf("extractedAt = %q", out.ExtractedAt)
	}
}

func TestExtractMissingDocument(t *testing.T) {
	client := &fakeClient{}
	_, err := newService(client).Extract(context.Background(), ExtractInput{DocumentName: "x"})
	var verr *ValidationError
	if !asValidationError(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if client.calls != 0 {
		t.Error("model called despite validation failure")
	}
}

func TestExtractPropagatesModelError(t *testing.T) {
	wantErr := errors.New("server error")
	_, err := newService(&fakeClient{err: wantErr}).Extract(context.Background(), ExtractInput{
		Document: "d", DocumentName: "n.pdf",
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want propagated model error", err)
	}
}

// --- analyze ---

func TestAnalyzeEmptyDocumentShortCircuits(t *testing.T) {
	client := &fakeClient{}
	out, err := newService(client).Analyze(context.Background(), AnalyzeInput{
		Document: "   ", DocumentName: "blank.docx",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if client.calls != 0 {
		t.Error("model called for empty document")
	}
	if out.CaseName != "blank" || len(out.Tags) == 0 {
		t.Errorf("out = %+v", out)
	}
}

func TestAnalyzeParsesModelJSON(t *testing.T) {
	client := &fakeClient{reply: "```json\n" + `{"caseName":"A vs. B","summary":"Writ petition.","tags":["Writ"],"legalSections":["Article 226"],"keyFacts":["Filed 2024"],"courtName":"High Court of Rajasthan"}` + "\n```"}
	out, err := newService(client).Analyze(context.Background(), AnalyzeInput{
		Document: "content", DocumentName: "petition.pdf",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.CaseName != "A vs. B" || out.CourtName != "High Court of Rajasthan" {
		t.Errorf("out = %+v", out)
	}
}

func TestAnalyzeDefaultsMalformedOutput(t *testing.T) {
	client := &fakeClient{reply: "I cannot analyze this document."}
	out, err := newService(client).Analyze(context.Background(), AnalyzeInput{
		Document: "content", DocumentName: "petition.pdf",
	})
	if err != nil {
		t.Fatalf("malformed model output must not error, got %v", err)
	}
	if out.CaseName != "petition" {
		t.Errorf("caseName = %q", out.CaseName)
	}
	if out.Summary == "" || out.Tags == nil || out.LegalSections == nil || out.KeyFacts == nil {
		t.Errorf("missing defaults: %+v", out)
	}
}

func TestAnalyzeDefaultsMissingFields(t *testing.T) {
	client := &fakeClient{reply: `{"caseName":"A vs. B"}`}
	out, err := newService(client).Analyze(context.Background(), AnalyzeInput{
		Document: "content", DocumentName: "petition.pdf",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.Summary == "" || out.Tags == nil || out.LegalSections == nil || out.KeyFacts == nil {
		t.Errorf("missing defaults: %+v", out)
	}
}

// --- title ---

func TestTitleSuccess(t *testing.T) {
	client := &fakeClient{reply: `"Contract Dispute Analysis"`}
	out, err := newService(client).Title(context.Background(), TitleInput{Message: "My contract was breached"})
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if out.Title != "Contract Dispute Analysis" {
		t.Errorf("title = %q", out.Title)
	}
}

func TestTitleBothInputsAbsent(t *testing.T) {
	_, err := newService(&fakeClient{}).Title(context.Background(), TitleInput{})
	var verr *ValidationError
	if !asValidationError(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestTitleFallsBackOnModelError(t *testing.T) {
	client := &fakeClient{err: errors.New("down")}
	out, err := newService(client).Title(context.Background(), TitleInput{
		Message: "contract breach now",
	})
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if out.Title != "Contract Breach" {
		t.Errorf("title = %q, want keyword fallback", out.Title)
	}
}

func TestTitleTruncatesLongMessageFallback(t *testing.T) {
	client := &fakeClient{err: errors.New("down")}
	out, err := newService(client).Title(context.Background(), TitleInput{
		Message: "please summarize the deposition transcript",
	})
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if out.Title != "please summarize the..." {
		t.Errorf("title = %q, want truncated message", out.Title)
	}
}

func TestTitleDocumentNameFallback(t *testing.T) {
	client := &fakeClient{err: errors.New("down")}
	out, err := newService(client).Title(context.Background(), TitleInput{DocumentName: "lease.docx"})
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if out.Title != "Document Review - lease" {
		t.Errorf("title = %q", out.Title)
	}
}

func TestSmartFallbackTitle(t *testing.T) {
	cases := []struct{ message, want string }{
		{"help with contract breach please", "Contract Breach"},
		{"I need legal advice today", "Legal Advice"},
		{"something about property matters", "Property"},
		{"summarize the quarterly budget numbers", "summarize quarterly budget"},
		{"hi", "Legal Discussion"},
	}
	for _, c := range cases {
		if got := smartFallbackTitle(c.message); got != c.want {
			t.Errorf("smartFallbackTitle(%q) = %q, want %q", c.message, got, c.want)
		}
	}
}
