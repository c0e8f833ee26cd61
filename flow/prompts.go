package flow

import "strings"

const systemPersona = `You are LexAI, a specialized legal assistant for the Indian legal system. You help legal professionals with case analysis, document review, legal research and drafting.

Core guidelines:
- Focus exclusively on Indian law, statutes and case law.
- Cite only real, verifiable cases and statutes; never invent citations or links.
- If a query crosses into the practice of law, direct the user to a licensed advocate.
- Respond in clean markdown with **bold headings** and bullet points. Never wrap the response in a JSON object.`

// workflow names picked by detectWorkflow.
const (
	workflowGeneral   = "generalChat"
	workflowSummarize = "summarize"
	workflowTranslate = "translate"
	workflowArguments = "generateArguments"
	workflowCitations = "generateCitations"
)

// detectWorkflow routes a question to an instruction block by keyword.
// Context-reference questions go to general chat first so follow-ups
// about the conversation are not mistaken for document actions.
func detectWorkflow(question string) string {
	q := strings.ToLower(question)

	for _, kw := range []string{"last question", "previous question", "what was", "my question", "before", "earlier", "context"} {
		if strings.Contains(q, kw) {
			return workflowGeneral
		}
	}
	for _, kw := range []string{"summarize", "summary", "key points", "overview", "brief", "main points"} {
		if strings.Contains(q, kw) {
			return workflowSummarize
		}
	}
	for _, kw := range []string{"translate", "convert to", "in hindi", "in english", "in tamil", "translation"} {
		if strings.Contains(q, kw) {
			return workflowTranslate
		}
	}
	for _, kw := range []string{"arguments", "counter-arguments", "case analysis", "legal position", "pros and cons", "favor", "against"} {
		if strings.Contains(q, kw) {
			return workflowArguments
		}
	}
	for _, kw := range []string{"citations", "case law", "precedent", "legal references", "cite", "judgment"} {
		if strings.Contains(q, kw) {
			return workflowCitations
		}
	}
	return workflowGeneral
}

// instructionFor returns the operation-specific instruction block for a
// detected workflow.
func instructionFor(workflow string, hasDocument bool) string {
	switch workflow {
	case workflowSummarize:
		if !hasDocument {
			return `The user asked for a summary but no document is present. Respond: "Please upload the document you want summarized."`
		}
		return `Summarize the uploaded document. Produce:
**Document Title:** the document name
**I. Overview** — what the document is, its purpose and context in 1-2 sentences.
**II. Key Points** — bullet points, each with the relevant legal provisions.
**III. Conclusion** — one sentence on the overall purpose and outcome sought.`
	case workflowTranslate:
		if !hasDocument {
			return `The user asked for a translation but no document is present. Respond: "Please upload the document you wish to translate."`
		}
		return `Translate the uploaded document into the language the user asked for. Keep placeholder brackets like [[appealNumber]] untranslated, preserve headings, numbering and indentation, and use accurate legal terminology in the target language.`
	case workflowArguments:
		return `Structure the answer in three sections:
**Section 1: Case Summary** — 2-3 lines on the facts and legal issue.
**Section 2: Arguments in Favor** — bullets, each with a citation to a real Indian Supreme Court or High Court case as a markdown hyperlink.
**Section 3: Counter-Arguments** — same format.
If no real case with a public link exists for a point, state: "No real case law with a public link found for this point."`
	case workflowCitations:
		if !hasDocument {
			return `The user asked for citations but no document is present. Respond: "Please upload the document for which you need legal citations."`
		}
		return `Identify the major legal issues and statutory references in the uploaded document. Return a numbered list of case law citations, each as a markdown hyperlink to the real source. Where no relevant case law exists for an issue, state: "No relevant case law found for this issue."`
	default:
		return `Answer the user's question directly with full context awareness. Reference the previous conversation and any uploaded document where relevant, give the direct answer first, and include citations where appropriate.`
	}
}

const extractInstruction = `Extract and structure the case details from the document: case name, parties involved, court name, case type, filing date, and any other relevant metadata. Write a clear structured summary.`

const analyzeInstruction = `Analyze the legal document and extract structured data. Return ONLY a valid JSON object with this exact structure, no markdown and no code fences:
{
  "caseName": "Petitioner vs. Respondent, or the document name if parties are not found",
  "petitionerName": "string or empty",
  "respondentName": "string or empty",
  "caseNumber": "string or empty",
  "courtName": "string or empty",
  "judgeName": "string or empty",
  "petitionerCounsel": "string or empty",
  "respondentCounsel": "string or empty",
  "caseType": "string or empty",
  "filingDate": "YYYY-MM-DD or empty",
  "nextHearingDate": "YYYY-MM-DD or empty",
  "summary": "2-3 sentence case summary",
  "tags": ["3-5 relevant tags"],
  "legalSections": ["acts, articles and sections mentioned"],
  "keyFacts": ["3-5 key factual points"]
}
If a field cannot be extracted use an empty string or empty array, never null.`

const titleInstruction = `Create a concise, professional title for a legal chat conversation: 3-7 words, under 50 characters, capturing the main legal topic or document type. Respond with the title only, no quotes and no explanation.`
