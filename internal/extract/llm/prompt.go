package llm

import (
	"fmt"
	"strings"
)

const truncationMarker = "\n\n[...TRUNCATED...]"

var languageNames = map[string]string{
	"nl": "simple Dutch",
	"ar": "Arabic",
	"en": "plain English",
}

func languageName(lang string) string {
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return languageNames["nl"]
}

// systemPrompt instructs the model to answer with schema-conformant JSON only.
func systemPrompt(lang string) string {
	return fmt.Sprintf(`You are an assistant that reads administrative documents (tax letters, fines, insurance, subscriptions).
Your output is ONLY valid JSON (no markdown, no prose, no code fences).

You must follow exactly this schema:
%s

Rules:
- Write summary, action titles and action descriptions in %s, at most 5 short lines for the summary.
- deadlines: use null when you see no date; otherwise format as YYYY-MM-DD.
- amountEUR: the main amount due in euros, null when none.
- confidence: 0 to 100.`, schemaJSON, languageName(lang))
}

// userPrompt wraps the document text, truncated to maxLen characters so one
// oversized scan cannot blow the request budget.
func userPrompt(text string, maxLen int) string {
	return fmt.Sprintf("Read the text below and return JSON following the schema.\n\nTEXT:\n\"\"\"%s\"\"\"", truncate(text, maxLen))
}

const repairSystemPrompt = "Your task: turn the input into valid JSON that conforms exactly to the schema. Output only JSON."

// repairUserPrompt resends the invalid output together with the specific
// validation failure so the model can correct formatting slips.
func repairUserPrompt(invalidOutput string, validationErr error) string {
	var b strings.Builder
	b.WriteString("The previous output was invalid.\n")
	fmt.Fprintf(&b, "ERROR:\n%v\n\n", validationErr)
	fmt.Fprintf(&b, "INVALID OUTPUT:\n%s\n\n", invalidOutput)
	fmt.Fprintf(&b, "Now return only valid JSON following this schema (no extra text):\n%s", schemaJSON)
	return b.String()
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + truncationMarker
}
