package generation

import (
	_ "embed"
	"strings"
)

//go:embed directives/summarize.txt
var summarizeDirective string

// SummarySystemPrompt returns the system-role directive for summaries.
func SummarySystemPrompt() string {
	return summarizeDirective
}

// SummaryPrompt wraps content in the summarization request.
func SummaryPrompt(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyPrompt
	}
	var b strings.Builder
	b.WriteString("Summarize the following content concisely. Highlight the key information and keep the language brief:\n\n")
	b.WriteString(content)
	b.WriteString("\n\nSummary:\n")
	return b.String(), nil
}
