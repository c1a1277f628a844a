package chat

import (
	_ "embed"
	"strings"
)

//go:embed prompt/system.md
var systemPromptRaw string

//go:embed prompt/merge.md
var mergePromptRaw string

//go:embed prompt/summarize.md
var summarizePromptRaw string

// buildPrompt assembles the user-side prompt in fixed order: the current
// utterance, the retrieved guidance, then the rendered session context
// (environment facts, incident record, transcript).
func buildPrompt(utterance string, guidance []string, promptContext string) string {
	var b strings.Builder

	b.WriteString("User question: ")
	b.WriteString(utterance)
	b.WriteString("\n\nBelow is expert guidance. Use it at your discretion to formulate your response:\n")
	if len(guidance) == 0 {
		b.WriteString("(no reference material found)\n")
	}
	for _, g := range guidance {
		b.WriteString(g)
		b.WriteString("\n")
	}

	b.WriteString("\nTake the rescuee and rescuer data below into account, as well as the chat history, to stay consistent:\n\n")
	b.WriteString(promptContext)

	return b.String()
}
