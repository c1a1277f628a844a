package chat

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/adapter"
	"google.golang.org/genai"
)

// maxTranscriptTurns bounds transcript growth: above this length the whole
// transcript is replaced by a single generated summary turn.
const maxTranscriptTurns = 6

// CompactIfNeeded compresses the transcript into one summary turn when it
// has grown past the threshold. Below the threshold it is a no-op without a
// model call, which also makes a second consecutive call a no-op. Returns
// whether compaction happened.
func (s *Session) CompactIfNeeded(ctx context.Context) (bool, error) {
	transcript := s.state.Transcript()
	if len(transcript) <= maxTranscriptTurns {
		return false, nil
	}

	prompt := summarizePromptRaw + "\nConversation:\n" + strings.Join(transcript, "\n")

	resp, err := s.gemini.GenerateContent(ctx, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, nil)
	if err != nil {
		return false, goerr.Wrap(err, "failed to summarize transcript")
	}

	summary, err := adapter.ResponseText(resp)
	if err != nil {
		return false, goerr.Wrap(err, "failed to summarize transcript")
	}

	s.state.ResetTranscript(summary)
	return true, nil
}
