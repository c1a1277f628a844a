package chat

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/adapter"
	"github.com/sarops/medkit/pkg/model"
	"google.golang.org/genai"
)

// ErrMalformedUpdate signals that the model returned an update the engine
// could not parse. The turn is rolled back: neither the record nor the
// transcript changes.
var ErrMalformedUpdate = goerr.New("model returned malformed record update")

// merge asks the model to fold new information from the utterance into the
// incident record and commits record + transcript together. Any generation
// or parse failure leaves both untouched.
func (s *Session) merge(ctx context.Context, utterance string) error {
	current, err := json.MarshalIndent(s.state.Record(), "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal incident record")
	}

	prompt := mergePromptRaw +
		"\nCurrent JSON record:\n" + string(current) +
		"\n\nUser message:\n" + utterance

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	resp, err := s.gemini.GenerateContent(ctx, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, config)
	if err != nil {
		return goerr.Wrap(err, "record merge generation failed")
	}

	text, err := adapter.ResponseText(resp)
	if err != nil {
		return goerr.Wrap(ErrMalformedUpdate, err.Error())
	}

	var update model.IncidentRecord
	if err := json.Unmarshal([]byte(extractJSON(text)), &update); err != nil {
		return goerr.Wrap(ErrMalformedUpdate, "invalid JSON",
			goerr.V("response", text))
	}

	s.state.CommitTurn(update, utterance)
	return nil
}

// extractJSON trims markdown fences and surrounding prose from a model
// response, keeping the outermost JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
