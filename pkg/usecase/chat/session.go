package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/adapter"
	"github.com/sarops/medkit/pkg/model"
	"github.com/sarops/medkit/pkg/usecase/knowledge"
	"github.com/sarops/medkit/pkg/utils/logging"
	"google.golang.org/genai"
)

const defaultTopK = 1

// Session drives one conversation: it owns the session state and runs the
// per-turn pipeline (compact, merge, retrieve, assemble, generate).
type Session struct {
	gemini    adapter.Gemini
	knowledge *knowledge.UseCase
	weather   adapter.Weather
	hospitals adapter.HospitalDirectory

	id    model.SessionID
	state *State
	topK  int
}

// NewInput contains the collaborators for a new chat session
type NewInput struct {
	Gemini    adapter.Gemini
	Knowledge *knowledge.UseCase
	Weather   adapter.Weather
	Hospitals adapter.HospitalDirectory
	TopK      int
}

func New(input NewInput) *Session {
	topK := input.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	return &Session{
		gemini:    input.Gemini,
		knowledge: input.Knowledge,
		weather:   input.Weather,
		hospitals: input.Hospitals,

		id:    model.NewSessionID(),
		state: NewState(),
		topK:  topK,
	}
}

// ID returns the session identifier
func (s *Session) ID() model.SessionID {
	return s.id
}

// State exposes the session state store
func (s *Session) State() *State {
	return s.state
}

// SetPosition records the rescuee position and derives the environment
// facts on first availability.
func (s *Session) SetPosition(ctx context.Context, lat, lon float64) {
	s.state.SetPosition(lat, lon)
	s.fillEnvironment(ctx)
}

// Send processes one user utterance to completion and returns the
// assistant's response. A failed merge aborts the turn with both record and
// transcript untouched; a failed compaction only logs.
func (s *Session) Send(ctx context.Context, utterance string) (string, error) {
	logger := logging.From(ctx)

	if _, err := s.CompactIfNeeded(ctx); err != nil {
		logger.Warn("transcript compaction failed", "error", err)
	}

	if err := s.merge(ctx, utterance); err != nil {
		return "", err
	}

	s.fillEnvironment(ctx)

	guidance, err := s.knowledge.Retrieve(ctx, utterance, s.topK)
	if err != nil {
		logger.Warn("retrieval failed", "error", err)
		guidance = nil
	}

	prompt := buildPrompt(utterance, guidance, s.state.PromptContext())

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPromptRaw, ""),
	}
	resp, err := s.gemini.GenerateContent(ctx, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate response")
	}

	return adapter.ResponseText(resp)
}

// sessionArchive is the JSON layout written to storage on exit
type sessionArchive struct {
	SessionID  model.SessionID      `json:"session_id"`
	ArchivedAt time.Time            `json:"archived_at"`
	Record     model.IncidentRecord `json:"record"`
	Position   *model.GeoPosition   `json:"position,omitempty"`
	Transcript []string             `json:"transcript"`
}

// Archive writes the final session state to storage for later review
func (s *Session) Archive(ctx context.Context, storage adapter.Storage) error {
	archive := sessionArchive{
		SessionID:  s.id,
		ArchivedAt: time.Now(),
		Record:     s.state.Record(),
		Transcript: s.state.Transcript(),
	}
	if pos, ok := s.state.Position(); ok {
		archive.Position = &pos
	}

	w, err := storage.Put(ctx, "sessions/"+string(s.id)+".json")
	if err != nil {
		return goerr.Wrap(err, "failed to open archive writer")
	}

	if err := json.NewEncoder(w).Encode(archive); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to encode session archive")
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize session archive")
	}

	return nil
}
