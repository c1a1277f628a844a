package chat

import (
	"fmt"
	"strings"

	"github.com/sarops/medkit/pkg/model"
)

// State is the session state store: the structured incident record, the
// rescuee position, cached environment facts and the conversation
// transcript, all owned by exactly one session. Every write goes through a
// named operation so the invariants (additive-only record, bounded
// transcript) are enforced in one place.
type State struct {
	record     model.IncidentRecord
	position   *model.GeoPosition
	env        model.EnvironmentCache
	transcript []string
}

func NewState() *State {
	return &State{
		record: model.NewIncidentRecord(),
	}
}

// Record returns a copy of the current incident record
func (s *State) Record() model.IncidentRecord {
	return s.record
}

// CommitTurn atomically applies a merged record update and appends the
// utterance that produced it. The additive-only policy is applied here, so
// an update can never drop information. Callers that fail to produce an
// update must not call CommitTurn: that is the all-or-nothing rule.
func (s *State) CommitTurn(update model.IncidentRecord, utterance string) {
	s.record = s.record.Merged(update)
	s.transcript = append(s.transcript, utterance)
}

// AppendTurn appends a free-text turn to the transcript
func (s *State) AppendTurn(text string) {
	s.transcript = append(s.transcript, text)
}

// Transcript returns a copy of the conversation transcript
func (s *State) Transcript() []string {
	out := make([]string, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// ResetTranscript replaces the whole transcript with a single summary turn
func (s *State) ResetTranscript(summary string) {
	s.transcript = []string{summary}
}

// SetPosition sets the rescuee position. Re-setting overwrites:
// last-write-wins, no validation beyond the numeric parse upstream.
func (s *State) SetPosition(lat, lon float64) {
	s.position = &model.GeoPosition{Lat: lat, Lon: lon}
}

// Position returns the rescuee position; ok is false while it is unknown
func (s *State) Position() (model.GeoPosition, bool) {
	if s.position == nil {
		return model.GeoPosition{}, false
	}
	return *s.position, true
}

// Environment returns the cached environment facts
func (s *State) Environment() model.EnvironmentCache {
	return s.env
}

// SetEnvironment fills the environment cache. It is computed once per
// session and never refreshed automatically.
func (s *State) SetEnvironment(env model.EnvironmentCache) {
	s.env = env
}

// PromptContext renders the incident record, the environment facts and the
// transcript as deterministic text for prompt inclusion.
func (s *State) PromptContext() string {
	var b strings.Builder

	b.WriteString("Environment:\n")
	b.WriteString(fmt.Sprintf("- weather: %s\n", orUnknown(s.env.WeatherSummary)))
	b.WriteString(fmt.Sprintf("- nearest hospital: %s\n", orUnknown(s.env.NearestHospitalSummary)))

	b.WriteString("\nIncident record:\n")
	b.WriteString(fmt.Sprintf("- location: %s\n", s.record.Location))
	b.WriteString(fmt.Sprintf("- weather: %s\n", s.record.Weather))
	b.WriteString(fmt.Sprintf("- condition: %s\n", s.record.Condition))
	b.WriteString(fmt.Sprintf("- other: %s\n", s.record.Other))

	b.WriteString("\nChat history:\n")
	if len(s.transcript) == 0 {
		b.WriteString("(none)\n")
	}
	for _, turn := range s.transcript {
		b.WriteString("- " + turn + "\n")
	}

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
