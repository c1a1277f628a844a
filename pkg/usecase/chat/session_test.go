package chat_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sarops/medkit/pkg/model"
	"github.com/sarops/medkit/pkg/repository"
	"github.com/sarops/medkit/pkg/usecase/chat"
	"github.com/sarops/medkit/pkg/usecase/knowledge"
	"google.golang.org/genai"
)

// Mock Gemini
type mockGemini struct {
	generateFunc  func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	embeddingFunc func(ctx context.Context, text string, dims int) ([]float32, error)
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, contents, config)
	}
	return nil, errors.New("not implemented")
}

func (m *mockGemini) Embedding(ctx context.Context, text string, dims int) ([]float32, error) {
	if m.embeddingFunc != nil {
		return m.embeddingFunc(ctx, text, dims)
	}
	return []float32{1, 0, 0}, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(text, genai.RoleModel)},
		},
	}
}

// isMergeCall tells merge prompts apart from response/summary prompts
func isMergeCall(config *genai.GenerateContentConfig) bool {
	return config != nil && config.ResponseMIMEType == "application/json"
}

func recordJSON(t *testing.T, record model.IncidentRecord) string {
	data, err := json.Marshal(record)
	gt.NoError(t, err)
	return string(data)
}

// Mock Weather
type mockWeather struct {
	weather *model.Weather
	err     error
}

func (m *mockWeather) Current(ctx context.Context, pos model.GeoPosition) (*model.Weather, error) {
	return m.weather, m.err
}

// Mock HospitalDirectory
type mockHospitals struct {
	hospitals []model.Hospital
	err       error
}

func (m *mockHospitals) FindNear(ctx context.Context, pos model.GeoPosition, radiusMeters int) ([]model.Hospital, error) {
	return m.hospitals, m.err
}

// Mock Storage
type mockStorage struct {
	objects map[string]*bytes.Buffer
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newMockStorage() *mockStorage {
	return &mockStorage{objects: make(map[string]*bytes.Buffer)}
}

func (m *mockStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	buf := &bytes.Buffer{}
	m.objects[key] = buf
	return nopWriteCloser{buf}, nil
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	buf, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

func newTestSession(gemini *mockGemini) *chat.Session {
	return chat.New(chat.NewInput{
		Gemini:    gemini,
		Knowledge: knowledge.New(repository.NewMemory(), gemini),
		Weather:   &mockWeather{weather: &model.Weather{Temperature: 22, WindSpeed: 15, ConditionCode: 500}},
		Hospitals: &mockHospitals{hospitals: []model.Hospital{
			{Name: "Test Hospital", Position: model.GeoPosition{Lat: 12.35, Lon: 56.79}},
		}},
	})
}

func newSessionWithoutHospitals(gemini *mockGemini) *chat.Session {
	return chat.New(chat.NewInput{
		Gemini:    gemini,
		Knowledge: knowledge.New(repository.NewMemory(), gemini),
		Weather:   &mockWeather{weather: &model.Weather{Temperature: 22, WindSpeed: 15, ConditionCode: 500}},
		Hospitals: &mockHospitals{hospitals: nil},
	})
}

func TestSendFullTurn(t *testing.T) {
	var finalPrompt string
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if isMergeCall(config) {
				return textResponse(recordJSON(t, model.IncidentRecord{
					Location:  "Location Data: north ridge",
					Weather:   "Weather Data: ",
					Condition: "Rescuee Condition: unconscious",
					Other:     "Other Relevant Data: ",
				})), nil
			}
			finalPrompt = contents[0].Parts[0].Text
			return textResponse("Check the airway and place the patient in recovery position."), nil
		},
	}
	session := newTestSession(gemini)
	ctx := context.Background()

	session.SetPosition(ctx, 12.34, 56.78)

	response, err := session.Send(ctx, "Found the patient unconscious on the north ridge")
	gt.NoError(t, err)
	gt.S(t, response).Contains("recovery position")

	// Merge committed both the record and the transcript
	record := session.State().Record()
	gt.S(t, record.Condition).Contains("unconscious")
	gt.A(t, session.State().Transcript()).Length(1)

	// Prompt assembly carries the utterance and the session context
	gt.S(t, finalPrompt).Contains("Found the patient unconscious on the north ridge")
	gt.S(t, finalPrompt).Contains("Temperature: 22°C, Wind Speed: 15 km/h, Condition: 500")
	gt.S(t, finalPrompt).Contains("Test Hospital, Location: 12.35, 56.79")
	gt.S(t, finalPrompt).Contains("Chat history:")
}

func TestSendGenerationFailureKeepsMergedState(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if isMergeCall(config) {
				return textResponse(recordJSON(t, model.NewIncidentRecord())), nil
			}
			return nil, errors.New("generation error")
		},
	}
	session := newTestSession(gemini)

	_, err := session.Send(context.Background(), "help")
	gt.Error(t, err)
	// The merge itself succeeded, so the turn is on record
	gt.A(t, session.State().Transcript()).Length(1)
}

func TestSetPositionFillsEnvironmentOnce(t *testing.T) {
	session := newTestSession(&mockGemini{})
	ctx := context.Background()

	session.SetPosition(ctx, 12.34, 56.78)
	env := session.State().Environment()
	gt.S(t, env.WeatherSummary).Contains("Temperature: 22")
	gt.S(t, env.NearestHospitalSummary).Contains("Test Hospital")
	gt.S(t, env.NearestHospitalSummary).Contains("Distance:")
}

func TestEnvironmentSentinels(t *testing.T) {
	gemini := &mockGemini{}
	session := chat.New(chat.NewInput{
		Gemini:    gemini,
		Knowledge: knowledge.New(repository.NewMemory(), gemini),
		Weather:   &mockWeather{err: errors.New("service down")},
		Hospitals: &mockHospitals{hospitals: nil},
	})

	session.SetPosition(context.Background(), 12.34, 56.78)
	env := session.State().Environment()
	gt.Equal(t, env.WeatherSummary, "Weather data unavailable")
	gt.Equal(t, env.NearestHospitalSummary, "No hospitals found nearby")
}

func TestArchive(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if isMergeCall(config) {
				return textResponse(recordJSON(t, model.NewIncidentRecord())), nil
			}
			return textResponse("ok"), nil
		},
	}
	session := newTestSession(gemini)
	ctx := context.Background()

	session.SetPosition(ctx, 12.34, 56.78)
	_, err := session.Send(ctx, "patient is awake now")
	gt.NoError(t, err)

	storage := newMockStorage()
	gt.NoError(t, session.Archive(ctx, storage))

	r, err := storage.Get(ctx, "sessions/"+string(session.ID())+".json")
	gt.NoError(t, err)
	data, err := io.ReadAll(r)
	gt.NoError(t, err)

	var archive struct {
		SessionID  string               `json:"session_id"`
		Record     model.IncidentRecord `json:"record"`
		Transcript []string             `json:"transcript"`
	}
	gt.NoError(t, json.Unmarshal(data, &archive))
	gt.Equal(t, archive.SessionID, string(session.ID()))
	gt.A(t, archive.Transcript).Length(1)
	gt.True(t, strings.Contains(archive.Transcript[0], "awake"))
}
