package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sarops/medkit/pkg/model"
	"github.com/sarops/medkit/pkg/usecase/chat"
	"google.golang.org/genai"
)

func TestMergeSuccessCommitsRecordAndTranscript(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if isMergeCall(config) {
				return textResponse(recordJSON(t, model.IncidentRecord{
					Location:  "Location Data: ravine below the trail",
					Weather:   "Weather Data: heavy rain",
					Condition: "Rescuee Condition: bleeding heavily",
					Other:     "Other Relevant Data: ",
				})), nil
			}
			return textResponse("apply direct pressure"), nil
		},
	}
	session := newTestSession(gemini)

	_, err := session.Send(context.Background(), "The patient is bleeding heavily")
	gt.NoError(t, err)

	record := session.State().Record()
	gt.S(t, record.Condition).Contains("bleeding heavily")
	gt.S(t, record.Weather).Contains("heavy rain")
	gt.Equal(t, session.State().Transcript(), []string{"The patient is bleeding heavily"})
}

func TestMergeMalformedOutputRollsBackBoth(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("sorry, I cannot produce JSON right now"), nil
		},
	}
	session := newTestSession(gemini)
	before := session.State().Record()

	_, err := session.Send(context.Background(), "patient stopped breathing")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, chat.ErrMalformedUpdate))

	// All-or-nothing: neither the record nor the transcript changed
	gt.Equal(t, session.State().Record(), before)
	gt.A(t, session.State().Transcript()).Length(0)
}

func TestMergeGenerationErrorRollsBackBoth(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("model unavailable")
		},
	}
	session := newTestSession(gemini)
	before := session.State().Record()

	_, err := session.Send(context.Background(), "patient stopped breathing")
	gt.Error(t, err)
	gt.Equal(t, session.State().Record(), before)
	gt.A(t, session.State().Transcript()).Length(0)
}

func TestMergeAdditiveOnly(t *testing.T) {
	// The model drops every field; the additive policy keeps them all
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if isMergeCall(config) {
				return textResponse(`{"location": "", "weather": "", "condition": "", "other": ""}`), nil
			}
			return textResponse("ok"), nil
		},
	}
	session := newTestSession(gemini)
	before := session.State().Record()

	_, err := session.Send(context.Background(), "nothing new")
	gt.NoError(t, err)

	after := session.State().Record()
	gt.Equal(t, after, before)
	gt.A(t, session.State().Transcript()).Length(1)
}

func TestMergeAcceptsFencedJSON(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if isMergeCall(config) {
				return textResponse("```json\n{\"condition\": \"Rescuee Condition: stable\"}\n```"), nil
			}
			return textResponse("ok"), nil
		},
	}
	session := newTestSession(gemini)

	_, err := session.Send(context.Background(), "patient is stable")
	gt.NoError(t, err)
	gt.S(t, session.State().Record().Condition).Contains("stable")

	// Fields the update omitted keep their previous values
	gt.Equal(t, session.State().Record().Location, model.NewIncidentRecord().Location)
}
