package assistant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/craigdossantos/onceline/pkg/assistant"
	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

type mockGemini struct {
	response *genai.GenerateContentResponse
	err      error

	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.contents = contents
	m.config = config
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role: genai.RoleModel,
					Parts: []*genai.Part{
						{Text: text},
					},
				},
			},
		},
	}
}

func TestConverseParsesMessageAndEvents(t *testing.T) {
	mock := &mockGemini{
		response: textResponse(`{
			"message": "That sounds like a big move! How was the first year?",
			"events": [
				{
					"title": "Moved to Tokyo",
					"start_date": "2015-04-01",
					"date_precision": "month",
					"category": "residence",
					"tags": ["japan"]
				}
			]
		}`),
	}
	client := assistant.New(mock)

	resp, err := client.Converse(context.Background(), []assistant.Turn{
		{Role: model.RoleUser, Content: "I moved to Tokyo in April 2015"},
	}, "")
	gt.NoError(t, err)

	gt.S(t, resp.Message).Contains("big move")
	gt.A(t, resp.Events).Length(1)
	gt.Equal(t, resp.Events[0].Title, "Moved to Tokyo")
	gt.Equal(t, resp.Events[0].StartDate, "2015-04-01")
	gt.Equal(t, resp.Events[0].DatePrecision, model.PrecisionMonth)
	gt.Equal(t, resp.Events[0].Category, model.CategoryResidence)
	// Extracted drafts are always sourced from chat
	gt.Equal(t, resp.Events[0].Source, model.SourceChat)
}

func TestConverseMissingEventsKey(t *testing.T) {
	mock := &mockGemini{
		response: textResponse(`{"message": "Hi! Tell me about your life."}`),
	}
	client := assistant.New(mock)

	resp, err := client.Converse(context.Background(), []assistant.Turn{
		{Role: model.RoleUser, Content: "hello"},
	}, "")
	gt.NoError(t, err)

	gt.Equal(t, resp.Message, "Hi! Tell me about your life.")
	gt.V(t, resp.Events).NotNil()
	gt.A(t, resp.Events).Length(0)
}

func TestConverseMalformedJSON(t *testing.T) {
	mock := &mockGemini{
		response: textResponse("this is not json"),
	}
	client := assistant.New(mock)

	_, err := client.Converse(context.Background(), []assistant.Turn{
		{Role: model.RoleUser, Content: "hello"},
	}, "")
	gt.Error(t, err)
	gt.True(t, model.IsAssistant(err))
}

func TestConverseEmptyCandidates(t *testing.T) {
	mock := &mockGemini{
		response: &genai.GenerateContentResponse{},
	}
	client := assistant.New(mock)

	_, err := client.Converse(context.Background(), []assistant.Turn{
		{Role: model.RoleUser, Content: "hello"},
	}, "")
	gt.Error(t, err)
	gt.True(t, model.IsAssistant(err))
}

func TestConverseRequestFailure(t *testing.T) {
	mock := &mockGemini{err: errors.New("quota exceeded")}
	client := assistant.New(mock)

	_, err := client.Converse(context.Background(), []assistant.Turn{
		{Role: model.RoleUser, Content: "hello"},
	}, "")
	gt.Error(t, err)
	gt.True(t, model.IsAssistant(err))
}

func TestConverseRoleMapping(t *testing.T) {
	mock := &mockGemini{
		response: textResponse(`{"message": "ok"}`),
	}
	client := assistant.New(mock)

	_, err := client.Converse(context.Background(), []assistant.Turn{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "second"},
		{Role: model.RoleUser, Content: "third"},
	}, "")
	gt.NoError(t, err)

	gt.A(t, mock.contents).Length(3)
	gt.Equal(t, mock.contents[0].Role, genai.RoleUser)
	gt.Equal(t, mock.contents[1].Role, genai.RoleModel)
	gt.Equal(t, mock.contents[2].Role, genai.RoleUser)
}

func TestConverseEventContextInSystemInstruction(t *testing.T) {
	mock := &mockGemini{
		response: textResponse(`{"message": "ok"}`),
	}
	client := assistant.New(mock)

	eventContext := "\n\nTimeline so far (1 events):\n- Born (1990-06-15) [birth]"
	_, err := client.Converse(context.Background(), []assistant.Turn{
		{Role: model.RoleUser, Content: "hello"},
	}, eventContext)
	gt.NoError(t, err)

	gt.V(t, mock.config).NotNil()
	gt.V(t, mock.config.SystemInstruction).NotNil()
	gt.S(t, mock.config.SystemInstruction.Parts[0].Text).Contains("Born (1990-06-15) [birth]")
	gt.Equal(t, mock.config.ResponseMIMEType, "application/json")
	gt.V(t, mock.config.ResponseSchema).NotNil()
}
