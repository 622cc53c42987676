package assistant

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/craigdossantos/onceline/pkg/adapter"
	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

//go:embed prompt/extract.md
var extractPromptRaw string

// Turn is one conversation turn handed to the assistant. Only role and
// content cross the boundary; message IDs and timestamps stay inside.
type Turn struct {
	Role    model.Role
	Content string
}

// Response is the assistant's parsed reply: a conversational message
// plus zero or more proposed timeline events.
type Response struct {
	Message string
	Events  []*model.EventDraft
}

// Client is the boundary to the extraction service. It performs no
// persistence and holds no state.
type Client interface {
	Converse(ctx context.Context, history []Turn, eventContext string) (*Response, error)
}

// Gemini implements Client on the text-generation adapter
type Gemini struct {
	gemini adapter.Gemini
}

var _ Client = (*Gemini)(nil)

// New creates an extraction client on the given Gemini adapter
func New(gemini adapter.Gemini) *Gemini {
	return &Gemini{gemini: gemini}
}

// responseSchema constrains the model to the {message, events[]} wire format
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"message": {
			Type:        genai.TypeString,
			Description: "Conversational response to the user",
		},
		"events": {
			Type:        genai.TypeArray,
			Description: "Timeline events extracted from the conversation",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title": {
						Type:        genai.TypeString,
						Description: "Event title",
					},
					"description": {
						Type:        genai.TypeString,
						Description: "Optional longer description",
					},
					"start_date": {
						Type:        genai.TypeString,
						Description: "Start date as YYYY-MM-DD, empty if unknown",
					},
					"end_date": {
						Type:        genai.TypeString,
						Description: "End date as YYYY-MM-DD, empty if ongoing or a point event",
					},
					"date_precision": {
						Type:        genai.TypeString,
						Description: "One of: year, month, day",
					},
					"age_start": {
						Type:        genai.TypeInteger,
						Description: "Age when the event started, if mentioned",
					},
					"age_end": {
						Type:        genai.TypeInteger,
						Description: "Age when the event ended, if mentioned",
					},
					"category": {
						Type:        genai.TypeString,
						Description: "One of: birth, education, residence, work, travel, relationship, milestone, memory",
					},
					"tags": {
						Type:        genai.TypeArray,
						Description: "Optional freeform tags",
						Items: &genai.Schema{
							Type: genai.TypeString,
						},
					},
				},
				Required: []string{"title"},
			},
		},
	},
	Required: []string{"message"},
}

// wireEvent mirrors the JSON event shape emitted by the model
type wireEvent struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	DatePrecision string   `json:"date_precision"`
	AgeStart      *int     `json:"age_start"`
	AgeEnd        *int     `json:"age_end"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
}

func (c *Gemini) Converse(ctx context.Context, history []Turn, eventContext string) (*Response, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, genai.Role(role)))
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(extractPromptRaw+eventContext, ""),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema,
	}

	resp, err := c.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "extraction request failed", goerr.T(model.TagAssistant))
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, goerr.New("invalid response structure from assistant", goerr.T(model.TagAssistant))
	}

	rawJSON := resp.Candidates[0].Content.Parts[0].Text

	var parsed struct {
		Message string      `json:"message"`
		Events  []wireEvent `json:"events"`
	}
	if err := json.Unmarshal([]byte(rawJSON), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal assistant response", goerr.T(model.TagAssistant), goerr.Value("json", rawJSON))
	}

	// A missing events key is an empty proposal, not an error
	events := make([]*model.EventDraft, 0, len(parsed.Events))
	for _, we := range parsed.Events {
		events = append(events, &model.EventDraft{
			Title:         we.Title,
			Description:   we.Description,
			StartDate:     we.StartDate,
			EndDate:       we.EndDate,
			DatePrecision: model.DatePrecision(we.DatePrecision),
			AgeStart:      we.AgeStart,
			AgeEnd:        we.AgeEnd,
			Category:      we.Category,
			Tags:          we.Tags,
			Source:        model.SourceChat,
		})
	}

	return &Response{
		Message: parsed.Message,
		Events:  events,
	}, nil
}
