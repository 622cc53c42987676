package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/craigdossantos/onceline/pkg/usecase/timeline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"
)

type addEventParams struct {
	Title       string   `json:"title" jsonschema:"Event title"`
	Description string   `json:"description,omitempty" jsonschema:"Optional longer description"`
	StartDate   string   `json:"start_date,omitempty" jsonschema:"Start date as YYYY-MM-DD"`
	EndDate     string   `json:"end_date,omitempty" jsonschema:"End date as YYYY-MM-DD"`
	Category    string   `json:"category,omitempty" jsonschema:"Event category"`
	Tags        []string `json:"tags,omitempty" jsonschema:"Freeform tags"`
}

type listEventsParams struct{}

type sendMessageParams struct {
	Text string `json:"text" jsonschema:"Message to send to the timeline assistant"`
}

type deleteEventParams struct {
	EventID string `json:"event_id" jsonschema:"ID of the event to delete"`
}

// mcpCommand serves the timeline operations over MCP stdio so external
// agents can act as the view layer.
func mcpCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve timeline operations as MCP tools on stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "onceline",
				Version: "1.0.0",
			}, nil)

			mcp.AddTool(server, &mcp.Tool{
				Name:        "add_event",
				Description: "Add an event to the life timeline",
			}, addEventTool(uc))

			mcp.AddTool(server, &mcp.Tool{
				Name:        "list_events",
				Description: "List all timeline events in date order",
			}, listEventsTool(uc))

			mcp.AddTool(server, &mcp.Tool{
				Name:        "send_message",
				Description: "Send a chat message; the assistant extracts timeline events from it",
			}, sendMessageTool(uc))

			mcp.AddTool(server, &mcp.Tool{
				Name:        "delete_event",
				Description: "Delete a timeline event (irreversible)",
			}, deleteEventTool(uc))

			if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
				return goerr.Wrap(err, "mcp server failed")
			}
			return nil
		},
	}
}

func addEventTool(uc *timeline.UseCase) func(context.Context, *mcp.CallToolRequest, *addEventParams) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params *addEventParams) (*mcp.CallToolResult, any, error) {
		event, err := uc.AddEvent(ctx, &model.EventDraft{
			Title:       params.Title,
			Description: params.Description,
			StartDate:   params.StartDate,
			EndDate:     params.EndDate,
			Category:    params.Category,
			Tags:        params.Tags,
			Source:      model.SourceImport,
		})
		if err != nil {
			return nil, nil, err
		}

		return textResult(fmt.Sprintf("Event created: %s", event.ID)), nil, nil
	}
}

func listEventsTool(uc *timeline.UseCase) func(context.Context, *mcp.CallToolRequest, *listEventsParams) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params *listEventsParams) (*mcp.CallToolResult, any, error) {
		events := uc.State().Events
		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return nil, nil, err
		}

		return textResult(string(data)), nil, nil
	}
}

func sendMessageTool(uc *timeline.UseCase) func(context.Context, *mcp.CallToolRequest, *sendMessageParams) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params *sendMessageParams) (*mcp.CallToolResult, any, error) {
		if err := uc.SendMessage(ctx, params.Text); err != nil {
			return nil, nil, err
		}

		messages := uc.State().Messages
		if len(messages) == 0 {
			return textResult("No reply"), nil, nil
		}

		last := messages[len(messages)-1]
		return textResult(last.Content), nil, nil
	}
}

func deleteEventTool(uc *timeline.UseCase) func(context.Context, *mcp.CallToolRequest, *deleteEventParams) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params *deleteEventParams) (*mcp.CallToolResult, any, error) {
		if err := uc.DeleteEvent(ctx, model.EventID(params.EventID)); err != nil {
			return nil, nil, err
		}

		return textResult(fmt.Sprintf("Event deleted: %s", params.EventID)), nil, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
