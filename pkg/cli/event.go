package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func addCommand() *cli.Command {
	var (
		cfg       config
		draft     model.EventDraft
		tags      []string
		precision string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "Event title",
			Required:    true,
			Destination: &draft.Title,
		},
		&cli.StringFlag{
			Name:        "description",
			Usage:       "Longer description",
			Destination: &draft.Description,
		},
		&cli.StringFlag{
			Name:        "start-date",
			Usage:       "Start date (YYYY-MM-DD)",
			Destination: &draft.StartDate,
		},
		&cli.StringFlag{
			Name:        "end-date",
			Usage:       "End date (YYYY-MM-DD)",
			Destination: &draft.EndDate,
		},
		&cli.StringFlag{
			Name:        "precision",
			Usage:       "Date precision (year, month, day)",
			Value:       string(model.PrecisionDay),
			Destination: &precision,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Event category",
			Destination: &draft.Category,
		},
		&cli.StringSliceFlag{
			Name:        "tag",
			Usage:       "Tag (repeatable)",
			Destination: &tags,
		},
		&cli.BoolFlag{
			Name:        "private",
			Usage:       "Keep the event out of assistant context",
			Destination: &draft.IsPrivate,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "add",
		Usage: "Add an event to the timeline",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			draft.DatePrecision = model.DatePrecision(precision)
			draft.Tags = tags
			draft.Source = model.SourceManual

			event, err := uc.AddEvent(ctx, &draft)
			if err != nil {
				return goerr.Wrap(err, "failed to add event")
			}

			fmt.Fprintf(c.Root().Writer, "Event created: %s\n", event.ID)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List timeline events in date order",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			for _, e := range uc.State().Events {
				date := e.StartDate
				if date == "" {
					date = "date unknown"
				}
				private := ""
				if e.IsPrivate {
					private = "\t(private)"
				}
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t[%s]\t%s%s\n", e.ID, date, e.Category, e.Title, private)
			}

			return nil
		},
	}
}

func showCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "show",
		Usage:     "Show one event as JSON",
		ArgsUsage: "<event-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("event ID is required")
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			for _, e := range uc.State().Events {
				if e.ID == model.EventID(id) {
					data, err := json.MarshalIndent(e, "", "  ")
					if err != nil {
						return goerr.Wrap(err, "failed to marshal event")
					}
					fmt.Fprintf(c.Root().Writer, "%s\n", data)
					return nil
				}
			}

			return goerr.New("event not found", goerr.V("event_id", id))
		},
	}
}

func editCommand() *cli.Command {
	var (
		cfg         config
		title       string
		description string
		startDate   string
		endDate     string
		category    string
		private     bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "New title",
			Destination: &title,
		},
		&cli.StringFlag{
			Name:        "description",
			Usage:       "New description",
			Destination: &description,
		},
		&cli.StringFlag{
			Name:        "start-date",
			Usage:       "New start date (YYYY-MM-DD, empty clears it)",
			Destination: &startDate,
		},
		&cli.StringFlag{
			Name:        "end-date",
			Usage:       "New end date (YYYY-MM-DD, empty clears it)",
			Destination: &endDate,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "New category",
			Destination: &category,
		},
		&cli.BoolFlag{
			Name:        "private",
			Usage:       "Toggle assistant-context privacy",
			Destination: &private,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "edit",
		Usage:     "Update fields of an event",
		ArgsUsage: "<event-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("event ID is required")
			}

			patch := &model.EventPatch{}
			if c.IsSet("title") {
				patch.Title = &title
			}
			if c.IsSet("description") {
				patch.Description = &description
			}
			if c.IsSet("start-date") {
				patch.StartDate = &startDate
			}
			if c.IsSet("end-date") {
				patch.EndDate = &endDate
			}
			if c.IsSet("category") {
				patch.Category = &category
			}
			if c.IsSet("private") {
				patch.IsPrivate = &private
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			event, err := uc.UpdateEvent(ctx, model.EventID(id), patch)
			if err != nil {
				return goerr.Wrap(err, "failed to update event")
			}

			fmt.Fprintf(c.Root().Writer, "Event updated: %s\n", event.ID)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an event (irreversible)",
		ArgsUsage: "<event-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("event ID is required")
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			if err := uc.DeleteEvent(ctx, model.EventID(id)); err != nil {
				return goerr.Wrap(err, "failed to delete event")
			}

			fmt.Fprintf(c.Root().Writer, "Event deleted: %s\n", id)
			return nil
		},
	}
}
