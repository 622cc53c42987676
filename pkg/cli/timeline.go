package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func renameCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename the active timeline",
		ArgsUsage: "<name>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			name := c.Args().First()
			if name == "" {
				return goerr.New("timeline name is required")
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			if err := uc.RenameTimeline(ctx, name); err != nil {
				return goerr.Wrap(err, "failed to rename timeline")
			}

			fmt.Fprintf(c.Root().Writer, "Timeline renamed to %q\n", name)
			return nil
		},
	}
}

func clearCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "clear",
		Usage: "Clear the chat history (events are kept)",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			if err := uc.ClearMessages(ctx); err != nil {
				return goerr.Wrap(err, "failed to clear messages")
			}

			fmt.Fprintf(c.Root().Writer, "Chat history cleared\n")
			return nil
		},
	}
}

func attachCommand() *cli.Command {
	var (
		cfg      config
		filePath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Path to the image file",
			Required:    true,
			Destination: &filePath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)

	return &cli.Command{
		Name:      "attach",
		Usage:     "Attach an image to an event",
		ArgsUsage: "<event-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("event ID is required")
			}

			f, err := os.Open(filePath)
			if err != nil {
				return goerr.Wrap(err, "failed to open image file", goerr.V("path", filePath))
			}
			defer f.Close()

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			event, err := uc.AttachImage(ctx, model.EventID(id), f)
			if err != nil {
				return goerr.Wrap(err, "failed to attach image")
			}

			fmt.Fprintf(c.Root().Writer, "Image attached: %s\n", event.ImageURL)
			return nil
		},
	}
}
