package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/craigdossantos/onceline/pkg/usecase/timeline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Narrate your life story interactively",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			state := uc.State()
			if state.Mode == model.ModeLocal {
				fmt.Fprintf(c.Root().Writer, "Anonymous timeline (%d events). Sign in later to keep it.\n", len(state.Events))
			} else {
				fmt.Fprintf(c.Root().Writer, "Timeline %q (%d events)\n", state.Timeline.Name, len(state.Events))
			}
			fmt.Fprintf(c.Root().Writer, "Tell me about your life. Type 'exit' to quit.\n\n")

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to open terminal")
			}
			defer rl.Close()

			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					continue
				}
				if err == io.EOF {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				line = strings.TrimSpace(line)
				if line == "exit" {
					break
				}
				if line == "" {
					continue
				}

				before := uc.State()

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " thinking..."
				sp.Start()
				err = uc.SendMessage(ctx, line)
				sp.Stop()
				if err != nil {
					return goerr.Wrap(err, "failed to send message")
				}

				printExchange(c.Root().Writer, before, uc.State())
			}

			fmt.Fprintf(c.Root().Writer, "\nYour story is saved. See you next time.\n")
			return nil
		},
	}
}

// printExchange shows the assistant reply and any events extracted by
// the last send
func printExchange(w io.Writer, before, after timeline.State) {
	for _, m := range after.Messages[len(before.Messages):] {
		if m.Role != model.RoleAssistant {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", m.Content)

		for _, id := range m.CreatedEventIDs {
			for _, e := range after.Events {
				if e.ID == id {
					date := e.StartDate
					if date == "" {
						date = "date unknown"
					}
					fmt.Fprintf(w, "  + %s (%s) [%s]\n", e.Title, date, e.Category)
				}
			}
		}
	}
	fmt.Fprintln(w)
}
