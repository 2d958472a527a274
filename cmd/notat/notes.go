package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/mkarlsen/notat/internal/models"
	"github.com/mkarlsen/notat/internal/session"
)

func listCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List notes, pinned first, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Only notes whose title or content contains this text",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Only notes with this color",
			},
			&cli.BoolFlag{
				Name:  "pinned",
				Usage: "Only pinned notes",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sess, r, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.LoadNotes(ctx); err != nil {
				return errAlreadyReported
			}
			sess.SetFilter(models.Filter{
				Query:      cmd.String("query"),
				Color:      models.Color(cmd.String("color")),
				PinnedOnly: cmd.Bool("pinned"),
			})

			notes := sess.State().Visible()
			if len(notes) == 0 {
				fmt.Println(r.mutedLine("no notes"))
				return nil
			}
			now := time.Now()
			for _, n := range notes {
				fmt.Println(r.listLine(n, now))
			}
			return nil
		},
	}
}

func showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print a single note",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("show takes exactly one note id")
			}
			sess, r, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.LoadNotes(ctx); err != nil {
				return errAlreadyReported
			}
			n, err := resolveID(sess.State().Notes, cmd.Args().First())
			if err != nil {
				return err
			}
			fmt.Println(r.noteCard(n, time.Now()))
			return nil
		},
	}
}

func addCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create a note",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "title",
				Aliases: []string{"t"},
				Usage:   "Note title (default \"Untitled note\")",
			},
			&cli.StringFlag{
				Name:    "content",
				Aliases: []string{"m"},
				Usage:   "Note body",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Accent color: blue, amber, emerald, violet, slate",
			},
			&cli.BoolFlag{
				Name:  "pin",
				Usage: "Pin the note on creation",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			color, err := parseColor(cmd.String("color"))
			if err != nil {
				return err
			}

			sess, r, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			created, err := sess.CreateNote(ctx, models.Draft{
				Title:   cmd.String("title"),
				Content: cmd.String("content"),
				Color:   color,
				Pinned:  cmd.Bool("pin"),
			})
			if err != nil {
				return errAlreadyReported
			}
			fmt.Println(r.noteCard(created, time.Now()))
			return nil
		},
	}
}

func editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change a note's title, content, or color",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "title",
				Aliases: []string{"t"},
				Usage:   "New title",
			},
			&cli.StringFlag{
				Name:    "content",
				Aliases: []string{"m"},
				Usage:   "New body",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "New accent color",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("edit takes exactly one note id")
			}

			var patch models.NotePatch
			if cmd.IsSet("title") {
				v := cmd.String("title")
				patch.Title = &v
			}
			if cmd.IsSet("content") {
				v := cmd.String("content")
				patch.Content = &v
			}
			if cmd.IsSet("color") {
				c, err := parseColor(cmd.String("color"))
				if err != nil {
					return err
				}
				patch.Color = &c
			}
			if patch.IsZero() {
				return fmt.Errorf("nothing to change: pass --title, --content, or --color")
			}

			sess, _, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.LoadNotes(ctx); err != nil {
				return errAlreadyReported
			}
			n, err := resolveID(sess.State().Notes, cmd.Args().First())
			if err != nil {
				return err
			}
			if _, err := sess.SaveNote(ctx, n.ID, patch, session.SourceExplicit); err != nil {
				return errAlreadyReported
			}
			return nil
		},
	}
}

func pinCmd() *cli.Command {
	return &cli.Command{
		Name:      "pin",
		Usage:     "Pin one or more notes",
		ArgsUsage: "<id>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSetPinned(ctx, cmd, true)
		},
	}
}

func unpinCmd() *cli.Command {
	return &cli.Command{
		Name:      "unpin",
		Usage:     "Unpin one or more notes",
		ArgsUsage: "<id>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSetPinned(ctx, cmd, false)
		},
	}
}

func runSetPinned(ctx context.Context, cmd *cli.Command, pinned bool) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("pass at least one note id")
	}

	sess, _, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.LoadNotes(ctx); err != nil {
		return errAlreadyReported
	}
	ids, err := resolveIDs(sess.State().Notes, cmd.Args().Slice())
	if err != nil {
		return err
	}
	if err := sess.BulkPin(ctx, ids, pinned); err != nil {
		return errAlreadyReported
	}
	return nil
}

func rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete one or more notes",
		ArgsUsage: "<id>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return fmt.Errorf("pass at least one note id")
			}

			sess, _, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.LoadNotes(ctx); err != nil {
				return errAlreadyReported
			}
			ids, err := resolveIDs(sess.State().Notes, cmd.Args().Slice())
			if err != nil {
				return err
			}

			if len(ids) == 1 {
				if err := sess.DeleteNote(ctx, ids[0]); err != nil {
					return errAlreadyReported
				}
				return nil
			}
			if err := sess.BulkDelete(ctx, ids); err != nil {
				return errAlreadyReported
			}
			return nil
		},
	}
}

// parseColor validates an optional color argument. Empty string means "use
// the default" and maps to the zero Color.
func parseColor(s string) (models.Color, error) {
	if s == "" {
		return "", nil
	}
	c := models.Color(s)
	if !c.Valid() {
		return "", fmt.Errorf("unsupported color %q (valid: %s)", s, colorNames())
	}
	return c, nil
}

// colorNames lists the supported colors for error messages.
func colorNames() string {
	all := models.Colors()
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
