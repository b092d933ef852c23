package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
	"github.com/Sternrassler/thoth-catalogue/pkg/detail"
)

// showConcurrency bounds the parallel work requests of one show command.
const showConcurrency = 4

type showOptions struct {
	raw   bool
	width int
}

func newShowCmd(o *options) *cobra.Command {
	s := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show <work-id>...",
		Short: "Print the detail page of one or more works",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseWorkIDs(args)
			if err != nil {
				return err
			}
			return runShow(cmd.Context(), cmd.OutOrStdout(), o, *s, ids)
		},
	}
	cmd.Flags().BoolVar(&s.raw, "raw", false, "print markdown instead of rendering it")
	cmd.Flags().IntVar(&s.width, "width", 100, "word wrap width of rendered output")
	return cmd
}

func parseWorkIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid work ID %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// runShow loads all works before printing, so that output keeps the order of
// ids and nothing is printed when one of them fails.
func runShow(ctx context.Context, out io.Writer, o *options, s showOptions, ids []uuid.UUID) error {
	client, err := o.client(ctx, true)
	if err != nil {
		return err
	}
	source := catalogue.NewWorkSource(client, o.cfg.Publishers)

	views := make([]detail.View, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(showConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			v, err := detail.NewAssembler(source, id, o.cfg.ExportURL).Load(gctx)
			if err != nil {
				return fmt.Errorf("work %s: %w", id, err)
			}
			views[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	pages := make([]string, 0, len(views))
	for _, v := range views {
		pages = append(pages, v.Markdown())
	}
	md := strings.Join(pages, "\n---\n\n")

	if s.raw {
		_, err := io.WriteString(out, md)
		return err
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(s.width))
	if err != nil {
		return err
	}
	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}
