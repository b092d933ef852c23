package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/thoth-catalogue/internal/tui"
	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
)

type listOptions struct {
	search string
	sort   string
	desc   bool
	page   int
}

func (l listOptions) order() (listing.Order[catalogue.WorkField], error) {
	field, err := catalogue.ParseWorkField(l.sort)
	if err != nil {
		return listing.Order[catalogue.WorkField]{}, err
	}
	order := listing.Order[catalogue.WorkField]{Field: field, Direction: listing.Asc}
	if l.desc {
		order.Direction = listing.Desc
	}
	return order, nil
}

func addListFlags(cmd *cobra.Command, l *listOptions) {
	cmd.Flags().StringVarP(&l.search, "search", "s", "", "filter by title, DOI, internal reference, abstract or landing page")
	cmd.Flags().StringVar(&l.sort, "sort", string(catalogue.DefaultWorkField), "sort field, e.g. title, doi, publication-date")
	cmd.Flags().BoolVar(&l.desc, "desc", false, "sort descending")
}

func newListCmd(o *options) *cobra.Command {
	l := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the books listing",
		Example: `  thoth-catalogue list --search "open access" --sort publication-date --desc
  thoth-catalogue list --page 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), o, *l)
		},
	}
	addListFlags(cmd, l)
	cmd.Flags().IntVarP(&l.page, "page", "p", 1, "page number, starting at 1")
	return cmd
}

// runList drives a listing runner the way the browser does: load, search,
// then page forward.
func runList(ctx context.Context, out io.Writer, o *options, l listOptions) error {
	if l.page < 1 {
		return fmt.Errorf("page must be at least 1, got %d", l.page)
	}
	order, err := l.order()
	if err != nil {
		return err
	}

	client, err := o.client(ctx, true)
	if err != nil {
		return err
	}
	runner, err := listing.NewRunner(ctx, o.cfg.Listing(), order, catalogue.NewBooksSource(client))
	if err != nil {
		return err
	}
	defer runner.Close()

	steps := []func() bool{runner.Initialize}
	if l.search != "" {
		steps = append(steps, func() bool { return runner.Search(l.search) })
	}
	for i := 1; i < l.page; i++ {
		steps = append(steps, runner.Next)
	}

	for _, step := range steps {
		if !step() {
			return ctx.Err()
		}
		if err := runner.WaitIdle(ctx); err != nil {
			return err
		}
		if err := runner.Snapshot().Fetch.Err(); err != nil {
			return err
		}
	}

	return printBooks(out, runner.Snapshot())
}

func printBooks(out io.Writer, s listing.State[catalogue.Work, catalogue.WorkField]) error {
	if len(s.Items) == 0 {
		_, err := fmt.Fprintln(out, "No books match the search.")
		return err
	}

	rows := tui.BookRows{}
	var headers []string
	for _, c := range rows.Columns() {
		title := c.Title
		if c.Sortable && c.Field == s.Order.Field {
			title += " " + arrow(s.Order.Direction)
		}
		headers = append(headers, title)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, w := range s.Items {
		t.Row(rows.Row(w)...)
	}

	r := s.DisplayRange()
	_, err := fmt.Fprintf(out, "%s\n%s\n", t.Render(), catalogue.DisplayCount(r.First, r.Last, r.Total))
	return err
}

func arrow(d listing.Direction) string {
	if d == listing.Desc {
		return "▼"
	}
	return "▲"
}
