package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
	"github.com/Sternrassler/thoth-catalogue/pkg/pagination"
)

type dumpOptions struct {
	listOptions
	window      int
	concurrency int
}

func newDumpCmd(o *options) *cobra.Command {
	d := &dumpOptions{}
	defaults := pagination.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every book of the listing as JSON lines",
		Long: `Fetches all windows of the books listing in parallel and prints one JSON
object per book, in listing order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), cmd.OutOrStdout(), o, *d)
		},
	}
	addListFlags(cmd, &d.listOptions)
	cmd.Flags().IntVar(&d.window, "window", defaults.PageSize, "books per request")
	cmd.Flags().IntVar(&d.concurrency, "concurrency", defaults.MaxConcurrency, "parallel requests")
	return cmd
}

// runDump prints what was fetched even when a window fails, then reports the
// failure.
func runDump(ctx context.Context, out io.Writer, o *options, d dumpOptions) error {
	order, err := d.order()
	if err != nil {
		return err
	}
	client, err := o.client(ctx, true)
	if err != nil {
		return err
	}

	fetcher := pagination.NewBatchFetcher[catalogue.Work, catalogue.WorkField](
		catalogue.NewBooksSource(client),
		pagination.Config{
			MaxConcurrency: d.concurrency,
			Timeout:        o.cfg.RequestTimeout,
			PageSize:       d.window,
		},
	)

	start := time.Now()
	res, fetchErr := fetcher.FetchAll(ctx, listing.Query[catalogue.WorkField]{
		Filter:     d.search,
		Order:      order,
		Publishers: o.cfg.Publishers,
	})

	enc := json.NewEncoder(out)
	for _, w := range res.Items {
		if err := enc.Encode(w); err != nil {
			return err
		}
	}

	log.Info().
		Int("books", len(res.Items)).
		Int("total", res.TotalCount).
		Int("windows", res.Windows).
		Dur("duration", time.Since(start)).
		Msg("Dump finished")

	if fetchErr != nil {
		return fmt.Errorf("dump incomplete (%d of %d windows): %w", res.Fetched, res.Windows, fetchErr)
	}
	return nil
}
