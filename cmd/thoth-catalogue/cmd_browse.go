package main

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/thoth-catalogue/internal/tui"
	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
)

func newBrowseCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse the catalogue in the terminal",
		Long: `Starts the interactive browser.

The optional path selects the first page, e.g. /books or
/books/e0f748b2-984f-45cc-8b9e-13989c31dda4.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := ""
			if len(args) == 1 {
				start = args[0]
			}
			return runBrowse(cmd, o, start)
		},
	}
}

func runBrowse(cmd *cobra.Command, o *options, start string) error {
	ctx := cmd.Context()
	client, err := o.client(ctx, false)
	if err != nil {
		return err
	}

	app := tui.NewApp(ctx, tui.AppConfig{
		Listing:    o.cfg.Listing(),
		Books:      catalogue.NewBooksSource(client),
		Works:      catalogue.NewWorkSource(client, o.cfg.Publishers),
		ExportBase: o.cfg.ExportURL,
		Styles:     tui.DefaultStyles(),
		Start:      start,
	})

	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
