package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/thoth-catalogue/pkg/export"
)

func newExportsCmd(o *options) *cobra.Command {
	var spec string
	cmd := &cobra.Command{
		Use:   "exports <work-id>",
		Short: "Print the metadata export links of a work",
		Long: `Prints the export URL of the work for every metadata specification.
No request is made; the links point at the export API.`,
		Example: `  thoth-catalogue exports e0f748b2-984f-45cc-8b9e-13989c31dda4
  thoth-catalogue exports e0f748b2-984f-45cc-8b9e-13989c31dda4 --spec onix_3.0::jstor`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid work ID %q: %w", args[0], err)
			}
			return runExports(cmd.OutOrStdout(), o.cfg.ExportURL, id, spec)
		},
	}
	cmd.Flags().StringVar(&spec, "spec", "", "print only the link of this format::vendor specification")
	return cmd
}

func runExports(out io.Writer, base string, id uuid.UUID, spec string) error {
	if spec != "" {
		s, err := export.Lookup(spec)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, export.Link(base, s, id))
		return err
	}

	for _, section := range export.Group(export.Links(base, id)) {
		indent := ""
		if section.Heading != "" {
			fmt.Fprintln(out, section.Heading)
			indent = "  "
		}
		for _, link := range section.Links {
			if _, err := fmt.Fprintf(out, "%s%s: %s\n", indent, link.Label, link.URL); err != nil {
				return err
			}
		}
	}
	return nil
}
