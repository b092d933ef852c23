package detail

import (
	"fmt"
	"strings"
)

// Markdown renders the view as a markdown document. The long abstract is
// embedded as is, since it is authored in markdown.
func (v View) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", v.Title)
	if v.ContributorsText != "" {
		fmt.Fprintf(&b, "*%s*\n\n", v.ContributorsText)
	}
	if v.Forthcoming {
		b.WriteString("**Forthcoming**\n\n")
	}

	if v.LongAbstract != "" {
		b.WriteString("## Abstract\n\n")
		b.WriteString(strings.TrimSpace(v.LongAbstract))
		b.WriteString("\n\n")
	}

	b.WriteString("## Metadata\n\n")
	for _, f := range v.Metadata() {
		fmt.Fprintf(&b, "- **%s:** %s\n", f.Label, f.Value)
	}
	b.WriteString("\n")

	if len(v.Fundings) > 0 {
		b.WriteString("## Funding\n\n")
		for _, f := range v.Fundings {
			fmt.Fprintf(&b, "- [%s](%s)\n", f.Text, f.URL)
		}
		b.WriteString("\n")
	}

	if len(v.Contributors) > 0 {
		b.WriteString("## Contributors\n\n")
		for _, c := range v.Contributors {
			fmt.Fprintf(&b, "### %s (%s)\n\n", c.Name, c.Role)
			if c.ORCID != "" {
				fmt.Fprintf(&b, "- [%s](%s)\n", c.ORCIDTitle, c.ORCID)
			}
			if c.Website != "" {
				fmt.Fprintf(&b, "- [%s](%s)\n", c.WebsiteTitle, c.Website)
			}
			if c.Biography != "" {
				fmt.Fprintf(&b, "\n%s\n", c.Biography)
			}
			b.WriteString("\n")
		}
	}

	if len(v.Exports) > 0 {
		b.WriteString("## Export Metadata\n\n")
		for _, section := range v.Exports {
			if section.Heading != "" {
				fmt.Fprintf(&b, "- %s\n", section.Heading)
				for _, link := range section.Links {
					fmt.Fprintf(&b, "  - [%s](%s)\n", link.Label, link.URL)
				}
				continue
			}
			for _, link := range section.Links {
				fmt.Fprintf(&b, "- [%s](%s)\n", link.Label, link.URL)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
