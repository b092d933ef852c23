package catalogue

import "fmt"

// User-facing strings of the books listing.
const (
	ReloadButton       = "Reload"
	NextPageButton     = "Next page"
	PreviousPageButton = "Previous"
	PaginationCount    = "Displaying books"
	SearchPlaceholder  = "Search by title, DOI, internal reference, abstract or landing page"
	RelationsInfo      = "Relations below are saved automatically upon change."
)

// ListHeaders are the column headers of the books table.
var ListHeaders = []string{
	WorkFieldWorkID.String(),
	WorkFieldFullTitle.String(),
	WorkFieldWorkType.String(),
	"Contributors",
	WorkFieldDOI.String(),
	"Publisher",
	WorkFieldUpdatedAt.String(),
}

// DisplayCount formats the pagination summary, e.g.
// "Displaying books 1–20 of 45".
func DisplayCount(first, last, total int) string {
	return fmt.Sprintf("%s %d–%d of %d", PaginationCount, first, last, total)
}
