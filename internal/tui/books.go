package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"

	"github.com/Sternrassler/thoth-catalogue/internal/route"
	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
)

// BooksModel is the books listing.
type BooksModel = ListModel[catalogue.Work, catalogue.WorkField]

// BookRows renders works as rows of the books table.
type BookRows struct {
	// Now is the reference time of the "updated" column (default time.Now).
	Now func() time.Time
}

// Columns implements RowRenderer.
func (BookRows) Columns() []Column[catalogue.WorkField] {
	h := catalogue.ListHeaders
	return []Column[catalogue.WorkField]{
		{Title: h[0], Width: 36, Field: catalogue.WorkFieldWorkID, Sortable: true},
		{Title: h[1], Width: 40, Field: catalogue.WorkFieldFullTitle, Sortable: true},
		{Title: h[2], Width: 14, Field: catalogue.WorkFieldWorkType, Sortable: true},
		{Title: h[3], Width: 28},
		{Title: h[4], Width: 26, Field: catalogue.WorkFieldDOI, Sortable: true},
		{Title: h[5], Width: 18},
		{Title: h[6], Width: 16, Field: catalogue.WorkFieldUpdatedAt, Sortable: true},
	}
}

// Row implements RowRenderer.
func (r BookRows) Row(w catalogue.Work) table.Row {
	return table.Row{
		w.WorkID.String(),
		w.FullTitle,
		w.WorkType.String(),
		strings.Join(w.MainContributors(), ", "),
		w.DOI.String(),
		w.Publisher(),
		r.updated(w.UpdatedAt),
	}
}

// Route implements RowRenderer.
func (BookRows) Route(w catalogue.Work) route.Route {
	return route.ToBook(w.WorkID)
}

func (r BookRows) updated(t catalogue.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	return humanize.RelTime(t.Time, now, "ago", "from now")
}

// BooksText returns the strings of the books listing.
func BooksText() ListText {
	return ListText{
		Reload:      catalogue.ReloadButton,
		Next:        catalogue.NextPageButton,
		Previous:    catalogue.PreviousPageButton,
		Placeholder: catalogue.SearchPlaceholder,
		Loading:     "Loading books…",
		Empty:       "No books match the search.",
		Count: func(r listing.Range) string {
			return catalogue.DisplayCount(r.First, r.Last, r.Total)
		},
	}
}

// NewBooksModel creates the books listing over source.
func NewBooksModel(ctx context.Context, cfg listing.Config, source listing.Source[catalogue.Work, catalogue.WorkField], styles Styles) BooksModel {
	return NewListModel[catalogue.Work, catalogue.WorkField](ctx, cfg, catalogue.DefaultOrder(), source, BookRows{}, BooksText(), styles)
}
