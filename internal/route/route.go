// Package route maps URL-style paths to the views of the catalogue browser.
package route

import (
	"strings"

	"github.com/google/uuid"
)

// Kind identifies a view.
type Kind int

const (
	// Error is the view for unmatched paths.
	Error Kind = iota
	// Home redirects to Books.
	Home
	// Books is the paginated listing.
	Books
	// BookDetail is the detail page of one work.
	BookDetail
	// NotImplemented is a placeholder page.
	NotImplemented
)

func (k Kind) String() string {
	switch k {
	case Home:
		return "home"
	case Books:
		return "books"
	case BookDetail:
		return "book"
	case NotImplemented:
		return "not-implemented"
	default:
		return "error"
	}
}

// Route is a parsed path.
type Route struct {
	Kind Kind

	// ID is set for BookDetail.
	ID uuid.UUID
}

// ToBooks returns the listing route.
func ToBooks() Route { return Route{Kind: Books} }

// ToBook returns the detail route of work id.
func ToBook(id uuid.UUID) Route { return Route{Kind: BookDetail, ID: id} }

// Parse resolves path. Unknown paths and malformed work IDs yield Error.
func Parse(path string) Route {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return Route{Kind: Home}
	}

	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1 && parts[0] == "books":
		return Route{Kind: Books}
	case len(parts) == 2 && parts[0] == "books":
		id, err := uuid.Parse(parts[1])
		if err != nil {
			return Route{Kind: Error}
		}
		return ToBook(id)
	case len(parts) == 1 && parts[0] == "not-implemented":
		return Route{Kind: NotImplemented}
	default:
		return Route{Kind: Error}
	}
}

// Resolve follows redirects: Home resolves to Books.
func (r Route) Resolve() Route {
	if r.Kind == Home {
		return ToBooks()
	}
	return r
}

// Path returns the canonical path of r.
func (r Route) Path() string {
	switch r.Kind {
	case Home:
		return "/"
	case Books:
		return "/books"
	case BookDetail:
		return "/books/" + r.ID.String()
	case NotImplemented:
		return "/not-implemented"
	default:
		return "/error"
	}
}

func (r Route) String() string {
	return r.Path()
}
