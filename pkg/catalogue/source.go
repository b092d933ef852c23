package catalogue

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/thoth-catalogue/pkg/graphql"
	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
)

// Doer executes a GraphQL request. *graphql.Client implements it.
type Doer interface {
	Do(ctx context.Context, req graphql.Request, out any) error
}

// ErrWorkNotFound is returned when the API answers a work query with null.
var ErrWorkNotFound = &graphql.Error{
	Kind:     graphql.KindGraphQL,
	Messages: []string{"No record was found for the given ID."},
}

// DefaultOrder is the sort order of a fresh books listing.
func DefaultOrder() listing.Order[WorkField] {
	return listing.Order[WorkField]{Field: DefaultWorkField, Direction: listing.Asc}
}

// BooksResponse is the data member of a BooksQuery response.
type BooksResponse struct {
	Books     []Work `json:"books"`
	BookCount int    `json:"bookCount"`
}

// BooksSource serves the books listing.
type BooksSource struct {
	client Doer
	logger zerolog.Logger
}

// NewBooksSource creates a books source over client.
func NewBooksSource(client Doer) *BooksSource {
	return &BooksSource{
		client: client,
		logger: log.With().Str("component", "books-source").Logger(),
	}
}

// Fetch runs BooksQuery for one window. The query value is sent as the
// variables object unchanged.
func (s *BooksSource) Fetch(ctx context.Context, q listing.Query[WorkField]) (listing.Page[Work], error) {
	var resp BooksResponse
	err := s.client.Do(ctx, graphql.Request{
		Query:         BooksQuery,
		Variables:     q,
		OperationName: BooksOperation,
	}, &resp)
	if err != nil {
		return listing.Page[Work]{}, err
	}

	s.logger.Debug().
		Int("offset", q.Offset).
		Int("items", len(resp.Books)).
		Int("total", resp.BookCount).
		Msg("Books page fetched")

	return listing.Page[Work]{Items: resp.Books, TotalCount: resp.BookCount}, nil
}

// WorkPayload is the data member of a WorkQuery response.
type WorkPayload struct {
	Work         *Work                      `json:"work"`
	Imprints     []ImprintWithPublisher     `json:"imprints"`
	WorkTypes    EnumDefinition[WorkType]   `json:"workTypes"`
	WorkStatuses EnumDefinition[WorkStatus] `json:"workStatuses"`
}

type workVariables struct {
	WorkID     uuid.UUID `json:"workId"`
	Publishers []string  `json:"publishers"`
}

// WorkSource serves single works for the detail view.
type WorkSource struct {
	client     Doer
	publishers []string
}

// NewWorkSource creates a work source. publishers scopes the imprint
// catalogue (nil = all).
func NewWorkSource(client Doer, publishers []string) *WorkSource {
	return &WorkSource{client: client, publishers: publishers}
}

// FetchWork runs WorkQuery for id. A null work yields ErrWorkNotFound.
func (s *WorkSource) FetchWork(ctx context.Context, id uuid.UUID) (WorkPayload, error) {
	var payload WorkPayload
	err := s.client.Do(ctx, graphql.Request{
		Query:         WorkQuery,
		Variables:     workVariables{WorkID: id, Publishers: s.publishers},
		OperationName: WorkOperation,
	}, &payload)
	if err != nil {
		return WorkPayload{}, err
	}
	if payload.Work == nil {
		return WorkPayload{}, ErrWorkNotFound
	}
	return payload, nil
}
