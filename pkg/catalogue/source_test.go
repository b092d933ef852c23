package catalogue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Sternrassler/thoth-catalogue/internal/testutil"
	"github.com/Sternrassler/thoth-catalogue/pkg/graphql"
	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
)

func newTestClient(t *testing.T, mock *testutil.MockAPI) *graphql.Client {
	t.Helper()
	cfg := graphql.DefaultConfig(mock.URL(), "thoth-catalogue-test/1.0")
	cfg.RateLimit = 0
	c, err := graphql.New(cfg)
	if err != nil {
		t.Fatalf("graphql.New() error = %v", err)
	}
	return c
}

func bookItem(i int) any {
	return map[string]any{
		"workId":    uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprint(i))).String(),
		"workType":  "MONOGRAPH",
		"fullTitle": fmt.Sprintf("Book %d", i),
		"title":     fmt.Sprintf("Book %d", i),
		"updatedAt": "2024-01-01T00:00:00Z",
		"imprint":   map[string]any{"publisher": map[string]any{"publisherName": "Open Book Publishers"}},
	}
}

func TestBooksSource_Fetch(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetHandler(BooksOperation, testutil.NewPagedHandler(45, "books", "bookCount", bookItem))

	source := NewBooksSource(newTestClient(t, mock))

	page, err := source.Fetch(context.Background(), listing.Query[WorkField]{
		Limit:  20,
		Offset: 40,
		Filter: "open",
		Order:  listing.Order[WorkField]{Field: WorkFieldPublicationDate, Direction: listing.Desc},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if page.TotalCount != 45 || len(page.Items) != 5 {
		t.Fatalf("page = %d items of %d, want 5 of 45", len(page.Items), page.TotalCount)
	}
	if page.Items[0].FullTitle != "Book 40" || page.Items[0].Publisher() != "Open Book Publishers" {
		t.Errorf("first item = %+v", page.Items[0])
	}

	req := mock.LastRequest()
	if req.OperationName != BooksOperation || !strings.Contains(req.Query, "bookCount(filter: $filter, publishers: $publishers)") {
		t.Errorf("request = %s %q", req.OperationName, req.Query)
	}

	var vars struct {
		Limit      int       `json:"limit"`
		Offset     int       `json:"offset"`
		Filter     string    `json:"filter"`
		Publishers *[]string `json:"publishers"`
		Order      struct {
			Field     string `json:"field"`
			Direction string `json:"direction"`
		} `json:"order"`
	}
	if err := req.DecodeVariables(&vars); err != nil {
		t.Fatalf("DecodeVariables() error = %v", err)
	}
	if vars.Limit != 20 || vars.Offset != 40 || vars.Filter != "open" {
		t.Errorf("window variables = %+v", vars)
	}
	if vars.Order.Field != "PUBLICATION_DATE" || vars.Order.Direction != "DESC" {
		t.Errorf("order = %+v", vars.Order)
	}
	if vars.Publishers != nil {
		t.Errorf("publishers = %v, want null", *vars.Publishers)
	}
}

func TestBooksSource_GraphQLError(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(BooksOperation, testutil.NewErrorsResponse("Invalid filter", "."))

	source := NewBooksSource(newTestClient(t, mock))

	_, err := source.Fetch(context.Background(), listing.Query[WorkField]{Limit: 20, Order: DefaultOrder()})
	if !graphql.IsGraphQL(err) || err.Error() != "Invalid filter." {
		t.Errorf("error = %v, want joined GraphQL messages", err)
	}
}

func TestWorkSource_FetchWork(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	id := uuid.MustParse("0c1e6a6b-b9a8-4a5b-8f56-8a1a5a0f5e11")
	data := fmt.Sprintf(`{
		"work": %s,
		"imprints": [{"imprintName": "OBP", "publisher": {"publisherName": "Open Book Publishers"}}],
		"workTypes": {"enumValues": [{"name": "MONOGRAPH"}, {"name": "EDITED_BOOK"}]},
		"workStatuses": {"enumValues": [{"name": "ACTIVE"}]}
	}`, sampleWork)
	mock.SetResponse(WorkOperation, testutil.NewDataResponse(data))

	source := NewWorkSource(newTestClient(t, mock), []string{"p1"})
	payload, err := source.FetchWork(context.Background(), id)
	if err != nil {
		t.Fatalf("FetchWork() error = %v", err)
	}
	if payload.Work == nil || payload.Work.WorkID != id {
		t.Fatalf("Work = %+v", payload.Work)
	}
	if len(payload.Imprints) != 1 || len(payload.WorkTypes.Names()) != 2 || len(payload.WorkStatuses.Names()) != 1 {
		t.Errorf("catalogues = %+v", payload)
	}

	var vars struct {
		WorkID     string   `json:"workId"`
		Publishers []string `json:"publishers"`
	}
	if err := mock.LastRequest().DecodeVariables(&vars); err != nil || vars.WorkID != id.String() || len(vars.Publishers) != 1 {
		t.Errorf("variables = %+v (err %v)", vars, err)
	}
}

func TestWorkSource_NotFound(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(WorkOperation, testutil.NewDataResponse(`{"work": null, "imprints": []}`))

	source := NewWorkSource(newTestClient(t, mock), nil)
	_, err := source.FetchWork(context.Background(), uuid.New())
	if !errors.Is(err, ErrWorkNotFound) {
		t.Errorf("error = %v, want ErrWorkNotFound", err)
	}
	if err.Error() != "No record was found for the given ID." {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWorkSource_ServerError(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(WorkOperation, testutil.MockResponse{StatusCode: http.StatusBadGateway})

	source := NewWorkSource(newTestClient(t, mock), nil)
	_, err := source.FetchWork(context.Background(), uuid.New())
	if gqlErr := graphql.Normalize(err); gqlErr == nil || gqlErr.StatusCode != http.StatusBadGateway {
		t.Errorf("error = %v, want a 502 transport error", err)
	}
}
