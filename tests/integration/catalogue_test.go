//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/thoth-catalogue/internal/testutil"
	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
	"github.com/Sternrassler/thoth-catalogue/pkg/detail"
	"github.com/Sternrassler/thoth-catalogue/pkg/fetch"
	"github.com/Sternrassler/thoth-catalogue/pkg/graphql"
	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
	"github.com/Sternrassler/thoth-catalogue/pkg/pagination"
	"github.com/Sternrassler/thoth-catalogue/pkg/ratelimit"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: endpoint})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// newClient creates a client that shares its rate-limit budget through Redis.
func newClient(t *testing.T, mock *testutil.MockAPI, redisClient *redis.Client, retry graphql.RetryConfig) *graphql.Client {
	t.Helper()

	cfg := graphql.DefaultConfig(mock.URL(), "thoth-catalogue-integration/1.0")
	cfg.RateLimit = 0
	cfg.Retry = retry
	cfg.Tracker = ratelimit.NewTracker(ratelimit.NewRedisStore(redisClient), zerolog.Nop())

	c, err := graphql.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func workID(i int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprint(i)))
}

func bookItem(i int) any {
	return map[string]any{
		"workId":     workID(i).String(),
		"workType":   "MONOGRAPH",
		"workStatus": "ACTIVE",
		"fullTitle":  fmt.Sprintf("Book %d", i),
		"title":      fmt.Sprintf("Book %d", i),
		"doi":        fmt.Sprintf("https://doi.org/10.11647/obp.%04d", i),
		"imprint":    map[string]any{"publisher": map[string]any{"publisherName": "Open Book Publishers"}},
	}
}

func workHandler(w http.ResponseWriter, _ *http.Request, req testutil.GraphQLRequest) {
	var vars struct {
		WorkID string `json:"workId"`
	}
	if err := req.DecodeVariables(&vars); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for key, value := range testutil.DefaultHeaders() {
		w.Header().Set(key, value)
	}
	fmt.Fprintf(w, `{"data": {"work": {
		"workId": %q,
		"workType": "MONOGRAPH",
		"workStatus": "FORTHCOMING",
		"fullTitle": "Book detail",
		"title": "Book detail"
	}, "imprints": []}}`, vars.WorkID)
}

// TestBrowseFlow pages through the listing and opens a book, the way the
// browser does.
func TestBrowseFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetHandler(catalogue.BooksOperation, testutil.NewPagedHandler(45, "books", "bookCount", bookItem))
	mock.SetHandler(catalogue.WorkOperation, workHandler)

	client := newClient(t, mock, redisClient, graphql.NoRetry())
	ctx := context.Background()

	cfg := listing.DefaultConfig()
	cfg.Debounce = 10 * time.Millisecond
	runner, err := listing.NewRunner(ctx, cfg, catalogue.DefaultOrder(), catalogue.NewBooksSource(client))
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	defer runner.Close()

	runner.Initialize()
	runner.WaitIdle(ctx)
	runner.Next()
	runner.WaitIdle(ctx)

	s := runner.Snapshot()
	if s.Fetch.Status() != fetch.Fetched || len(s.Items) != 20 {
		t.Fatalf("state = %s with %d items", s.Fetch.Status(), len(s.Items))
	}
	if got := s.DisplayRange(); got != (listing.Range{First: 20, Last: 40, Total: 45}) {
		t.Errorf("DisplayRange() = %+v", got)
	}

	opened := s.Items[0].WorkID
	if opened != workID(20) {
		t.Errorf("first item = %s, want %s", opened, workID(20))
	}

	view, err := detail.NewAssembler(catalogue.NewWorkSource(client, nil), opened, "https://export.thoth.pub").Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if view.WorkID != opened || !view.Forthcoming || len(view.Exports) == 0 {
		t.Errorf("view = %+v", view)
	}

	// The budget reported by the API is shared through Redis.
	remaining, err := redisClient.Get(ctx, ratelimit.RedisKeyRemaining).Int()
	if err != nil || remaining != 100 {
		t.Errorf("stored budget = %d (err %v), want 100", remaining, err)
	}
}

// TestRateLimitSharedBudget blocks a second client once the first one saw a
// critical budget.
func TestRateLimitSharedBudget(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(catalogue.BooksOperation, testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data": {"books": [], "bookCount": 0}}`,
		Headers: map[string]string{
			ratelimit.HeaderRemaining: "2",
			ratelimit.HeaderReset:     "60",
		},
	})

	ctx := context.Background()
	first := catalogue.NewBooksSource(newClient(t, mock, redisClient, graphql.NoRetry()))
	second := catalogue.NewBooksSource(newClient(t, mock, redisClient, graphql.NoRetry()))

	query := listing.Query[catalogue.WorkField]{Limit: 20, Order: catalogue.DefaultOrder()}
	if _, err := first.Fetch(ctx, query); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}

	_, err := second.Fetch(ctx, query)
	if !errors.Is(err, graphql.ErrRateLimited) {
		t.Errorf("second Fetch() error = %v, want ErrRateLimited", err)
	}
	if gqlErr := graphql.Normalize(err); gqlErr == nil || gqlErr.Kind != graphql.KindTransport {
		t.Errorf("error kind = %v, want transport", gqlErr)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("API requests = %d, want 1 (second blocked)", mock.RequestCount())
	}
}

// TestDumpRetriesServerErrors fetches the whole listing through a server that
// fails the first request of every other window.
func TestDumpRetriesServerErrors(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()

	paged := testutil.NewPagedHandler(95, "books", "bookCount", bookItem)
	var mu sync.Mutex
	failed := make(map[int]bool)
	var calls atomic.Int32
	mock.SetHandler(catalogue.BooksOperation, func(w http.ResponseWriter, r *http.Request, req testutil.GraphQLRequest) {
		calls.Add(1)
		var vars struct {
			Offset int `json:"offset"`
		}
		req.DecodeVariables(&vars)

		mu.Lock()
		fail := vars.Offset%20 == 10 && !failed[vars.Offset]
		failed[vars.Offset] = true
		mu.Unlock()

		if fail {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			return
		}
		paged(w, r, req)
	})

	client := newClient(t, mock, redisClient, graphql.DefaultRetryConfig())
	fetcher := pagination.NewBatchFetcher[catalogue.Work, catalogue.WorkField](
		catalogue.NewBooksSource(client),
		pagination.Config{MaxConcurrency: 3, Timeout: 30 * time.Second, PageSize: 10},
	)

	res, err := fetcher.FetchAll(context.Background(), listing.Query[catalogue.WorkField]{Order: catalogue.DefaultOrder()})
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if !res.Complete() || len(res.Items) != 95 {
		t.Fatalf("result = %d items, %d/%d windows", len(res.Items), res.Fetched, res.Windows)
	}
	for i, w := range res.Items {
		if w.WorkID != workID(i) {
			t.Fatalf("item %d = %s, want %s", i, w.WorkID, workID(i))
		}
	}
	if n := int(calls.Load()); n != 15 {
		t.Errorf("requests = %d, want 10 windows and 5 retries", n)
	}
}
