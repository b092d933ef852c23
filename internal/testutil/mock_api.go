// Package testutil provides a mock GraphQL API server for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// GraphQLRequest is the decoded body of a request received by the mock.
type GraphQLRequest struct {
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables"`
	OperationName string          `json:"operationName"`
}

// DecodeVariables unmarshals the request variables into v.
func (r GraphQLRequest) DecodeVariables(v any) error {
	if len(r.Variables) == 0 {
		return nil
	}
	return json.Unmarshal(r.Variables, v)
}

// MockResponse defines a canned response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// Handler serves one GraphQL operation.
type Handler func(w http.ResponseWriter, r *http.Request, req GraphQLRequest)

// MockAPI is a configurable mock GraphQL server. Handlers are selected by
// operation name; unknown operations get an empty data object.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]Handler

	requestCount      int
	lastRequest       GraphQLRequest
	lastRequestHeader http.Header
}

// NewMockAPI starts a mock server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]Handler),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GraphQLRequest
		if r.Method != http.MethodPost || json.NewDecoder(r.Body).Decode(&req) != nil {
			http.Error(w, "expected a JSON POST", http.StatusBadRequest)
			return
		}

		mock.mu.Lock()
		mock.requestCount++
		mock.lastRequest = req
		mock.lastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[req.OperationName]
		mock.mu.Unlock()

		if exists {
			handler(w, r, req)
			return
		}
		writeJSON(w, http.StatusOK, DefaultHeaders(), `{"data":{}}`)
	}))

	return mock
}

// URL returns the GraphQL endpoint of the mock.
func (m *MockAPI) URL() string {
	return m.server.URL + "/graphql"
}

// BaseURL returns the server root.
func (m *MockAPI) BaseURL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears the request tracking.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastRequest = GraphQLRequest{}
	m.lastRequestHeader = nil
}

// SetHandler sets the handler for an operation name.
func (m *MockAPI) SetHandler(operation string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[operation] = handler
}

// SetResponse configures a canned response for an operation name.
func (m *MockAPI) SetResponse(operation string, resp MockResponse) {
	m.SetHandler(operation, func(w http.ResponseWriter, r *http.Request, _ GraphQLRequest) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		writeJSON(w, resp.StatusCode, resp.Headers, resp.Body)
	})
}

// RequestCount returns the number of GraphQL requests received.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// LastRequest returns the most recent decoded request.
func (m *MockAPI) LastRequest() GraphQLRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequest
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// DefaultHeaders returns the headers of a healthy response.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"X-RateLimit-Remaining": "100",
		"X-RateLimit-Reset":     "60",
		"Content-Type":          "application/json; charset=utf-8",
	}
}

// NewDataResponse wraps data (a JSON object) in a successful envelope.
func NewDataResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data":` + data + `}`,
		Headers:    DefaultHeaders(),
	}
}

// NewErrorsResponse returns a GraphQL error list with the given messages.
func NewErrorsResponse(messages ...string) MockResponse {
	type message struct {
		Message string `json:"message"`
	}
	list := make([]message, 0, len(messages))
	for _, m := range messages {
		list = append(list, message{Message: m})
	}
	body, _ := json.Marshal(map[string]any{"data": nil, "errors": list})

	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    DefaultHeaders(),
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "internal server error",
		Headers: map[string]string{
			"X-RateLimit-Remaining": "95",
			"X-RateLimit-Reset":     "60",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response with a critical budget.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       "rate limit exceeded",
		Headers: map[string]string{
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     "30",
		},
	}
}

// NewPagedHandler serves an offset/limit listing of total items.
// The response data is {listKey: [item(offset)...], countKey: total}; the
// request variables must carry "limit" and "offset".
func NewPagedHandler(total int, listKey, countKey string, item func(i int) any) Handler {
	return func(w http.ResponseWriter, r *http.Request, req GraphQLRequest) {
		var vars struct {
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
		}
		if err := req.DecodeVariables(&vars); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items := make([]any, 0, vars.Limit)
		for i := vars.Offset; i < total && i < vars.Offset+vars.Limit; i++ {
			items = append(items, item(i))
		}

		body, err := json.Marshal(map[string]any{
			"data": map[string]any{
				listKey:  items,
				countKey: total,
			},
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, DefaultHeaders(), string(body))
	}
}

func writeJSON(w http.ResponseWriter, status int, headers map[string]string, body string) {
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(status)
	if body != "" {
		w.Write([]byte(body))
	}
}
