// Package lineartest provides a fake Linear GraphQL server for tests.
//
// Responses are registered per operation name, the identifier after
// "query" or "mutation" in the request document:
//
//	srv := lineartest.New(t)
//	srv.Reply("TeamByKey", map[string]any{"teams": map[string]any{"nodes": ...}})
//	client := linear.New("key", linear.WithBaseURL(srv.URL))
//
// Every GraphQL request is recorded and can be inspected with Calls.
// Unregistered operations fail with a GraphQL error. Static files
// registered with Asset are served under /assets/.
package lineartest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
)

// Call is one recorded GraphQL request.
type Call struct {
	Operation string
	Variables map[string]any
	Header    http.Header
}

// Var returns the variable at the given path, e.g. Var("input", "teamId").
func (c Call) Var(path ...string) any {
	var cur any = c.Variables
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[p]
	}
	return cur
}

// Input returns the "input" variable object, or nil.
func (c Call) Input() map[string]any {
	m, _ := c.Var("input").(map[string]any)
	return m
}

// Response is what the server sends for one request. A zero Status
// means 200.
type Response struct {
	Status int
	Data   any
	Errors []Error
	// Body, when set, is sent verbatim instead of a GraphQL envelope.
	Body string
}

// Error is a GraphQL error entry.
type Error struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Handler computes a response from the request variables.
type Handler func(vars map[string]any) Response

// Upload is a recorded PUT to the upload endpoint.
type Upload struct {
	Header http.Header
	Body   []byte
}

// Fetch is a recorded GET of an asset.
type Fetch struct {
	Path   string
	Header http.Header
}

// Server is a fake GraphQL endpoint.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
	uploads  []Upload
	assets   map[string][]byte
	fetches  []Fetch
}

var opName = regexp.MustCompile(`^\s*(?:query|mutation)\s+(\w+)`)

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{handlers: make(map[string]Handler), assets: make(map[string][]byte)}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /graphql", s.graphql)
	mux.HandleFunc("PUT /upload/", s.upload)
	mux.HandleFunc("GET /assets/", s.asset)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Handle registers h for operation op.
func (s *Server) Handle(op string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[op] = h
}

// Reply registers a fixed data payload for op.
func (s *Server) Reply(op string, data any) {
	s.Handle(op, func(map[string]any) Response {
		return Response{Data: data}
	})
}

// Fail registers a fixed HTTP failure for op.
func (s *Server) Fail(op string, status int, body string) {
	s.Handle(op, func(map[string]any) Response {
		return Response{Status: status, Body: body}
	})
}

// Calls returns the recorded requests for op, or all requests when op
// is empty.
func (s *Server) Calls(op string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if op == "" || c.Operation == op {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of recorded requests for op.
func (s *Server) Count(op string) int {
	return len(s.Calls(op))
}

// UploadURL returns a URL accepted by the upload endpoint.
func (s *Server) UploadURL(name string) string {
	return s.URL + "/upload/" + name
}

// Uploads returns the recorded uploads.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// Asset serves body at /assets/name and returns its URL. Unregistered
// names answer 404.
func (s *Server) Asset(name string, body []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[name] = body
	return s.URL + "/assets/" + name
}

// Fetches returns the recorded asset requests.
func (s *Server) Fetches() []Fetch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Fetch(nil), s.fetches...)
}

func (s *Server) graphql(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	op := ""
	if m := opName.FindStringSubmatch(req.Query); m != nil {
		op = m[1]
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Operation: op, Variables: req.Variables, Header: r.Header.Clone()})
	h := s.handlers[op]
	s.mu.Unlock()

	if h == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"errors": []Error{{Message: "unexpected operation " + op}},
		})
		return
	}

	resp := h(req.Variables)
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	if resp.Body != "" {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp.Body)
		return
	}
	body := map[string]any{}
	if resp.Data != nil {
		body["data"] = resp.Data
	}
	if len(resp.Errors) > 0 {
		body["errors"] = resp.Errors
	}
	writeJSON(w, status, body)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.uploads = append(s.uploads, Upload{Header: r.Header.Clone(), Body: data})
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) asset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.fetches = append(s.fetches, Fetch{Path: r.URL.Path, Header: r.Header.Clone()})
	body, ok := s.assets[strings.TrimPrefix(r.URL.Path, "/assets/")]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Nodes wraps items in a connection object without further pages.
func Nodes[T any](items ...T) map[string]any {
	if items == nil {
		items = []T{}
	}
	return map[string]any{
		"nodes":    items,
		"pageInfo": map[string]any{"hasNextPage": false, "endCursor": ""},
	}
}
