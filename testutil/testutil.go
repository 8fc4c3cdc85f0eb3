// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/voter-desk/cliparse"
	"github.com/danielhkuo/voter-desk/db"
)

// TestDBURL is an in-memory sqlite database private to one connection
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration pointed at apiURL
func GetTestConfig(apiURL string) cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		APIBaseURL:   apiURL,
		DatabaseURL:  TestDBURL,
		DatabaseType: db.TypeSQLite,
		ConfirmSalt:  "test-confirm-salt",
		SessionTTL:   30 * time.Minute,
	}
}

// Call is one request the fake backend received
type Call struct {
	Method string
	Path   string
	Body   []byte
}

// FakeBackend is an httptest server answering for the voter backend.
// Routes are keyed by "METHOD /path"; unknown routes answer 404.
type FakeBackend struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
}

func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{routes: make(map[string]http.HandlerFunc)}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Close)
	return fb
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	key := r.Method + " " + r.URL.Path

	fb.mu.Lock()
	fb.calls = append(fb.calls, Call{Method: r.Method, Path: r.URL.Path, Body: body})
	handler, ok := fb.routes[key]
	fb.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found"}`))
		return
	}
	handler(w, r)
}

// Handle registers a handler for "METHOD /path"
func (fb *FakeBackend) Handle(route string, h http.HandlerFunc) {
	fb.mu.Lock()
	fb.routes[route] = h
	fb.mu.Unlock()
}

// JSON registers a fixed JSON reply for "METHOD /path"
func (fb *FakeBackend) JSON(route string, status int, body interface{}) {
	fb.Handle(route, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	})
}

// Calls returns the requests received for "METHOD /path"
func (fb *FakeBackend) Calls(route string) []Call {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	var out []Call
	for _, c := range fb.calls {
		if c.Method+" "+c.Path == route {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how many requests the backend received in total
func (fb *FakeBackend) CallCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.calls)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
