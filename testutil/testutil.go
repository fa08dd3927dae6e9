// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/youjianchi/quickPoll/auth"
	"github.com/youjianchi/quickPoll/cliparse"
	"github.com/youjianchi/quickPoll/db"
	"github.com/youjianchi/quickPoll/models"
	"github.com/youjianchi/quickPoll/polls"
)

// PostgresEnv names the variable that switches the tests to Postgres
const PostgresEnv = "QUICKPOLL_TEST_POSTGRES"

// SetupTestDB creates a fresh database with the full schema. It uses an
// on-disk SQLite file in t.TempDir() unless QUICKPOLL_TEST_POSTGRES holds a
// Postgres URL.
func SetupTestDB(t *testing.T) (*sql.DB, db.Dialect) {
	t.Helper()

	dialect := db.SQLite
	dsn := "file:" + filepath.Join(t.TempDir(), "quickpoll.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if url := os.Getenv(PostgresEnv); url != "" {
		dialect, dsn = db.Postgres, url
	}

	conn, err := db.Open(context.Background(), dialect, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if dialect.Name == db.Postgres.Name {
		// Clean up tables before each test
		if _, err := conn.Exec(`DROP TABLE IF EXISTS options CASCADE; DROP TABLE IF EXISTS polls CASCADE;`); err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}

	if err := db.CreateSchema(conn, dialect); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn, dialect
}

// SetupTestStore returns a poll store on a fresh test database
func SetupTestStore(t *testing.T) *polls.Store {
	t.Helper()
	conn, dialect := SetupTestDB(t)
	return polls.NewStore(conn, dialect)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                   4000,
		DatabaseType:           "sqlite",
		AllowedOrigins:         []string{"http://localhost:5173"},
		SupabaseURL:            "http://identity.test",
		SupabaseAnonKey:        "test-anon-key",
		SupabaseServiceRoleKey: "test-service-key",
	}
}

// CreateTestPoll creates a poll owned by TestUser and returns it
func CreateTestPoll(t *testing.T, store *polls.Store, question string, options ...string) models.Poll {
	t.Helper()

	creator := TestUser.ID
	poll, err := store.Create(context.Background(), question, options, &creator)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return poll
}

// Identity provider fake

const (
	TestPassword    = "secret1"
	TestAccessToken = "test-access-token"
)

var TestUser = models.User{ID: "00000000-0000-0000-0000-000000000001", Email: "user@example.com"}

// FakeProvider is an in-memory auth.Provider with one known account.
// Every access token it issued stays valid until signed out.
type FakeProvider struct {
	mu       sync.Mutex
	users    map[string]string // email -> password
	sessions map[string]models.User
	// Err, when set, is returned from every call
	Err error
}

var _ auth.Provider = (*FakeProvider)(nil)

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		users:    map[string]string{TestUser.Email: TestPassword},
		sessions: map[string]models.User{TestAccessToken: TestUser},
	}
}

func (f *FakeProvider) SignUp(ctx context.Context, email, password string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return models.User{}, f.Err
	}
	if _, exists := f.users[email]; exists {
		return models.User{}, &auth.UpstreamError{Status: http.StatusUnprocessableEntity, Message: "User already registered"}
	}
	f.users[email] = password
	return models.User{ID: "user-" + email, Email: email}, nil
}

func (f *FakeProvider) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return models.Session{}, f.Err
	}
	if stored, ok := f.users[email]; !ok || stored != password {
		return models.Session{}, &auth.UpstreamError{Status: http.StatusBadRequest, Message: "Invalid login credentials"}
	}

	user := models.User{ID: "user-" + email, Email: email}
	if email == TestUser.Email {
		user = TestUser
	}
	access := "access-" + email
	f.sessions[access] = user
	return models.Session{AccessToken: access, RefreshToken: "refresh-" + email, ExpiresAt: 1893456000, User: user}, nil
}

func (f *FakeProvider) SignOut(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if token == "revoked" {
		return &auth.UpstreamError{Status: http.StatusUnauthorized, Message: "Invalid Refresh Token"}
	}
	return nil
}

func (f *FakeProvider) GetUser(ctx context.Context, accessToken string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return models.User{}, f.Err
	}
	user, ok := f.sessions[accessToken]
	if !ok {
		return models.User{}, auth.ErrUnauthorized
	}
	return user, nil
}

// HTTP helpers

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

// BearerHeader returns headers authenticating as TestUser
func BearerHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + TestAccessToken}
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

// AssertError checks the status code and the {"error": ...} message
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	AssertStatus(t, w, status)
	var resp models.ErrorResponse
	AssertJSON(t, w, &resp)
	if message != "" && resp.Error != message {
		t.Errorf("Expected error %q, got %q", message, resp.Error)
	}
}
