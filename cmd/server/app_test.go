package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/database"
	"github.com/phrazzld/mnemo-api/internal/platform/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-that-is-at-least-32-characters"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error", ShutdownTimeoutSeconds: 1},
		Database: config.DatabaseConfig{
			Driver:       database.DriverSQLite,
			URL:          filepath.Join(t.TempDir(), "mnemo.db"),
			MaxOpenConns: 1,
		},
		Auth: config.AuthConfig{JWTSecret: testJWTSecret, TokenLifetimeMinutes: 60, BCryptCost: 4},
		LLM:  config.LLMConfig{ModelName: "gemini-2.0-flash", RetryDelaySeconds: 1},
		Telemetry: config.TelemetryConfig{
			ServiceName: "mnemo-api-test",
		},
	}
}

// newTestServer serves the fully wired application over a migrated SQLite file.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, _ := newTestApp(t)
	return srv
}

// newTestApp is newTestServer that also returns the application, for tests
// that reach around the HTTP surface.
func newTestApp(t *testing.T) (*httptest.Server, *application) {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig(t)
	log := slog.New(slog.DiscardHandler)

	db, err := database.Open(ctx, cfg.Database, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := database.NewMigrator(db, cfg.Database.Driver, log)
	require.NoError(t, err)
	_, err = m.Up(ctx)
	require.NoError(t, err)

	app, err := newApplication(ctx, cfg, log, db, telemetry.Setup(cfg.Telemetry, log))
	require.NoError(t, err)
	require.Nil(t, app.generator, "no API key means no generator")

	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(srv.Close)
	return srv, app
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.base+path, r)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) login(username, email, password string) {
	c.t.Helper()

	status := c.do(http.MethodPost, "/api/auth/register",
		map[string]string{"username": username, "email": email, "password": password}, nil)
	require.Equal(c.t, http.StatusCreated, status)

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	status = c.do(http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, &tok)
	require.Equal(c.t, http.StatusOK, status)
	require.Equal(c.t, "bearer", tok.TokenType)
	c.token = tok.AccessToken
}

func TestServer_ReviewFlow(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/stories", nil, nil))

	c.login("ana_learner", "ana@example.com", "correct-horse-battery")

	var story domain.Story
	status := c.do(http.MethodPost, "/api/stories", map[string]any{
		"topic":     "Cranial nerves",
		"facts":     []string{"CN I is olfactory", "CN X is vagus"},
		"narrative": "An old factory worker meets a vagabond...",
		"associations": []map[string]any{
			{"term": "Olfactory", "character": "Old factory worker"},
			{"term": "Vagus", "character": "Vagabond"},
		},
	}, &story)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, story.Associations, 2)

	var due []map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/reviews/due", nil, &due))
	assert.Len(t, due, 2, "never reviewed associations are due")

	reviewPath := "/api/stories/" + story.ID.String() + "/review"

	var reviewed domain.Story
	status = c.do(http.MethodPost, reviewPath, map[string]int{"associationIndex": 0, "quality": 5}, &reviewed)
	require.Equal(t, http.StatusOK, status)

	mem := reviewed.Associations[0].Memory
	require.NotNil(t, mem)
	assert.Equal(t, 1, mem.Repetitions)
	assert.Equal(t, 1, mem.IntervalDays)
	assert.InDelta(t, 2.6, mem.Ease, 1e-9)
	assert.Equal(t, mem.LastReviewedAt+domain.MillisPerDay, mem.NextDueAt)
	assert.Nil(t, reviewed.Associations[1].Memory, "siblings are untouched")

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/reviews/due", nil, &due))
	require.Len(t, due, 1)
	assert.Equal(t, float64(1), due[0]["associationIndex"])

	assert.Equal(t, http.StatusBadRequest,
		c.do(http.MethodPost, reviewPath, map[string]int{"associationIndex": 2, "quality": 4}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity,
		c.do(http.MethodPost, reviewPath, map[string]int{"associationIndex": 0, "quality": 6}, nil))
	assert.Equal(t, http.StatusNotFound,
		c.do(http.MethodPost, "/api/stories/"+uuid.NewString()+"/review",
			map[string]int{"associationIndex": 0, "quality": 4}, nil))

	// rejected reviews leave the stored story as it was
	var stored domain.Story
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/stories/"+story.ID.String(), nil, &stored))
	assert.Equal(t, reviewed.Associations, stored.Associations)

	assert.Equal(t, http.StatusServiceUnavailable,
		c.do(http.MethodPost, "/api/ai/mnemonic", map[string]string{"text": "notes"}, nil))
}

func TestServer_OwnershipAndPlaylists(t *testing.T) {
	srv := newTestServer(t)

	owner := &client{t: t, base: srv.URL}
	owner.login("owner_user", "owner@example.com", "correct-horse-battery")

	var story domain.Story
	require.Equal(t, http.StatusCreated, owner.do(http.MethodPost, "/api/stories",
		map[string]any{"topic": "Beta blockers", "associations": []map[string]any{{"term": "Propranolol"}}}, &story))

	guest := &client{t: t, base: srv.URL}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.Equal(t, http.StatusOK, guest.do(http.MethodPost, "/api/auth/guest", nil, &tok))
	guest.token = tok.AccessToken

	var me domain.User
	require.Equal(t, http.StatusOK, guest.do(http.MethodGet, "/api/auth/me", nil, &me))
	assert.True(t, me.IsGuest)

	storyPath := "/api/stories/" + story.ID.String()
	assert.Equal(t, http.StatusNotFound, guest.do(http.MethodGet, storyPath, nil, nil))
	assert.Equal(t, http.StatusNotFound, guest.do(http.MethodPost, storyPath+"/review",
		map[string]int{"associationIndex": 0, "quality": 5}, nil))

	var playlist domain.Playlist
	require.Equal(t, http.StatusCreated, owner.do(http.MethodPost, "/api/playlists",
		map[string]string{"name": "Pharmacology"}, &playlist))

	membership := "/api/playlists/" + playlist.ID.String() + "/stories/" + story.ID.String()
	assert.Equal(t, http.StatusNotFound, guest.do(http.MethodPost, membership, nil, nil))
	require.Equal(t, http.StatusNoContent, owner.do(http.MethodPost, membership, nil, nil))

	require.Equal(t, http.StatusOK, owner.do(http.MethodGet, "/api/playlists/"+playlist.ID.String(), nil, &playlist))
	assert.Equal(t, []uuid.UUID{story.ID}, playlist.StoryIDs)

	require.Equal(t, http.StatusNoContent,
		owner.do(http.MethodDelete, "/api/playlists/"+playlist.ID.String(), nil, nil))
	assert.Equal(t, http.StatusOK, owner.do(http.MethodGet, storyPath, nil, nil),
		"deleting a playlist keeps its stories")
}

func TestServer_CreateStoryForDeletedUser(t *testing.T) {
	srv, app := newTestApp(t)
	c := &client{t: t, base: srv.URL}
	c.login("ada", "ada@example.com", "correct-horse-battery")

	var me domain.User
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/auth/me", nil, &me))
	require.NoError(t, app.userStore.Delete(context.Background(), me.ID))

	body, err := json.Marshal(map[string]any{"topic": "Orphaned"})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/stories", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errBody struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.Equal(t, "User not found", errBody.Error)
}
