package handlers_test

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/modtoolkit/internal/common"
	"github.com/dmitrijs2005/modtoolkit/internal/dbx"
	"github.com/dmitrijs2005/modtoolkit/internal/logging"
	"github.com/dmitrijs2005/modtoolkit/internal/server/auth"
	"github.com/dmitrijs2005/modtoolkit/internal/server/config"
	"github.com/dmitrijs2005/modtoolkit/internal/server/httpserver"
	"github.com/dmitrijs2005/modtoolkit/internal/server/httpserver/handlers"
	"github.com/dmitrijs2005/modtoolkit/internal/server/models"
	refreshtokensrepo "github.com/dmitrijs2005/modtoolkit/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/modtoolkit/internal/server/repositories/repomanager"
	toolsrepo "github.com/dmitrijs2005/modtoolkit/internal/server/repositories/tools"
	usersrepo "github.com/dmitrijs2005/modtoolkit/internal/server/repositories/users"
	"github.com/dmitrijs2005/modtoolkit/internal/server/services"
	"github.com/dmitrijs2005/modtoolkit/internal/server/watch"
)

const testSecret = "test-secret"

func nopLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// memToolsRepo is an in-memory tools repository so handler tests can run the
// real service and routing stack without a database.
type memToolsRepo struct {
	mu    sync.Mutex
	tools []*models.Tool
}

func (m *memToolsRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Tool
	for _, t := range m.tools {
		if t.OwnerID == ownerID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memToolsRepo) Get(ctx context.Context, ownerID, id string) (*models.Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tools {
		if t.OwnerID == ownerID && t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memToolsRepo) Create(ctx context.Context, tool *models.Tool) (*models.Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *tool
	c.CreatedAt = time.Now()
	m.tools = append(m.tools, &c)
	out := c
	return &out, nil
}

func (m *memToolsRepo) Update(ctx context.Context, tool *models.Tool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tools {
		if t.OwnerID == tool.OwnerID && t.ID == tool.ID {
			t.Title = tool.Title
			t.Category = tool.Category
			t.Description = tool.Description
			t.Progress = tool.Progress
			return nil
		}
	}
	return common.ErrorNotFound
}

func (m *memToolsRepo) SetEnabled(ctx context.Context, ownerID, id string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tools {
		if t.OwnerID == ownerID && t.ID == id {
			t.Enabled = enabled
			return nil
		}
	}
	return common.ErrorNotFound
}

func (m *memToolsRepo) Delete(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tools {
		if t.OwnerID == ownerID && t.ID == id {
			m.tools = append(m.tools[:i], m.tools[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type memUsersRepo struct {
	mu    sync.Mutex
	users []*models.User
}

func (m *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.ID = u.Email // deterministic for tests
	m.users = append(m.users, &c)
	out := c
	return &out, nil
}

func (m *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func (m *memRefreshRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = make(map[string]*models.RefreshToken)
	}
	m.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (m *memRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (m *memRefreshRepo) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *memRefreshRepo) DeleteForUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, k)
		}
	}
	return nil
}

type memRepoManager struct {
	users   *memUsersRepo
	refresh *memRefreshRepo
	tools   *memToolsRepo
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *memRepoManager) Users(dbx.DBTX) usersrepo.Repository                    { return m.users }
func (m *memRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository    { return m.refresh }
func (m *memRepoManager) Tools(db dbx.DBTX) toolsrepo.Repository                 { return m.tools }

var _ repomanager.RepositoryManager = (*memRepoManager)(nil)

type testEnv struct {
	srv *httptest.Server
	rm  *memRepoManager
	hub *watch.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	// Refresh rotation runs in a transaction against the mock connection.
	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	mock.ExpectCommit()
	t.Cleanup(func() { db.Close() })

	rm := &memRepoManager{
		users:   &memUsersRepo{},
		refresh: &memRefreshRepo{},
		tools:   &memToolsRepo{},
	}

	cfg := &config.Config{
		SecretKey:                    testSecret,
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}

	logger := nopLogger()
	hub := watch.NewHub(logger)
	notifier := &watch.LocalNotifier{
		Hub: hub,
		Loader: func(ctx context.Context, ownerID string) ([]*models.Tool, error) {
			return rm.tools.ListByOwner(ctx, ownerID)
		},
	}

	users := services.NewUserService(db, rm, cfg)
	tools := services.NewToolService(db, rm, notifier)
	avatars := services.NewAvatarService(cfg)

	h := handlers.New(users, tools, avatars, hub, logger)
	router := httpserver.NewRouter(logger, h, []byte(testSecret))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, rm: rm, hub: hub}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestSignupLoginRefreshLogout(t *testing.T) {
	env := newTestEnv(t)

	creds := map[string]string{"email": "alice@example.com", "password": "secret1"}

	resp := env.do(t, http.MethodPost, "/api/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pair := decodeBody[map[string]string](t, resp)
	require.NotEmpty(t, pair["accessToken"])
	require.NotEmpty(t, pair["refreshToken"])

	// duplicate signup
	resp = env.do(t, http.MethodPost, "/api/auth/signup", "", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// wrong password
	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pair = decodeBody[map[string]string](t, resp)

	// rotate the refresh token
	resp = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": pair["refreshToken"]})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decodeBody[map[string]string](t, resp)
	require.NotEmpty(t, rotated["accessToken"])
	require.NotEqual(t, pair["refreshToken"], rotated["refreshToken"])

	// the old refresh token is gone
	resp = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": pair["refreshToken"]})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// logout revokes the rotated token too
	resp = env.do(t, http.MethodPost, "/api/auth/logout", rotated["accessToken"], nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": rotated["refreshToken"]})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestToolsEndpoints_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/tools", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/tools", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestToolsCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1")

	// empty list comes back as [], not null
	resp := env.do(t, http.MethodGet, "/api/tools", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[[]*models.Tool](t, resp)
	require.NotNil(t, list)
	require.Empty(t, list)

	resp = env.do(t, http.MethodPost, "/api/tools", token, map[string]any{
		"title":    "CPU Governor",
		"category": models.CategoryPerformance,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[models.Tool](t, resp)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.Enabled)

	// invalid payloads
	resp = env.do(t, http.MethodPost, "/api/tools", token, map[string]any{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	resp = env.do(t, http.MethodPost, "/api/tools", token, map[string]any{"title": "x", "progress": 150})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/tools/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[models.Tool](t, resp)
	assert.Equal(t, "CPU Governor", got.Title)

	resp = env.do(t, http.MethodPut, "/api/tools/"+created.ID, token, map[string]any{
		"title":    "CPU Governor v2",
		"category": models.CategoryPerformance,
		"progress": 40,
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPatch, "/api/tools/"+created.ID+"/enabled", token, map[string]any{"enabled": true})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/tools/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decodeBody[models.Tool](t, resp)
	assert.Equal(t, "CPU Governor v2", got.Title)
	assert.True(t, got.Enabled)
	require.NotNil(t, got.Progress)
	assert.Equal(t, 40, *got.Progress)

	// another user cannot see or delete it
	other := env.token(t, "u2")
	resp = env.do(t, http.MethodGet, "/api/tools/"+created.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
	resp = env.do(t, http.MethodDelete, "/api/tools/"+created.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/tools/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/tools/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// readSnapshotEvent reads one SSE snapshot event from the stream.
func readSnapshotEvent(t *testing.T, r *bufio.Reader) []*models.Tool {
	t.Helper()
	var data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
		}
		if line == "" && data != "" {
			break
		}
	}
	var snapshot []*models.Tool
	require.NoError(t, json.Unmarshal([]byte(data), &snapshot))
	return snapshot
}

func TestWatchStream(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1")

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/tools/watch", nil)
	require.NoError(t, err)
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)

	// initial snapshot is empty
	snapshot := readSnapshotEvent(t, rd)
	require.Empty(t, snapshot)

	// wait for the subscription to register, then mutate
	require.Eventually(t, func() bool { return env.hub.SubscriberCount("u1") == 1 },
		time.Second, 10*time.Millisecond)

	cresp := env.do(t, http.MethodPost, "/api/tools", token, map[string]any{"title": "Logcat Reader"})
	require.Equal(t, http.StatusCreated, cresp.StatusCode)
	created := decodeBody[models.Tool](t, cresp)

	snapshot = readSnapshotEvent(t, rd)
	require.Len(t, snapshot, 1)
	assert.Equal(t, created.ID, snapshot[0].ID)

	// a mutation by another owner does not reach this stream
	other := env.token(t, "u2")
	oresp := env.do(t, http.MethodPost, "/api/tools", other, map[string]any{"title": "Other"})
	require.Equal(t, http.StatusCreated, oresp.StatusCode)
	oresp.Body.Close()

	dresp := env.do(t, http.MethodDelete, "/api/tools/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, dresp.StatusCode)
	dresp.Body.Close()

	snapshot = readSnapshotEvent(t, rd)
	require.Empty(t, snapshot)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.srv.Client().Get(env.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
