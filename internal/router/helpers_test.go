package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/tinegaCollins/user-manager/internal/audit"
	"github.com/tinegaCollins/user-manager/internal/config"
	"github.com/tinegaCollins/user-manager/internal/events"
	"github.com/tinegaCollins/user-manager/internal/users"
)

const (
	testAdminKey  = "test-admin-key"
	testJWTSecret = "test-jwt-secret"
)

type testEnv struct {
	app    *fiber.App
	store  users.Store
	events *events.Recorder
	audit  *audit.Memory
	dist   string
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>spa</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	return config.Config{
		Env:              "development",
		Port:             "0",
		StoreDriver:      config.DriverMemory,
		CORSOpenFallback: true,
		ClientDistPath:   dist,
		JWTSecret:        testJWTSecret,
		JWTTTL:           time.Hour,
		AdminAPIKey:      testAdminKey,
		WriteRateWindow:  time.Minute,
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, users.NewMemoryStore(), mutate...)
}

func newTestEnvWithStore(t *testing.T, store users.Store, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig(t)
	for _, m := range mutate {
		m(&cfg)
	}
	env := &testEnv{
		store:  store,
		events: &events.Recorder{},
		audit:  &audit.Memory{},
		dist:   cfg.ClientDistPath,
	}
	env.app = New(Deps{
		Config: cfg,
		Store:  store,
		Events: env.events,
		Audit:  env.audit,
	})
	return env
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, v), string(r.body))
}

func (r response) errorBody(t *testing.T) ErrorBody {
	t.Helper()
	var eb ErrorBody
	r.decode(t, &eb)
	return eb
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) response {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: raw}
}

func (e *testEnv) createUser(t *testing.T, name, email string) map[string]any {
	t.Helper()
	r := e.do(t, fiber.MethodPost, "/api/users", map[string]any{"name": name, "email": email, "phone": "555-0100"})
	require.Equal(t, fiber.StatusCreated, r.status, string(r.body))
	var u map[string]any
	r.decode(t, &u)
	return u
}
