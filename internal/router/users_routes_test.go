package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinegaCollins/user-manager/internal/audit"
	"github.com/tinegaCollins/user-manager/internal/auth"
	"github.com/tinegaCollins/user-manager/internal/config"
	"github.com/tinegaCollins/user-manager/internal/domain"
	"github.com/tinegaCollins/user-manager/internal/events"
	"github.com/tinegaCollins/user-manager/internal/users"
)

type listBody struct {
	Data  []domain.User `json:"data"`
	Total int64         `json:"total"`
}

func TestUserLifecycleScenario(t *testing.T) {
	env := newTestEnv(t)

	created := env.createUser(t, "Ada", "ada@x.io")
	id := created["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "USER", created["role"])
	assert.Equal(t, true, created["isActive"])
	assert.NotContains(t, created, "userId")

	r := env.do(t, fiber.MethodPost, "/api/users", map[string]any{"name": "Ada2", "email": "ada@x.io", "phone": "1"})
	assert.Equal(t, fiber.StatusConflict, r.status)
	assert.Equal(t, ErrorBody{Error: "User with this email already exists", Code: "conflict"}, r.errorBody(t))

	r = env.do(t, fiber.MethodPut, "/api/users/"+id, map[string]any{"isActive": false})
	require.Equal(t, fiber.StatusOK, r.status, string(r.body))
	var updated domain.User
	r.decode(t, &updated)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "ada@x.io", updated.Email)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	r = env.do(t, fiber.MethodDelete, "/api/users/"+id, nil)
	require.Equal(t, fiber.StatusOK, r.status)
	var del users.DeleteResponse
	r.decode(t, &del)
	assert.Equal(t, "User deleted successfully", del.Message)
	assert.Equal(t, id, del.DeletedUser.ID)

	r = env.do(t, fiber.MethodGet, "/api/users/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, r.status)
	assert.Equal(t, ErrorBody{Error: "User not found", Code: "not_found"}, r.errorBody(t))

	assert.Equal(t, []string{events.UserCreated, events.UserUpdated, events.UserDeleted}, env.events.Types())

	entries := env.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUserDelete, entries[0].Action)
	assert.Equal(t, id, entries[0].EntityID)
	assert.Equal(t, "anonymous", entries[0].Actor)
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body any
		msg  string
	}{
		{"empty body", nil, "Name, email, and phone are required fields"},
		{"missing phone", map[string]any{"name": "A", "email": "a@x.io"}, "Name, email, and phone are required fields"},
		{"empty name", map[string]any{"name": "", "email": "a@x.io", "phone": "1"}, "Name, email, and phone are required fields"},
		{"malformed json", `{"name": "A",`, "invalid JSON body"},
		{"wrong type", `{"name": 5, "email": "a@x.io", "phone": "1"}`, "invalid JSON body"},
		{"bad role", map[string]any{"name": "A", "email": "a@x.io", "phone": "1", "role": "root"}, "role must be USER or ADMIN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.do(t, fiber.MethodPost, "/api/users", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, r.status)
			assert.Equal(t, ErrorBody{Error: tt.msg, Code: "validation"}, r.errorBody(t))
		})
	}
}

func TestCreateUserWithRoleAndInactive(t *testing.T) {
	env := newTestEnv(t)
	r := env.do(t, fiber.MethodPost, "/api/users", map[string]any{
		"name": "Root", "email": "root@x.io", "phone": "1", "role": "ADMIN", "isActive": false,
	})
	require.Equal(t, fiber.StatusCreated, r.status)
	var u domain.User
	r.decode(t, &u)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.False(t, u.IsActive)
}

func TestDuplicateCreatesYieldOneConflict(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"name": "A", "email": "same@x.io", "phone": "1"}

	statuses := []int{
		env.do(t, fiber.MethodPost, "/api/users", body).status,
		env.do(t, fiber.MethodPost, "/api/users", body).status,
	}
	assert.ElementsMatch(t, []int{fiber.StatusCreated, fiber.StatusConflict}, statuses)
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.createUser(t, fmt.Sprintf("Person %d", i), fmt.Sprintf("p%d@x.io", i))
	}
	env.createUser(t, "Grace Hopper", "grace@navy.mil")

	var lb listBody
	env.do(t, fiber.MethodGet, "/api/users", nil).decode(t, &lb)
	assert.EqualValues(t, 6, lb.Total)
	assert.Len(t, lb.Data, 6)

	env.do(t, fiber.MethodGet, "/api/users?search=%20HOPPER%20", nil).decode(t, &lb)
	assert.EqualValues(t, 1, lb.Total)
	require.Len(t, lb.Data, 1)
	assert.Equal(t, "grace@navy.mil", lb.Data[0].Email)

	env.do(t, fiber.MethodGet, "/api/users?skip=1&take=2", nil).decode(t, &lb)
	assert.EqualValues(t, 6, lb.Total)
	assert.Len(t, lb.Data, 2)

	env.do(t, fiber.MethodGet, "/api/users?role=ADMIN", nil).decode(t, &lb)
	assert.EqualValues(t, 0, lb.Total)

	env.do(t, fiber.MethodGet, "/api/users?isActive=yes", nil).decode(t, &lb)
	assert.EqualValues(t, 0, lb.Total)

	env.do(t, fiber.MethodGet, "/api/users?isActive=true", nil).decode(t, &lb)
	assert.EqualValues(t, 6, lb.Total)
}

func TestListUsersEmpty(t *testing.T) {
	env := newTestEnv(t)
	r := env.do(t, fiber.MethodGet, "/api/users?search=nobody", nil)
	require.Equal(t, fiber.StatusOK, r.status)
	assert.JSONEq(t, `{"data":[],"total":0}`, string(r.body))
}

func TestListUsersHugeTake(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Ada", "ada@x.io")
	env.createUser(t, "Bob", "bob@x.io")

	r := env.do(t, fiber.MethodGet, "/api/users?skip=1&take=9223372036854775807", nil)
	require.Equal(t, fiber.StatusOK, r.status)
	var lb listBody
	r.decode(t, &lb)
	assert.EqualValues(t, 2, lb.Total)
	assert.Len(t, lb.Data, 1)
}

func TestListUsersBadPaging(t *testing.T) {
	env := newTestEnv(t)
	for _, q := range []string{"skip=-1", "take=abc", "take=-5", "skip=1.5"} {
		t.Run(q, func(t *testing.T) {
			r := env.do(t, fiber.MethodGet, "/api/users?"+q, nil)
			assert.Equal(t, fiber.StatusBadRequest, r.status)
			assert.Equal(t, "validation", r.errorBody(t).Code)
		})
	}
}

func TestListOrderNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	first := env.createUser(t, "First", "first@x.io")
	time.Sleep(2 * time.Millisecond)
	second := env.createUser(t, "Second", "second@x.io")

	var lb listBody
	env.do(t, fiber.MethodGet, "/api/users", nil).decode(t, &lb)
	require.Len(t, lb.Data, 2)
	assert.Equal(t, second["id"], lb.Data[0].ID)
	assert.Equal(t, first["id"], lb.Data[1].ID)
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "Ada", "ada@x.io")
	env.createUser(t, "Bob", "bob@x.io")
	id := u["id"].(string)

	r := env.do(t, fiber.MethodPut, "/api/users/"+id, nil)
	require.Equal(t, fiber.StatusOK, r.status)
	var got domain.User
	r.decode(t, &got)
	assert.Equal(t, "Ada", got.Name)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	r = env.do(t, fiber.MethodPut, "/api/users/"+id, map[string]any{"phone": ""})
	require.Equal(t, fiber.StatusOK, r.status)
	r.decode(t, &got)
	assert.Equal(t, "", got.Phone)

	r = env.do(t, fiber.MethodPut, "/api/users/"+id, `{"name": null}`)
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = env.do(t, fiber.MethodPut, "/api/users/"+id, map[string]any{"email": "bob@x.io"})
	assert.Equal(t, fiber.StatusConflict, r.status)

	r = env.do(t, fiber.MethodPut, "/api/users/"+id, map[string]any{"role": "superuser"})
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = env.do(t, fiber.MethodPut, "/api/users/missing", map[string]any{"name": "X"})
	assert.Equal(t, fiber.StatusNotFound, r.status)

	r = env.do(t, fiber.MethodPut, "/api/users/"+id, `not json`)
	assert.Equal(t, fiber.StatusBadRequest, r.status)
}

func TestDeleteUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	r := env.do(t, fiber.MethodDelete, "/api/users/does-not-exist", nil)
	assert.Equal(t, fiber.StatusNotFound, r.status)
	assert.Empty(t, env.audit.Entries())
}

func TestDeleteAuditKeepsRequestValues(t *testing.T) {
	env := newTestEnv(t)
	ada := env.createUser(t, "Ada", "ada@x.io")
	bob := env.createUser(t, "Bob", "bob@x.io")

	r := env.do(t, fiber.MethodDelete, "/api/users/"+ada["id"].(string), nil, fiber.HeaderUserAgent, "agent-one")
	require.Equal(t, fiber.StatusOK, r.status)
	r = env.do(t, fiber.MethodDelete, "/api/users/"+bob["id"].(string), nil, fiber.HeaderUserAgent, "agent-two/with-a-longer-value")
	require.Equal(t, fiber.StatusOK, r.status)
	env.do(t, fiber.MethodGet, "/api/users?search=zzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", nil, fiber.HeaderUserAgent, "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx")

	entries := env.audit.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "agent-one", entries[0].UserAgent)
	assert.Equal(t, "agent-two/with-a-longer-value", entries[1].UserAgent)
	assert.Equal(t, "ada@x.io", entries[0].Metadata["email"])
	assert.NotEmpty(t, entries[1].IP)
}

func TestNukeRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Ada", "ada@x.io")

	r := env.do(t, fiber.MethodDelete, "/api/users/nuke", nil)
	assert.Equal(t, fiber.StatusUnauthorized, r.status)
	assert.Equal(t, "unauthorized", r.errorBody(t).Code)

	userTok, _, err := auth.NewIssuer(testJWTSecret, time.Hour).Issue("bob", domain.RoleUser)
	require.NoError(t, err)
	r = env.do(t, fiber.MethodDelete, "/api/users/nuke", nil, "Authorization", "Bearer "+userTok)
	assert.Equal(t, fiber.StatusForbidden, r.status)

	var lb listBody
	env.do(t, fiber.MethodGet, "/api/users", nil).decode(t, &lb)
	assert.EqualValues(t, 1, lb.Total)
}

func TestNukeWithAdminKey(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Ada", "ada@x.io")
	env.createUser(t, "Bob", "bob@x.io")

	before := time.Now().UTC().Add(-time.Second)
	r := env.do(t, fiber.MethodDelete, "/api/users/nuke", nil, auth.HeaderAdminKey, testAdminKey)
	require.Equal(t, fiber.StatusOK, r.status, string(r.body))

	var nr users.NukeResponse
	r.decode(t, &nr)
	assert.Equal(t, "All users cleared successfully", nr.Message)
	assert.EqualValues(t, 2, nr.ClearedCount)
	assert.True(t, nr.Timestamp.After(before))

	var lb listBody
	env.do(t, fiber.MethodGet, "/api/users", nil).decode(t, &lb)
	assert.Zero(t, lb.Total)

	entries := env.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUsersNuke, entries[0].Action)
	assert.Equal(t, auth.KeyActor, entries[0].Actor)
	assert.EqualValues(t, 2, entries[0].Metadata["cleared_count"])

	types := env.events.Types()
	assert.Equal(t, events.UsersNuked, types[len(types)-1])
}

func TestNukeIsNotCapturedByID(t *testing.T) {
	env := newTestEnv(t)
	r := env.do(t, fiber.MethodDelete, "/api/users/nuke", nil, auth.HeaderAdminKey, testAdminKey)
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Contains(t, string(r.body), "clearedCount")
}

func TestNukeUnconfigured(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.JWTSecret = ""
		c.AdminAPIKey = ""
	})
	r := env.do(t, fiber.MethodDelete, "/api/users/nuke", nil, auth.HeaderAdminKey, "guess")
	assert.Equal(t, fiber.StatusForbidden, r.status)
	assert.Equal(t, "admin access not configured", r.errorBody(t).Error)
}

func TestAdminTokenFlow(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Ada", "ada@x.io")

	r := env.do(t, fiber.MethodPost, "/api/admin/token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, r.status)

	r = env.do(t, fiber.MethodPost, "/api/admin/token", map[string]any{"subject": "ops"}, auth.HeaderAdminKey, testAdminKey)
	require.Equal(t, fiber.StatusOK, r.status, string(r.body))
	var tok struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	r.decode(t, &tok)
	require.NotEmpty(t, tok.Token)
	assert.True(t, tok.ExpiresAt.After(time.Now()))

	r = env.do(t, fiber.MethodGet, "/api/admin/stats", nil, "Authorization", "Bearer "+tok.Token)
	require.Equal(t, fiber.StatusOK, r.status)
	assert.JSONEq(t, `{"total":1,"active":1,"admins":0}`, string(r.body))

	r = env.do(t, fiber.MethodDelete, "/api/users/nuke", nil, "Authorization", "Bearer "+tok.Token)
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, "ops", env.audit.Entries()[0].Actor)
}

func TestAdminTokenRouteNeedsJWTSecret(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.JWTSecret = "" })
	r := env.do(t, fiber.MethodPost, "/api/admin/token", nil, auth.HeaderAdminKey, testAdminKey)
	assert.Equal(t, fiber.StatusNotFound, r.status)

	r = env.do(t, fiber.MethodGet, "/api/admin/stats", nil, auth.HeaderAdminKey, testAdminKey)
	assert.Equal(t, fiber.StatusOK, r.status)
}

func TestExportPDF(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Ada", "ada@x.io")

	r := env.do(t, fiber.MethodGet, "/api/users/export.pdf", nil)
	assert.Equal(t, fiber.StatusUnauthorized, r.status)

	r = env.do(t, fiber.MethodGet, "/api/users/export.pdf?search=ada", nil, auth.HeaderAdminKey, testAdminKey)
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, "application/pdf", r.header.Get(fiber.HeaderContentType))
	assert.Contains(t, r.header.Get(fiber.HeaderContentDisposition), "attachment;")
	assert.True(t, strings.HasPrefix(string(r.body), "%PDF"))
}

func TestWriteRateLimit(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.WriteRateLimit = 2 })

	for i := 0; i < 2; i++ {
		env.createUser(t, "U", fmt.Sprintf("u%d@x.io", i))
	}
	r := env.do(t, fiber.MethodPost, "/api/users", map[string]any{"name": "U", "email": "u9@x.io", "phone": "1"})
	assert.Equal(t, fiber.StatusTooManyRequests, r.status)
	assert.Equal(t, "too_many_requests", r.errorBody(t).Code)

	assert.Equal(t, fiber.StatusOK, env.do(t, fiber.MethodGet, "/api/users", nil).status)
}

type brokenStore struct{ *users.MemoryStore }

func (brokenStore) List(context.Context, users.Filter, users.Page) ([]domain.User, int64, error) {
	return nil, 0, errors.New("pq: password authentication failed for user \"app\"")
}

func (brokenStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestStoreFailureDoesNotLeak(t *testing.T) {
	env := newTestEnvWithStore(t, brokenStore{users.NewMemoryStore()})

	r := env.do(t, fiber.MethodGet, "/api/users", nil)
	assert.Equal(t, fiber.StatusInternalServerError, r.status)
	assert.Equal(t, ErrorBody{Error: "internal server error", Code: "internal"}, r.errorBody(t))
	assert.NotContains(t, string(r.body), "password")

	r = env.do(t, fiber.MethodGet, "/api/ready", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, r.status)
	assert.JSONEq(t, `{"status":"unavailable"}`, string(r.body))
}
