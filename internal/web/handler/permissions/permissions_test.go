package permissions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/db/dbtest"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/users"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

const (
	admin  = permission.SuperUserID
	reader = "reader"
)

const headerUser = "X-Test-User"

type fixture struct {
	app   *fiber.App
	store *permission.Store
	alice string
}

func setup(t *testing.T) fixture {
	t.Helper()

	ctx := context.Background()
	db := dbtest.Open(t)
	store := permission.NewStore(db)

	for _, id := range []string{admin, reader} {
		require.NoError(t, db.Create(&models.User{ID: id, Active: true, Username: id, Email: id + "@example.com"}).Error)
	}

	require.NoError(t, store.Save(ctx, reader, permission.ReadOnly(), admin))

	guard := permission.NewGuard(permission.NewAccountResolver(db, store))
	svc := users.New(db, guard, store, audit.New(ctx, db, true))

	alice, err := svc.Create(ctx, admin, users.CreateInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get(headerUser); id != "" {
			c.Locals(auth.LocalsUserID, id)
		}

		return c.Next()
	})

	api := app.Group(handler.APIPath, auth.RequireAuthenticated())

	s := &Service{}
	require.NoError(t, s.Init(api, svc))

	return fixture{app: app, store: store, alice: alice.ID}
}

func do(t *testing.T, app *fiber.App, method, path, user, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	if user != "" {
		req.Header.Set(headerUser, user)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestInitRejectsNil(t *testing.T) {
	s := &Service{}
	require.Error(t, s.Init(fiber.New(), nil))
}

func TestSet(t *testing.T) {
	const grantMark = `{"attendance":{"view":true,"mark":true},"employees":{"view":true}}`

	tests := []struct {
		name           string
		user           string
		target         string
		body           string
		wantStatus     int
		wantPermission string
		wantMark       bool
	}{
		{name: "replaced", user: admin, body: grantMark, wantStatus: fiber.StatusNoContent, wantMark: true},
		{name: "anonymous", body: grantMark, wantStatus: fiber.StatusUnauthorized},
		{
			name:           "read only user is denied",
			user:           reader,
			body:           grantMark,
			wantStatus:     fiber.StatusForbidden,
			wantPermission: permission.PermUsersManagePermissions,
		},
		{name: "malformed body", user: admin, body: `{"attendance":`, wantStatus: fiber.StatusBadRequest},
		{name: "not an object", user: admin, body: `["attendance.mark"]`, wantStatus: fiber.StatusBadRequest},
		{name: "empty body", user: admin, body: "", wantStatus: fiber.StatusBadRequest},
		{name: "super user", user: admin, target: admin, body: grantMark, wantStatus: fiber.StatusBadRequest},
		{name: "unknown user", user: admin, target: uuid.NewString(), body: grantMark, wantStatus: fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			target := tt.target
			if target == "" {
				target = f.alice
			}

			resp := do(t, f.app, fiber.MethodPut, handler.APIPath+Path+"/"+target, tt.user, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantPermission != "" {
				var body handler.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.wantPermission, body.Permission)
				assert.NotEmpty(t, body.Error)
			}

			stored := f.store.Get(context.Background(), f.alice)
			assert.Equal(t, tt.wantMark, stored[permission.ModuleAttendance]["mark"])

			if !tt.wantMark {
				assert.Equal(t, permission.ReadOnly(), stored, "failed requests leave the set alone")
			}
		})
	}
}

func TestSetThenReadBack(t *testing.T) {
	f := setup(t)
	path := handler.APIPath + Path + "/" + f.alice

	resp := do(t, f.app, fiber.MethodPut, path, admin, `{"attendance":{"mark":true},"zone":{"view":true}}`)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = do(t, f.app, fiber.MethodGet, path, admin, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var set permission.Set
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&set))
	assert.True(t, set[permission.ModuleAttendance]["mark"])
	assert.NotContains(t, set, permission.Module("zone"))
	assert.Equal(t, permission.Supervisor()[permission.ModuleEmployees], set[permission.ModuleEmployees],
		"flags missing from the body fall back to the storage default")

	resp = do(t, f.app, fiber.MethodGet, path+"/history?limit=1", admin, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var history []models.PermissionChangeLog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Summary, "attendance.mark ativada")
}

func TestPresetAndReset(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	path := handler.APIPath + Path + "/" + f.alice

	resp := do(t, f.app, fiber.MethodPut, path+"/preset", admin, `{"preset":"full"}`)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, permission.Full(), f.store.Get(ctx, f.alice))

	resp = do(t, f.app, fiber.MethodPut, path+"/preset", admin, `{"preset":"owner"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = do(t, f.app, fiber.MethodDelete, path, admin, "")
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Nil(t, f.store.Get(ctx, f.alice))
	assert.Equal(t, permission.Supervisor(), f.store.Effective(ctx, f.alice))

	resp = do(t, f.app, fiber.MethodDelete, path, reader, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSchemaAndPresets(t *testing.T) {
	f := setup(t)

	resp := do(t, f.app, fiber.MethodGet, handler.APIPath+Path+"/schema", reader, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var schema []SchemaModule
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&schema))
	require.Len(t, schema, len(permission.Modules()))
	assert.Equal(t, permission.Modules()[0], schema[0].Module)

	resp = do(t, f.app, fiber.MethodGet, handler.APIPath+Path+"/presets", reader, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var presets map[string]permission.Set
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&presets))
	assert.Equal(t, permission.ReadOnly(), presets[permission.PresetReadOnly])
	assert.Len(t, presets, len(permission.PresetNames()))
}

func TestList(t *testing.T) {
	f := setup(t)

	resp := do(t, f.app, fiber.MethodGet, handler.APIPath+Path, admin, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var rows []permission.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	assert.Len(t, rows, 2)

	resp = do(t, f.app, fiber.MethodGet, handler.APIPath+Path, reader, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
