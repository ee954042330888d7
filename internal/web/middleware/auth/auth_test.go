package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/web/session"
)

type stubAccounts map[string]*models.User

func (s stubAccounts) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	if userID == "broken" {
		return nil, errors.New("database is down")
	}

	user, ok := s[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	return user, nil
}

func TestMiddleware(t *testing.T) {
	session.Init(nil)

	accounts := stubAccounts{
		"u1":  {ID: "u1", Active: true},
		"off": {ID: "off", Active: false},
	}

	for id, user := range map[string]string{"valid": "u1", "deleted": "gone", "disabled": "off", "failing": "broken"} {
		data := &session.Data{UserID: user, Username: user}
		require.NoError(t, data.Write(id, time.Minute))
	}

	app := fiber.New()
	app.Use(New(accounts))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user": auth.UserID(c),
			"ua":   audit.UserAgentFrom(c.UserContext()),
		})
	})

	testCases := []struct {
		name        string
		cookie      string
		wantUser    string
		wantDropped bool
	}{
		{name: "no cookie"},
		{name: "unknown session", cookie: "missing"},
		{name: "valid session", cookie: "valid", wantUser: "u1"},
		{name: "deleted account", cookie: "deleted", wantDropped: true},
		{name: "disabled account", cookie: "disabled", wantDropped: true},
		{name: "lookup failure keeps session", cookie: "failing"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(fiber.HeaderUserAgent, "test-agent")

			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tc.cookie})
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.wantUser, body["user"])
			assert.Equal(t, "test-agent", body["ua"])

			if tc.wantDropped {
				assert.Error(t, new(session.Data).Read(tc.cookie), "session is deleted")
			}
		})
	}

	assert.NoError(t, new(session.Data).Read("failing"))
}

func TestRemovedAccountIsUnauthorized(t *testing.T) {
	session.Init(nil)

	accounts := stubAccounts{"u1": {ID: "u1", Active: true}}

	data := &session.Data{UserID: "u1", Username: "alice"}
	require.NoError(t, data.Write("live", time.Minute))

	app := fiber.New()
	app.Use(New(accounts))
	app.Get("/api/me", auth.RequireAuthenticated(), func(c *fiber.Ctx) error {
		return c.SendString(auth.UserID(c))
	})

	get := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "live"})

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		_ = resp.Body.Close()

		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, get())

	delete(accounts, "u1")

	assert.Equal(t, http.StatusUnauthorized, get())
}
