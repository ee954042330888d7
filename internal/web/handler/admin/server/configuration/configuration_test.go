package configuration

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/config"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

type allowGuard bool

func (g allowGuard) Require(_ context.Context, _, p string) error {
	if !g {
		return &permission.DeniedError{Permission: p}
	}

	return nil
}

func (g allowGuard) Allowed(_ context.Context, _, _ string) bool { return bool(g) }

func testConfig() *config.Config {
	return &config.Config{
		Title: "Ponto Admin",
		DB:    config.DB{GormEngine: config.EngineSQLite, Name: "ponto.db", Password: "s3cret"},
		Webserver: config.Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		substr string
		want   bool
	}{
		{name: "exact match", s: "test", substr: "test", want: true},
		{name: "contains substring", s: "testing", substr: "test", want: true},
		{name: "case insensitive match", s: "Testing", substr: "test", want: true},
		{name: "not contained", s: "hello", substr: "world", want: false},
		{name: "empty substring", s: "test", substr: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contains(tt.s, tt.substr))
		})
	}
}

func TestFlatten(t *testing.T) {
	settings, err := Flatten(testConfig())
	require.NoError(t, err)

	byName := make(map[string]ConfigSetting, len(settings))
	for _, s := range settings {
		byName[s.Name] = s
	}

	assert.Equal(t, ConfigSetting{Name: "DB.Password", Type: "string", Value: Masked}, byName["DB.Password"])
	assert.Equal(t, ConfigSetting{Name: "Webserver.Port", Type: "number", Value: "8080"}, byName["Webserver.Port"])
	assert.Equal(t, "bool", byName["DevMode"].Type)

	for i := 1; i < len(settings); i++ {
		assert.Less(t, settings[i-1].Name, settings[i].Name)
	}
}

func TestPageSliceBounds(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		page      int
		wantStart int
		wantEnd   int
	}{
		{name: "first page", total: 30, pageSize: 25, page: 1, wantStart: 0, wantEnd: 25},
		{name: "last partial page", total: 30, pageSize: 25, page: 2, wantStart: 25, wantEnd: 30},
		{name: "empty", total: 0, pageSize: 25, page: 1, wantStart: 0, wantEnd: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := pageSliceBounds(tt.total, tt.pageSize, tt.page)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name       string
		allow      bool
		query      string
		wantStatus int
		wantNames  []string
	}{
		{
			name:       "search by key",
			allow:      true,
			query:      "?search=webserver.port",
			wantStatus: fiber.StatusOK,
			wantNames:  []string{"Webserver.Port"},
		},
		{
			name:       "denied without settings.view",
			allow:      false,
			wantStatus: fiber.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				c.Locals(auth.LocalsUserID, "someone")
				return c.Next()
			})

			s := &Service{}
			require.NoError(t, s.Init(app, testConfig(), allowGuard(tt.allow)))

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, Path+tt.query, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus != fiber.StatusOK {
				return
			}

			var data Data
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))

			names := make([]string, 0, len(data.Settings))
			for _, s := range data.Settings {
				names = append(names, s.Name)
			}

			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, 1, data.TotalPages)
		})
	}
}
