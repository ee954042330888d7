// Package configuration serves the running configuration, flattened to
// dotted keys, with search, type filter and pagination.
package configuration

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/config"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

const (
	// Path is the route of the configuration listing.
	Path = "/configuration"

	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 25

	// Masked replaces the value of secret keys.
	Masked = "********"
)

// Service is the configuration handler service.
type Service struct {
	settings []ConfigSetting
}

// Data is one page of settings.
type Data struct {
	Settings    []ConfigSetting `json:"settings"`
	CurrentPage int             `json:"currentPage"`
	PageSize    int             `json:"pageSize"`
	TotalItems  int             `json:"totalItems"`
	TotalPages  int             `json:"totalPages"`
	HasPrevPage bool            `json:"hasPrevPage"`
	HasNextPage bool            `json:"hasNextPage"`
	SearchQuery string          `json:"searchQuery,omitempty"`
	FilterType  string          `json:"filterType,omitempty"`
}

// ConfigSetting is one flattened configuration key.
type ConfigSetting struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

var (
	// Handler is the configuration handler.
	Handler = Service{}
)

// Init flattens cfg once and registers the route, gated by settings.view.
func (s *Service) Init(app fiber.Router, cfg *config.Config, guard permission.Authorizer) error {
	if app == nil || cfg == nil || guard == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	settings, err := Flatten(cfg)
	if err != nil {
		return err
	}

	s.settings = settings

	app.Get(Path, auth.RequirePermission(guard, permission.PermSettingsView), s.Get)

	return nil
}

// Get returns one page of the configuration.
func (s *Service) Get(c *fiber.Ctx) error {
	page, pageSize := getPaginationParams(c)
	searchQuery, filterType := getSearchAndFilter(c)

	settings := make([]ConfigSetting, 0, len(s.settings))
	for _, cs := range s.settings {
		if includeSetting(cs, searchQuery, filterType) {
			settings = append(settings, cs)
		}
	}

	totalItems := len(settings)
	totalPages, page := computeTotalPagesAndAdjust(totalItems, pageSize, page)
	startIdx, endIdx := pageSliceBounds(totalItems, pageSize, page)

	return c.JSON(buildData(settings[startIdx:endIdx], page, pageSize, totalItems, totalPages, searchQuery, filterType))
}

// Flatten turns cfg into sorted dotted keys. Keys ending in "password" are masked.
func Flatten(cfg *config.Config) ([]ConfigSetting, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}

	var out []ConfigSetting
	flatten("", tree, &out)

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func flatten(prefix string, node map[string]any, out *[]ConfigSetting) {
	for k, v := range node {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}

		if child, ok := v.(map[string]any); ok {
			flatten(name, child, out)
			continue
		}

		cs := ConfigSetting{Name: name, Type: kind(v), Value: fmt.Sprint(v)}
		if v == nil {
			cs.Value = ""
		}

		if strings.HasSuffix(strings.ToLower(k), "password") && cs.Value != "" {
			cs.Value = Masked
		}

		*out = append(*out, cs)
	}
}

func kind(v any) string {
	switch v.(type) {
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	default:
		return "null"
	}
}

// getPaginationParams parses and normalizes page and pageSize query parameters.
func getPaginationParams(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	return page, pageSize
}

// getSearchAndFilter extracts search and type filter from the request.
func getSearchAndFilter(c *fiber.Ctx) (string, string) {
	return c.Query("search", ""), c.Query("type", "")
}

// includeSetting returns true if the setting matches search and filter criteria.
func includeSetting(cs ConfigSetting, searchQuery, filterType string) bool {
	if searchQuery != "" {
		if !contains(cs.Name, searchQuery) && !contains(cs.Value, searchQuery) {
			return false
		}
	}

	if filterType != "" && cs.Type != filterType {
		return false
	}

	return true
}

// computeTotalPagesAndAdjust computes total pages and adjusts the page into range.
func computeTotalPagesAndAdjust(totalItems, pageSize, page int) (int, int) {
	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	return totalPages, page
}

// pageSliceBounds calculates start and end indices for slicing a page.
func pageSliceBounds(totalItems, pageSize, page int) (int, int) {
	startIdx := (page - 1) * pageSize

	endIdx := startIdx + pageSize
	if endIdx > totalItems {
		endIdx = totalItems
	}

	if startIdx < 0 {
		startIdx = 0
	}

	if startIdx > endIdx {
		startIdx = endIdx
	}

	return startIdx, endIdx
}

func buildData(
	settings []ConfigSetting,
	page,
	pageSize,
	totalItems,
	totalPages int,
	searchQuery,
	filterType string) Data {
	return Data{
		Settings:    settings,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
		SearchQuery: searchQuery,
		FilterType:  filterType,
	}
}

// contains reports whether s contains a non empty substr, ignoring case.
func contains(s, substr string) bool {
	return substr != "" && strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
