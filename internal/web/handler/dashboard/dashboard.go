// Package dashboard serves the attendance board of one day: every active
// employee with their mark, the totals per status and the unmarked count.
package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/attendance"
	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/employee"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

const (
	// Path is the path of the dashboard.
	Path = "/dashboard"

	// DefaultPageSize is the default number of rows per page.
	DefaultPageSize = 25

	// StatusUnmarked filters the employees without a mark on the day.
	StatusUnmarked = "unmarked"

	desc = "desc"
)

// Row is one employee on the board. Status is empty when unmarked.
type Row struct {
	EmployeeID string                  `json:"employeeId"`
	Name       string                  `json:"name"`
	Position   string                  `json:"position"`
	Status     models.AttendanceStatus `json:"status,omitempty"`
}

// QueryParams holds the query and pagination parameters.
type QueryParams struct {
	Date         string
	Page         int
	PageSize     int
	SearchQuery  string
	FilterStatus string
	SortField    string
	SortOrder    string
}

// Data is the dashboard answer.
type Data struct {
	Date            string                          `json:"date"`
	ActiveEmployees int                             `json:"activeEmployees"`
	Counts          map[models.AttendanceStatus]int `json:"counts"`
	Unmarked        int                             `json:"unmarked"`
	Rows            []Row                           `json:"rows"`
	CurrentPage     int                             `json:"currentPage"`
	PageSize        int                             `json:"pageSize"`
	TotalItems      int                             `json:"totalItems"`
	TotalPages      int                             `json:"totalPages"`
	HasPrevPage     bool                            `json:"hasPrevPage"`
	HasNextPage     bool                            `json:"hasNextPage"`
	SearchQuery     string                          `json:"searchQuery,omitempty"`
	FilterStatus    string                          `json:"filterStatus,omitempty"`
	SortField       string                          `json:"sortField"`
	SortOrder       string                          `json:"sortOrder"`
}

// Service is the dashboard handler service.
type Service struct {
	employees  *employee.Service
	attendance *attendance.Service
	now        func() time.Time
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init registers the route on app.
func (s *Service) Init(app fiber.Router, employees *employee.Service, marks *attendance.Service) error {
	if app == nil || employees == nil || marks == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.employees = employees
	s.attendance = marks

	if s.now == nil {
		s.now = time.Now
	}

	app.Get(Path, s.Get)

	return nil
}

func (s *Service) params(c *fiber.Ctx) (*QueryParams, error) {
	params := &QueryParams{
		Date:         c.Query("date", s.now().Format(validation.DateLayout)),
		Page:         c.QueryInt("page", 1),
		PageSize:     c.QueryInt("pageSize", DefaultPageSize),
		SearchQuery:  c.Query("search", ""),
		FilterStatus: c.Query("status", ""),
		SortField:    c.Query("sort", "name"),
		SortOrder:    c.Query("order", "asc"),
	}

	if _, err := validation.ParseDate(params.Date); err != nil {
		return nil, err
	}

	if params.Page < 1 {
		params.Page = 1
	}

	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = DefaultPageSize
	}

	switch models.AttendanceStatus(params.FilterStatus) {
	case "", StatusUnmarked, models.AttendancePresent, models.AttendanceAbsent, models.AttendanceHalf, models.AttendanceOff:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", validation.ErrInvalidInput, params.FilterStatus)
	}

	return params, nil
}

// Get returns the board of ?date= (today by default). It needs both
// employees.view and attendance.view.
func (s *Service) Get(c *fiber.Ctx) error {
	params, err := s.params(c)
	if err != nil {
		return handler.Error(c, err)
	}

	ctx := c.UserContext()
	userID := auth.UserID(c)

	employees, err := s.employees.List(ctx, userID, true)
	if err != nil {
		return handler.Error(c, err)
	}

	marks, err := s.attendance.List(ctx, userID, attendance.Filters{From: params.Date, To: params.Date})
	if err != nil {
		return handler.Error(c, err)
	}

	rows, counts, unmarked := board(employees, marks)

	rows = filterRows(rows, params.SearchQuery, params.FilterStatus)
	sortRows(rows, params.SortField, params.SortOrder)
	total := len(rows)
	page, totalPages, actualPage := paginateRows(rows, params.Page, params.PageSize)
	params.Page = actualPage

	data := buildData(page, total, totalPages, params)
	data.ActiveEmployees = len(employees)
	data.Counts = counts
	data.Unmarked = unmarked

	return c.JSON(data)
}

// board joins the active employees with the marks of the day. Marks of
// inactive employees are counted but get no row.
func board(employees []models.Employee, marks []models.Attendance) ([]Row, map[models.AttendanceStatus]int, int) {
	byEmployee := make(map[string]models.AttendanceStatus, len(marks))
	counts := map[models.AttendanceStatus]int{
		models.AttendancePresent: 0,
		models.AttendanceAbsent:  0,
		models.AttendanceHalf:    0,
		models.AttendanceOff:     0,
	}

	for _, m := range marks {
		byEmployee[m.EmployeeID] = m.Status
		counts[m.Status]++
	}

	rows := make([]Row, 0, len(employees))
	unmarked := 0

	for _, e := range employees {
		status := byEmployee[e.ID]
		if status == "" {
			unmarked++
		}

		rows = append(rows, Row{EmployeeID: e.ID, Name: e.Name, Position: e.Position, Status: status})
	}

	return rows, counts, unmarked
}

// filterRows applies search and status filters to rows.
func filterRows(rows []Row, searchQuery, filterStatus string) []Row {
	if searchQuery != "" {
		filtered := make([]Row, 0)

		for _, r := range rows {
			if strings.Contains(strings.ToLower(r.Name), strings.ToLower(searchQuery)) {
				filtered = append(filtered, r)
			}
		}

		rows = filtered
	}

	if filterStatus != "" {
		want := models.AttendanceStatus(filterStatus)
		if filterStatus == StatusUnmarked {
			want = ""
		}

		filtered := make([]Row, 0)

		for _, r := range rows {
			if r.Status == want {
				filtered = append(filtered, r)
			}
		}

		rows = filtered
	}

	return rows
}

// sortRows sorts rows by the specified field and order.
func sortRows(rows []Row, sortField, sortOrder string) {
	key := func(r Row) string { return strings.ToLower(r.Name) }

	switch sortField {
	case "status":
		key = func(r Row) string { return string(r.Status) }
	case "position":
		key = func(r Row) string { return strings.ToLower(r.Position) }
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if sortOrder == desc {
			return key(rows[i]) > key(rows[j])
		}

		return key(rows[i]) < key(rows[j])
	})
}

// paginateRows calculates pagination and returns the rows of one page.
func paginateRows(rows []Row, page, pageSize int) (paginated []Row, totalPages, actualPage int) {
	totalItems := len(rows)

	totalPages = (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	var (
		startIdx = (page - 1) * pageSize
		endIdx   = startIdx + pageSize
	)

	if endIdx > totalItems {
		endIdx = totalItems
	}

	if startIdx < totalItems {
		paginated = rows[startIdx:endIdx]
	} else {
		paginated = []Row{}
	}

	return paginated, totalPages, page
}

func buildData(rows []Row, totalItems, totalPages int, params *QueryParams) Data {
	return Data{
		Date:         params.Date,
		Rows:         rows,
		CurrentPage:  params.Page,
		PageSize:     params.PageSize,
		TotalItems:   totalItems,
		TotalPages:   totalPages,
		HasPrevPage:  params.Page > 1,
		HasNextPage:  params.Page < totalPages,
		SearchQuery:  params.SearchQuery,
		FilterStatus: params.FilterStatus,
		SortField:    params.SortField,
		SortOrder:    params.SortOrder,
	}
}
