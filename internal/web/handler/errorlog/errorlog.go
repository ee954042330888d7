// Package errorlog serves error capture from the browser and the error list.
package errorlog

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/errortrack"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

// Path is the base path of the error routes.
const Path = "/errors"

// CaptureResponse tells whether a captured event was written or only counted.
type CaptureResponse struct {
	Recorded   bool `json:"recorded"`
	Suppressed bool `json:"suppressed"`
}

// Service is the error handler service.
type Service struct {
	tracker *errortrack.Tracker
}

// Handler is the error handler.
var Handler = Service{}

// Init registers the routes on app.
func (s *Service) Init(app fiber.Router, tracker *errortrack.Tracker) error {
	if app == nil || tracker == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.tracker = tracker

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Post(handler.RouterRootPath, s.Capture)
		router.Get("/export.csv", s.Export)
		router.Put("/:id/resolve", s.Resolve)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// filters reads ?resolved=&severity=&limit=.
func filters(c *fiber.Ctx) (errortrack.ListFilters, error) {
	var f errortrack.ListFilters

	if raw := c.Query("resolved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("%w: resolved: %w", validation.ErrInvalidInput, err)
		}

		f.Resolved = &v
	}

	if raw := c.Query("severity"); raw != "" {
		f.Severity = errortrack.Severity(raw)
		if !errortrack.ValidSeverity(f.Severity) {
			return f, fmt.Errorf("%w: unknown severity %q", validation.ErrInvalidInput, raw)
		}
	}

	f.Limit = c.QueryInt("limit", 0)

	return f, nil
}

// Capture records an error seen by the client. Any logged in user may report.
func (s *Service) Capture(c *fiber.Ctx) error {
	var e errortrack.Event
	if err := handler.Bind(c, &e); err != nil {
		return handler.Error(c, err)
	}

	e.UserID = auth.UserID(c)

	out := s.tracker.Capture(c.UserContext(), e)
	if errors.Is(out.Err, errortrack.ErrInvalidEvent) || errors.Is(out.Err, validation.ErrInvalidInput) {
		return handler.Error(c, out.Err)
	}

	out.Log()

	return c.Status(fiber.StatusAccepted).JSON(CaptureResponse{
		Recorded:   !out.Skipped && !out.Failed(),
		Suppressed: out.Skipped,
	})
}

// List returns the matching error rows.
func (s *Service) List(c *fiber.Ctx) error {
	f, err := filters(c)
	if err != nil {
		return handler.Error(c, err)
	}

	rows, err := s.tracker.List(c.UserContext(), auth.UserID(c), f)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}

// Resolve marks one error row as resolved.
func (s *Service) Resolve(c *fiber.Ctx) error {
	if err := s.tracker.Resolve(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete removes one error row.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.tracker.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Export downloads the matching error rows as CSV.
func (s *Service) Export(c *fiber.Ctx) error {
	f, err := filters(c)
	if err != nil {
		return handler.Error(c, err)
	}

	var buf bytes.Buffer
	if err := s.tracker.Export(c.UserContext(), auth.UserID(c), f, &buf); err != nil {
		return handler.Error(c, err)
	}

	handler.Attachment(c, "errors.csv", handler.MIMECSV)

	return c.Send(buf.Bytes())
}
