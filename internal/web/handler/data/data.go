// Package data serves statistics, cleanup and backups of the operational data.
package data

import (
	"bytes"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/datamanagement"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

// Path is the base path of the data routes.
const Path = "/data"

// Service is the data handler service.
type Service struct {
	svc *datamanagement.Service
}

// Handler is the data handler.
var Handler = Service{}

// Init registers the routes on app.
func (s *Service) Init(app fiber.Router, svc *datamanagement.Service) error {
	if app == nil || svc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.svc = svc

	app.Route(Path, func(router fiber.Router) {
		router.Get("/stats", s.Stats)
		router.Post("/cleanup", s.Cleanup)
		router.Get("/backup", s.Export)
		router.Post("/backup", s.Import)
	})

	return nil
}

// Stats returns the row count of each table.
func (s *Service) Stats(c *fiber.Ctx) error {
	st, err := s.svc.Stats(c.UserContext(), auth.UserID(c))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(st)
}

// Cleanup removes the rows older than the retention policy allows.
func (s *Service) Cleanup(c *fiber.Ctx) error {
	res, err := s.svc.Cleanup(c.UserContext(), auth.UserID(c))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(res)
}

// Export downloads a JSON backup.
func (s *Service) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.svc.Export(c.UserContext(), auth.UserID(c), &buf); err != nil {
		return handler.Error(c, err)
	}

	handler.Attachment(c, "backup_"+time.Now().Format("20060102_150405")+".json", fiber.MIMEApplicationJSONCharsetUTF8)

	return c.Send(buf.Bytes())
}

// Import restores a JSON backup.
func (s *Service) Import(c *fiber.Ctx) error {
	var b datamanagement.Backup
	if err := handler.Bind(c, &b); err != nil {
		return handler.Error(c, err)
	}

	res, err := s.svc.Import(c.UserContext(), auth.UserID(c), b)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(res)
}
