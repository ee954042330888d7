// Package pix serves the generation and export of PIX payment batches.
package pix

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/financial"
	"github.com/PontoAdmin/ponto-admin/internal/pixexport"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

// Path is the base path of the PIX routes.
const Path = "/pix"

// HeaderExportedRows carries the number of rows in an export.
const HeaderExportedRows = "X-Exported-Rows"

// Service is the PIX handler service.
type Service struct {
	svc *pixexport.Service
}

// Handler is the PIX handler.
var Handler = Service{}

// Init registers the routes on app.
func (s *Service) Init(app fiber.Router, svc *pixexport.Service) error {
	if app == nil || svc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.svc = svc

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Post("/generate", s.Generate)
		router.Get("/export.csv", s.Export)
	})

	return nil
}

// List returns the payments of a period with the PIX data of each employee.
func (s *Service) List(c *fiber.Ctx) error {
	var p financial.Period
	if err := handler.Query(c, &p); err != nil {
		return handler.Error(c, err)
	}

	rows, err := s.svc.List(c.UserContext(), auth.UserID(c), p)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}

// Generate computes the pending payments of the period in the body.
func (s *Service) Generate(c *fiber.Ctx) error {
	var p financial.Period
	if err := handler.Bind(c, &p); err != nil {
		return handler.Error(c, err)
	}

	res, err := s.svc.Generate(c.UserContext(), auth.UserID(c), p)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(res)
}

// Export downloads the PIX batch file and locks its payments.
func (s *Service) Export(c *fiber.Ctx) error {
	var p financial.Period
	if err := handler.Query(c, &p); err != nil {
		return handler.Error(c, err)
	}

	var buf bytes.Buffer

	n, err := s.svc.Export(c.UserContext(), auth.UserID(c), p, &buf)
	if err != nil {
		return handler.Error(c, err)
	}

	handler.Attachment(c, "pix_"+p.Start+"_"+p.End+".csv", handler.MIMECSV)
	c.Set(HeaderExportedRows, strconv.Itoa(n))

	return c.Send(buf.Bytes())
}
