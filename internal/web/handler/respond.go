// Package handler holds what the JSON handlers share: paths, request binding
// and the mapping of domain errors to HTTP answers.
package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/PontoAdmin/ponto-admin/internal/attendance"
	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/datamanagement"
	"github.com/PontoAdmin/ponto-admin/internal/employee"
	"github.com/PontoAdmin/ponto-admin/internal/errortrack"
	"github.com/PontoAdmin/ponto-admin/internal/financial"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/users"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
)

var (
	notFound = []error{
		employee.ErrNotFound,
		attendance.ErrNotFound,
		financial.ErrNotFound,
		errortrack.ErrNotFound,
		users.ErrNotFound,
		auth.ErrUserNotFound,
	}

	conflict = []error{
		employee.ErrDuplicateCPF,
		users.ErrUsernameExists,
	}

	badRequest = []error{
		validation.ErrInvalidInput,
		attendance.ErrUnknownEmployee,
		financial.ErrUnknownEmployee,
		errortrack.ErrInvalidEvent,
		permission.ErrUnknownPreset,
		permission.ErrSuperUserImmutable,
		permission.ErrNilSet,
		users.ErrSelfDelete,
		datamanagement.ErrBackupVersion,
		auth.ErrInvalidOldPassword,
	}
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error      string                  `json:"error"`
	Permission string                  `json:"permission,omitempty"`
	Fields     []validation.FieldError `json:"fields,omitempty"`
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}

	return false
}

// Error answers err with the matching status. Denials carry the denial
// message, unexpected errors are logged and hidden behind MsgInternal.
func Error(c *fiber.Ctx, err error) error {
	var denied *permission.DeniedError

	switch {
	case errors.As(err, &denied):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: denied.Error(), Permission: denied.Permission})
	case isAny(err, notFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	case isAny(err, conflict):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
	case isAny(err, badRequest):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error(), Fields: validation.Fields(err)})
	default:
		log.Error().Err(err).Str("path", c.Path()).Str("user_id", auth.UserID(c)).Msg("request failed")

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: MsgInternal})
	}
}

// Bind parses the JSON body into dst. A malformed body is an invalid input.
func Bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: %w", validation.ErrInvalidInput, err)
	}

	return nil
}

// Query parses the query string into dst.
func Query(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return fmt.Errorf("%w: %w", validation.ErrInvalidInput, err)
	}

	return nil
}

// ParamID parses the uint64 route parameter name.
func ParamID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive number", validation.ErrInvalidInput, name)
	}

	return uint64(id), nil
}

// Attachment marks the response as a file download.
func Attachment(c *fiber.Ctx, filename, contentType string) {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, contentType)
}
