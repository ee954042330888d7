package employee

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

// Export writes all employees as CSV.
func (s *Service) Export(ctx context.Context, userID string, w io.Writer) error {
	if err := s.guard.Require(ctx, userID, permission.PermEmployeesExport); err != nil {
		return err
	}

	rows, err := s.list(ctx, false)
	if err != nil {
		return err
	}

	return WriteCSV(w, rows)
}

// WriteCSV serialises employees as CSV. Daily rates are written in centavos.
func WriteCSV(w io.Writer, rows []models.Employee) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"Name", "CPF", "Position", "PIX Key", "PIX Key Type", "Daily Rate", "Active",
	}); err != nil {
		return err
	}

	for _, e := range rows {
		if err := writer.Write([]string{
			e.Name,
			e.CPF,
			e.Position,
			e.PixKey,
			string(e.PixKeyType),
			strconv.FormatInt(e.DailyRate, 10),
			strconv.FormatBool(e.Active),
		}); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}
