package attendance

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

// Export writes the matching marks as CSV.
func (s *Service) Export(ctx context.Context, userID string, f Filters, w io.Writer) error {
	if err := s.guard.Require(ctx, userID, permission.PermAttendanceExport); err != nil {
		return err
	}

	rows, err := s.find(ctx, f)
	if err != nil {
		return err
	}

	return WriteCSV(w, rows)
}

// WriteCSV serialises attendance marks as CSV.
func WriteCSV(w io.Writer, rows []models.Attendance) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Employee", "Status", "Marked By"}); err != nil {
		return err
	}

	for _, row := range rows {
		if err := writer.Write([]string{row.Date, row.EmployeeID, string(row.Status), row.MarkedBy}); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}
