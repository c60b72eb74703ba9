package export

import (
	"fmt"
	"io"
	"time"

	"autofix/internal/models"

	"github.com/xuri/excelize/v2"
)

var reportColumns = []string{
	"Reference", "Customer", "Email", "Phone", "Vehicle", "License Plate",
	"Issue", "Preferred Date", "Preferred Time", "Status", "Mechanic", "Created At",
}

// WriteBookingsReport renders the bookings into an XLSX workbook for
// the admin dashboard download.
func WriteBookingsReport(w io.Writer, bookings []*models.Booking, mechanics []*models.Mechanic) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	mechanicNames := make(map[int64]string, len(mechanics))
	for _, m := range mechanics {
		mechanicNames[m.ID] = m.Name
	}

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("AutoFix bookings — exported %s", time.Now().Format("2006-01-02 15:04")))

	for i, col := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, col)
	}

	for row, b := range bookings {
		mechanic := ""
		if b.MechanicID != nil {
			mechanic = mechanicNames[*b.MechanicID]
		}
		values := []any{
			b.Reference,
			b.CustomerName,
			b.CustomerEmail,
			b.CustomerPhone,
			fmt.Sprintf("%s %s (%s)", b.CarMake, b.CarModel, b.CarYear),
			b.LicensePlate,
			b.IssueDescription,
			b.PreferredDate,
			b.PreferredTime,
			b.Status,
			mechanic,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	lastCol, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
	_ = f.MergeCell(sheetName, "A1", lastCol)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	headerEnd, _ := excelize.CoordinatesToCellName(len(reportColumns), 2)
	_ = f.SetCellStyle(sheetName, "A2", headerEnd, headerStyle)

	_ = f.SetColWidth(sheetName, "A", "A", 16)
	_ = f.SetColWidth(sheetName, "B", "D", 22)
	_ = f.SetColWidth(sheetName, "E", "G", 28)
	_ = f.SetColWidth(sheetName, "H", "L", 16)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
