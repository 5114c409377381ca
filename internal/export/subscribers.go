// internal/export/subscribers.go
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	sheetName = "Subscribers"
)

var header = []string{"Email", "Name", "Subscribed At"}

// Format describes one downloadable encoding of the subscriber list.
type Format struct {
	ContentType string
	Filename    string
	Write       func(w io.Writer, subs []*model.Subscriber) error
}

var formats = map[string]Format{
	FormatCSV: {
		ContentType: "text/csv",
		Filename:    "subscribers.csv",
		Write:       WriteCSV,
	},
	FormatXLSX: {
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Filename:    "subscribers.xlsx",
		Write:       WriteXLSX,
	},
}

// Lookup returns the format by name. An empty name means CSV.
func Lookup(name string) (Format, bool) {
	if name == "" {
		name = FormatCSV
	}
	f, ok := formats[name]
	return f, ok
}

func row(s *model.Subscriber) []string {
	return []string{s.Email, s.DisplayName(), s.SubscribedAt.UTC().Format(time.RFC3339)}
}

func WriteCSV(w io.Writer, subs []*model.Subscriber) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range subs {
		if err := writer.Write(row(s)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func WriteXLSX(w io.Writer, subs []*model.Subscriber) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, s := range subs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(s)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 36)
	f.SetColWidth(sheetName, "B", "C", 24)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
