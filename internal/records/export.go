package records

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes the loaded records as a spreadsheet with one row per
// record and the list columns as header.
func (l *List[T]) ExportXLSX(w io.Writer) error {
	sheet := l.desc.Plural
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export %s: %w", l.desc.Slug, err)
	}

	header := make([]any, 0, len(l.desc.Columns))
	for _, h := range l.desc.Headers() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export %s: %w", l.desc.Slug, err)
	}

	records := l.Records()
	for i := range records {
		cells := l.desc.Cells(&records[i])
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export %s: %w", l.desc.Slug, err)
		}
	}
	return f.Write(w)
}
