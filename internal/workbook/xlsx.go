package workbook

import (
	"bytes"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rezonia/nfe-converter/internal/model"
)

const defaultSheet = "Sheet1"

var quantityFormat = "#,##0.0000"

type styles struct {
	header   int
	money    int
	quantity int
}

// WriteXLSX encodes the workbook as an xlsx file. Any failure is reported
// as a BuildError.
func (w *Workbook) WriteXLSX(out io.Writer) error {
	f, err := w.render()
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return model.NewBuildError("xlsx", err)
	}
	return nil
}

// Bytes returns the encoded xlsx file
func (w *Workbook) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.WriteXLSX(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *Workbook) render() (*excelize.File, error) {
	if w == nil || len(w.Sheets) == 0 {
		return nil, model.NewBuildError("xlsx", errNoSheets)
	}

	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, model.NewBuildError("xlsx", err)
	}

	for i := range w.Sheets {
		sheet := &w.Sheets[i]
		if i == 0 {
			err = f.SetSheetName(defaultSheet, sheet.Name)
		} else {
			_, err = f.NewSheet(sheet.Name)
		}
		if err == nil {
			err = writeSheet(f, sheet, st)
		}
		if err != nil {
			f.Close()
			return nil, model.NewBuildError("xlsx", err)
		}
	}
	f.SetActiveSheet(0)

	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	})
	if err != nil {
		return st, err
	}
	st.money, err = f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return st, err
	}
	st.quantity, err = f.NewStyle(&excelize.Style{CustomNumFmt: &quantityFormat})
	return st, err
}

func writeSheet(f *excelize.File, sheet *Sheet, st styles) error {
	header := make([]any, len(sheet.Columns))
	for i, col := range sheet.Columns {
		header[i] = col.Title
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return err
	}

	if len(sheet.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(sheet.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, "A1", last, st.header); err != nil {
			return err
		}
	}

	for r, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return err
		}
		if err := styleRow(f, sheet, r+2, row, st); err != nil {
			return err
		}
	}

	for i, col := range sheet.Columns {
		if col.Width <= 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, name, name, col.Width); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// styleRow applies number formats to the numeric cells of one row
func styleRow(f *excelize.File, sheet *Sheet, rowNum int, row []any, st styles) error {
	for i, v := range row {
		if i >= len(sheet.Columns) {
			break
		}
		if _, ok := v.(float64); !ok {
			continue
		}

		var style int
		switch sheet.Columns[i].Format {
		case FormatMoney:
			style = st.money
		case FormatQuantity:
			style = st.quantity
		default:
			continue
		}

		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}
