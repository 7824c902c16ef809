package sheet

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	bookingerrors "bookingsheet/internal/bookings/errors"
	"bookingsheet/pkg/model"

	"github.com/xuri/excelize/v2"
)

const (
	MaxColumns    = excelize.MaxColumns
	MaxCellLength = excelize.TotalCellChars

	emptyHeader = "__EMPTY"
)

// Read decodes the first sheet of the workbook in r, whatever its name.
func Read(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bookingerrors.ErrCorruptStore, err)
	}
	defer f.Close()

	return Decode(f)
}

func Decode(f *excelize.File) (*Table, error) {
	table := NewTable()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table, nil
	}
	name := sheets[0]

	rows, err := readRows(f, name)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", bookingerrors.ErrCorruptStore, name, err)
	}
	if len(rows) == 0 {
		return table, nil
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	header := headerKeys(rows[0], width)
	for _, key := range header {
		table.addColumn(key)
	}

	for i, row := range rows[1:] {
		rowNum := i + 2
		b := model.NewBooking()
		for col := range width {
			raw := ""
			if col < len(row) {
				raw = row[col]
			}
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(name, cell)
			if err != nil {
				return nil, fmt.Errorf("%w: cell %s: %v", bookingerrors.ErrCorruptStore, cell, err)
			}
			// an empty string cell is a value, an absent cell is not
			if raw == "" && !isStringCell(typ) {
				continue
			}
			b.Set(header[col], cellValue(typ, raw))
		}
		// blank rows carry no booking
		if b.Len() > 0 {
			table.rows = append(table.rows, b)
		}
	}

	return table, nil
}

// readRows returns every row of the sheet with raw cell values. Unlike
// GetRows it keeps rows that hold only empty cells, so a row of empty
// strings still gets its index.
func readRows(f *excelize.File, name string) ([][]string, error) {
	rows, err := f.Rows(name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		row, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Error()
}

func isStringCell(typ excelize.CellType) bool {
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return true
	default:
		return false
	}
}

// headerKeys names width columns from the header row. Empty cells become
// __EMPTY and repeated names get a numeric suffix so every key is unique.
func headerKeys(row []string, width int) []string {
	keys := make([]string, width)
	used := make(map[string]bool, width)
	suffix := make(map[string]int)

	for i := range width {
		key := ""
		if i < len(row) {
			key = row[i]
		}
		if key == "" {
			key = emptyHeader
		}
		base := key
		for used[key] {
			suffix[base]++
			key = base + "_" + strconv.Itoa(suffix[base])
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

func cellValue(typ excelize.CellType, raw string) any {
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
		return raw
	default:
		return raw
	}
}

// Write encodes the table as a workbook holding a single sheet named
// sheetName and writes it to w.
func Write(w io.Writer, t *Table, sheetName string) error {
	f, err := Encode(t, sheetName)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func Encode(t *Table, sheetName string) (*excelize.File, error) {
	if len(t.columns) > MaxColumns {
		return nil, fmt.Errorf("%w: %d columns", bookingerrors.ErrTooManyColumns, len(t.columns))
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet %q: %w", sheetName, err)
	}

	if err := encodeRows(f, t, sheetName); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func encodeRows(f *excelize.File, t *Table, sheetName string) error {
	for col, key := range t.columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheetName, cell, xmlText(key)); err != nil {
			return fmt.Errorf("header %q: %w", key, err)
		}
	}

	for i, b := range t.rows {
		rowNum := i + 2
		for _, field := range b.Fields() {
			if field.Value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(t.index[field.Key]+1, rowNum)
			if err != nil {
				return err
			}
			if err := setCell(f, sheetName, cell, field.Value); err != nil {
				return fmt.Errorf("cell %s: %w", cell, err)
			}
		}
	}
	return nil
}

func setCell(f *excelize.File, sheetName, cell string, value any) error {
	switch v := value.(type) {
	case string:
		return f.SetCellStr(sheetName, cell, xmlText(v))
	case float64:
		return f.SetCellFloat(sheetName, cell, v, -1, 64)
	case bool:
		return f.SetCellBool(sheetName, cell, v)
	case json.RawMessage:
		return f.SetCellStr(sheetName, cell, xmlText(string(v)))
	default:
		return f.SetCellValue(sheetName, cell, v)
	}
}

// xmlText replaces runes XML 1.0 cannot carry, such as most C0 control
// characters, with U+FFFD. Tab, newline and carriage return are kept.
func xmlText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case r < 0x20, r == 0xFFFE, r == 0xFFFF:
			return utf8.RuneError
		default:
			return r
		}
	}, s)
}
