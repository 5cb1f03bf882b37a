package workbook

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"

	"energy-consumption/internal/consumption/domain"
)

// xlsMaxColumns is the BIFF8 column limit.
const xlsMaxColumns = 256

var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// readXLS reads a legacy BIFF workbook. Rows and cells are trimmed of trailing blanks the same way
// excelize reports them, so both formats produce identical tables.
func (p *Parser) readXLS(data []byte) (sheetName string, rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: read xls: %v", domain.ErrFormat, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", nil, fmt.Errorf("%w: open xls: %v", domain.ErrFormat, err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return "", nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrFormat)
	}

	var sheet *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		candidate := wb.GetSheet(i)
		if candidate == nil {
			continue
		}
		if p.sheet == "" || candidate.Name == p.sheet {
			sheet = candidate
			break
		}
	}
	if sheet == nil {
		return p.sheet, nil, fmt.Errorf("%w: read sheet %q: sheet does not exist", domain.ErrFormat, p.sheet)
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		rows = append(rows, xlsCells(xlsRow(sheet, i)))
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return sheet.Name, rows, nil
}

// xlsRow returns nil for rows without cells; WorkSheet.Row panics on them.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func xlsCells(row *xls.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, xlsMaxColumns)
	last := -1
	for c := 0; c < xlsMaxColumns; c++ {
		cells[c] = row.Col(c)
		if cells[c] != "" {
			last = c
		}
	}
	return cells[:last+1]
}
