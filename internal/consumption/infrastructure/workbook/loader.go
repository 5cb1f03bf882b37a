// Package workbook reads the publisher worksheet into a raw table.
package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"energy-consumption/internal/consumption/domain"
	"energy-consumption/internal/consumption/infrastructure/blob"
)

// Parser converts workbook bytes into a RawTable.
type Parser struct {
	sheet string
}

// NewParser constructs a Parser. An empty sheet selects the first worksheet.
func NewParser(sheet string) *Parser {
	return &Parser{sheet: sheet}
}

// Parse reads the selected worksheet from an OOXML (.xlsx) or legacy BIFF (.xls) workbook; the
// format is detected from the content. The first row becomes the header, padded to the width of
// the widest row; cells are taken as raw values so numbers are not affected by cell formats.
func (p *Parser) Parse(r io.Reader) (domain.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("%w: read workbook: %v", domain.ErrTransfer, err)
	}

	var (
		sheet string
		rows  [][]string
	)
	if bytes.HasPrefix(data, oleSignature) {
		sheet, rows, err = p.readXLS(data)
	} else {
		sheet, rows, err = p.readXLSX(data)
	}
	if err != nil {
		return domain.RawTable{}, err
	}
	if len(rows) == 0 {
		return domain.RawTable{}, fmt.Errorf("%w: sheet %q is empty", domain.ErrFormat, sheet)
	}
	return tableFromRows(rows), nil
}

func (p *Parser) readXLSX(data []byte) (string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("%w: open workbook: %v", domain.ErrFormat, err)
	}
	defer f.Close()

	sheet := p.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return "", nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrFormat)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet, nil, fmt.Errorf("%w: read sheet %q: %v", domain.ErrFormat, sheet, err)
	}
	return sheet, rows, nil
}

func tableFromRows(rows [][]string) domain.RawTable {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	header := make([]string, width)
	copy(header, rows[0])

	table := domain.RawTable{Header: header, Rows: make([]domain.RawRow, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		table.Rows = append(table.Rows, domain.RawRow(row))
	}
	return table
}

// FileSource loads the worksheet from a local path.
type FileSource struct {
	path   string
	parser *Parser
}

// NewFileSource constructs a FileSource.
func NewFileSource(path string, parser *Parser) (*FileSource, error) {
	if path == "" {
		return nil, errors.New("workbook: empty path")
	}
	if parser == nil {
		parser = NewParser("")
	}
	return &FileSource{path: path, parser: parser}, nil
}

// LoadTable implements domain.RawTableLoader.
func (s *FileSource) LoadTable(ctx context.Context) (domain.RawTable, error) {
	_ = ctx
	f, err := os.Open(s.path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("%w: open %s: %v", domain.ErrTransfer, s.path, err)
	}
	defer f.Close()
	return s.parser.Parse(f)
}

// BlobSource loads the worksheet from an object store.
type BlobSource struct {
	store  blob.Store
	key    string
	parser *Parser
}

// NewBlobSource constructs a BlobSource.
func NewBlobSource(store blob.Store, key string, parser *Parser) (*BlobSource, error) {
	if store == nil {
		return nil, errors.New("workbook: nil store")
	}
	if key == "" {
		return nil, errors.New("workbook: empty key")
	}
	if parser == nil {
		parser = NewParser("")
	}
	return &BlobSource{store: store, key: key, parser: parser}, nil
}

// LoadTable implements domain.RawTableLoader.
func (s *BlobSource) LoadTable(ctx context.Context) (domain.RawTable, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("%w: get %s: %v", domain.ErrTransfer, s.key, err)
	}
	return s.parser.Parse(bytes.NewReader(data))
}
