package decision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for payload files that are neither JSON nor xlsx.
var ErrUnsupportedFormat = errors.New("unsupported payload format")

// LoadFile reads decision records from a .json or .xlsx file.
func LoadFile(path string) ([]Record, error) {
	p, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return p.Records, nil
}

// LoadDocument is LoadFile keeping the project setup of JSON documents.
// Workbooks carry no setup.
func LoadDocument(path string) (Payload, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		b, err := os.ReadFile(path)
		if err != nil {
			return Payload{}, fmt.Errorf("read payload: %w", err)
		}
		return ParseDocument(string(b)), nil
	case ".xlsx":
		recs, err := loadWorkbook(path)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Records: recs}, nil
	default:
		return Payload{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// loadWorkbook reads the first sheet. The header row is matched against the alias
// table; unknown columns are ignored and blank rows skipped.
func loadWorkbook(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []Record{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}
	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		columns[i] = Resolve(h)
	}
	out := []Record{}
	for _, row := range rows[1:] {
		rec := Record{}
		for i, cell := range row {
			if i >= len(columns) || columns[i] == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			rec[columns[i]] = cell
		}
		if len(rec) == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
