// =============================================================================
// enaxml - XLSX Parser Module
// =============================================================================
//
// Curators often keep the sample/experiment/run tables in a spreadsheet and
// export them to TSV by hand. This module reads the spreadsheet directly: each
// row of the selected sheet becomes one line whose cells are joined with tabs,
// so the rows go through exactly the same validation as a TSV file.
//
// SHEET LAYOUT:
//   | Column A | Column B | ... |
//   |----------|----------|-----|
//   | alias    | ...      |     |   <- header row, dropped by validation
//   | value    | ...      |     |
//
// NOTE:
//   excelize drops trailing empty cells, so a row whose last required cell is
//   empty comes out short and is skipped as malformed, just like a TSV line
//   with missing trailing tabs.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/enaxml/internal/types"
)

// Scanner yields the rows of one sheet as tab-joined lines.
type Scanner struct {
	rows  [][]string
	index int
	line  types.Line
	sheet string
}

// Open reads the named sheet of the workbook at path. An empty sheet name
// selects the first sheet.
func Open(path, sheet string) (*Scanner, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
	}

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("workbook %s has no sheet named %q", path, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}

	return &Scanner{rows: rows, sheet: sheet}, nil
}

// Sheet returns the name of the sheet being scanned.
func (s *Scanner) Sheet() string {
	return s.sheet
}

// Next advances to the next row.
func (s *Scanner) Next() bool {
	if s.index >= len(s.rows) {
		return false
	}
	s.line = types.Line{
		Number: s.index + 1,
		Text:   strings.Join(s.rows[s.index], "\t"),
	}
	s.index++
	return true
}

// Line returns the current row as a line.
func (s *Scanner) Line() types.Line {
	return s.line
}

// Err always returns nil: the workbook is fully read by Open.
func (s *Scanner) Err() error {
	return nil
}

// Close releases the scanner. The workbook file is already closed.
func (s *Scanner) Close() error {
	s.rows = nil
	return nil
}

// IsWorkbook reports whether path looks like a spreadsheet this package reads.
func IsWorkbook(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}
