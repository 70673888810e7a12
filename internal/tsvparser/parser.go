// =============================================================================
// enaxml - TSV Parser Module
// =============================================================================
//
// This module reads tab-separated metadata tables line by line. It does not
// split or validate anything: the archive tables are "one record per line"
// and every shape check (field count, header detection, empty values) is the
// job of the validation package, so that a malformed line is reported with
// its line number instead of aborting the whole file the way encoding/csv
// does on a ragged record.
//
// USAGE:
//   scanner, err := tsvparser.Open(path)
//   if err != nil {
//       return err
//   }
//   defer scanner.Close()
//
//   for scanner.Next() {
//       line := scanner.Line()
//       // ...
//   }
//   if err := scanner.Err(); err != nil {
//       return err
//   }
//
// =============================================================================

package tsvparser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/enaxml/internal/types"
)

// Scanner yields the lines of a TSV file one at a time.
type Scanner struct {
	closer io.Closer
	reader *bufio.Reader
	line   types.Line
	number int
	err    error
	done   bool
}

// Open opens the file at path for scanning. The returned error wraps the
// os.Open error, so errors.Is(err, os.ErrNotExist) works for missing files.
func Open(path string) (*Scanner, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	s := NewScanner(file)
	s.closer = file
	return s, nil
}

// NewScanner scans lines from r. Close is a no-op for scanners created this way.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{reader: bufio.NewReader(r)}
}

// Next advances to the next line. It returns false at end of input or on a
// read error; check Err afterwards.
func (s *Scanner) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	text, err := s.reader.ReadString('\n')
	if err == io.EOF {
		s.done = true
		// A final line without a trailing newline still counts.
		if text == "" {
			return false
		}
	} else if err != nil {
		s.err = fmt.Errorf("error reading line %d: %w", s.number+1, err)
		return false
	}

	s.number++
	s.line = types.Line{
		Number: s.number,
		Text:   strings.TrimSuffix(text, "\n"),
	}
	return true
}

// Line returns the current line.
func (s *Scanner) Line() types.Line {
	return s.line
}

// Err returns the first read error, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Close closes the underlying file.
func (s *Scanner) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Split splits a line on the tab character. Empty fields are kept, so
// "a\t\tb" has three fields.
func Split(text string) []string {
	return strings.Split(text, "\t")
}
