// =============================================================================
// enaxml - Row Validation
// =============================================================================
//
// This module decides whether a raw input line becomes a Row. The checks run
// in a fixed order and the first failing check wins:
//   1. Shape:  the trimmed line is non-empty and splits into exactly
//              FieldCount tab-separated fields.
//   2. Header: the line contains the header marker ("alias" by default).
//   3. Values: every required field is non-empty.
//
// A failing line is never fatal. Check returns a *RowError describing why the
// line was dropped and the caller logs it and moves on.
//
// HEADER HEURISTIC:
//   Header lines are recognized by substring, not by position. A data line
//   that happens to contain the marker anywhere (say an alias column value
//   "alias_7") is dropped too. The marker is configurable per Rule.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/enaxml/internal/tsvparser"
	"github.com/ginjaninja78/enaxml/internal/types"
)

// DefaultHeaderMarker identifies header lines.
const DefaultHeaderMarker = "alias"

// =============================================================================
// ROW ERRORS
// =============================================================================

// Reason classifies why a line was skipped.
type Reason uint8

const (
	// ReasonMalformed: empty line or wrong number of fields.
	ReasonMalformed Reason = iota + 1
	// ReasonHeader: the line contains the header marker.
	ReasonHeader
	// ReasonEmptyField: a required field is empty.
	ReasonEmptyField
)

// String returns the string representation of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonMalformed:
		return "malformed"
	case ReasonHeader:
		return "header"
	case ReasonEmptyField:
		return "empty-field"
	default:
		return "unknown"
	}
}

// RowError reports a skipped line.
type RowError struct {
	// Line is the 1-based line number.
	Line int

	// Reason is the category of the failure.
	Reason Reason

	// Fields is the number of fields the line split into.
	Fields int

	// Field is the index of the first empty required field, or -1.
	Field int
}

// Error implements the error interface.
func (e *RowError) Error() string {
	switch e.Reason {
	case ReasonMalformed:
		return fmt.Sprintf("skipping malformed or incomplete line %d (%d fields)", e.Line, e.Fields)
	case ReasonHeader:
		return fmt.Sprintf("skipping header line %d", e.Line)
	case ReasonEmptyField:
		return fmt.Sprintf("line %d contains empty values (field %d)", e.Line, e.Field+1)
	default:
		return fmt.Sprintf("skipping line %d", e.Line)
	}
}

// =============================================================================
// RULE
// =============================================================================

// Rule describes the shape of a valid row.
type Rule struct {
	// FieldCount is the exact number of tab-separated fields.
	FieldCount int

	// Required lists the indices that must be non-empty.
	// A nil slice means every field is required.
	Required []int

	// HeaderMarker is the substring identifying header lines.
	// Empty means DefaultHeaderMarker.
	HeaderMarker string
}

// Check validates one line. It returns the Row on success and a *RowError
// otherwise.
func (r Rule) Check(line types.Line) (types.Row, error) {
	text := strings.TrimSpace(line.Text)

	fields := tsvparser.Split(text)
	if text == "" || len(fields) != r.FieldCount {
		n := len(fields)
		if text == "" {
			n = 0
		}
		return types.Row{}, &RowError{Line: line.Number, Reason: ReasonMalformed, Fields: n, Field: -1}
	}

	marker := r.HeaderMarker
	if marker == "" {
		marker = DefaultHeaderMarker
	}
	if strings.Contains(text, marker) {
		return types.Row{}, &RowError{Line: line.Number, Reason: ReasonHeader, Fields: len(fields), Field: -1}
	}

	if i := r.firstEmpty(fields); i >= 0 {
		return types.Row{}, &RowError{Line: line.Number, Reason: ReasonEmptyField, Fields: len(fields), Field: i}
	}

	return types.Row{Number: line.Number, Fields: fields}, nil
}

// firstEmpty returns the index of the first empty required field, or -1.
func (r Rule) firstEmpty(fields []string) int {
	if r.Required == nil {
		for i, f := range fields {
			if f == "" {
				return i
			}
		}
		return -1
	}
	for _, i := range r.Required {
		if i < len(fields) && fields[i] == "" {
			return i
		}
	}
	return -1
}

// Validate checks that the rule itself is usable.
func (r Rule) Validate() error {
	if r.FieldCount < 1 {
		return fmt.Errorf("field count must be at least 1, got %d", r.FieldCount)
	}
	for _, i := range r.Required {
		if i < 0 || i >= r.FieldCount {
			return fmt.Errorf("required index %d out of range [0,%d)", i, r.FieldCount)
		}
	}
	return nil
}
