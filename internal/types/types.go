// =============================================================================
// enaxml - Shared Types
// =============================================================================
//
// This package contains the types passed between the readers, the validator
// and the converters. Keeping them here avoids import cycles between:
//   - tsvparser / xlsxparser (produce Lines)
//   - validation             (turns Lines into Rows)
//   - converter              (turns Rows into Attributes and elements)
//
// =============================================================================

package types

// Line is one raw record read from an input table.
type Line struct {
	// Number is the 1-based position of the line in the input.
	Number int

	// Text is the line content with the trailing newline removed.
	// Readers do not trim it; trimming is part of validation.
	Text string
}

// Row is a validated line split into its fields.
type Row struct {
	// Number is the 1-based line number the row came from.
	Number int

	// Fields holds the tab-separated values in input order.
	Fields []string
}

// Field returns the i-th field, or "" when the row is shorter.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Attribute is a TAG/VALUE(/UNITS) triple attached to a parent element.
// Duplicate tags are allowed.
type Attribute struct {
	Tag   string
	Value string
	Units string
}
