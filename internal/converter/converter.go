// =============================================================================
// enaxml - Converter Module
// =============================================================================
//
// This module contains the conversion pipeline shared by the sample,
// experiment and run converters. A converter is the pipeline plus a Schema
// describing its rows and how a row becomes an XML element.
//
// CONVERSION PIPELINE:
//   1. Open the input table (TSV, or XLSX by extension)
//   2. Read every line, validating its shape against the schema rule
//   3. Build one element per valid row under the schema root
//   4. Write the document to the output file
//
// Rows that fail validation are logged and skipped; they never abort the
// file. A missing input file aborts before the output file is touched.
//
// CONCURRENCY:
//   A Converter holds no per-file state, so one instance may convert several
//   files at once (the batch command does this).
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/apex/log"

	"github.com/ginjaninja78/enaxml/internal/config"
	"github.com/ginjaninja78/enaxml/internal/tsvparser"
	"github.com/ginjaninja78/enaxml/internal/types"
	"github.com/ginjaninja78/enaxml/internal/validation"
	"github.com/ginjaninja78/enaxml/internal/xlsxparser"
	"github.com/ginjaninja78/enaxml/internal/xmlwriter"
)

// ErrInputNotFound is returned when the input table does not exist.
var ErrInputNotFound = errors.New("input file does not exist")

// Kinds lists the converters in submission order.
var Kinds = []string{KindSample, KindExperiment, KindRun}

// Converter kinds.
const (
	KindSample     = "sample"
	KindExperiment = "experiment"
	KindRun        = "run"
)

// =============================================================================
// SCHEMA
// =============================================================================

// Schema describes one converter.
type Schema struct {
	// Kind is the converter name ("sample", "experiment", "run").
	Kind string

	// Root is the name of the document root, e.g. SAMPLE_SET.
	Root string

	// Rule is the shape every row must have.
	Rule validation.Rule

	// Build turns a validated row into its element.
	Build func(row types.Row) *xmlwriter.Element
}

// ForKind returns the schema of the named converter built from cfg.
func ForKind(kind string, cfg *config.Config) (*Schema, error) {
	switch kind {
	case KindSample:
		return SampleSchema(cfg), nil
	case KindExperiment:
		return ExperimentSchema(cfg), nil
	case KindRun:
		return RunSchema(cfg), nil
	default:
		return nil, fmt.Errorf("unknown converter %q", kind)
	}
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Stats counts what happened to the lines of one input.
type Stats struct {
	// Seen is the number of lines read.
	Seen int

	// Skipped is the number of lines dropped (malformed, header, empty value).
	Skipped int

	// Written is the number of elements in the output document.
	// It always equals Seen - Skipped.
	Written int

	// Duration is the wall time of the conversion.
	Duration time.Duration
}

// Result represents the outcome of converting a single file.
type Result struct {
	Kind       string
	InputFile  string
	OutputFile string
	Stats      Stats
}

// =============================================================================
// LINE SOURCES
// =============================================================================

// LineSource yields the raw lines of an input table.
// Both tsvparser.Scanner and xlsxparser.Scanner implement it.
type LineSource interface {
	Next() bool
	Line() types.Line
	Err() error
	Close() error
}

// OpenSource opens path with the reader matching its extension. sheet is
// only used for workbooks. A missing file yields an error wrapping
// ErrInputNotFound.
func OpenSource(path, sheet string) (LineSource, error) {
	var (
		src LineSource
		err error
	)
	if xlsxparser.IsWorkbook(path) {
		src, err = xlsxparser.Open(path, sheet)
	} else {
		src, err = tsvparser.Open(path)
	}

	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: '%s'", ErrInputNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return src, nil
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the pipeline for one schema.
type Converter struct {
	schema *Schema
	logger log.Interface

	// Sheet selects the worksheet of XLSX inputs. Empty means the first.
	Sheet string

	// XML controls the output formatting.
	XML xmlwriter.Options
}

// New creates a Converter. A nil logger logs through the apex/log default.
func New(schema *Schema, logger log.Interface) *Converter {
	if logger == nil {
		logger = log.Log
	}
	return &Converter{
		schema: schema,
		logger: logger,
		XML:    xmlwriter.DefaultOptions(),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Convert reads input and writes the document to output. The output file is
// created only after the whole input has been read.
func (c *Converter) Convert(input, output string) (Result, error) {
	start := time.Now()
	result := Result{Kind: c.schema.Kind, InputFile: input}

	c.logger.WithFields(log.Fields{"kind": c.schema.Kind, "input": input}).Debug("converting")

	src, err := OpenSource(input, c.Sheet)
	if err != nil {
		return result, err
	}
	if wb, ok := src.(*xlsxparser.Scanner); ok {
		c.logger.WithFields(log.Fields{"input": input, "sheet": wb.Sheet()}).Debug("reading worksheet")
	}

	root, stats, err := c.Build(src, filepath.Base(input))
	if cerr := src.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close %s: %w", input, cerr)
	}
	if err != nil {
		return result, err
	}

	if err := xmlwriter.WriteFile(output, root, c.XML); err != nil {
		return result, err
	}

	stats.Duration = time.Since(start)
	result.OutputFile = output
	result.Stats = stats

	c.logger.WithFields(log.Fields{
		"kind":    c.schema.Kind,
		"output":  output,
		"seen":    stats.Seen,
		"skipped": stats.Skipped,
		"written": stats.Written,
	}).Debug("converted")

	return result, nil
}

// Build reads every line of src and returns the document root. name labels
// the log entries of skipped rows.
func (c *Converter) Build(src LineSource, name string) (*xmlwriter.Element, Stats, error) {
	var stats Stats
	root := xmlwriter.NewElement(c.schema.Root)

	for src.Next() {
		line := src.Line()
		stats.Seen++

		row, err := c.schema.Rule.Check(line)
		if err != nil {
			stats.Skipped++
			c.logSkipped(name, err)
			continue
		}

		root.Append(c.schema.Build(row))
	}
	if err := src.Err(); err != nil {
		return nil, stats, fmt.Errorf("failed to read %s: %w", name, err)
	}

	stats.Written = len(root.Children)
	return root, stats, nil
}

// logSkipped reports a dropped line. Header lines are expected and only
// logged at debug level.
func (c *Converter) logSkipped(name string, err error) {
	var rowErr *validation.RowError
	if !errors.As(err, &rowErr) {
		c.logger.WithError(err).WithField("file", name).Warn("skipping line")
		return
	}

	entry := c.logger.WithFields(log.Fields{
		"file":   name,
		"line":   rowErr.Line,
		"reason": rowErr.Reason.String(),
	})
	if rowErr.Reason == validation.ReasonHeader {
		entry.Debug(rowErr.Error())
		return
	}
	entry.Warn(rowErr.Error())
}
