package converter

import (
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/enaxml/internal/config"
	"github.com/ginjaninja78/enaxml/internal/tsvparser"
	"github.com/ginjaninja78/enaxml/internal/types"
	"github.com/ginjaninja78/enaxml/internal/xmlwriter"
)

var exampleSampleFields = []string{
	"ACC1", "Blood sample A", "ISOx", "2021-01-01", "alias1", "IGNORE", "M", "Homo sapiens",
	"Human", "IGNORE", "52.1", "5.1", "recovered", "healthy", "HOST1", "Pub2021",
}

// sampleLine returns the example row with the alias replaced.
func sampleLine(alias string) string {
	fields := append([]string(nil), exampleSampleFields...)
	fields[sampleAlias] = alias
	return strings.Join(fields, "\t")
}

func testLogger() (*log.Logger, *memory.Handler) {
	h := memory.New()
	return &log.Logger{Handler: h, Level: log.DebugLevel}, h
}

func entriesAt(h *memory.Handler, level log.Level) []*log.Entry {
	var out []*log.Entry
	for _, e := range h.Entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func writeInput(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func decode(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	require.NoError(t, xml.Unmarshal(data, v))
}

func buildOne(t *testing.T, schema *Schema, fields []string) []byte {
	t.Helper()
	root := xmlwriter.NewElement(schema.Root)
	root.Append(schema.Build(types.Row{Number: 1, Fields: fields}))
	data, err := xmlwriter.Marshal(root)
	require.NoError(t, err)
	return data
}

// =============================================================================
// SAMPLE
// =============================================================================

func TestSampleExampleRow(t *testing.T) {
	cfg := config.Default()
	data := buildOne(t, SampleSchema(cfg), exampleSampleFields)

	var set sampleSet
	decode(t, data, &set)
	require.Len(t, set.Samples, 1)
	s := set.Samples[0]

	assert.Equal(t, "alias1", s.Alias)
	assert.Equal(t, cfg.CenterName, s.CenterName)
	assert.Equal(t, "Blood sample A", s.Title)
	assert.Equal(t, sampleName{TaxonID: "64286", ScientificName: "Usutu virus", CommonName: "Usutu virus"}, s.SampleName)
	assert.Equal(t, cfg.Sample.Descriptions[0].Description, s.Description)
	assert.True(t, strings.HasPrefix(s.Description, "Human blood donor samples"))

	want := []string{
		"collecting institution",
		"collection date",
		"collector name",
		"geographic location (country and/or sea)",
		"geographic location (latitude)",
		"geographic location (longitude)",
		"sample capture status",
		"host scientific name",
		"host common name",
		"host health state",
		"host disease outcome",
		"host sex",
		"host subject id",
		"isolate",
		"publication",
		"INSDC accession",
		"ENA-CHECKLIST",
	}
	if diff := cmp.Diff(want, tags(s.Attributes)); diff != "" {
		t.Errorf("attribute tags mismatch (-want +got):\n%s", diff)
	}

	acc, ok := lookup(s.Attributes, "INSDC accession")
	require.True(t, ok)
	assert.Equal(t, "ACC1", acc.Value)

	lat, _ := lookup(s.Attributes, "geographic location (latitude)")
	assert.Equal(t, attribute{Tag: "geographic location (latitude)", Value: "52.1", Units: "DD"}, lat)

	checklist, _ := lookup(s.Attributes, "ENA-CHECKLIST")
	assert.Equal(t, "ERC000033", checklist.Value)

	date, _ := lookup(s.Attributes, "collection date")
	assert.Equal(t, "", date.Units)
}

func TestSampleIgnoreSentinel(t *testing.T) {
	fields := append([]string(nil), exampleSampleFields...)
	fields[sampleAccession] = "IGNORE"
	fields[sampleHostDiseaseOutcome] = "IGNORE"
	fields[sampleRegion] = "Utrecht"
	fields[sampleIsolationSource] = "blood"

	var set sampleSet
	decode(t, buildOne(t, SampleSchema(config.Default()), fields), &set)
	attrs := set.Samples[0].Attributes

	_, ok := lookup(attrs, "INSDC accession")
	assert.False(t, ok)
	_, ok = lookup(attrs, "host disease outcome")
	assert.False(t, ok)

	region, ok := lookup(attrs, "geographic location (region and locality)")
	require.True(t, ok)
	assert.Equal(t, "Utrecht", region.Value)
	iso, ok := lookup(attrs, "isolation source host-associated")
	require.True(t, ok)
	assert.Equal(t, "blood", iso.Value)

	// region follows the country and the isolation source follows the capture status
	got := tags(attrs)
	assert.Equal(t, "geographic location (region and locality)", got[4])
	assert.Equal(t, "isolation source host-associated", got[8])
}

func TestSamplePipeline(t *testing.T) {
	header := strings.Join([]string{
		"insdc_accession", "sample_title", "isolate", "collection_date", "sample_alias", "region",
		"host_sex", "host_scientific_name", "host_common_name", "isolation_source", "lat", "long",
		"host_disease_outcome", "host_health_state", "host_subject_id", "publication",
	}, "\t")

	emptyField := strings.Replace(sampleLine("S3"), "ISOx", "", 1)

	input := writeInput(t, "sam.tsv",
		header,
		sampleLine("S1"),
		emptyField,
		"ACC9\tshort row",
		"",
		sampleLine("S2"),
	)
	output := filepath.Join(t.TempDir(), "sam.xml")

	logger, h := testLogger()
	res, err := New(SampleSchema(config.Default()), logger).Convert(input, output)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Stats.Seen)
	assert.Equal(t, 4, res.Stats.Skipped)
	assert.Equal(t, 2, res.Stats.Written)
	assert.Equal(t, output, res.OutputFile)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `<?xml version="1.0" encoding="UTF-8"?>`))

	var set sampleSet
	decode(t, data, &set)
	require.Len(t, set.Samples, 2)
	assert.Equal(t, "S1", set.Samples[0].Alias)
	assert.Equal(t, "S2", set.Samples[1].Alias)

	warns := entriesAt(h, log.WarnLevel)
	require.Len(t, warns, 3)
	assert.Equal(t, "line 3 contains empty values (field 3)", warns[0].Message)
	assert.Equal(t, 3, warns[0].Fields["line"])
	assert.Equal(t, "sam.tsv", warns[0].Fields["file"])
	assert.Contains(t, warns[1].Message, "skipping malformed or incomplete line 4")
	assert.Contains(t, warns[2].Message, "skipping malformed or incomplete line 5")
}

func TestHeaderMarkerDropsDataRows(t *testing.T) {
	// the example row carries "alias1", so the header heuristic drops it
	logger, _ := testLogger()
	c := New(SampleSchema(config.Default()), logger)

	root, stats, err := c.Build(tsvparser.NewScanner(strings.NewReader(sampleLine("alias1")+"\n")), "sam.tsv")
	require.NoError(t, err)
	assert.Empty(t, root.Children)
	assert.Equal(t, Stats{Seen: 1, Skipped: 1, Written: 0}, stats)
}

// =============================================================================
// EXPERIMENT
// =============================================================================

func TestExperimentSchema(t *testing.T) {
	cfg := config.Default()
	data := buildOne(t, ExperimentSchema(cfg), []string{"S1", "E1", "", "", "MinION"})

	var set experimentSet
	decode(t, data, &set)
	require.Len(t, set.Experiments, 1)
	e := set.Experiments[0]

	assert.Equal(t, "E1", e.Alias)
	assert.Equal(t, cfg.CenterName, e.CenterName)
	assert.Equal(t, "Host-derived Usutu virus sequencing on Oxford Nanopore MinION platform.", e.Title)
	assert.Equal(t, "PRJEB83966", e.StudyRef.Accession)
	assert.Equal(t, "S1", e.Design.SampleDescriptor.RefName)
	assert.Equal(t, "AMPLICON", e.Design.LibraryDescriptor.LibraryStrategy)
	assert.Equal(t, "VIRAL RNA", e.Design.LibraryDescriptor.LibrarySource)
	assert.Equal(t, "PCR", e.Design.LibraryDescriptor.LibrarySelection)
	assert.NotNil(t, e.Design.LibraryDescriptor.LibraryLayout.Single)
	assert.Nil(t, e.Design.LibraryDescriptor.LibraryLayout.Paired)
	require.NotNil(t, e.Platform.OxfordNanopore)
	assert.Equal(t, "MinION", e.Platform.OxfordNanopore.InstrumentModel)
	assert.Equal(t, []attribute{{Tag: "library preparation date", Value: "not collected"}}, e.Attributes)

	// empty descriptive fields are written self-closed
	assert.Contains(t, string(data), "<DESIGN_DESCRIPTION/>")
	assert.Contains(t, string(data), "<LIBRARY_NAME/>")
}

func TestExperimentRequiredFields(t *testing.T) {
	logger, h := testLogger()
	c := New(ExperimentSchema(config.Default()), logger)

	input := strings.Join([]string{
		"sample_alias\texperiment_alias\tx\ty\tinstrument",
		"S1\tE1\ta\tb\tGridION",
		"S2\t\ta\tb\tMinION",
		"S3\tE3\t\t\tMinION",
		"S4\tE4\ta\tb\t",
	}, "\n")

	root, stats, err := c.Build(tsvparser.NewScanner(strings.NewReader(input)), "exp.tsv")
	require.NoError(t, err)
	assert.Equal(t, Stats{Seen: 5, Skipped: 3, Written: 2}, stats)
	assert.Len(t, root.Children, 2)

	alias, _ := root.Children[1].Attr("alias")
	assert.Equal(t, "E3", alias)

	// the empty experiment alias and the trimmed-away instrument column
	assert.Len(t, entriesAt(h, log.WarnLevel), 2)
}

// =============================================================================
// RUN
// =============================================================================

func TestRunSchema(t *testing.T) {
	cfg := config.Default()
	data := buildOne(t, RunSchema(cfg), []string{"S1", "E1", "s1.fastq.gz", "abc123", "x"})

	var set runSet
	decode(t, data, &set)
	require.Len(t, set.Runs, 1)
	r := set.Runs[0]

	assert.Equal(t, "S1", r.Alias)
	assert.Equal(t, "E1", r.ExperimentRef.RefName)
	require.Len(t, r.Files, 1)
	assert.Equal(t, "s1.fastq.gz", r.Files[0].Filename)
	assert.Equal(t, "fastq", r.Files[0].Filetype)
	assert.Equal(t, "MD5", r.Files[0].ChecksumMethod)
	assert.Equal(t, "abc123", r.Files[0].Checksum)
	assert.Empty(t, r.Attributes)
	assert.NotContains(t, string(data), "RUN_ATTRIBUTES")
}

func TestRunAttributesWhenConfigured(t *testing.T) {
	cfg, err := config.Parse([]byte(`
run:
  attributes:
    - tag: processing center
      value: Dutch Genomics Institute
`))
	require.NoError(t, err)

	var set runSet
	decode(t, buildOne(t, RunSchema(cfg), []string{"S1", "E1", "f", "m", "x"}), &set)
	assert.Equal(t, []attribute{{Tag: "processing center", Value: "Dutch Genomics Institute"}}, set.Runs[0].Attributes)
}

// =============================================================================
// PIPELINE
// =============================================================================

func TestWrittenEqualsSeenMinusSkipped(t *testing.T) {
	inputs := []string{
		"",
		"S1\tE1\tf\tm\tx",
		"S1\tE1\tf\tm\tx\nS2\tE2\tf\tm\tx\n",
		"alias\nS1\tE1\tf\tm\tx\n\n\nS2\tE2\tf\tm",
		"S1\tE1\tf\tm\tx\tEXTRA\n\tE1\tf\tm\tx\nS3\tE3\tf\tm\tx",
	}

	logger, _ := testLogger()
	c := New(RunSchema(config.Default()), logger)

	for _, in := range inputs {
		root, stats, err := c.Build(tsvparser.NewScanner(strings.NewReader(in)), "run.tsv")
		require.NoError(t, err)
		assert.Equal(t, stats.Seen-stats.Skipped, stats.Written, "input %q", in)
		assert.Len(t, root.Children, stats.Written, "input %q", in)
	}
}

func TestConvertMissingInput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "run.xml")

	logger, _ := testLogger()
	c := New(RunSchema(config.Default()), logger)

	_, err := c.Convert(filepath.Join(dir, "run.tsv"), output)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputNotFound))
	assert.Contains(t, err.Error(), "run.tsv")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "output must not be created")

	// an existing output is left untouched
	require.NoError(t, os.WriteFile(output, []byte("previous"), 0644))
	_, err = c.Convert(filepath.Join(dir, "run.tsv"), output)
	require.Error(t, err)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestConvertRejectsNonXMLCharacters(t *testing.T) {
	input := writeInput(t, "run.tsv", "S1\tE1\tf\x01.fastq.gz\tabc\tx")
	output := filepath.Join(filepath.Dir(input), "run.xml")

	logger, _ := testLogger()
	_, err := New(RunSchema(config.Default()), logger).Convert(input, output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "U+0001")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "output must not be created")
}

func TestConvertMissingWorkbook(t *testing.T) {
	dir := t.TempDir()
	_, err := New(RunSchema(config.Default()), nil).Convert(filepath.Join(dir, "run.xlsx"), filepath.Join(dir, "run.xml"))
	assert.True(t, errors.Is(err, ErrInputNotFound))
}

func TestWorkbookMatchesTSV(t *testing.T) {
	rows := [][]string{
		{"sample_alias", "experiment_alias", "file_name", "md5", "note"},
		{"S1", "E1", "s1.fastq.gz", "abc", "x"},
		{"S2", "", "s2.fastq.gz", "def", "x"},
		{"S3", "E3", "s3.fastq.gz", "ghi", "x"},
	}

	dir := t.TempDir()

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = strings.Join(r, "\t")
	}
	tsvPath := filepath.Join(dir, "run.tsv")
	require.NoError(t, os.WriteFile(tsvPath, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	f := excelize.NewFile()
	for i, r := range rows {
		cells := make([]interface{}, len(r))
		for j, v := range r {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &cells))
	}
	xlsxPath := filepath.Join(dir, "run.xlsx")
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	logger, handler := testLogger()
	c := New(RunSchema(config.Default()), logger)

	tsvRes, err := c.Convert(tsvPath, filepath.Join(dir, "from_tsv.xml"))
	require.NoError(t, err)
	xlsxRes, err := c.Convert(xlsxPath, filepath.Join(dir, "from_xlsx.xml"))
	require.NoError(t, err)

	assert.Equal(t, tsvRes.Stats.Written, xlsxRes.Stats.Written)
	assert.Equal(t, 2, xlsxRes.Stats.Written)

	var sheets []interface{}
	for _, e := range entriesAt(handler, log.DebugLevel) {
		if sheet, ok := e.Fields["sheet"]; ok {
			sheets = append(sheets, sheet)
		}
	}
	assert.Equal(t, []interface{}{"Sheet1"}, sheets)

	fromTSV, err := os.ReadFile(tsvRes.OutputFile)
	require.NoError(t, err)
	fromXLSX, err := os.ReadFile(xlsxRes.OutputFile)
	require.NoError(t, err)
	if diff := cmp.Diff(string(fromTSV), string(fromXLSX)); diff != "" {
		t.Errorf("workbook output differs (-tsv +xlsx):\n%s", diff)
	}
}

func TestConfiguredProfileReplacesConstants(t *testing.T) {
	cfg, err := config.Parse([]byte(`
center_name: Lab X
study_accession: PRJEB1
sample:
  taxon_id: "11082"
  scientific_name: West Nile virus
  common_name: West Nile virus
  checklist: ERC000011
experiment:
  title_format: "WNV on {instrument}"
  library_layout: PAIRED
  platform: ILLUMINA
  attributes: []
`))
	require.NoError(t, err)

	var samples sampleSet
	decode(t, buildOne(t, SampleSchema(cfg), exampleSampleFields), &samples)
	s := samples.Samples[0]
	assert.Equal(t, "Lab X", s.CenterName)
	assert.Equal(t, "11082", s.SampleName.TaxonID)
	assert.Equal(t, "West Nile virus", s.SampleName.ScientificName)
	inst, _ := lookup(s.Attributes, "collecting institution")
	assert.Equal(t, "Lab X", inst.Value)
	checklist, _ := lookup(s.Attributes, "ENA-CHECKLIST")
	assert.Equal(t, "ERC000011", checklist.Value)

	var exps experimentSet
	data := buildOne(t, ExperimentSchema(cfg), []string{"S1", "E1", "", "", "NovaSeq 6000"})
	decode(t, data, &exps)
	e := exps.Experiments[0]
	assert.Equal(t, "Lab X", e.CenterName)
	assert.Equal(t, "PRJEB1", e.StudyRef.Accession)
	assert.Equal(t, "WNV on NovaSeq 6000", e.Title)
	assert.NotNil(t, e.Design.LibraryDescriptor.LibraryLayout.Paired)
	require.NotNil(t, e.Platform.Illumina)
	assert.Equal(t, "NovaSeq 6000", e.Platform.Illumina.InstrumentModel)
	assert.Nil(t, e.Platform.OxfordNanopore)
	assert.NotContains(t, string(data), "EXPERIMENT_ATTRIBUTES")
}

func TestForKind(t *testing.T) {
	cfg := config.Default()
	for _, kind := range Kinds {
		schema, err := ForKind(kind, cfg)
		require.NoError(t, err)
		assert.Equal(t, kind, schema.Kind)
		assert.NoError(t, schema.Rule.Validate())
	}

	_, err := ForKind("study", cfg)
	assert.Error(t, err)
}
