// =============================================================================
// enaxml - Configuration Module
// =============================================================================
//
// This module loads the submission profile: every constant that ends up in the
// generated XML (center name, study accession, taxon, checklist, library
// description, canned sample descriptions...) plus the settings of the batch
// command.
//
// CONFIGURATION FILE:
//   A single YAML file passed with --config. A missing file is not an error:
//   the built-in defaults reproduce the values of the original submission
//   batch, so the converters work out of the box.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ignore is the sentinel cell value meaning "omit this optional attribute".
const Ignore = "IGNORE"

// InstrumentPlaceholder is replaced by the instrument model in Experiment.TitleFormat.
const InstrumentPlaceholder = "{instrument}"

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config is the submission profile.
type Config struct {
	// CenterName is written to the center_name attribute of every
	// SAMPLE, EXPERIMENT and RUN element.
	CenterName string `yaml:"center_name"`

	// StudyAccession is the project the experiments are registered under.
	StudyAccession string `yaml:"study_accession"`

	Sample     SampleConfig     `yaml:"sample"`
	Experiment ExperimentConfig `yaml:"experiment"`
	Run        RunConfig        `yaml:"run"`
	Batch      BatchConfig      `yaml:"batch"`
}

// SampleConfig holds the constants of the sample converter.
type SampleConfig struct {
	TaxonID        string `yaml:"taxon_id"`
	ScientificName string `yaml:"scientific_name"`
	CommonName     string `yaml:"common_name"`

	CollectingInstitution string `yaml:"collecting_institution"`
	CollectorName         string `yaml:"collector_name"`
	Country               string `yaml:"country"`
	CaptureStatus         string `yaml:"capture_status"`

	// Checklist is the value of the ENA-CHECKLIST attribute.
	Checklist string `yaml:"checklist"`

	// CoordinateUnits is attached to latitude and longitude.
	CoordinateUnits string `yaml:"coordinate_units"`

	// Descriptions is ordered: the first keyword found in the sample
	// title selects the description.
	Descriptions []KeywordDescription `yaml:"descriptions"`

	// DefaultDescription is used when no keyword matches.
	DefaultDescription string `yaml:"default_description"`
}

// KeywordDescription maps a title keyword to a canned description.
type KeywordDescription struct {
	Keyword     string `yaml:"keyword"`
	Description string `yaml:"description"`
}

// ExperimentConfig holds the constants of the experiment converter.
type ExperimentConfig struct {
	// TitleFormat may contain {instrument}.
	TitleFormat string `yaml:"title_format"`

	DesignDescription string `yaml:"design_description"`
	LibraryName       string `yaml:"library_name"`
	LibraryStrategy   string `yaml:"library_strategy"`
	LibrarySource     string `yaml:"library_source"`
	LibrarySelection  string `yaml:"library_selection"`

	// LibraryLayout is SINGLE or PAIRED.
	LibraryLayout string `yaml:"library_layout"`

	// Platform is the element name under PLATFORM, e.g. OXFORD_NANOPORE.
	Platform string `yaml:"platform"`

	// Attributes are emitted as EXPERIMENT_ATTRIBUTE on every experiment.
	// A nil list gets the default; an explicit empty list emits none.
	Attributes []AttributeConfig `yaml:"attributes"`
}

// RunConfig holds the constants of the run converter.
type RunConfig struct {
	FileType       string `yaml:"file_type"`
	ChecksumMethod string `yaml:"checksum_method"`

	// Attributes are emitted as RUN_ATTRIBUTE; none by default.
	Attributes []AttributeConfig `yaml:"attributes"`
}

// AttributeConfig is a constant TAG/VALUE(/UNITS) attribute.
type AttributeConfig struct {
	Tag   string `yaml:"tag"`
	Value string `yaml:"value"`
	Units string `yaml:"units,omitempty"`
}

// BatchConfig configures the batch command.
type BatchConfig struct {
	// InputDir is scanned for .tsv and .xlsx tables.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated XML files.
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives inputs after a successful conversion
	// when archiving is enabled.
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputNameFormat names output files. Placeholders:
	//   {kind} {original} {uuid} {timestamp} {date}
	OutputNameFormat string `yaml:"output_name_format"`

	// MaxConcurrency bounds the number of files converted at once.
	MaxConcurrency int `yaml:"max_concurrency"`

	// Patterns are glob patterns matched against input file names.
	Patterns Patterns `yaml:"patterns"`
}

// Patterns lists the file name globs of each converter.
type Patterns struct {
	Sample     []string `yaml:"sample"`
	Experiment []string `yaml:"experiment"`
	Run        []string `yaml:"run"`
}

// ForKind returns the patterns of the named converter.
func (p Patterns) ForKind(kind string) []string {
	switch kind {
	case "sample":
		return p.Sample
	case "experiment":
		return p.Experiment
	case "run":
		return p.Run
	default:
		return nil
	}
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	defaultCenterName = "One Health Pact Consortium (2020–2022), EcoAlert Collaborative Team (2016–2019)"

	sequencingSuffix = " testing RT-PCR positive for Usutu virus (CT values below 32) " +
		"were subjected to whole-genome sequencing using an amplicon-based Oxford Nanopore approach."
)

func defaultDescriptions() []KeywordDescription {
	return []KeywordDescription{
		{Keyword: "blood", Description: "Human blood donor samples" + sequencingSuffix},
		{Keyword: "mosquitoes", Description: "Mosquito samples" + sequencingSuffix},
		{Keyword: "free-ranging", Description: "Samples from free-ranging birds" + sequencingSuffix},
		{Keyword: "captivity", Description: "Samples from birds in captivity" + sequencingSuffix},
	}
}

// Default returns the profile of the original submission batch.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for any unset option.
func applyDefaults(cfg *Config) {
	if cfg.CenterName == "" {
		cfg.CenterName = defaultCenterName
	}
	if cfg.StudyAccession == "" {
		cfg.StudyAccession = "PRJEB83966"
	}

	s := &cfg.Sample
	if s.TaxonID == "" {
		s.TaxonID = "64286"
	}
	if s.ScientificName == "" {
		s.ScientificName = "Usutu virus"
	}
	if s.CommonName == "" {
		s.CommonName = "Usutu virus"
	}
	if s.CollectingInstitution == "" {
		s.CollectingInstitution = cfg.CenterName
	}
	if s.CollectorName == "" {
		s.CollectorName = cfg.CenterName
	}
	if s.Country == "" {
		s.Country = "Netherlands"
	}
	if s.CaptureStatus == "" {
		s.CaptureStatus = "active surveillance not initiated by an outbreak"
	}
	if s.Checklist == "" {
		s.Checklist = "ERC000033"
	}
	if s.CoordinateUnits == "" {
		s.CoordinateUnits = "DD"
	}
	if s.Descriptions == nil {
		s.Descriptions = defaultDescriptions()
	}
	if s.DefaultDescription == "" {
		s.DefaultDescription = "Samples collected from humans (blood donors), wildlife (birds and mosquitoes), " +
			"and captive birds in the Netherlands that tested RT-PCR positive for Usutu virus (CT values below 32) " +
			"were subjected to whole-genome sequencing using an amplicon-based Oxford Nanopore approach."
	}

	e := &cfg.Experiment
	if e.TitleFormat == "" {
		e.TitleFormat = "Host-derived Usutu virus sequencing on Oxford Nanopore " + InstrumentPlaceholder + " platform."
	}
	if e.LibraryStrategy == "" {
		e.LibraryStrategy = "AMPLICON"
	}
	if e.LibrarySource == "" {
		e.LibrarySource = "VIRAL RNA"
	}
	if e.LibrarySelection == "" {
		e.LibrarySelection = "PCR"
	}
	if e.LibraryLayout == "" {
		e.LibraryLayout = "SINGLE"
	}
	if e.Platform == "" {
		e.Platform = "OXFORD_NANOPORE"
	}
	if e.Attributes == nil {
		e.Attributes = []AttributeConfig{{Tag: "library preparation date", Value: "not collected"}}
	}

	r := &cfg.Run
	if r.FileType == "" {
		r.FileType = "fastq"
	}
	if r.ChecksumMethod == "" {
		r.ChecksumMethod = "MD5"
	}
	if r.Attributes == nil {
		r.Attributes = []AttributeConfig{}
	}

	b := &cfg.Batch
	if b.InputDir == "" {
		b.InputDir = "./input"
	}
	if b.OutputDir == "" {
		b.OutputDir = "./output"
	}
	if b.InputArchiveDir == "" {
		b.InputArchiveDir = "./input_archive"
	}
	if b.OutputNameFormat == "" {
		b.OutputNameFormat = "{original}.xml"
	}
	if b.MaxConcurrency == 0 {
		b.MaxConcurrency = 4
	}
	if b.Patterns.Sample == nil {
		b.Patterns.Sample = []string{"sam*.tsv", "sam*.xlsx"}
	}
	if b.Patterns.Experiment == nil {
		b.Patterns.Experiment = []string{"exp*.tsv", "exp*.xlsx"}
	}
	if b.Patterns.Run == nil {
		b.Patterns.Run = []string{"run*.tsv", "run*.xlsx"}
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the profile at path. An empty path or a missing file yields the
// defaults; a file that exists but cannot be parsed or fails validation is an
// error.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML profile, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// validate rejects profiles that would produce unusable XML.
func validate(cfg *Config) error {
	for i, d := range cfg.Sample.Descriptions {
		if strings.TrimSpace(d.Keyword) == "" {
			return fmt.Errorf("sample.descriptions[%d]: empty keyword", i)
		}
		if d.Description == "" {
			return fmt.Errorf("sample.descriptions[%d] (%s): empty description", i, d.Keyword)
		}
	}

	switch cfg.Experiment.LibraryLayout {
	case "SINGLE", "PAIRED":
	default:
		return fmt.Errorf("experiment.library_layout must be SINGLE or PAIRED, got %q", cfg.Experiment.LibraryLayout)
	}

	for _, attrs := range [][]AttributeConfig{cfg.Experiment.Attributes, cfg.Run.Attributes} {
		for _, a := range attrs {
			if a.Tag == "" {
				return fmt.Errorf("attribute with value %q has an empty tag", a.Value)
			}
		}
	}

	if cfg.Batch.MaxConcurrency < 1 {
		return fmt.Errorf("batch.max_concurrency must be at least 1, got %d", cfg.Batch.MaxConcurrency)
	}

	return nil
}

// Marshal renders the effective profile as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
