package converter

import (
	"github.com/ginjaninja78/enaxml/internal/config"
	"github.com/ginjaninja78/enaxml/internal/types"
	"github.com/ginjaninja78/enaxml/internal/validation"
	"github.com/ginjaninja78/enaxml/internal/xmlwriter"
)

// Experiment table columns. Columns 2 and 3 are not used.
const (
	experimentSampleAlias     = 0
	experimentAlias           = 1
	experimentInstrumentModel = 4

	experimentFieldCount = 5
)

// ExperimentSchema builds EXPERIMENT elements from the 5-column experiment
// table (sample alias, experiment alias, -, -, instrument model).
func ExperimentSchema(cfg *config.Config) *Schema {
	e := cfg.Experiment

	build := func(row types.Row) *xmlwriter.Element {
		instrument := row.Field(experimentInstrumentModel)

		experiment := xmlwriter.NewElement("EXPERIMENT",
			"alias", row.Field(experimentAlias),
			"center_name", cfg.CenterName,
		)
		experiment.TextElement("TITLE", formatTitle(e.TitleFormat, instrument))
		experiment.SubElement("STUDY_REF", "accession", cfg.StudyAccession)

		design := experiment.SubElement("DESIGN")
		design.TextElement("DESIGN_DESCRIPTION", e.DesignDescription)
		design.SubElement("SAMPLE_DESCRIPTOR", "refname", row.Field(experimentSampleAlias))

		library := design.SubElement("LIBRARY_DESCRIPTOR")
		library.TextElement("LIBRARY_NAME", e.LibraryName)
		library.TextElement("LIBRARY_STRATEGY", e.LibraryStrategy)
		library.TextElement("LIBRARY_SOURCE", e.LibrarySource)
		library.TextElement("LIBRARY_SELECTION", e.LibrarySelection)
		library.SubElement("LIBRARY_LAYOUT").SubElement(e.LibraryLayout)

		experiment.SubElement("PLATFORM").
			SubElement(e.Platform).
			TextElement("INSTRUMENT_MODEL", instrument)

		if len(e.Attributes) > 0 {
			var attrs Attributes
			attrs.AddConfigured(e.Attributes)
			experiment.Append(attrs.Element("EXPERIMENT"))
		}

		return experiment
	}

	return &Schema{
		Kind: KindExperiment,
		Root: "EXPERIMENT_SET",
		Rule: validation.Rule{
			FieldCount: experimentFieldCount,
			Required:   []int{experimentSampleAlias, experimentAlias, experimentInstrumentModel},
		},
		Build: build,
	}
}
