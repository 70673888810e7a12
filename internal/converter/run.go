package converter

import (
	"github.com/ginjaninja78/enaxml/internal/config"
	"github.com/ginjaninja78/enaxml/internal/types"
	"github.com/ginjaninja78/enaxml/internal/validation"
	"github.com/ginjaninja78/enaxml/internal/xmlwriter"
)

// Run table columns. Column 4 is not used.
const (
	runSampleAlias     = 0
	runExperimentAlias = 1
	runFileName        = 2
	runChecksum        = 3

	runFieldCount = 5
)

// RunSchema builds RUN elements from the 5-column run table (sample alias,
// experiment alias, file name, checksum, -). The RUN alias is the sample
// alias column.
func RunSchema(cfg *config.Config) *Schema {
	r := cfg.Run

	build := func(row types.Row) *xmlwriter.Element {
		run := xmlwriter.NewElement("RUN",
			"alias", row.Field(runSampleAlias),
			"center_name", cfg.CenterName,
		)
		run.SubElement("EXPERIMENT_REF", "refname", row.Field(runExperimentAlias))

		run.SubElement("DATA_BLOCK").
			SubElement("FILES").
			SubElement("FILE",
				"filename", row.Field(runFileName),
				"filetype", r.FileType,
				"checksum_method", r.ChecksumMethod,
				"checksum", row.Field(runChecksum),
			)

		if len(r.Attributes) > 0 {
			var attrs Attributes
			attrs.AddConfigured(r.Attributes)
			run.Append(attrs.Element("RUN"))
		}

		return run
	}

	return &Schema{
		Kind: KindRun,
		Root: "RUN_SET",
		Rule: validation.Rule{
			FieldCount: runFieldCount,
			Required:   []int{runSampleAlias, runExperimentAlias, runFileName, runChecksum},
		},
		Build: build,
	}
}
