package converter

import (
	"github.com/ginjaninja78/enaxml/internal/config"
	"github.com/ginjaninja78/enaxml/internal/types"
	"github.com/ginjaninja78/enaxml/internal/validation"
	"github.com/ginjaninja78/enaxml/internal/xmlwriter"
)

// Sample table columns.
const (
	sampleAccession = iota
	sampleTitle
	sampleIsolate
	sampleCollectionDate
	sampleAlias
	sampleRegion
	sampleHostSex
	sampleHostScientificName
	sampleHostCommonName
	sampleIsolationSource
	sampleLatitude
	sampleLongitude
	sampleHostDiseaseOutcome
	sampleHostHealthState
	sampleHostSubjectID
	samplePublication

	sampleFieldCount
)

// SampleSchema builds SAMPLE elements from the 16-column sample table.
// Every column is required; region, isolation source, host disease outcome
// and INSDC accession may hold IGNORE to omit their attribute.
func SampleSchema(cfg *config.Config) *Schema {
	s := cfg.Sample
	describer := NewDescriber(s)

	build := func(row types.Row) *xmlwriter.Element {
		title := row.Field(sampleTitle)

		sample := xmlwriter.NewElement("SAMPLE",
			"alias", row.Field(sampleAlias),
			"center_name", cfg.CenterName,
		)
		sample.TextElement("TITLE", title)

		name := sample.SubElement("SAMPLE_NAME")
		name.TextElement("TAXON_ID", s.TaxonID)
		name.TextElement("SCIENTIFIC_NAME", s.ScientificName)
		name.TextElement("COMMON_NAME", s.CommonName)

		sample.TextElement("DESCRIPTION", describer.Describe(title))

		var attrs Attributes
		attrs.Add("collecting institution", s.CollectingInstitution)
		attrs.Add("collection date", row.Field(sampleCollectionDate))
		attrs.Add("collector name", s.CollectorName)
		attrs.Add("geographic location (country and/or sea)", s.Country)
		attrs.AddOptional("geographic location (region and locality)", row.Field(sampleRegion))
		attrs.AddUnits("geographic location (latitude)", row.Field(sampleLatitude), s.CoordinateUnits)
		attrs.AddUnits("geographic location (longitude)", row.Field(sampleLongitude), s.CoordinateUnits)
		attrs.Add("sample capture status", s.CaptureStatus)
		attrs.AddOptional("isolation source host-associated", row.Field(sampleIsolationSource))
		attrs.Add("host scientific name", row.Field(sampleHostScientificName))
		attrs.Add("host common name", row.Field(sampleHostCommonName))
		attrs.Add("host health state", row.Field(sampleHostHealthState))
		attrs.AddOptional("host disease outcome", row.Field(sampleHostDiseaseOutcome))
		attrs.Add("host sex", row.Field(sampleHostSex))
		attrs.Add("host subject id", row.Field(sampleHostSubjectID))
		attrs.Add("isolate", row.Field(sampleIsolate))
		attrs.Add("publication", row.Field(samplePublication))
		attrs.AddOptional("INSDC accession", row.Field(sampleAccession))
		attrs.Add("ENA-CHECKLIST", s.Checklist)
		sample.Append(attrs.Element("SAMPLE"))

		return sample
	}

	return &Schema{
		Kind:  KindSample,
		Root:  "SAMPLE_SET",
		Rule:  validation.Rule{FieldCount: sampleFieldCount},
		Build: build,
	}
}
