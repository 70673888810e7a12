package converter

import "encoding/xml"

// Decoding targets for the generated documents.

type sampleSet struct {
	XMLName xml.Name `xml:"SAMPLE_SET"`
	Samples []sample `xml:"SAMPLE"`
}

type sample struct {
	Alias       string      `xml:"alias,attr"`
	CenterName  string      `xml:"center_name,attr"`
	Title       string      `xml:"TITLE"`
	SampleName  sampleName  `xml:"SAMPLE_NAME"`
	Description string      `xml:"DESCRIPTION"`
	Attributes  []attribute `xml:"SAMPLE_ATTRIBUTES>SAMPLE_ATTRIBUTE"`
}

type sampleName struct {
	TaxonID        string `xml:"TAXON_ID"`
	ScientificName string `xml:"SCIENTIFIC_NAME"`
	CommonName     string `xml:"COMMON_NAME"`
}

type attribute struct {
	Tag   string `xml:"TAG"`
	Value string `xml:"VALUE"`
	Units string `xml:"UNITS"`
}

type experimentSet struct {
	XMLName     xml.Name     `xml:"EXPERIMENT_SET"`
	Experiments []experiment `xml:"EXPERIMENT"`
}

type experiment struct {
	Alias      string `xml:"alias,attr"`
	CenterName string `xml:"center_name,attr"`
	Title      string `xml:"TITLE"`
	StudyRef   struct {
		Accession string `xml:"accession,attr"`
	} `xml:"STUDY_REF"`
	Design struct {
		DesignDescription string `xml:"DESIGN_DESCRIPTION"`
		SampleDescriptor  struct {
			RefName string `xml:"refname,attr"`
		} `xml:"SAMPLE_DESCRIPTOR"`
		LibraryDescriptor struct {
			LibraryName      string `xml:"LIBRARY_NAME"`
			LibraryStrategy  string `xml:"LIBRARY_STRATEGY"`
			LibrarySource    string `xml:"LIBRARY_SOURCE"`
			LibrarySelection string `xml:"LIBRARY_SELECTION"`
			LibraryLayout    struct {
				Single *struct{} `xml:"SINGLE"`
				Paired *struct{} `xml:"PAIRED"`
			} `xml:"LIBRARY_LAYOUT"`
		} `xml:"LIBRARY_DESCRIPTOR"`
	} `xml:"DESIGN"`
	Platform struct {
		OxfordNanopore *platformDetails `xml:"OXFORD_NANOPORE"`
		Illumina       *platformDetails `xml:"ILLUMINA"`
	} `xml:"PLATFORM"`
	Attributes []attribute `xml:"EXPERIMENT_ATTRIBUTES>EXPERIMENT_ATTRIBUTE"`
}

type platformDetails struct {
	InstrumentModel string `xml:"INSTRUMENT_MODEL"`
}

type runSet struct {
	XMLName xml.Name `xml:"RUN_SET"`
	Runs    []run    `xml:"RUN"`
}

type run struct {
	Alias         string `xml:"alias,attr"`
	CenterName    string `xml:"center_name,attr"`
	ExperimentRef struct {
		RefName string `xml:"refname,attr"`
	} `xml:"EXPERIMENT_REF"`
	Files []struct {
		Filename       string `xml:"filename,attr"`
		Filetype       string `xml:"filetype,attr"`
		ChecksumMethod string `xml:"checksum_method,attr"`
		Checksum       string `xml:"checksum,attr"`
	} `xml:"DATA_BLOCK>FILES>FILE"`
	Attributes []attribute `xml:"RUN_ATTRIBUTES>RUN_ATTRIBUTE"`
}

// tags returns the attribute tags in order.
func tags(attrs []attribute) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.Tag
	}
	return out
}

// lookup returns the first attribute with the given tag.
func lookup(attrs []attribute, tag string) (attribute, bool) {
	for _, a := range attrs {
		if a.Tag == tag {
			return a, true
		}
	}
	return attribute{}, false
}
