// =============================================================================
// enaxml - Main Entry Point
// =============================================================================
//
// USAGE:
//   enaxml sample       - Convert sam.tsv into sam.xml
//   enaxml experiment   - Convert exp.tsv into exp.xml
//   enaxml run          - Convert run.tsv into run.xml
//   enaxml batch        - Convert every table of the input directory
//   enaxml validate     - Check the submission profile
//   enaxml version      - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : readers, validation, converters, XML writer, configuration
//   - pkg/       : batch file handling
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/enaxml/cmd"
)

func main() {
	cmd.Execute()
}
