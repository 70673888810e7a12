// =============================================================================
// enaxml - Converter Commands
// =============================================================================
//
// This file defines the 'sample', 'experiment' and 'run' commands. They share
// one implementation and differ only in the converter kind and the default
// file names.
//
// COMMAND USAGE:
//   enaxml sample     [-i sam.tsv] [-o sam.xml] [--sheet NAME]
//   enaxml experiment [-i exp.tsv] [-o exp.xml] [--sheet NAME]
//   enaxml run        [-i run.tsv] [-o run.xml] [--sheet NAME]
//
// OUTPUT:
//   2 sample_objects successfully written to 'sam.xml'.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/enaxml/internal/converter"
)

// convertFlags holds the flags of one converter command.
type convertFlags struct {
	input  string
	output string
	sheet  string
}

var (
	sampleFlags     convertFlags
	experimentFlags convertFlags
	runFlags        convertFlags
)

var sampleCmd = newConvertCommand(converter.KindSample, "sam", &sampleFlags,
	"Convert a sample table into a SAMPLE_SET document",
	`Reads the 16-column sample table and writes one SAMPLE per valid row.

Columns: INSDC accession, title, isolate, collection date, alias, region,
host sex, host scientific name, host common name, isolation source,
latitude, longitude, host disease outcome, host health state,
host subject id, publication.

Every column is required. Use IGNORE in region, isolation source,
host disease outcome or INSDC accession to leave that attribute out.`)

var experimentCmd = newConvertCommand(converter.KindExperiment, "exp", &experimentFlags,
	"Convert an experiment table into an EXPERIMENT_SET document",
	`Reads the 5-column experiment table (sample alias, experiment alias, -, -,
instrument model) and writes one EXPERIMENT per valid row.

The sample metadata must be submitted before the experiments.`)

var runCmd = newConvertCommand(converter.KindRun, "run", &runFlags,
	"Convert a run table into a RUN_SET document",
	`Reads the 5-column run table (sample alias, experiment alias, file name,
checksum, -) and writes one RUN per valid row.

The experiment metadata must be submitted before the runs.`)

// newConvertCommand builds the command of one converter. base is the default
// file name without extension.
func newConvertCommand(kind, base string, flags *convertFlags, short, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, kind, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", base+".tsv",
		"Path to the input table (.tsv, or .xlsx for a spreadsheet)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", base+".xml",
		"Path to the output XML file (overwritten)")
	cmd.Flags().StringVar(&flags.sheet, "sheet", "",
		"Worksheet to read from an .xlsx input (default: first sheet)")

	return cmd
}

// runConvert converts one table and prints the summary line.
func runConvert(cmd *cobra.Command, kind string, flags *convertFlags) error {
	schema, err := converter.ForKind(kind, profile)
	if err != nil {
		return err
	}

	conv := converter.New(schema, log.Log)
	conv.Sheet = flags.sheet

	result, err := conv.Convert(flags.input, flags.output)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"seen":    result.Stats.Seen,
		"skipped": result.Stats.Skipped,
	}).Debug("done")

	fmt.Fprintf(cmd.OutOrStdout(), "%d %s_objects successfully written to '%s'.\n",
		result.Stats.Written, kind, result.OutputFile)
	return nil
}

func init() {
	rootCmd.AddCommand(sampleCmd, experimentCmd, runCmd)
}
