// =============================================================================
// enaxml - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every converter and
// utility command is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (enaxml)
//   ├── sampleCmd     (enaxml sample)
//   ├── experimentCmd (enaxml experiment)
//   ├── runCmd        (enaxml run)
//   ├── batchCmd      (enaxml batch)
//   ├── validateCmd   (enaxml validate)
//   └── versionCmd    (enaxml version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Installing the log handler
//   3. Loading the submission profile before any subcommand runs
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/enaxml/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the submission profile.
// A missing file means the built-in defaults.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// profile is the configuration loaded by the root command.
var profile *config.Config

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "enaxml",
	Short: "Convert sample, experiment and run tables to archive submission XML",
	Long: `enaxml converts tab-separated metadata tables (or spreadsheets) into the
SAMPLE_SET, EXPERIMENT_SET and RUN_SET documents used to register sequencing
metadata with a public sequence archive.

Rows with the wrong number of columns, header rows and rows with empty
required values are skipped with a warning; the rest of the file is converted.

Example Usage:
  enaxml sample -i sam.tsv -o sam.xml       # Convert the sample table
  enaxml experiment                         # exp.tsv -> exp.xml
  enaxml run -i runs.xlsx --sheet Runs      # Read a worksheet
  enaxml batch --archive                    # Convert every table in input_dir
  enaxml validate --config profile.yaml     # Check a submission profile`,

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetHandler(cli.New(cmd.ErrOrStderr()))
		log.SetLevel(log.InfoLevel)
		if verbose {
			log.SetLevel(log.DebugLevel)
			log.Debugf("enaxml version %s", Version)
		}

		log.WithField("config", cfgFile).Debug("loading configuration")
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		profile = cfg
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. On error it prints the message on standard
// output and exits with status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.OutOrStdout(), "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"enaxml.yaml",
		"Path to the submission profile (built-in defaults when the file is absent)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
