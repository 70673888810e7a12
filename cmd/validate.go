// =============================================================================
// enaxml - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which loads the submission
// profile, checks it, and prints the effective configuration (the file
// merged with the built-in defaults).
//
// COMMAND USAGE:
//   enaxml validate --config profile.yaml
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/enaxml/internal/converter"
	"github.com/ginjaninja78/enaxml/pkg/utils"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the submission profile and print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		// The profile was loaded and validated by the root command; building
		// every schema checks the converter rules as well.
		for _, kind := range converter.Kinds {
			schema, err := converter.ForKind(kind, profile)
			if err != nil {
				return err
			}
			if err := schema.Rule.Validate(); err != nil {
				return fmt.Errorf("%s converter: %w", kind, err)
			}
		}

		data, err := profile.Marshal()
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}

		if utils.FileExists(cfgFile) {
			fmt.Fprintf(out, "# %s is valid\n", cfgFile)
		} else {
			fmt.Fprintf(out, "# %s not found, using built-in defaults\n", cfgFile)
		}
		fmt.Fprint(out, string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
