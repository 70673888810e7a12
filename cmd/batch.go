// =============================================================================
// enaxml - Batch Command
// =============================================================================
//
// This file defines the 'batch' command, which converts every table of the
// input directory in one go.
//
// COMMAND USAGE:
//   enaxml batch [flags]
//
// FLAGS:
//   --archive     : Move converted tables to the input archive directory
//   --dry-run     : List what would be converted without writing anything
//   --input-dir   : Override batch.input_dir
//   --output-dir  : Override batch.output_dir
//
// PROCESSING PIPELINE:
//   1. Discover the tables of each converter (batch.patterns)
//   2. Name every output (batch.output_name_format)
//   3. Convert the tables concurrently (batch.max_concurrency at a time)
//   4. Archive converted tables when requested
//   5. Write the summary log to the output directory
//
// A table that fails does not stop the others; the command exits with an
// error once every table has been handled.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/enaxml/internal/config"
	"github.com/ginjaninja78/enaxml/internal/converter"
	"github.com/ginjaninja78/enaxml/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	// archiveInputs moves converted tables to the archive directory.
	archiveInputs bool

	// dryRun lists the planned conversions without writing anything.
	dryRun bool

	// inputDirFlag and outputDirFlag override the profile directories.
	inputDirFlag  string
	outputDirFlag string
)

// =============================================================================
// BATCH COMMAND DEFINITION
// =============================================================================

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Convert every sample, experiment and run table of a directory",
	Long: `The batch command scans the input directory for tables matching the
patterns of each converter (sam*, exp*, run* with .tsv or .xlsx by default)
and converts them concurrently.

On success:
  - The generated XML is placed in the output directory
  - With --archive, the table is moved to the input archive directory

On error:
  - The table remains in the input directory
  - Processing continues for the other tables

A summary log is written to the output directory in both cases.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, profile.Batch)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVar(&archiveInputs, "archive", false,
		"Move converted tables to the input archive directory")
	batchCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"List the planned conversions without writing output files")
	batchCmd.Flags().StringVar(&inputDirFlag, "input-dir", "",
		"Directory to scan (overrides batch.input_dir)")
	batchCmd.Flags().StringVar(&outputDirFlag, "output-dir", "",
		"Directory for the XML files (overrides batch.output_dir)")
}

// =============================================================================
// JOBS
// =============================================================================

// batchJob is one table to convert.
type batchJob struct {
	kind   string
	input  string
	output string
}

// batchResult is the outcome of one job.
type batchResult struct {
	job     batchJob
	result  converter.Result
	archive string
	err     error
}

// planBatch assigns every discovered table to a converter and names its
// output. A table matched by several converters goes to the first in
// converter.Kinds. Jobs whose output name is already taken fail up front.
func planBatch(fm *utils.FileManager, b config.BatchConfig) (jobs []batchJob, failed []batchResult, unmatched []string, err error) {
	assigned := make(map[string]bool)
	outputs := make(map[string]string)

	for _, kind := range converter.Kinds {
		files, err := fm.DiscoverInputFiles(b.Patterns.ForKind(kind))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to discover %s tables: %w", kind, err)
		}

		for _, file := range files {
			if assigned[file] {
				continue
			}
			assigned[file] = true

			name := utils.GenerateOutputFileName(b.OutputNameFormat, map[string]string{
				"kind":     kind,
				"original": utils.OriginalName(file),
			})
			job := batchJob{kind: kind, input: file, output: filepath.Join(b.OutputDir, name)}

			if other, taken := outputs[job.output]; taken {
				failed = append(failed, batchResult{
					job: job,
					err: fmt.Errorf("output %s is already produced from %s", job.output, filepath.Base(other)),
				})
				continue
			}
			outputs[job.output] = file
			jobs = append(jobs, job)
		}
	}

	all, err := fm.ListInputFiles()
	if err != nil {
		return nil, nil, nil, err
	}
	for _, file := range all {
		if !assigned[file] {
			unmatched = append(unmatched, filepath.Base(file))
		}
	}
	sort.Strings(unmatched)

	return jobs, failed, unmatched, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runBatch converts every table of the input directory.
func runBatch(cmd *cobra.Command, b config.BatchConfig) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	if inputDirFlag != "" {
		b.InputDir = inputDirFlag
	}
	if outputDirFlag != "" {
		b.OutputDir = outputDirFlag
	}

	fm := utils.NewFileManager(b.InputDir, b.OutputDir, b.InputArchiveDir)
	fm.ArchiveOnSuccess = archiveInputs && !dryRun

	// =========================================================================
	// STEP 1: DISCOVER AND PLAN
	// =========================================================================

	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	jobs, failed, unmatched, err := planBatch(fm, b)
	if err != nil {
		return err
	}

	for _, name := range unmatched {
		log.WithField("file", name).Debug("no converter matches, skipping")
	}

	if len(jobs)+len(failed) == 0 {
		fmt.Fprintf(out, "No tables found in %s.\n", b.InputDir)
		return nil
	}

	if dryRun {
		for _, job := range jobs {
			fmt.Fprintf(out, "  %-10s %s -> %s\n", job.kind, filepath.Base(job.input), job.output)
		}
		for _, r := range failed {
			fmt.Fprintf(out, "  %-10s %s: %v\n", r.job.kind, filepath.Base(r.job.input), r.err)
		}
		return nil
	}

	// =========================================================================
	// STEP 2: CONVERT CONCURRENTLY
	// =========================================================================
	// One goroutine per table; the semaphore bounds how many run at once.

	schemas := make(map[string]*converter.Schema)
	for _, kind := range converter.Kinds {
		schemas[kind], err = converter.ForKind(kind, profile)
		if err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	results := make(chan batchResult, len(jobs))
	sem := make(chan struct{}, b.MaxConcurrency)

	for _, job := range jobs {
		wg.Add(1)

		go func(job batchJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := batchResult{job: job}
			res.result, res.err = converter.New(schemas[job.kind], log.Log).Convert(job.input, job.output)
			if res.err == nil {
				res.archive, res.err = fm.ArchiveInputFile(job.input)
				if res.err != nil {
					res.err = fmt.Errorf("converted but not archived: %w", res.err)
				}
			}
			results <- res
		}(job)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 3: COLLECT RESULTS
	// =========================================================================

	collected := append([]batchResult(nil), failed...)
	for res := range results {
		collected = append(collected, res)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].job.input < collected[j].job.input })

	summary := utils.ProcessingSummary{
		StartTime:      startTime,
		TotalFiles:     len(collected),
		UnmatchedFiles: unmatched,
	}

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	for _, res := range collected {
		name := filepath.Base(res.job.input)
		if res.err != nil {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				Kind:         res.job.kind,
				InputFile:    res.job.input,
				ErrorMessage: res.err.Error(),
			})
			fmt.Fprintf(out, "  %s %s: %v\n", bad("✗"), name, res.err)
			continue
		}

		stats := res.result.Stats
		summary.SuccessfulFiles++
		summary.LinesSeen += stats.Seen
		summary.LinesSkipped += stats.Skipped
		summary.ObjectsWritten += stats.Written
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			Kind:        res.job.kind,
			InputFile:   res.job.input,
			OutputFile:  res.result.OutputFile,
			ArchivePath: res.archive,
			Seen:        stats.Seen,
			Skipped:     stats.Skipped,
			Written:     stats.Written,
			ProcessTime: stats.Duration,
		})
		fmt.Fprintf(out, "  %s %s -> %s (%d %s_objects)\n",
			ok("✓"), name, res.result.OutputFile, stats.Written, res.job.kind)
	}

	// =========================================================================
	// STEP 4: SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()
	summaryPath, err := utils.WriteSummaryLog(summary, b.OutputDir)
	if err != nil {
		log.WithError(err).Warn("could not write summary log")
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total tables:    %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %s\n", ok(summary.SuccessfulFiles))
	fmt.Fprintf(out, "Failed:          %s\n", bad(summary.FailedFiles))
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))
	if summaryPath != "" {
		fmt.Fprintf(out, "Summary log:     %s\n", summaryPath)
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d tables failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}
