package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
)

var processCmd = &cobra.Command{
	Use:   "process <bucket> [folder]",
	Short: "Index every file under a folder of a bucket",
	Long: `Lists the folder, extracts and chunks each supported file, embeds the
chunks and bulk writes them to the configured index. Files that fail are
reported and skipped.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	bucket, folder := args[0], ""
	if len(args) == 2 {
		folder = args[1]
	}

	report, err := clients.RAG.ProcessFolder(cmdContext, bucket, folder)
	if err != nil {
		return fmt.Errorf("processing %s/%s: %w", bucket, folder, err)
	}
	if report.FilesSeen == 0 {
		return errs.ErrNoFiles
	}

	if outputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report commonModels.IngestReport) {
	cmd.Printf("Run %s: %d files seen, %d records written, %d records failed\n",
		report.RunID, report.FilesSeen, report.RecordsWritten, len(report.RecordsFailed))
	if report.IndexCreated {
		cmd.Println("Index was created.")
	}
	if len(report.FilesSkipped) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Skipped:")
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  KEY\tSTAGE\tREASON")
	for _, s := range report.FilesSkipped {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", s.Key, s.Stage, s.Reason)
	}
	tw.Flush()
}
