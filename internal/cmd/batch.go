package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ytfetch/transcript-service/pkg/service"
	"github.com/ytfetch/transcript-service/pkg/transcript"
)

var batchLanguage string

var batchCmd = &cobra.Command{
	Use:   "batch <video-id>...",
	Short: "Fetch transcripts for multiple videos concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchLanguage, "language", "l", "en", "target language code")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) > service.MaxBatchSize {
		return fmt.Errorf("maximum %d videos per batch (got %d)", service.MaxBatchSize, len(args))
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	results, summary := svc.Batch(cmd.Context(), args, batchLanguage)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Video", "Status", "Language", "Lines", "Time (s)", "Note"})

	for _, result := range results {
		t.AppendRow(table.Row{
			result.VideoID,
			statusLabel(result),
			result.Language,
			len(result.Entries),
			fmt.Sprintf("%.2f", result.ProcessingTime),
			result.Error,
		})
	}

	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d/%d ok", summary.Successful, summary.TotalProcessed),
		"",
		"",
		fmt.Sprintf("%.2f", summary.TotalProcessingTime),
		"",
	})

	t.Render()

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d videos failed", summary.Failed, summary.TotalProcessed)
	}
	return nil
}

func statusLabel(result *transcript.Result) string {
	switch result.Status {
	case transcript.StatusSuccess:
		return "ok"
	case transcript.StatusNoTranscript:
		return "no transcript"
	default:
		return "error"
	}
}
