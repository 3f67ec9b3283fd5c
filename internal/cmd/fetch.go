package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var fetchLanguage string

var fetchCmd = &cobra.Command{
	Use:   "fetch <video-id>",
	Short: "Fetch the transcript for a single video",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchLanguage, "language", "l", "en", "target language code")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	result := svc.Fetch(cmd.Context(), args[0], fetchLanguage)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if !result.IsSuccess() {
		return fmt.Errorf("fetch failed: %s", result.Error)
	}
	return nil
}
