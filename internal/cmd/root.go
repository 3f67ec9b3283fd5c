// Package cmd implements the transcriptd command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytfetch/transcript-service/internal/config"
	"github.com/ytfetch/transcript-service/pkg/fetcher"
	"github.com/ytfetch/transcript-service/pkg/logging"
	"github.com/ytfetch/transcript-service/pkg/service"
	"github.com/ytfetch/transcript-service/pkg/source/jsondir"
)

var (
	cfgFile string
	dataDir string
	verbose bool

	// cfg is resolved by initConfig before any subcommand runs.
	cfg *config.Config
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "transcriptd",
	Short: "Bulk video transcript fetch service",
	Long: `transcriptd fetches video transcripts with adaptive rate limiting,
result caching and bounded concurrency.

Transcripts are served from a local JSON archive directory
(one directory per video, one JSON file per language).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "local transcript archive directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

// initConfig loads configuration and sets up the global logger.
func initConfig() {
	c, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg = c

	logCfg := c.LoggingSetup()
	if verbose {
		logCfg.Level = logging.LevelDebug
	}
	logging.Setup(logCfg)
}

// newService assembles the fetch service over the local archive source.
func newService() (*service.Service, error) {
	source := jsondir.New(dataDir)
	f := fetcher.New(source, logging.NewLogger("fetcher"))
	return service.New(f, cfg.ServiceConfig())
}

// closeService drains the worker pool with a bounded wait.
func closeService(svc *service.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = svc.Close(ctx)
}
