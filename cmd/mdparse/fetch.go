package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"md-article-parser/internal/output"
	"md-article-parser/internal/scraper"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [urls...]",
	Short: "Fetch URLs concurrently and write article JSON",
	Long: `Fetch downloads every URL concurrently, parses each page and writes one JSON
file per article. A URL that fails is logged and skipped; the command exits
non-zero when any URL failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", scraper.BatchTimeout, "overall deadline for the batch")
	fetchCmd.Flags().Bool("browser", false, "fall back to headless Chrome when plain HTTP fails")
	fetchCmd.Flags().Bool("browser-no-js", false, "disable page scripts in the fallback browser")
	fetchCmd.Flags().Bool("alternates", false, "try AMP and mobile variants of blocked URLs")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		timeout = scraper.BatchTimeout
	}
	if cmd.Flags().Changed("browser") {
		appConfig.Scrape.BrowserFallback, _ = cmd.Flags().GetBool("browser")
	}
	if cmd.Flags().Changed("browser-no-js") {
		appConfig.Scrape.BrowserBlockJS, _ = cmd.Flags().GetBool("browser-no-js")
	}
	if cmd.Flags().Changed("alternates") {
		appConfig.Scrape.TryAlternates, _ = cmd.Flags().GetBool("alternates")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	results := newParser().ParseMany(ctx, args)

	paths, err := output.NewStore(nil).WriteAll(outputDir(), results)
	for _, path := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	if err != nil {
		return err
	}
	appLogger.Info("Results saved", zap.Int("files", len(paths)), zap.String("dir", outputDir()))

	if failed := len(args) - len(paths); failed > 0 {
		return fmt.Errorf("%d of %d URL(s) failed", failed, len(args))
	}
	return nil
}
