package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"md-article-parser/internal/output"
)

var extractMDCmd = &cobra.Command{
	Use:   "extract-md [json files...]",
	Short: "Write the Markdown body of article JSON files to .md files",
	Long: `Extract-md reads article JSON files produced by parse or fetch and writes
their mdContent next to them with the .md extension. Without arguments every
JSON file in the output directory is processed.`,
	RunE: runExtractMD,
}

func init() {
	rootCmd.AddCommand(extractMDCmd)
}

func runExtractMD(cmd *cobra.Command, args []string) error {
	files := args
	if len(files) == 0 {
		matches, err := filepath.Glob(filepath.Join(outputDir(), "*.json"))
		if err != nil {
			return err
		}
		files = matches
	}
	if len(files) == 0 {
		return fmt.Errorf("no JSON files found in %s", outputDir())
	}

	failed := 0
	for _, file := range files {
		mdPath, err := output.ExtractMarkdown(file)
		if err != nil {
			appLogger.Error("Failed to extract Markdown", zap.String("file", file), zap.Error(err))
			failed++
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), mdPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(files))
	}
	return nil
}
