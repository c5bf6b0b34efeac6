package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"md-article-parser/internal/output"
)

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse local HTML files into article JSON",
	Long: `Parse reads HTML documents from files (or stdin when the file is "-"),
rewrites them into Markdown-flavored text, extracts the article and writes one
JSON file per article into the output directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("url", "", "page URL recorded on the result and used to resolve relative links")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	pageURL, _ := cmd.Flags().GetString("url")
	parser := newParser()
	dir := outputDir()

	failed := 0
	for _, name := range args {
		markup, err := readMarkup(cmd.InOrStdin(), name)
		if err != nil {
			appLogger.Error("Failed to read input", zap.String("file", name), zap.Error(err))
			failed++
			continue
		}

		info := parser.ParseFromMarkup(markup, pageURL)
		if info == nil {
			failed++
			continue
		}

		path, err := output.WriteJSON(dir, info)
		if err != nil {
			return err
		}
		appLogger.Info("Results saved", zap.String("file", path), zap.String("title", info.Title))
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) produced no article", failed, len(args))
	}
	return nil
}

func readMarkup(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(name)
	return string(data), err
}
