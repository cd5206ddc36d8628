package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/syllabus-engine/internal/extract"
	"github.com/pdiddy/syllabus-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the grading scheme, meeting times, and course code from one syllabus",
	Long: `Extract reads one UTF-8 syllabus text file and prints the extraction
result. The course code falls back to --fallback-id (default: the file name)
when the text holds none. Non-text input is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"extraction.tolerance":         "tolerance",
		"extraction.percent_precision": "precision",
	}); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fallbackID, _ := cmd.Flags().GetString("fallback-id")
	format, _ := cmd.Flags().GetString("format")

	doc, err := extract.ReadDocument(args[0], fallbackID)
	if err != nil {
		return err
	}
	result := extract.NewPipeline(cfg.Extraction, logger).Run(doc)
	return writeResult(cmd.OutOrStdout(), result, format)
}

func writeResult(w io.Writer, result *types.ExtractionResult, format string) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q: use json or yaml", format)
	}
}

func init() {
	extractCmd.Flags().String("fallback-id", "", "identifier consulted for a course code when the text has none (default: file name)")
	extractCmd.Flags().String("format", "json", "output format: json or yaml")
	extractCmd.Flags().Float64("tolerance", 2, "allowed deviation from 100 for a closed grading scheme")
	extractCmd.Flags().Int("precision", 0, "decimals kept when points convert to percents")

	rootCmd.AddCommand(extractCmd)
}
