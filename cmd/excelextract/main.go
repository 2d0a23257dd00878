// Package main provides the CLI entry point for excelextract.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dreamph/excelextract"
	"github.com/dreamph/excelextract/internal/logging"
	"github.com/dreamph/excelextract/internal/mapping"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type options struct {
	mappingPath string
	sheet       string
	outputPath  string
	pretty      bool
	verbose     int
	jsonLogs    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "excelextract [input.xlsx]",
		Short: "Extract records from an Excel sheet",
		Long: `excelextract reads the rows of one worksheet into records described by
a YAML mapping and prints them as JSON.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], o)
		},
	}

	cmd.Flags().StringVarP(&o.mappingPath, "mapping", "m", "", "YAML mapping file (required)")
	cmd.Flags().StringVar(&o.sheet, "sheet", "", "Sheet name (default: mapping sheet, then the first sheet)")
	cmd.Flags().StringVarP(&o.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&o.pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().CountVarP(&o.verbose, "verbose", "v", "Log progress to stderr (-vv for extraction events)")
	cmd.Flags().BoolVar(&o.jsonLogs, "log-json", false, "Write logs as JSON")
	_ = cmd.MarkFlagRequired("mapping")
	return cmd
}

func run(cmd *cobra.Command, inputPath string, o options) error {
	log := logging.New(cmd.ErrOrStderr(), o.verbose, o.jsonLogs)
	defer log.Sync()

	m, err := mapping.LoadFile(o.mappingPath)
	if err != nil {
		return fmt.Errorf("load mapping: %w", err)
	}

	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := openSheet(f, firstNonEmpty(o.sheet, m.Sheet))
	if err != nil {
		return err
	}
	log.Info("sheet opened", zap.String("file", inputPath), zap.String("sheet", sheet.Name()))

	rows, err := m.Extract(sheet, excelextract.WithLogger(log))
	if err != nil {
		return fmt.Errorf("configure extraction: %w", err)
	}
	records, err := rows.Collect()
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	log.Info("extraction done", zap.Int("records", len(records)))

	if records == nil {
		records = []*mapping.Record{}
	}
	data, err := toJSON(records, o.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if o.outputPath != "" {
		if err := os.WriteFile(o.outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	return writeLine(cmd.OutOrStdout(), data)
}

func openSheet(f *excelize.File, name string) (*excelextract.Worksheet, error) {
	if name == "" {
		return excelextract.WorksheetAt(f, 0)
	}
	return excelextract.OpenWorksheet(f, name)
}

func toJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func writeLine(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
