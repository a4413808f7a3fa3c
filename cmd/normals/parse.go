package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/spf13/cobra"
)

func newParseCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>...",
		Short: "Parse local station report files",
		Long: `Parse one or more local station report files and print each as JSON.

The station ID is taken from the file name (USC00018809.normals.txt) and
falls back to the "GHCN Daily ID" metadata field. Use "-" to read stdin.`,
		Example: `  # Parse a downloaded report
  normals parse USC00018809.normals.txt

  # Print only the monthly maximum temperature normals
  normals parse USC00018809.normals.txt \
    --category Temperature-Related --frequency Monthly --variable mly-tmax-normal

  # Parse and archive
  normals parse --archive normals.db reports/*.normals.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, opts, args)
		},
	}
}

func runParse(cmd *cobra.Command, opts *options, paths []string) error {
	logger := opts.logger(cmd.ErrOrStderr())

	reports := make([]domain.StationReport, 0, len(paths))
	for _, path := range paths {
		data, err := readInput(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}

		report, err := domain.ParseRawEvent(domain.RawEvent{Key: []byte(sourceName(path)), Value: data})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		report = domain.EnrichStationReport(report)
		logger.Debug("report parsed", "path", path, "station_id", report.ID, "series", report.SeriesCount)
		reports = append(reports, report)
	}

	ctx := cmd.Context()
	if err := opts.store(ctx, reports); err != nil {
		return err
	}
	return opts.print(cmd.OutOrStdout(), reports)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return data, nil
}

func sourceName(path string) string {
	if path == "-" {
		return ""
	}
	return filepath.Base(path)
}
