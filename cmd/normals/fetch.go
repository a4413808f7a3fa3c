package main

import (
	"fmt"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/adapter/noaa"
	"github.com/couchcryptid/climate-normals-etl/internal/config"
	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newFetchCommand(opts *options) *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch <station-id>...",
		Short: "Download and parse station reports from NCEI",
		Example: `  normals fetch USC00018809
  normals fetch --compact USW00094728 USW00023174 > stations.jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts, baseURL, timeout, args)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", config.DefaultNOAABaseURL, "Directory URL holding <id>.normals.txt files")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-request timeout")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *options, baseURL string, timeout time.Duration, ids []string) error {
	logger := opts.logger(cmd.ErrOrStderr())
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())
	client := noaa.NewClient(baseURL, timeout, logger, metrics)

	ctx := cmd.Context()

	reports := make([]domain.StationReport, 0, len(ids))
	for _, arg := range ids {
		id, ok := domain.StationIDFromName(arg)
		if !ok {
			return fmt.Errorf("invalid station id %q", arg)
		}

		body, err := client.FetchStation(ctx, id)
		if err != nil {
			return err
		}

		report, err := domain.ParseRawEvent(domain.RawEvent{Key: []byte(domain.ReportFileName(id)), Value: body})
		if err != nil {
			return err
		}
		reports = append(reports, domain.EnrichStationReport(report))
	}

	if err := opts.store(ctx, reports); err != nil {
		return err
	}
	return opts.print(cmd.OutOrStdout(), reports)
}
