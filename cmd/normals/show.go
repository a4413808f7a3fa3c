package main

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/spf13/cobra"
)

func newShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "show <station-id>...",
		Short:   "Print stations stored in a SQLite archive",
		Example: `  normals show --archive normals.db USC00018809`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts, args)
		},
	}
}

func runShow(cmd *cobra.Command, opts *options, ids []string) error {
	if opts.archive == "" {
		return errors.New("show requires --archive")
	}
	archive, err := opts.openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	ctx := cmd.Context()

	reports := make([]domain.StationReport, 0, len(ids))
	for _, arg := range ids {
		id, ok := domain.StationIDFromName(arg)
		if !ok {
			return fmt.Errorf("invalid station id %q", arg)
		}
		report, err := archive.Station(ctx, id)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}
	return opts.print(cmd.OutOrStdout(), reports)
}
