package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/climate-normals-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/climate-normals-etl/internal/config"
	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/observability"
	"github.com/spf13/cobra"
)

// options holds the flags shared by every subcommand.
type options struct {
	category  string
	frequency string
	variable  string
	compact   bool
	archive   string
	logLevel  string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "normals",
		Short: "Parse NOAA 1981-2010 station climate normals reports",
		Long: `Parse NOAA 1981-2010 station climate normals reports into JSON.

Each report becomes an object with the station metadata ("meta") and the
normals tree ("normals": category -> frequency -> variable -> values).
Values are the raw encoded integers with completeness flags removed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.category, "category", "", "Print only this category (e.g. \"Temperature-Related\")")
	pf.StringVar(&opts.frequency, "frequency", "", "Print only this frequency within --category (e.g. \"Monthly\")")
	pf.StringVar(&opts.variable, "variable", "", "Print only this variable within --frequency (e.g. \"mly-tmax-normal\")")
	pf.BoolVar(&opts.compact, "compact", false, "Print one JSON document per line")
	pf.StringVar(&opts.archive, "archive", "", "SQLite archive path; parsed reports are stored there")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level for diagnostics on stderr")

	cmd.AddCommand(
		newParseCommand(opts),
		newFetchCommand(opts),
		newShowCommand(opts),
	)

	return cmd
}

func (o *options) logger(w io.Writer) *slog.Logger {
	return observability.NewLoggerTo(w, &config.Config{LogLevel: o.logLevel, LogFormat: "text"})
}

// openArchive opens the --archive database, or returns nil when unset.
func (o *options) openArchive() (*sqlite.Archive, error) {
	if o.archive == "" {
		return nil, nil
	}
	a, err := sqlite.Open(o.archive)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return a, nil
}

// selection returns the part of a report picked by the filter flags.
func (o *options) selection(report domain.StationReport) (any, error) {
	if o.category == "" {
		if o.frequency != "" || o.variable != "" {
			return nil, errors.New("--frequency and --variable require --category")
		}
		return report, nil
	}

	freqs, ok := report.Normals[o.category]
	if !ok {
		return nil, fmt.Errorf("station %s: no category %q", report.ID, o.category)
	}
	if o.frequency == "" {
		if o.variable != "" {
			return nil, errors.New("--variable requires --frequency")
		}
		return freqs, nil
	}

	vars, ok := freqs[o.frequency]
	if !ok {
		return nil, fmt.Errorf("station %s: no frequency %q in %q", report.ID, o.frequency, o.category)
	}
	if o.variable == "" {
		return vars, nil
	}

	series, ok := vars[o.variable]
	if !ok {
		return nil, fmt.Errorf("station %s: no variable %q in %s/%s", report.ID, o.variable, o.category, o.frequency)
	}
	return series, nil
}

// store writes the reports to the --archive database when one is set.
func (o *options) store(ctx context.Context, reports []domain.StationReport) error {
	archive, err := o.openArchive()
	if err != nil || archive == nil {
		return err
	}
	defer archive.Close()
	return archive.LoadBatch(ctx, reports)
}

// print writes the selection of each report as JSON.
func (o *options) print(w io.Writer, reports []domain.StationReport) error {
	enc := json.NewEncoder(w)
	if !o.compact {
		enc.SetIndent("", "  ")
	}
	for _, r := range reports {
		v, err := o.selection(r)
		if err != nil {
			return err
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("write %s: %w", r.ID, err)
		}
	}
	return nil
}
