package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"elexon"
	"elexon/internal/api/service"
	"elexon/internal/bmrs"
	"elexon/internal/cli/ui"
	"elexon/internal/frame"
	"elexon/internal/params"
	"elexon/internal/progress"
	"elexon/internal/sink"
	"elexon/pkg"

	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputCSV   = "csv"
)

type downloadOptions struct {
	format     string
	chunkCols  []string
	params     []string
	output     string
	limit      int
	sink       string
	target     string
	progress   bool
	publish    bool
	downloadID string
}

func newDownloadCmd(opts *globalOptions) *cobra.Command {
	d := &downloadOptions{}

	cmd := &cobra.Command{
		Use:   "download <alias>",
		Short: "Download a dataset",
		Long: `Download a dataset, splitting the request as the API requires.

Parameters are given as name=value pairs, a repeated name becomes a list.
When the dataset has a maximum date range the from/to (or date/time) window
is cut into chunks; --chunk-cols names the columns when they cannot be
detected. "_from" is accepted for "from".

The result is printed (table, json or csv) or written to a sink: a database
table, an S3 object, a Kafka topic or a csv/json file in --target.`,
		Example: `  $ elexon download MID -p from=2024-01-01 -p to=2024-01-31
  $ elexon download get-balancing-settlement-system-prices-settlementdate \
      -p settlementDate=2024-01-01 -p settlementDate=2024-01-02 -o json
  $ elexon download FUELINST -p publishDateTimeFrom=2024-01-01T00:00:00Z \
      -p publishDateTimeTo=2024-01-02T00:00:00Z --sink postgres`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runDownload(ctx, cmd.OutOrStdout(), opts, d, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&d.format, "format", "f", "", "Result format: df or json (default df when the dataset is tabular)")
	f.StringSliceVar(&d.chunkCols, "chunk-cols", nil, "Columns to chunk on: one to enumerate, two for a from,to range")
	f.StringArrayVarP(&d.params, "param", "p", nil, "Request parameter name=value, repeatable")
	f.StringVarP(&d.output, "output", "o", outputTable, "Printed output: table, json or csv")
	f.IntVar(&d.limit, "limit", 50, "Rows printed in table output, 0 for all")
	f.StringVar(&d.sink, "sink", "", "Write to a sink instead of stdout: "+strings.Join(sink.Kinds, ", "))
	f.StringVar(&d.target, "target", ".", "Output directory of the csv and json sinks")
	f.BoolVar(&d.progress, "progress", false, "Print per-chunk progress")
	f.BoolVar(&d.publish, "publish", false, "Publish progress events to NATS")
	f.StringVar(&d.downloadID, "download-id", "", "Download id (uuid) used on progress events, generated when empty")
	return cmd
}

func runDownload(ctx context.Context, out io.Writer, opts *globalOptions, d *downloadOptions, alias string) error {
	cfg := elexon.GetConfig()
	if opts.baseURL != "" {
		cfg.BMRS.BaseURL = opts.baseURL
	}

	format, err := service.ParseFormat(d.format)
	if err != nil {
		return err
	}
	switch d.output {
	case outputTable, outputJSON, outputCSV:
	default:
		return fmt.Errorf("unknown output %q, expected table, json or csv", d.output)
	}

	bag, err := params.ParsePairs(d.params)
	if err != nil {
		return err
	}

	reg, err := opts.loadRegistry(ctx)
	if err != nil {
		return err
	}

	reporter := newReporter(cfg, d)
	defer reporter.Close()

	svc := service.NewDownloadService(reg, bmrs.NewClientFromConfig(cfg), service.WithReporter(reporter))
	res, err := svc.Download(ctx, service.Request{
		DownloadID:    d.downloadID,
		Alias:         alias,
		Format:        format,
		Progress:      d.progress || d.publish,
		DateChunkCols: d.chunkCols,
		Params:        bag,
	})
	if err != nil {
		return err
	}

	if d.sink != "" {
		return writeSink(ctx, cfg, d, res)
	}
	return printResult(out, d, res)
}

func newReporter(cfg elexon.AppConfig, d *downloadOptions) progress.Reporter {
	var reporters progress.Multi
	if d.progress {
		reporters = append(reporters, progress.Func(func(e progress.Event) {
			switch e.Status {
			case progress.StatusRunning:
				ui.PrintInfo("chunk %d/%d: %d rows", e.Chunk, e.Total, e.RowCount)
			case progress.StatusFailed:
				ui.PrintWarning("download %s failed", e.DownloadID)
			}
		}))
	}
	if d.publish {
		reporters = append(reporters, progress.NewNATSReporter(cfg.NatsConfig.URL, cfg.NatsConfig.SubjectPrefix))
	}
	return reporters
}

// resultFrame returns the table of a download, building one from json data.
func resultFrame(res *service.Result) (*frame.Frame, error) {
	if res.Frame != nil {
		return res.Frame, nil
	}
	return frame.FromRecords(res.Data)
}

func writeSink(ctx context.Context, cfg elexon.AppConfig, d *downloadOptions, res *service.Result) error {
	f, err := resultFrame(res)
	if err != nil {
		return err
	}

	s, err := sink.Open(ctx, d.sink, cfg, d.target)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Write(ctx, res.Operation, f); err != nil {
		return fmt.Errorf("failed to write to %s sink: %w", d.sink, err)
	}
	ui.PrintSuccess("%d rows of %s written to %s", f.RowCount, res.Operation, d.sink)
	return nil
}

func printResult(out io.Writer, d *downloadOptions, res *service.Result) error {
	switch d.output {
	case outputJSON:
		if res.Frame != nil {
			return pkg.PrettyPrint(out, res.Frame.Records())
		}
		return pkg.PrettyPrint(out, res.Data)
	case outputCSV:
		f, err := resultFrame(res)
		if err != nil {
			return err
		}
		return f.WriteCSV(out)
	default:
		f, err := resultFrame(res)
		if err != nil {
			// nested json that is not a list of records
			return pkg.PrettyPrint(out, res.Data)
		}
		fmt.Fprintln(out, ui.RenderFrame(f, d.limit))
		ui.PrintInfo("%d rows in %d requests", res.RowCount(), res.Chunks)
		return nil
	}
}
