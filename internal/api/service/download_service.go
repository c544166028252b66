package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"elexon"
	"elexon/internal/bmrs"
	"elexon/internal/chunk"
	"elexon/internal/errs"
	"elexon/internal/frame"
	"elexon/internal/metric"
	"elexon/internal/params"
	"elexon/internal/progress"
	"elexon/internal/registry"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Format string

const (
	FormatDataframe Format = "df"
	FormatJSON      Format = "json"
)

// Getter issues one GET against the API. *bmrs.Client implements it.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (*bmrs.Response, error)
}

// Request describes one download.
type Request struct {
	// DownloadID names the download on progress events. A uuid is generated
	// when empty so callers can subscribe before the download starts.
	DownloadID string
	Alias      string
	Format     Format
	// Progress turns on per-chunk progress events.
	Progress bool
	// DateChunkCols overrides chunk column detection, one or two names.
	DateChunkCols []string
	Params        *params.Bag
}

// Result holds Frame for the df format and Data for the json format.
type Result struct {
	DownloadID string
	Operation  string
	Format     Format
	Frame      *frame.Frame
	Data       any
	Chunks     int
}

func (r *Result) RowCount() int {
	if r.Frame != nil {
		return r.Frame.RowCount
	}
	return countRecords(r.Data)
}

// UnsupportedFormatError is returned before any request when a dataset does
// not offer the requested format.
type UnsupportedFormatError struct {
	Operation string
	Format    string
	Offered   registry.OutputFormat
}

func (e *UnsupportedFormatError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("unsupported format %q, use df or json", e.Format)
	}
	return fmt.Sprintf("dataset %s offers %s, not %s; use format=json", e.Operation, e.Offered, e.Format)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return errs.ErrUnsupportedFormat
}

// ParseFormat accepts "df", "json" or an empty string.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatDataframe, FormatJSON:
		return f, nil
	default:
		return "", &UnsupportedFormatError{Format: s}
	}
}

type DownloadService struct {
	registry *registry.Registry
	client   Getter
	reporter progress.Reporter
	metrics  *metric.Metrics
	logger   zerolog.Logger
}

type DownloadOption func(*DownloadService)

// WithReporter sets where progress events of requests asking for them go.
func WithReporter(r progress.Reporter) DownloadOption {
	return func(s *DownloadService) {
		s.reporter = r
	}
}

func WithMetrics(m *metric.Metrics) DownloadOption {
	return func(s *DownloadService) {
		s.metrics = m
	}
}

func NewDownloadService(reg *registry.Registry, client Getter, opts ...DownloadOption) *DownloadService {
	s := &DownloadService{
		registry: reg,
		client:   client,
		reporter: progress.NewLogReporter(),
		logger:   elexon.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Download resolves the alias, validates the parameters, plans the chunks and
// runs the requests in order. Any failure aborts the whole download.
func (s *DownloadService) Download(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	downloadID := req.DownloadID
	if downloadID == "" {
		downloadID = uuid.NewString()
	} else if _, err := uuid.Parse(downloadID); err != nil {
		return nil, fmt.Errorf("%w: download id %q is not a uuid", errs.ErrInvalidParam, downloadID)
	}

	ds, err := s.registry.Lookup(req.Alias)
	if err != nil {
		return nil, err
	}

	format, err := s.resolveFormat(ds, req.Format)
	if err != nil {
		s.metrics.ObserveDownload(ds.Operation, errs.Classify(err).String(), 0, 0)
		return nil, err
	}

	bag := params.NewBag()
	if req.Params != nil {
		bag = req.Params.Clone()
	}
	bag.Rename("_from", "from")
	chunkCols := renameCols(req.DateChunkCols, "_from", "from")

	if err := registry.ValidateParams(ds, bag.Keys()); err != nil {
		s.metrics.ObserveDownload(ds.Operation, errs.Classify(err).String(), 0, 0)
		return nil, err
	}

	plan, err := chunk.NewPlan(bag, chunk.Options{ExplicitCols: chunkCols, MaxDays: ds.MaxDays})
	if err != nil {
		s.metrics.ObserveDownload(ds.Operation, errs.Classify(err).String(), 0, 0)
		return nil, err
	}

	result := &Result{
		DownloadID: downloadID,
		Operation:  ds.Operation,
		Format:     format,
		Chunks:     len(plan.Requests),
	}

	s.logger.Info().
		Str("download", result.DownloadID).
		Str("operation", ds.Operation).
		Str("format", string(format)).
		Str("chunkMode", plan.Columns.Mode.String()).
		Str("splitList", plan.SplitList).
		Int("chunks", len(plan.Requests)).
		Msg("Starting download")

	report := s.reportFunc(req.Progress, result.DownloadID, ds.Operation, len(plan.Requests))
	report(0, progress.StatusStarted, 0, "")

	if err := s.run(ctx, ds, plan, result, report); err != nil {
		report(0, progress.StatusFailed, 0, err.Error())
		s.metrics.ObserveDownload(ds.Operation, errs.Classify(err).String(), len(plan.Requests), 0)
		s.logger.Error().Err(err).Str("download", result.DownloadID).Str("operation", ds.Operation).Msg("Download failed")
		return nil, err
	}

	rows := result.RowCount()
	report(len(plan.Requests), progress.StatusCompleted, rows, "")
	s.metrics.ObserveDownload(ds.Operation, "ok", len(plan.Requests), rows)
	s.logger.Info().
		Str("download", result.DownloadID).
		Str("operation", ds.Operation).
		Int("rows", rows).
		Dur("elapsed", time.Since(start)).
		Msg("Download complete")

	return result, nil
}

func (s *DownloadService) run(ctx context.Context, ds registry.Dataset, plan *chunk.Plan, result *Result, report reportFunc) error {
	total := len(plan.Requests)

	if !plan.Split() {
		body, err := s.fetch(ctx, ds, plan.Requests[0])
		if err != nil {
			return err
		}
		if err := shapeSingle(body, result); err != nil {
			return err
		}
		report(1, progress.StatusRunning, result.RowCount(), "")
		return nil
	}

	var records []any
	for i, bag := range plan.Requests {
		body, err := s.fetch(ctx, ds, bag)
		if err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, total, err)
		}
		decoded, err := frame.DecodeJSON(body)
		if err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, total, &frame.ConversionError{Cause: err})
		}
		data := frame.ExtractData(decoded)
		records = appendRecords(records, data)
		report(i+1, progress.StatusRunning, countRecords(data), "")
	}
	if records == nil {
		records = []any{}
	}

	if result.Format == FormatJSON {
		result.Data = records
		return nil
	}
	f, err := frame.FromRecords(records)
	if err != nil {
		return err
	}
	result.Frame = f
	return nil
}

func (s *DownloadService) fetch(ctx context.Context, ds registry.Dataset, bag *params.Bag) ([]byte, error) {
	path, query := ds.Path, bag.Query()
	if ds.IsPathTemplated() {
		expanded, err := bmrs.ExpandPath(ds.Path, query)
		if err != nil {
			return nil, err
		}
		path, query = expanded, nil
	}
	resp, err := s.client.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (s *DownloadService) resolveFormat(ds registry.Dataset, requested Format) (Format, error) {
	format, err := ParseFormat(string(requested))
	if err != nil {
		return "", err
	}
	if format == "" {
		if ds.OutputFormat.OffersDataframe() {
			return FormatDataframe, nil
		}
		return FormatJSON, nil
	}
	if format == FormatDataframe && !ds.OutputFormat.OffersDataframe() {
		return "", &UnsupportedFormatError{Operation: ds.Operation, Format: string(format), Offered: ds.OutputFormat}
	}
	return format, nil
}

// shapeSingle turns the body of an unsplit download into the requested form.
// A body that is not JSON is returned as text in the json format.
func shapeSingle(body []byte, result *Result) error {
	if result.Format == FormatDataframe {
		f, err := frame.FromBody(body)
		if err != nil {
			return err
		}
		result.Frame = f
		return nil
	}

	decoded, err := frame.DecodeJSON(body)
	if err != nil {
		result.Data = string(body)
		return nil
	}
	result.Data = frame.ExtractData(decoded)
	return nil
}

func renameCols(cols []string, from, to string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if c == from {
			c = to
		}
		out[i] = c
	}
	return out
}

func appendRecords(records []any, data any) []any {
	switch t := data.(type) {
	case nil:
		return records
	case []any:
		return append(records, t...)
	default:
		return append(records, t)
	}
}

func countRecords(data any) int {
	switch t := data.(type) {
	case nil:
		return 0
	case []any:
		return len(t)
	default:
		return 1
	}
}

type reportFunc func(n int, status progress.Status, rows int, message string)

func (s *DownloadService) reportFunc(enabled bool, downloadID, operation string, total int) reportFunc {
	if !enabled || s.reporter == nil {
		return func(int, progress.Status, int, string) {}
	}
	return func(n int, status progress.Status, rows int, message string) {
		s.reporter.Report(progress.Event{
			DownloadID: downloadID,
			Dataset:    operation,
			Chunk:      n,
			Total:      total,
			Status:     status,
			RowCount:   rows,
			Message:    message,
			Time:       time.Now().UTC(),
		})
	}
}
