// Package progress publishes per-chunk progress of a download. Reporting is
// best-effort and never fails or slows down the download it describes.
package progress

import (
	"encoding/json"
	"fmt"
	"time"

	"elexon"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Status represents the state of one chunk of a download
type Status string

const (
	StatusStarted   Status = "started"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Event is one progress update
type Event struct {
	DownloadID string    `json:"downloadId"`
	Dataset    string    `json:"dataset"`
	Chunk      int       `json:"chunk"`
	Total      int       `json:"total"`
	Status     Status    `json:"status"`
	RowCount   int       `json:"rowCount"`
	Message    string    `json:"message,omitempty"`
	Time       time.Time `json:"time"`
}

// Reporter receives progress events
type Reporter interface {
	Report(Event)
	Close()
}

// Subject is the NATS subject events of one download are published on.
func Subject(prefix, downloadID string) string {
	return fmt.Sprintf("%s.download.%s.progress", prefix, downloadID)
}

// WildcardSubject matches the events of every download.
func WildcardSubject(prefix string) string {
	return prefix + ".download.*.progress"
}

// NATSReporter sends progress updates via NATS
type NATSReporter struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

// NewNATSReporter connects to NATS. If the connection fails a LogReporter is
// returned instead, the download goes on without remote progress.
func NewNATSReporter(natsURL, prefix string) Reporter {
	logger := elexon.Logger
	nc, err := nats.Connect(natsURL, nats.Name("elexon-download"))
	if err != nil {
		logger.Warn().Err(err).Str("url", natsURL).Msg("NATS connection failed, progress reporting disabled")
		return NewLogReporter()
	}
	logger.Debug().Str("url", natsURL).Msg("NATS connected, publishing progress")
	return &NATSReporter{conn: nc, prefix: prefix, logger: logger}
}

func (r *NATSReporter) Report(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		r.logger.Error().Err(err).Msg("progress marshal error")
		return
	}
	if err := r.conn.Publish(Subject(r.prefix, e.DownloadID), data); err != nil {
		r.logger.Warn().Err(err).Msg("progress publish error")
	}
}

// Close drains and closes the NATS connection
func (r *NATSReporter) Close() {
	if r.conn == nil {
		return
	}
	if err := r.conn.Drain(); err != nil {
		r.logger.Warn().Err(err).Msg("NATS drain error")
	}
}

// LogReporter writes events to the application logger.
type LogReporter struct {
	logger zerolog.Logger
}

func NewLogReporter() *LogReporter {
	return &LogReporter{logger: elexon.Logger}
}

func (r *LogReporter) Report(e Event) {
	r.logger.Info().
		Str("download", e.DownloadID).
		Str("dataset", e.Dataset).
		Str("status", string(e.Status)).
		Int("rows", e.RowCount).
		Msgf("chunk %d/%d", e.Chunk, e.Total)
}

func (r *LogReporter) Close() {}

// Multi fans events out to several reporters.
type Multi []Reporter

func (m Multi) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}

func (m Multi) Close() {
	for _, r := range m {
		r.Close()
	}
}

// Noop discards events.
type Noop struct{}

func (Noop) Report(Event) {}
func (Noop) Close()       {}

// Func adapts a function to a Reporter.
type Func func(Event)

func (f Func) Report(e Event) { f(e) }
func (f Func) Close()         {}
