package realtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"elexon/internal/progress"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSBridge subscribes to download progress subjects and pushes messages into the Hub.
type NATSBridge struct {
	conn   *nats.Conn
	hub    *Hub
	prefix string
	logger zerolog.Logger
}

func NewNATSBridge(natsURL, prefix string, hub *Hub) (*NATSBridge, error) {
	nc, err := nats.Connect(natsURL, nats.Name("elexon-realtime"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSBridge{conn: nc, hub: hub, prefix: prefix, logger: hub.logger}, nil
}

// Subscribe listens for progress messages on <prefix>.download.*.progress
func (b *NATSBridge) Subscribe() error {
	subject := progress.WildcardSubject(b.prefix)
	_, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		data, downloadID, err := envelope(msg.Subject, msg.Data)
		if err != nil {
			b.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("nats: dropping message")
			return
		}
		b.hub.Publish(downloadID, data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %q: %w", subject, err)
	}

	b.logger.Info().Str("subject", subject).Msg("NATS bridge subscribed")
	return nil
}

// Close drains the NATS connection.
func (b *NATSBridge) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn().Err(err).Msg("nats drain")
	}
}

// envelope wraps a raw progress event for the websocket clients.
func envelope(subject string, data []byte) ([]byte, string, error) {
	downloadID, err := parseDownloadIDFromSubject(subject)
	if err != nil {
		return nil, "", err
	}
	out, err := json.Marshal(outgoingMsg{
		Type:       "download.progress",
		DownloadID: downloadID,
		Payload:    json.RawMessage(data),
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal envelope: %w", err)
	}
	return out, downloadID, nil
}

// parseDownloadIDFromSubject extracts the id from "<prefix>.download.<id>.progress".
// The prefix may itself contain dots.
func parseDownloadIDFromSubject(subject string) (string, error) {
	parts := strings.Split(subject, ".")
	n := len(parts)
	if n < 4 || parts[n-3] != "download" || parts[n-1] != "progress" {
		return "", fmt.Errorf("unexpected subject %q", subject)
	}
	if parts[n-2] == "" {
		return "", fmt.Errorf("empty download id in %q", subject)
	}
	return parts[n-2], nil
}
