// Package sink exports downloaded tables to databases, object storage, Kafka
// or local files.
package sink

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"elexon"
	"elexon/internal/frame"
)

// Sink receives the table of one download under a dataset name.
type Sink interface {
	Write(ctx context.Context, name string, f *frame.Frame) error
	Close() error
}

const (
	KindPostgres  = "postgres"
	KindMySQL     = "mysql"
	KindSQLServer = "sqlserver"
	KindS3        = "s3"
	KindKafka     = "kafka"
	KindCSV       = "csv"
	KindJSON      = "json"
)

var Kinds = []string{KindPostgres, KindMySQL, KindSQLServer, KindS3, KindKafka, KindCSV, KindJSON}

// Open builds the sink named by kind from the configuration. target is the
// output directory of the file sinks and is ignored by the others.
func Open(ctx context.Context, kind string, cfg elexon.AppConfig, target string) (Sink, error) {
	switch kind {
	case KindPostgres, KindMySQL, KindSQLServer:
		db := DBConfigFromApp(cfg)
		db.Type = DBType(kind)
		return OpenDB(ctx, db)
	case KindS3:
		s3 := cfg.SinkConfig.S3
		s, err := NewObjectSink(ObjectConfig{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			Prefix:    s3.Prefix,
			UseSSL:    s3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindKafka:
		s, err := NewKafkaSink(cfg.SinkConfig.Kafka.Brokers, cfg.SinkConfig.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindCSV, KindJSON:
		s, err := NewFileSink(target, kind)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown sink %q, expected one of %s", kind, strings.Join(Kinds, ", "))
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// TableName turns a dataset code or operation id into a safe table or object name.
func TableName(name string) string {
	out := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if out == "" {
		return "dataset"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "d_" + out
	}
	return out
}
