package sink

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"elexon"
	"elexon/internal/frame"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

type DBType string

const (
	DBTypePostgres  DBType = "postgres"
	DBTypeMySQL     DBType = "mysql"
	DBTypeSQLServer DBType = "sqlserver"
)

// sql server accepts at most 2100 parameters per statement
const sqlServerMaxParams = 2000

type DBConfig struct {
	Type      DBType
	Host      string
	Port      int
	User      string
	Password  string
	Name      string
	Schema    string
	SSLMode   string
	BatchSize int
}

func DBConfigFromApp(cfg elexon.AppConfig) DBConfig {
	db := cfg.SinkConfig.DB
	return DBConfig{
		Type:      DBType(db.Type),
		Host:      db.Host,
		Port:      db.Port,
		User:      db.User,
		Password:  db.Password,
		Name:      db.Name,
		Schema:    db.Schema,
		SSLMode:   db.SSLMode,
		BatchSize: db.BatchSize,
	}
}

// BuildConnectionString returns the DSN understood by the driver of c.Type.
func (c DBConfig) BuildConnectionString() string {
	switch c.Type {
	case DBTypePostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
	case DBTypeSQLServer:
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
			RawQuery: url.Values{"database": {c.Name}}.Encode(),
		}
		return u.String()
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.User, c.Password, c.Host, c.Port, c.Name)
	}
}

// OpenDB connects to the configured database. Postgres goes through pgx and
// COPY, MySQL and SQL Server through database/sql and batched INSERTs.
func OpenDB(ctx context.Context, cfg DBConfig) (Sink, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}

	switch cfg.Type {
	case DBTypePostgres:
		conn, err := pgx.Connect(ctx, cfg.BuildConnectionString())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		schema := cfg.Schema
		if schema == "" {
			schema = "public"
		}
		return &PostgresSink{conn: conn, schema: schema, logger: elexon.Logger}, nil

	case DBTypeMySQL, DBTypeSQLServer:
		db, err := sql.Open(string(cfg.Type), cfg.BuildConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Type, err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Type, err)
		}
		return &SQLSink{db: db, cfg: cfg, logger: elexon.Logger}, nil

	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

// PostgresSink copies rows into a text-typed table created on first use.
type PostgresSink struct {
	conn   *pgx.Conn
	schema string
	logger zerolog.Logger
}

func (s *PostgresSink) Write(ctx context.Context, name string, f *frame.Frame) error {
	table := TableName(name)
	if len(f.Columns) == 0 {
		return nil
	}

	if _, err := s.conn.Exec(ctx, createTableSQL(DBTypePostgres, s.schema, table, f.Columns)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	rows := make([][]any, len(f.Rows))
	for i := range f.Rows {
		rows[i] = rowValues(f, i)
	}
	n, err := s.conn.CopyFrom(ctx, pgx.Identifier{s.schema, table}, f.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy into %s: %w", table, err)
	}

	s.logger.Info().Str("table", s.schema+"."+table).Int64("rows", n).Msg("Rows copied")
	return nil
}

func (s *PostgresSink) Close() error {
	return s.conn.Close(context.Background())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLSink inserts rows in multi-row batches through database/sql.
type SQLSink struct {
	db     *sql.DB
	cfg    DBConfig
	logger zerolog.Logger
}

func (s *SQLSink) Write(ctx context.Context, name string, f *frame.Frame) error {
	if len(f.Columns) == 0 {
		return nil
	}
	return writeBatches(ctx, s.db, s.cfg, TableName(name), f, s.logger)
}

func (s *SQLSink) Close() error {
	return s.db.Close()
}

func writeBatches(ctx context.Context, db execer, cfg DBConfig, table string, f *frame.Frame, logger zerolog.Logger) error {
	if _, err := db.ExecContext(ctx, createTableSQL(cfg.Type, cfg.Schema, table, f.Columns)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	batchSize := batchRows(cfg.Type, cfg.BatchSize, len(f.Columns))
	batchNum := 0
	for start := 0; start < len(f.Rows); start += batchSize {
		end := min(start+batchSize, len(f.Rows))
		query, values := insertSQL(cfg.Type, cfg.Schema, table, f, start, end)
		if _, err := db.ExecContext(ctx, query, values...); err != nil {
			return fmt.Errorf("batch %d failed: %w", batchNum, err)
		}
		batchNum++
	}

	logger.Info().Str("table", table).Int("rows", len(f.Rows)).Int("batches", batchNum).Msg("Rows inserted")
	return nil
}

// batchRows caps the batch so one statement stays under the driver parameter limit.
func batchRows(dbType DBType, batchSize, numCols int) int {
	if batchSize <= 0 {
		batchSize = 500
	}
	if dbType == DBTypeSQLServer && numCols > 0 {
		batchSize = min(batchSize, max(1, sqlServerMaxParams/numCols))
	}
	return batchSize
}

func createTableSQL(dbType DBType, schema, table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		switch dbType {
		case DBTypeSQLServer:
			defs[i] = quoteIdent(dbType, c) + " NVARCHAR(MAX)"
		default:
			defs[i] = quoteIdent(dbType, c) + " TEXT"
		}
	}

	if dbType == DBTypeSQLServer {
		if schema == "" {
			schema = "dbo"
		}
		return fmt.Sprintf("IF OBJECT_ID(N'%s.%s', N'U') IS NULL CREATE TABLE %s (%s)",
			schema, table, qualified(dbType, schema, table), strings.Join(defs, ", "))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", qualified(dbType, schema, table), strings.Join(defs, ", "))
}

func insertSQL(dbType DBType, schema, table string, f *frame.Frame, start, end int) (string, []any) {
	numCols := len(f.Columns)
	values := make([]any, 0, (end-start)*numCols)
	placeholders := make([]string, 0, end-start)

	cols := make([]string, numCols)
	for j, c := range f.Columns {
		cols[j] = quoteIdent(dbType, c)
	}

	for i := start; i < end; i++ {
		rowPH := make([]string, numCols)
		for j := range f.Columns {
			rowPH[j] = getPlaceholder(dbType, len(values)+1)
			values = append(values, cellValue(f.Rows[i][f.Columns[j]]))
		}
		placeholders = append(placeholders, "("+strings.Join(rowPH, ",")+")")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		qualified(dbType, schema, table),
		strings.Join(cols, ","),
		strings.Join(placeholders, ","))
	return query, values
}

// getPlaceholder returns the placeholder syntax for the given DB type
func getPlaceholder(dbType DBType, index int) string {
	switch dbType {
	case DBTypePostgres:
		return fmt.Sprintf("$%d", index)
	case DBTypeSQLServer:
		return fmt.Sprintf("@p%d", index)
	default: // MySQL
		return "?"
	}
}

func quoteIdent(dbType DBType, name string) string {
	switch dbType {
	case DBTypeSQLServer:
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	case DBTypeMySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	default:
		return pq.QuoteIdentifier(name)
	}
}

func qualified(dbType DBType, schema, table string) string {
	if schema == "" {
		return quoteIdent(dbType, table)
	}
	return quoteIdent(dbType, schema) + "." + quoteIdent(dbType, table)
}

func rowValues(f *frame.Frame, i int) []any {
	out := make([]any, len(f.Columns))
	for j, c := range f.Columns {
		out[j] = cellValue(f.Rows[i][c])
	}
	return out
}

// cellValue stores every cell as text, NULL when absent.
func cellValue(v any) any {
	if v == nil {
		return nil
	}
	return frame.CellString(v)
}
