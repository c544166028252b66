package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"elexon/internal/cli/ui"
	"elexon/internal/testutil"
	"elexon/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ui.Messages = io.Discard

	base := []string{"--env", filepath.Join(t.TempDir(), "missing.env"), "--spec", testutil.WriteSpec(t)}
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return out.String(), err
}

func fakeBMRS(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{
			map[string]any{"from": q.Get("from"), "to": q.Get("to"), "price": 71.25},
		}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDatasetsCommand(t *testing.T) {
	out, err := run(t, "datasets")
	require.NoError(t, err)
	assert.Contains(t, out, "MID")
	assert.Contains(t, out, "SYSWARN_SYSWARN2")

	out, err = run(t, "datasets", "--category", "reference", "--json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "get-reference-bmunits-all", records[0]["operation"])
}

func TestDescribeCommand(t *testing.T) {
	out, err := run(t, "describe", "MID")
	require.NoError(t, err)
	assert.Contains(t, out, "get-datasets-mid")
	assert.Contains(t, out, "maximum data output range of 7 days")

	_, err = run(t, "describe", "NOPE")
	assert.ErrorContains(t, err, "elexon datasets")
}

func TestDownloadCommand_CSV(t *testing.T) {
	srv := fakeBMRS(t)

	out, err := run(t, "--base-url", srv.URL, "download", "MID",
		"-p", "from=2024-01-01", "-p", "to=2024-01-10", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "from,price,to\n2024-01-01,71.25,2024-01-08\n2024-01-08,71.25,2024-01-10\n", out)
}

func TestDownloadCommand_JSONAndTable(t *testing.T) {
	srv := fakeBMRS(t)

	out, err := run(t, "--base-url", srv.URL, "download", "MID",
		"-p", "_from=2024-01-01", "-p", "to=2024-01-02", "-f", "json", "-o", "json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-01", records[0]["from"])

	out, err = run(t, "--base-url", srv.URL, "download", "MID",
		"-p", "from=2024-01-01", "-p", "to=2024-01-02")
	require.NoError(t, err)
	assert.Contains(t, out, "price")
	assert.Contains(t, out, "71.25")
}

func TestDownloadCommand_Sink(t *testing.T) {
	srv := fakeBMRS(t)
	dir := t.TempDir()

	_, err := run(t, "--base-url", srv.URL, "download", "MID",
		"-p", "from=2024-01-01", "-p", "to=2024-01-02", "--sink", "csv", "--target", dir)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "get_datasets_mid.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "from,price,to\n"))
}

func TestDownloadCommand_Errors(t *testing.T) {
	srv := fakeBMRS(t)

	_, err := run(t, "--base-url", srv.URL, "download", "MID", "-p", "from=2024-01-01")
	assert.ErrorContains(t, err, "missing required parameters")

	_, err = run(t, "--base-url", srv.URL, "download", "MID", "-p", "from")
	assert.ErrorContains(t, err, "name=value")

	_, err = run(t, "--base-url", srv.URL, "download", "MID", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output")

	_, err = run(t, "--base-url", srv.URL, "download", "get-health", "-f", "df")
	assert.ErrorContains(t, err, "format=json")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := run(t, "token", "--subject", "analyst")
	require.NoError(t, err)
	claims, err := pkg.ValidateToken(strings.TrimSpace(out), "cli-secret")
	require.NoError(t, err)
	assert.Equal(t, "analyst", claims.Subject)
}
