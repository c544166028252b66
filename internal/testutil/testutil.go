// Package testutil provides fixtures shared by package tests.
package testutil

import (
	_ "embed"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SpecJSON is a trimmed BMRS Insights specification covering every registry rule:
// stream and obsolete exclusions, duplicate and comma-separated codes, path
// templates, list and object examples and max-days constraints.
//
//go:embed testdata/bmrs-openapi.json
var SpecJSON []byte

// SpecDatasetCount is the number of datasets the fixture yields.
const SpecDatasetCount = 9

// WriteSpec writes SpecJSON into a temp dir and returns its path.
func WriteSpec(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bmrs-openapi.json")
	require.NoError(t, os.WriteFile(path, SpecJSON, 0o600))
	return path
}
