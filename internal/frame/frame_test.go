package frame

import (
	"bytes"
	"encoding/json"
	"testing"

	"elexon/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBody(t *testing.T) {
	body := []byte(`{"data":[{"settlementPeriod":1,"price":86.45,"dataProvider":"APXMIDP"},{"settlementPeriod":2,"volume":10}],"metadata":{}}`)

	f, err := FromBody(body)
	require.NoError(t, err)
	assert.Equal(t, 2, f.RowCount)
	assert.Equal(t, []string{"dataProvider", "price", "settlementPeriod", "volume"}, f.Columns)
	assert.Equal(t, json.Number("86.45"), f.Rows[0]["price"])
	assert.Equal(t, []string{"", "", "2", "10"}, f.Strings(1))
}

func TestFromBody_BareListAndObject(t *testing.T) {
	f, err := FromBody([]byte(`[{"b":1,"a":2}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.Columns)

	f, err = FromBody([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, 1, f.RowCount)

	f, err = FromBody([]byte(`{"data":[]}`))
	require.NoError(t, err)
	assert.Equal(t, 0, f.RowCount)
	assert.Empty(t, f.Columns)
}

func TestFromBody_ConversionErrors(t *testing.T) {
	for _, body := range []string{`not json`, `"Healthy"`, `[1,2]`, `{"data":"x"}`} {
		_, err := FromBody([]byte(body))
		require.Error(t, err, body)
		assert.ErrorIs(t, err, errs.ErrConversion)
		assert.Contains(t, err.Error(), "format=json")
		assert.Equal(t, errs.ClassShape, errs.Classify(err))
	}
}

func TestWriteCSV(t *testing.T) {
	f, err := FromRecords([]any{
		map[string]any{"name": "T_ABRBO-1", "tags": []any{"x", "y"}, "active": true},
		map[string]any{"name": "with,comma"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.WriteCSV(&buf))
	assert.Equal(t, "active,name,tags\ntrue,T_ABRBO-1,\"[\"\"x\"\",\"\"y\"\"]\"\n,\"with,comma\",\n", buf.String())
}

func TestExtractData(t *testing.T) {
	assert.Equal(t, []any{1}, ExtractData(map[string]any{"data": []any{1}}))
	assert.Equal(t, "x", ExtractData("x"))
}
