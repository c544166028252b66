package openapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"elexon/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsDocumentOrder(t *testing.T) {
	doc, err := Parse(testutil.SpecJSON)
	require.NoError(t, err)

	assert.Equal(t, "Insights.Api", doc.Title)
	assert.Equal(t, "v1", doc.Version)
	require.Len(t, doc.Paths, 12)

	var paths []string
	for _, p := range doc.Paths {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{
		"/datasets/ABUC",
		"/datasets/ABUC/stream",
		"/datasets/MID",
		"/datasets/FUELINST",
		"/generation/outturn/FUELINST",
		"/balancing/settlement/system-prices/{settlementDate}",
		"/reference/bmunits/all",
		"/datasets/SYSWARN",
		"/legacy/temperature",
		"/health",
		"/upload/notes",
		"/demand/outturn/summary",
	}, paths)
}

func TestParse_DecodesGetOperation(t *testing.T) {
	doc, err := Parse(testutil.SpecJSON)
	require.NoError(t, err)

	op := doc.Paths[0].Get
	require.NotNil(t, op)
	assert.Equal(t, "get-datasets-abuc", op.OperationID)
	assert.Equal(t, "Amount of balancing reserves under contract (ABUC)", op.Summary)
	require.Len(t, op.Parameters, 3)
	assert.Equal(t, "publishDateTimeFrom", op.Parameters[0].Name)
	assert.True(t, op.Parameters[0].Required)
	assert.Equal(t, "date-time", op.Parameters[0].Schema.Format)

	// $ref resolved against components.parameters
	assert.Equal(t, "format", op.Parameters[2].Name)
	assert.False(t, op.Parameters[2].Required)

	example, ok := op.Example("200", "application/json")
	require.True(t, ok)
	m, ok := example.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m, "data")
}

func TestParse_PostOnlyPathHasNoGet(t *testing.T) {
	doc, err := Parse(testutil.SpecJSON)
	require.NoError(t, err)

	for _, p := range doc.Paths {
		if p.Path == "/upload/notes" {
			assert.Nil(t, p.Get)
			return
		}
	}
	t.Fatal("post-only path missing")
}

func TestParse_YAML(t *testing.T) {
	spec := `
openapi: 3.0.1
info:
  title: yaml
  version: "2"
paths:
  /b/second:
    get:
      operationId: second
      summary: Second (TWO)
  /a/first:
    get:
      operationId: first
      summary: First
      parameters:
        - name: settlementDate
          in: query
          required: true
          schema:
            type: string
            format: date
      responses:
        "200":
          content:
            application/json:
              example:
                - a: 1
`
	doc, err := Parse([]byte(spec))
	require.NoError(t, err)
	require.Len(t, doc.Paths, 2)
	assert.Equal(t, "/b/second", doc.Paths[0].Path)
	assert.Equal(t, "/a/first", doc.Paths[1].Path)

	example, ok := doc.Paths[1].Get.Example("200", "application/json")
	require.True(t, ok)
	list, ok := example.([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestParse_JSONEscapedSlash(t *testing.T) {
	spec := `{
  "info": {"title": "Insights.Api", "version": "v1"},
  "paths": {
    "\/datasets\/MID": {"get": {"operationId": "get-datasets-mid", "summary": "Market Index (MID)",
      "description": "See https:\/\/bmrs.elexon.co.uk for the maximum data output range of 7 days.",
      "responses": {"200": {"content": {"application/json": {"example": {"data": [{"price": 86.45}]}}}}}}},
    "/health": {"get": {"operationId": "health"}}
  }
}`
	doc, err := Parse([]byte(spec))
	require.NoError(t, err)
	require.Len(t, doc.Paths, 2)
	assert.Equal(t, "/datasets/MID", doc.Paths[0].Path)
	assert.Equal(t, "/health", doc.Paths[1].Path)
	assert.Contains(t, doc.Paths[0].Get.Description, "https://bmrs.elexon.co.uk")

	example, ok := doc.Paths[0].Get.Example("200", "application/json")
	require.True(t, ok)
	assert.Contains(t, example, "data")
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`{"openapi": "3.0.1"}`))
	assert.ErrorIs(t, err, ErrNoPaths)

	_, err = Parse([]byte(`{"paths": [1, 2]}`))
	assert.ErrorIs(t, err, ErrNoPaths)

	_, err = Parse([]byte(`{"paths": {`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"paths": {"/x": {"get": {"operationId": "x", "parameters": [{"$ref": "#/components/parameters/nope"}]}}}}`))
	assert.ErrorContains(t, err, "unresolved parameter reference")
}

func TestExample_Missing(t *testing.T) {
	var op *Operation
	_, ok := op.Example("200", "application/json")
	assert.False(t, ok)

	op = &Operation{Responses: map[string]Response{"200": {Content: map[string]MediaType{"application/json": {}}}}}
	_, ok = op.Example("200", "application/json")
	assert.False(t, ok)
}

func TestLoad_FileAndURL(t *testing.T) {
	ctx := context.Background()

	doc, err := Load(ctx, testutil.WriteSpec(t))
	require.NoError(t, err)
	assert.Len(t, doc.Paths, 12)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(testutil.SpecJSON)
	}))
	defer srv.Close()

	doc, err = Load(ctx, srv.URL+"/openapi.json")
	require.NoError(t, err)
	assert.Len(t, doc.Paths, 12)

	_, err = Load(ctx, srv.URL+"/missing.json")
	assert.ErrorContains(t, err, "returned 404")

	_, err = Load(ctx, "/does/not/exist.json")
	assert.Error(t, err)
}
