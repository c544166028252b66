package params

import (
	"encoding/json"
	"testing"
	"time"

	"elexon/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalar_Text(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))

	assert.Equal(t, "MID", String("MID").Text())
	assert.Equal(t, "1.5", Number(1.5).Text())
	assert.Equal(t, "48", Number(48).Text())
	assert.Equal(t, "true", Bool(true).Text())
	assert.Equal(t, "2024-01-02T02:04:05Z", Time(ts).Text())

	got, ok := Time(ts).AsTime()
	require.True(t, ok)
	assert.True(t, ts.Equal(got))
	_, ok = String("x").AsTime()
	assert.False(t, ok)
	assert.Equal(t, KindNumber, Number(1).Kind())
	assert.Equal(t, "time", KindTime.String())
}

func TestBag_Query(t *testing.T) {
	b := NewBag().
		Set("from", Single(String("2024-01-01"))).
		Set("bmUnit", Strings("A", "B")).
		Set("settlementPeriod", Single(Number(3)))

	q := b.Query()
	assert.Equal(t, "2024-01-01", q.Get("from"))
	assert.Equal(t, []string{"A", "B"}, q["bmUnit"])
	assert.Equal(t, "3", q.Get("settlementPeriod"))
	assert.Equal(t, []string{"bmUnit", "from", "settlementPeriod"}, b.Keys())
	assert.Equal(t, 3, b.Len())
}

func TestBag_RenameCloneDelete(t *testing.T) {
	b := NewBag().Set("_from", Single(String("2024-01-01")))
	b.Rename("_from", "from")
	assert.False(t, b.Has("_from"))
	assert.True(t, b.Has("from"))

	b.Rename("missing", "other")
	assert.False(t, b.Has("other"))

	c := b.Clone()
	c.Delete("from")
	assert.True(t, b.Has("from"))
	assert.False(t, c.Has("from"))
}

func TestFromMap(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"from":"2024-01-01","bmUnit":["A","B"],"period":3,"flag":true}`), &raw))

	b, err := FromMap(raw)
	require.NoError(t, err)

	v, ok := b.Get("bmUnit")
	require.True(t, ok)
	assert.True(t, v.IsList())
	assert.Equal(t, []string{"A", "B"}, v.Texts())

	v, _ = b.Get("period")
	assert.False(t, v.IsList())
	assert.Equal(t, KindNumber, v.First().Kind())

	assert.Equal(t, map[string]any{
		"from":   "2024-01-01",
		"bmUnit": []any{"A", "B"},
		"period": float64(3),
		"flag":   true,
	}, b.Map())

	_, err = FromMap(map[string]any{"bad": map[string]any{"nested": 1}})
	assert.ErrorIs(t, err, errs.ErrInvalidParam)

	_, err = FromMap(map[string]any{"n": json.Number("12")})
	assert.NoError(t, err)
}

func TestParsePairs(t *testing.T) {
	b, err := ParsePairs([]string{"from=2024-01-01", "bmUnit=A", "bmUnit=B", "note=a=b"})
	require.NoError(t, err)

	v, _ := b.Get("from")
	assert.False(t, v.IsList())
	assert.Equal(t, "2024-01-01", v.First().Text())

	v, _ = b.Get("bmUnit")
	assert.True(t, v.IsList())
	assert.Equal(t, []string{"A", "B"}, v.Texts())

	v, _ = b.Get("note")
	assert.Equal(t, "a=b", v.First().Text())

	_, err = ParsePairs([]string{"novalue"})
	assert.ErrorIs(t, err, errs.ErrInvalidParam)
	_, err = ParsePairs([]string{"=x"})
	assert.ErrorIs(t, err, errs.ErrInvalidParam)
}

func TestValue_Empty(t *testing.T) {
	v := List()
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, Scalar{}, v.First())
	assert.Equal(t, []any{}, v.Interface())
}
