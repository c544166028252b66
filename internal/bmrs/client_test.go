package bmrs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"elexon/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusServer answers with the given statuses in turn, repeating the last one.
func statusServer(t *testing.T, statuses ...int) (*httptest.Server, *int) {
	t.Helper()
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		status := statuses[min(calls, len(statuses)-1)]
		calls++
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status < 400 {
			_, _ = w.Write([]byte(`{"data":[{"a":1}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

type recordingSleeper struct {
	waits []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

type countingObserver struct {
	attempts int
	retries  int
}

func (o *countingObserver) ObserveAttempt(string, int, time.Duration) { o.attempts++ }
func (o *countingObserver) ObserveRetry(string, int)                  { o.retries++ }

func TestGet_RetriesThenSucceeds(t *testing.T) {
	srv, calls := statusServer(t, 503, 503, 200)
	sleeper := &recordingSleeper{}
	observer := &countingObserver{}
	c := NewClient(srv.URL, WithSleeper(sleeper.sleep), WithObserver(observer))

	resp, err := c.Get(context.Background(), "/datasets/MID", url.Values{"from": {"2024-01-01"}})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, resp.Attempts)
	assert.JSONEq(t, `{"data":[{"a":1}]}`, string(resp.Body))
	assert.Equal(t, 3, *calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.waits)
	assert.Equal(t, 3, observer.attempts)
	assert.Equal(t, 2, observer.retries)
}

func TestGet_RetriesExhausted(t *testing.T) {
	srv, calls := statusServer(t, 503)
	sleeper := &recordingSleeper{}
	c := NewClient(srv.URL, WithSleeper(sleeper.sleep))

	_, err := c.Get(context.Background(), "/datasets/MID", nil)
	require.Error(t, err)
	assert.Equal(t, 5, *calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second}, sleeper.waits)

	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 5, exhausted.Attempts)
	require.NotNil(t, exhausted.Last)
	assert.Equal(t, 503, exhausted.Last.StatusCode)
	assert.Equal(t, map[string]any{"error": "boom"}, exhausted.Last.Detail)

	assert.ErrorIs(t, err, errs.ErrRetriesExhausted)
	assert.ErrorIs(t, err, errs.ErrHTTPStatus)
	assert.Equal(t, errs.ClassTransient, errs.Classify(err))
}

func TestGet_PermanentFailureNotRetried(t *testing.T) {
	srv, calls := statusServer(t, 404)
	sleeper := &recordingSleeper{}
	c := NewClient(srv.URL, WithSleeper(sleeper.sleep))

	_, err := c.Get(context.Background(), "/datasets/NOPE", nil)
	require.Error(t, err)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, sleeper.waits)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 404, httpErr.StatusCode)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, errs.ClassUpstream, errs.Classify(err))
}

func TestGet_EveryRetryableStatus(t *testing.T) {
	for _, status := range []int{429, 500, 502, 503} {
		srv, calls := statusServer(t, status, 200)
		c := NewClient(srv.URL, WithSleeper((&recordingSleeper{}).sleep))

		_, err := c.Get(context.Background(), "/x", nil)
		require.NoError(t, err, "status %d", status)
		assert.Equal(t, 2, *calls)
	}
}

func TestGet_MaxAttempts(t *testing.T) {
	srv, calls := statusServer(t, 500)
	c := NewClient(srv.URL, WithSleeper((&recordingSleeper{}).sleep), WithMaxAttempts(2))

	_, err := c.Get(context.Background(), "/x", nil)
	assert.ErrorIs(t, err, errs.ErrRetriesExhausted)
	assert.Equal(t, 2, *calls)
}

func TestGet_SendsQueryAndPath(t *testing.T) {
	var got *url.URL
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/bmrs/api/v1/")
	_, err := c.Get(context.Background(), "/datasets/FUELINST", url.Values{"fuelType": {"CCGT", "WIND"}})
	require.NoError(t, err)
	assert.Equal(t, "/bmrs/api/v1/datasets/FUELINST", got.Path)
	assert.Equal(t, []string{"CCGT", "WIND"}, got.Query()["fuelType"])
}

func TestGet_ContextCanceledDuringBackoff(t *testing.T) {
	srv, calls := statusServer(t, 503)
	c := NewClient(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "/x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, errs.ClassCanceled, errs.Classify(err))
}

func TestGet_RateLimit(t *testing.T) {
	srv, calls := statusServer(t, 200)
	c := NewClient(srv.URL, WithRateLimit(1000))

	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "/x", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, *calls)
}

func TestExpandPath(t *testing.T) {
	path, err := ExpandPath("/balancing/settlement/system-prices/{settlementDate}", url.Values{"settlementDate": {"2024-01-01"}})
	require.NoError(t, err)
	assert.Equal(t, "/balancing/settlement/system-prices/2024-01-01", path)

	path, err = ExpandPath("/x/{name}", url.Values{"name": {"a b/c"}})
	require.NoError(t, err)
	assert.Equal(t, "/x/a%20b%2Fc", path)

	_, err = ExpandPath("/x/{name}", nil)
	assert.ErrorIs(t, err, errs.ErrMissingParams)
}
