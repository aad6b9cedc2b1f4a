package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCounters(t *testing.T) {
	before := testutil.ToFloat64(SynthesisAttempts.WithLabelValues("http", "success"))
	RecordAttempt("http", "success")
	RecordAttempt("http", "success")
	assert.Equal(t, before+2, testutil.ToFloat64(SynthesisAttempts.WithLabelValues("http", "success")))

	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("miss"))
	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)
	assert.Equal(t, hits+1, testutil.ToFloat64(CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheLookups.WithLabelValues("miss")))

	refreshed := testutil.ToFloat64(CredentialRefreshes.WithLabelValues("throttled"))
	RecordRefresh("throttled")
	assert.Equal(t, refreshed+1, testutil.ToFloat64(CredentialRefreshes.WithLabelValues("throttled")))

	units := testutil.ToFloat64(UnitsTotal.WithLabelValues("line", "failed"))
	RecordUnit("line", "failed")
	assert.Equal(t, units+1, testutil.ToFloat64(UnitsTotal.WithLabelValues("line", "failed")))
}

func TestHandlerServesMetrics(t *testing.T) {
	RecordCaption(3)
	RecordSynthesis(true, 0.25)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "voxcue_caption_cues")
	assert.Contains(t, string(body), `voxcue_synthesis_duration_seconds_count{outcome="success"}`)
}
