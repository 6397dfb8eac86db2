package metrics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.TicksTotal.WithLabelValues("ok").Inc()
	m.PicksTotal.WithLabelValues("strict").Add(2)
	m.EvictionsTotal.Add(3)
	m.SetCacheUsage(4, 2048)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicksTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PicksTotal.WithLabelValues("strict")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EvictionsTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CacheItems))
	assert.Equal(t, 2048.0, testutil.ToFloat64(m.CacheBytes))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.EvictionsTotal.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.EvictionsTotal))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.TicksTotal.WithLabelValues("error").Inc()

	path := filepath.Join(t.TempDir(), "kitowall.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `kitowall_ticks_total{result="error"} 1`)
}

func TestHandler(t *testing.T) {
	m := New()
	m.CacheItems.Set(5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "kitowall_cache_items 5")
}
