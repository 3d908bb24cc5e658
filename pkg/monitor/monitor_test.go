package monitor

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.WorkerStarted()
	m.ObserveScan(10, 2)
	m.WorkerFinished()
	m.ObserveHunt("ok", 3*time.Millisecond)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.regionsScanned))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.treasuresFound))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeWorkers))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hunts.WithLabelValues("ok")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{
		"treasurehunt_regions_scanned_total",
		"treasurehunt_treasures_found_total",
		"treasurehunt_active_workers",
		"treasurehunt_hunts_total",
		"treasurehunt_hunt_duration_seconds",
	} {
		assert.Contains(t, body, name)
	}
}

func TestMetricsAreIndependent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.ObserveScan(5, 1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.regionsScanned))
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"info":  slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger("warn", "json", &buf)
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept", "component", "engine")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "engine", entry["component"])
}

func TestNewLoggerRejectsFormat(t *testing.T) {
	_, err := NewLogger("info", "xml", nil)
	assert.Error(t, err)
}
