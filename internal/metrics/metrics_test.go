package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.SetCounts(10, 7, 3)
	r.ObserveStage("load", 1500*time.Millisecond, nil)
	r.ObserveStage("save", time.Millisecond, errors.New("disk full"))
	r.MarkSuccess(time.Unix(1700000000, 0))

	assert.Equal(t, 3.0, testutil.ToFloat64(r.records.WithLabelValues("excluded")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.dietTypes))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.stageSeconds.WithLabelValues("load")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageFailed.WithLabelValues("save")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.stageFailed.WithLabelValues("load")))

	path := filepath.Join(t.TempDir(), "dietloom.prom")
	require.NoError(t, r.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `dietloom_records{kind="cleaned"} 7`)
	assert.Contains(t, string(b), "dietloom_last_success_timestamp_seconds 1.7e+09")
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.SetCounts(1, 1, 1)
	r.ObserveStage("load", time.Second, nil)
	r.MarkSuccess(time.Now())
	assert.NoError(t, r.WriteTextfile("ignored"))
}
