package monitoring

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	NewTimer(m).Stop("copy", nil)
	NewTimer(m).Stop("copy", nil)
	NewTimer(m).Stop("copy", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("copy", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("copy", ResultError)))

	count, err := testutil.GatherAndCount(reg, "sandfs_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddBytesAndEntries(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.AddBytes(DirectionWrite, 10)
	m.AddBytes(DirectionWrite, 0)
	m.AddBytes(DirectionRead, 4)
	m.AddArchiveEntries(DirectionWrite, 3)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.Bytes.WithLabelValues(DirectionWrite)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Bytes.WithLabelValues(DirectionRead)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ArchiveEntries.WithLabelValues(DirectionWrite)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordOperation("delete", 0, nil)
		m.AddBytes(DirectionRead, 5)
		m.AddArchiveEntries(DirectionRead, 1)
		NewTimer(m).Stop("delete", nil)
	})
}
