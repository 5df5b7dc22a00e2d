package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mru-results-api/internal/models"
)

func TestMetricsServiceSyncCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordSyncRecord("acad_results", SyncOutcomeInserted)
	m.RecordSyncRecord("acad_results", SyncOutcomeInserted)
	m.RecordSyncRecord("acad_results", SyncOutcomeSkipped)
	m.ObserveSyncRun("acad_results", models.SyncStatusCompleted, 3*time.Second)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var inserted float64
	for _, family := range families {
		if family.GetName() != "sync_records_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == SyncOutcomeInserted {
					inserted = metric.GetCounter().GetValue()
				}
			}
		}
	}
	require.Equal(t, 2.0, inserted)

	snap := m.Snapshot()
	require.Equal(t, uint64(3), snap.SyncRecordsProcessed)
	require.Equal(t, uint64(1), snap.SyncRunsFinished)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordSyncRecord("acad_results", SyncOutcomeFailed)
	m.ObserveSyncPage(10)
	m.RecordCacheOperation(true, time.Millisecond)
	require.Equal(t, models.SystemMetrics{}, m.Snapshot())
}
