package trends

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/labourdash/internal/domain"
	testingpkg "github.com/aristath/labourdash/internal/testing"
)

func TestCompute_EmptySnapshot(t *testing.T) {
	payload := Compute(domain.Snapshot{}, Options{RangeDays: 90, Today: today})

	assert.Equal(t, 90, payload.RangeDays)
	assert.Equal(t, GranularityWeek, payload.Granularity)
	assert.Equal(t, DefaultCurrency, payload.Currency)
	assert.Nil(t, payload.TargetLabourCostPerJob)
	assert.Empty(t, payload.Trend)
	assert.Empty(t, payload.Anomalies)
	assert.Empty(t, payload.Breakdown.ByJobType)
	assert.Empty(t, payload.Breakdown.ByTechnician)
	assert.Empty(t, payload.Breakdown.EstVsActual)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"trend":[]`)
	assert.Contains(t, string(data), `"anomalies":[]`)
	assert.NotContains(t, string(data), "targetLabourCostPerJob")
}

func TestCompute_RecordsOutsideWindowIgnored(t *testing.T) {
	snapshot := testingpkg.NewSnapshotFixture()
	later := today.AddDate(1, 0, 0)

	payload := Compute(snapshot, Options{RangeDays: 30, Today: later})
	assert.Empty(t, payload.Trend)
}

func TestCompute_Deterministic(t *testing.T) {
	costs := []float64{90, 110, 130, 70, 100, 100, 240, 55, 100, 100, 300}
	snapshots := []domain.Snapshot{
		testingpkg.NewSnapshotFixture(),
		monthlySnapshot(costs, map[int]bool{2: true, 9: true}),
	}

	for _, snapshot := range snapshots {
		for _, days := range SupportedRanges {
			opts := Options{RangeDays: days, Target: testingpkg.Float(120), Today: today}
			first, err := json.Marshal(Compute(snapshot, opts))
			require.NoError(t, err)
			second, err := json.Marshal(Compute(snapshot, opts))
			require.NoError(t, err)
			assert.Equal(t, string(first), string(second))
		}
	}
}

func TestCompute_DoesNotMutateSnapshot(t *testing.T) {
	snapshot := testingpkg.NewSnapshotFixture()
	before, err := json.Marshal(snapshot)
	require.NoError(t, err)

	target := testingpkg.Float(150)
	payload := Compute(snapshot, Options{RangeDays: 30, Target: target, Today: today})

	after, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	// The payload owns its own copy of the target
	*target = 999
	require.NotNil(t, payload.TargetLabourCostPerJob)
	assert.Equal(t, 150.0, *payload.TargetLabourCostPerJob)
}

func TestCompute_FirstRecordWinsOnDuplicateIDs(t *testing.T) {
	snapshot := testingpkg.NewSnapshotFixture()
	snapshot.Workers = append(snapshot.Workers, testingpkg.NewWorker("w1", "Impostor", 1000))

	payload := Compute(snapshot, Options{RangeDays: 30, Today: today})
	assert.Equal(t, "Alice", payload.Breakdown.ByTechnician[0].Name)
	assert.InDelta(t, 520.0, payload.Trend[2].TotalLabourCost, 1e-9)
}

func TestCompute_NoNonFiniteNumbers(t *testing.T) {
	snapshot := testingpkg.NewSnapshotFixture()
	// Zero-length and inverted records
	start := testingpkg.Day(2024, 6, 6)
	snapshot.TimeRecords = append(snapshot.TimeRecords,
		domain.TimeRecord{ID: "z", WorkerID: "w1", JobID: "j1", Start: start, End: start},
		domain.TimeRecord{ID: "neg", WorkerID: "w2", JobID: "j2", Start: start, End: start.Add(-1)},
	)

	for _, days := range SupportedRanges {
		_, err := json.Marshal(Compute(snapshot, Options{RangeDays: days, Today: today}))
		// encoding/json rejects NaN and Inf
		require.NoError(t, err)
	}
}
