package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/labourdash/internal/domain"
	testingpkg "github.com/aristath/labourdash/internal/testing"
)

func TestBreakdown_ByJobType(t *testing.T) {
	rows := computeFixture(nil).Breakdown.ByJobType
	require.Len(t, rows, 2)

	install := rows[0]
	require.NotNil(t, install.JobTypeID)
	assert.Equal(t, "install", *install.JobTypeID)
	assert.Equal(t, "Install", install.Label)
	assert.Equal(t, 1, install.JobsCount)
	assert.InDelta(t, 440.0, install.LabourCost, 1e-9)
	assert.InDelta(t, 10.0, install.ActualHours, 1e-9)
	assert.InDelta(t, 8.0, install.EstimatedHours, 1e-9)
	assert.InDelta(t, 2.0, install.VarianceHours, 1e-9)
	assert.InDelta(t, 80.0, install.ImpactCost, 1e-9)
	assert.InDelta(t, 2.0, install.OvertimeHours, 1e-9)
	assert.InDelta(t, 175.0, install.DeltaPct, 1e-9)
	require.NotNil(t, install.DeltaAbs)
	assert.InDelta(t, 280.0, *install.DeltaAbs, 1e-9)

	unspecified := rows[1]
	assert.Nil(t, unspecified.JobTypeID)
	assert.Equal(t, "Unspecified", unspecified.Label)
	assert.InDelta(t, 0.0, unspecified.VarianceHours, 1e-9)
	assert.Equal(t, 0.0, unspecified.ImpactCost)
	// Absent in the previous period: compared against zero
	assert.Equal(t, 100.0, unspecified.DeltaPct)
}

func TestBreakdown_VarianceScenario(t *testing.T) {
	// One job, revenue 1000, 10 actual hours against 8 estimated at a $40 blended rate
	monday := testingpkg.Day(2024, time.June, 3)
	job := testingpkg.NewJob("j1", "install", monday, 8)
	job.Revenue = testingpkg.Float(1000)
	snapshot := domain.Snapshot{
		Workers:  []domain.WorkerRecord{testingpkg.NewWorker("w1", "Alice", 40)},
		JobTypes: []domain.JobTypeRecord{testingpkg.NewJobType("install", "Install")},
		Jobs:     []domain.JobRecord{job},
		TimeRecords: []domain.TimeRecord{
			testingpkg.NewTimeRecord("r1", "w1", "j1", monday.Add(8*time.Hour), 10, false),
		},
	}

	payload := Compute(snapshot, Options{RangeDays: 30, Today: today})

	require.Len(t, payload.Breakdown.ByJobType, 1)
	row := payload.Breakdown.ByJobType[0]
	assert.InDelta(t, 2.0, row.VarianceHours, 1e-9)
	assert.InDelta(t, 80.0, row.ImpactCost, 1e-9)

	require.Len(t, payload.Breakdown.ByTechnician, 1)
	assert.InDelta(t, 80.0, payload.Breakdown.ByTechnician[0].ImpactCost, 1e-9)

	last := payload.Breakdown.EstVsActual[len(payload.Breakdown.EstVsActual)-1]
	assert.InDelta(t, 2.0, last.VarianceHours, 1e-9)
	assert.InDelta(t, 80.0, last.ImpactCost, 1e-9)
	require.NotNil(t, last.VariancePct)
	assert.InDelta(t, 25.0, *last.VariancePct, 1e-9)

	current := payload.Trend[len(payload.Trend)-1]
	require.NotNil(t, current.RevenuePerLabourHour)
	assert.InDelta(t, 100.0, *current.RevenuePerLabourHour, 1e-9)
}

func TestBreakdown_ByTechnician(t *testing.T) {
	rows := computeFixture(nil).Breakdown.ByTechnician
	require.Len(t, rows, 2)

	alice := rows[0]
	assert.Equal(t, "w1", alice.WorkerID)
	assert.Equal(t, "Alice", alice.Name)
	assert.InDelta(t, 440.0, alice.LabourCost, 1e-9)
	assert.InDelta(t, 10.0, alice.Hours, 1e-9)
	assert.Equal(t, 1, alice.JobsCount)
	assert.InDelta(t, 120.0, alice.OvertimeCost, 1e-9)
	assert.InDelta(t, 8.0, alice.EstimatedHours, 1e-9)
	assert.InDelta(t, 80.0, alice.ImpactCost, 1e-9)
	require.NotNil(t, alice.DeltaAbs)
	assert.InDelta(t, 280.0, *alice.DeltaAbs, 1e-9)

	bob := rows[1]
	assert.Equal(t, "Bob", bob.Name)
	assert.Equal(t, 0.0, bob.OvertimeCost)
	assert.Equal(t, 0.0, bob.ImpactCost)
}

func TestBreakdown_UnknownLabels(t *testing.T) {
	monday := testingpkg.Day(2024, time.June, 3)
	snapshot := domain.Snapshot{
		Jobs: []domain.JobRecord{testingpkg.NewJob("j1", "orphan-type", monday, 1)},
		TimeRecords: []domain.TimeRecord{
			testingpkg.NewTimeRecord("r1", "ghost", "j1", monday.Add(8*time.Hour), 1, false),
		},
	}

	payload := Compute(snapshot, Options{RangeDays: 30, Today: today})

	require.Len(t, payload.Breakdown.ByJobType, 1)
	assert.Equal(t, "orphan-type", payload.Breakdown.ByJobType[0].Label)
	require.Len(t, payload.Breakdown.ByTechnician, 1)
	assert.Equal(t, "Unknown worker", payload.Breakdown.ByTechnician[0].Name)
}

func TestBreakdown_MultiDayEstimateSplitsAcrossPeriods(t *testing.T) {
	// Friday to Tuesday: 3 days in the first week, 2 in the next
	job := testingpkg.NewMultiDayJob("j1", "", testingpkg.Day(2024, time.May, 31), testingpkg.Day(2024, time.June, 4), 4)
	snapshot := domain.Snapshot{
		Workers: []domain.WorkerRecord{testingpkg.NewWorker("w1", "Alice", 10)},
		Jobs:    []domain.JobRecord{job},
		TimeRecords: []domain.TimeRecord{
			testingpkg.NewTimeRecord("r1", "w1", "j1", testingpkg.Day(2024, time.June, 3).Add(8*time.Hour), 5, false),
		},
	}

	payload := Compute(snapshot, Options{RangeDays: 30, Today: today})
	rows := payload.Breakdown.EstVsActual
	require.Len(t, rows, 3)

	assert.InDelta(t, 12.0, rows[1].EstimatedHours, 1e-9)
	assert.InDelta(t, 8.0, rows[2].EstimatedHours, 1e-9)
	assert.InDelta(t, 5.0, rows[2].ActualHours, 1e-9)
	assert.Equal(t, 0.0, rows[2].ImpactCost)
	require.NotNil(t, rows[2].VariancePct)
	assert.InDelta(t, -37.5, *rows[2].VariancePct, 1e-9)

	assert.Nil(t, rows[0].VariancePct)
}

func TestBreakdown_ImpactNeverNegative(t *testing.T) {
	snapshots := []domain.Snapshot{
		testingpkg.NewSnapshotFixture(),
		monthlySnapshot([]float64{90, 110, 130, 70, 100, 100, 240, 55, 100, 100, 300}, nil),
	}

	for _, snapshot := range snapshots {
		for _, days := range SupportedRanges {
			breakdown := Compute(snapshot, Options{RangeDays: days, Today: today}).Breakdown
			for _, row := range breakdown.ByJobType {
				assert.GreaterOrEqual(t, row.ImpactCost, 0.0)
			}
			for _, row := range breakdown.ByTechnician {
				assert.GreaterOrEqual(t, row.ImpactCost, 0.0)
			}
			for _, row := range breakdown.EstVsActual {
				assert.GreaterOrEqual(t, row.ImpactCost, 0.0)
			}
		}
	}
}

func TestBreakdown_NoPreviousPeriod(t *testing.T) {
	// A week-long window on a Sunday holds exactly one period
	sunday := time.Date(2024, time.June, 9, 12, 0, 0, 0, time.UTC)
	monday := testingpkg.Day(2024, time.June, 3)
	snapshot := domain.Snapshot{
		Workers: []domain.WorkerRecord{testingpkg.NewWorker("w1", "Alice", 10)},
		Jobs:    []domain.JobRecord{testingpkg.NewJob("j1", "", monday, 1)},
		TimeRecords: []domain.TimeRecord{
			testingpkg.NewTimeRecord("r1", "w1", "j1", monday.Add(8*time.Hour), 1, false),
		},
	}

	payload := Compute(snapshot, Options{RangeDays: 7, Today: sunday})
	require.Len(t, payload.Trend, 1)
	require.Len(t, payload.Breakdown.ByJobType, 1)
	assert.Nil(t, payload.Breakdown.ByJobType[0].DeltaAbs)
	assert.Equal(t, 0.0, payload.Breakdown.ByJobType[0].DeltaPct)
	assert.Nil(t, payload.Breakdown.ByTechnician[0].DeltaAbs)
}
