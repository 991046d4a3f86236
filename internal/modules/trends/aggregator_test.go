package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/labourdash/internal/domain"
	testingpkg "github.com/aristath/labourdash/internal/testing"
)

func TestAggregatePeriod_Fixture(t *testing.T) {
	payload := computeFixture(nil)
	require.Len(t, payload.Trend, 3)

	current := payload.Trend[2]
	assert.Equal(t, PeriodRange{Start: "2024-06-03", End: "2024-06-10"}, current.Period)
	assert.Equal(t, 2, current.JobsCount)
	assert.InDelta(t, 520.0, current.TotalLabourCost, 1e-9)
	assert.InDelta(t, 260.0, current.AvgLabourCostPerJob, 1e-9)
	assert.InDelta(t, 120.0, current.OvertimeCost, 1e-9)
	assert.InDelta(t, 2.0, current.OvertimeHours, 1e-9)
	assert.InDelta(t, 120.0/520.0*100, current.OvertimePctOfLabour, 1e-9)
	assert.InDelta(t, 12.0, current.TotalActualHours, 1e-9)
	assert.InDelta(t, 6.0, current.AvgActualHoursPerJob, 1e-9)
	require.NotNil(t, current.RevenuePerLabourHour)
	assert.Equal(t, 0.0, *current.RevenuePerLabourHour)
}

func TestAggregatePeriod_EmptyPeriod(t *testing.T) {
	payload := computeFixture(nil)

	empty := payload.Trend[0]
	assert.Equal(t, 1, empty.JobsCount)
	assert.Equal(t, 0.0, empty.AvgLabourCostPerJob)
	assert.Equal(t, 0.0, empty.TotalLabourCost)
	assert.Equal(t, 0.0, empty.OvertimePctOfLabour)
	assert.Nil(t, empty.RevenuePerLabourHour)
}

func TestAggregatePeriod_AverageTimesJobsIsTotal(t *testing.T) {
	snapshots := []domain.Snapshot{
		testingpkg.NewSnapshotFixture(),
		monthlySnapshot([]float64{90, 110, 130, 70, 100, 100, 240, 55, 100, 100, 300}, map[int]bool{3: true, 7: true}),
	}

	for _, snapshot := range snapshots {
		for _, days := range SupportedRanges {
			payload := Compute(snapshot, Options{RangeDays: days, Today: today})
			for _, p := range payload.Trend {
				assert.InDelta(t, p.TotalLabourCost, p.AvgLabourCostPerJob*float64(p.JobsCount), 1e-6)
				assert.GreaterOrEqual(t, p.JobsCount, 1)
			}
		}
	}
}

func TestAggregatePeriod_CountsTouchedJobsWhenNoneScheduled(t *testing.T) {
	monday := testingpkg.Day(2024, time.June, 3)
	snapshot := domain.Snapshot{
		Workers: []domain.WorkerRecord{testingpkg.NewWorker("w1", "Alice", 20)},
		Jobs: []domain.JobRecord{
			{ID: "a", Revenue: testingpkg.Float(300)},
			{ID: "b", Revenue: testingpkg.Float(100)},
		},
		TimeRecords: []domain.TimeRecord{
			testingpkg.NewTimeRecord("r1", "w1", "a", monday.Add(8*time.Hour), 2, false),
			testingpkg.NewTimeRecord("r2", "w1", "a", monday.Add(12*time.Hour), 2, false),
			testingpkg.NewTimeRecord("r3", "w1", "b", monday.Add(30*time.Hour), 4, false),
		},
	}

	payload := Compute(snapshot, Options{RangeDays: 30, Today: today})
	current := payload.Trend[len(payload.Trend)-1]

	assert.Equal(t, 2, current.JobsCount)
	assert.InDelta(t, 160.0, current.TotalLabourCost, 1e-9)
	assert.InDelta(t, 400.0, current.Revenue, 1e-9)
	require.NotNil(t, current.RevenuePerLabourHour)
	assert.InDelta(t, 50.0, *current.RevenuePerLabourHour, 1e-9)
}

func TestAggregatePeriod_UnknownWorkerCostsNothing(t *testing.T) {
	monday := testingpkg.Day(2024, time.June, 3)
	snapshot := domain.Snapshot{
		TimeRecords: []domain.TimeRecord{
			testingpkg.NewTimeRecord("r1", "ghost", "a", monday.Add(8*time.Hour), 5, true),
		},
	}

	payload := Compute(snapshot, Options{RangeDays: 30, Today: today})
	current := payload.Trend[len(payload.Trend)-1]

	assert.Equal(t, 0.0, current.TotalLabourCost)
	assert.Equal(t, 0.0, current.OvertimePctOfLabour)
	assert.InDelta(t, 5.0, current.OvertimeHours, 1e-9)
}

func TestAggregatePeriod_BreaksReduceHours(t *testing.T) {
	monday := testingpkg.Day(2024, time.June, 3)
	record := testingpkg.NewTimeRecord("r1", "w1", "a", monday.Add(8*time.Hour), 8, false)
	record.BreakMinutes = 30
	snapshot := domain.Snapshot{
		Workers:     []domain.WorkerRecord{testingpkg.NewWorker("w1", "Alice", 10)},
		TimeRecords: []domain.TimeRecord{record},
	}

	payload := Compute(snapshot, Options{RangeDays: 30, Today: today})
	current := payload.Trend[len(payload.Trend)-1]

	assert.InDelta(t, 7.5, current.TotalActualHours, 1e-9)
	assert.InDelta(t, 75.0, current.TotalLabourCost, 1e-9)
}
