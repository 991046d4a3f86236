package trends

import (
	"fmt"
	"time"

	"github.com/aristath/labourdash/internal/domain"
	testingpkg "github.com/aristath/labourdash/internal/testing"
)

// today is a Wednesday. A 30-day window holds the weeks of
// 2024-05-20, 2024-05-27 and 2024-06-03.
var today = time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC)

func computeFixture(target *float64) *Payload {
	return Compute(testingpkg.NewSnapshotFixture(), Options{
		RangeDays: 30,
		Target:    target,
		Today:     today,
	})
}

// monthlySnapshot builds one job per month of the 365-day window ending on
// today (2023-07 to 2024-05), where month i costs costs[i] at $10/h.
// Months listed in overtime are clocked as overtime.
func monthlySnapshot(costs []float64, overtime map[int]bool) domain.Snapshot {
	snapshot := domain.Snapshot{
		Workers: []domain.WorkerRecord{testingpkg.NewWorker("w1", "Alice", 10)},
	}
	for i, cost := range costs {
		day := testingpkg.Day(2023, time.July, 2).AddDate(0, i, 0)
		jobID := fmt.Sprintf("m%02d", i)
		hours := cost / 10
		if overtime[i] {
			hours = cost / 15
		}
		snapshot.Jobs = append(snapshot.Jobs, testingpkg.NewJob(jobID, "", day, hours))
		snapshot.TimeRecords = append(snapshot.TimeRecords,
			testingpkg.NewTimeRecord("r"+jobID, "w1", jobID, day.Add(8*time.Hour), hours, overtime[i]))
	}
	return snapshot
}

func steadyCosts(n int, cost float64) []float64 {
	costs := make([]float64, n)
	for i := range costs {
		costs[i] = cost
	}
	return costs
}
