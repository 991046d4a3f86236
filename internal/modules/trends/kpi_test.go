package trends

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/labourdash/internal/domain"
)

func TestComputeKPIs_Fixture(t *testing.T) {
	kpis := computeFixture(nil).KPIs

	assert.InDelta(t, 260.0, kpis.AvgLabourCostPerJob.Value, 1e-9)
	assert.InDelta(t, 62.5, kpis.AvgLabourCostPerJob.DeltaPct, 1e-9)
	require.NotNil(t, kpis.AvgLabourCostPerJob.DeltaAbs)
	assert.InDelta(t, 100.0, *kpis.AvgLabourCostPerJob.DeltaAbs, 1e-9)

	assert.Equal(t, 2.0, kpis.JobsCount.Value)
	assert.Equal(t, 100.0, kpis.JobsCount.DeltaPct)

	// Previous period had no overtime: sentinel rather than a ratio
	assert.InDelta(t, 120.0, kpis.OvertimeCost.Value, 1e-9)
	assert.Equal(t, 100.0, kpis.OvertimeCost.DeltaPct)

	assert.InDelta(t, 6.0, kpis.AvgActualHoursPerJob.Value, 1e-9)
	assert.InDelta(t, 50.0, kpis.AvgActualHoursPerJob.DeltaPct, 1e-9)
}

func TestComputeKPIs_EmptyTrend(t *testing.T) {
	kpis := computeKPIs(&Trend{})
	assert.Equal(t, KPIBlock{}, kpis)
}

func TestComputeKPIs_SinglePeriod(t *testing.T) {
	trend := &Trend{Points: []TrendPoint{{AvgLabourCostPerJob: 80, JobsCount: 3}}}
	kpis := computeKPIs(trend)

	assert.Equal(t, 80.0, kpis.AvgLabourCostPerJob.Value)
	assert.Equal(t, 0.0, kpis.AvgLabourCostPerJob.DeltaPct)
	assert.Nil(t, kpis.AvgLabourCostPerJob.DeltaAbs)
	assert.Equal(t, 3.0, kpis.JobsCount.Value)
}

func TestComputeKPIs_EmptySnapshot(t *testing.T) {
	payload := Compute(domain.Snapshot{}, Options{RangeDays: 90, Today: today})
	assert.Equal(t, KPIBlock{}, payload.KPIs)
}
