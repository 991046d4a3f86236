package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGranularityFor(t *testing.T) {
	tests := []struct {
		days     int
		expected Granularity
	}{
		{30, GranularityWeek},
		{90, GranularityWeek},
		{180, GranularityMonth},
		{365, GranularityMonth},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GranularityFor(tt.days), "rangeDays=%d", tt.days)
	}
}

func TestBuildPeriods_Weekly(t *testing.T) {
	periods, granularity := BuildPeriods(30, today)

	assert.Equal(t, GranularityWeek, granularity)
	require.Len(t, periods, 3)
	assert.Equal(t, PeriodRange{Start: "2024-05-20", End: "2024-05-27"}, periods[0].Range())
	assert.Equal(t, PeriodRange{Start: "2024-06-03", End: "2024-06-10"}, periods[2].Range())

	for _, p := range periods {
		assert.Equal(t, time.Monday, p.Start.Weekday())
	}
}

func TestBuildPeriods_NinetyDaysIsWeekly(t *testing.T) {
	periods, granularity := BuildPeriods(90, today)

	assert.Equal(t, GranularityWeek, granularity)
	require.Len(t, periods, 12)
	assert.Equal(t, "2024-03-18", periods[0].Range().Start)
	assert.Equal(t, "2024-06-10", periods[11].Range().End)
}

func TestBuildPeriods_YearIsMonthly(t *testing.T) {
	periods, granularity := BuildPeriods(365, today)

	assert.Equal(t, GranularityMonth, granularity)
	require.Len(t, periods, 11)
	assert.Equal(t, PeriodRange{Start: "2023-07-01", End: "2023-08-01"}, periods[0].Range())
	assert.Equal(t, PeriodRange{Start: "2024-05-01", End: "2024-06-01"}, periods[10].Range())
}

func TestBuildPeriods_HalfYear(t *testing.T) {
	periods, _ := BuildPeriods(180, today)

	require.Len(t, periods, 5)
	assert.Equal(t, "2024-01-01", periods[0].Range().Start)
	assert.Equal(t, "2024-06-01", periods[4].Range().End)
}

func TestBuildPeriods_BucketEndingOnWindowEndIsKept(t *testing.T) {
	sunday := time.Date(2024, time.June, 9, 23, 0, 0, 0, time.UTC)
	periods, _ := BuildPeriods(30, sunday)

	require.NotEmpty(t, periods)
	assert.Equal(t, "2024-06-10", periods[len(periods)-1].Range().End)
}

func TestBuildPeriods_ContiguousAndAscending(t *testing.T) {
	for _, days := range SupportedRanges {
		for offset := 0; offset < 40; offset++ {
			periods, _ := BuildPeriods(days, today.AddDate(0, 0, -offset))
			windowEnd := startOfDay(today.AddDate(0, 0, -offset)).AddDate(0, 0, 1)
			windowStart := windowEnd.AddDate(0, 0, -days)

			for i, p := range periods {
				assert.True(t, p.Start.Before(p.End))
				assert.False(t, p.Start.Before(windowStart), "period starts before window")
				assert.False(t, p.End.After(windowEnd), "period ends after window")
				if i > 0 {
					assert.True(t, periods[i-1].End.Equal(p.Start), "periods must be contiguous")
				}
			}
		}
	}
}

func TestBuildPeriods_ShortWindow(t *testing.T) {
	periods, _ := BuildPeriods(3, today)
	assert.Empty(t, periods)

	periods, _ = BuildPeriods(0, today)
	assert.Empty(t, periods)
}

func TestBuildPeriods_NonUTCToday(t *testing.T) {
	athens := time.FixedZone("EEST", 3*60*60)
	// 01:00 local on the 13th is still the 12th in UTC
	local := time.Date(2024, time.June, 13, 1, 0, 0, 0, athens)

	got, _ := BuildPeriods(30, local)
	want, _ := BuildPeriods(30, today)
	assert.Equal(t, want, got)
}

func TestPeriodContains(t *testing.T) {
	p := Period{
		Start: time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End.Add(-time.Nanosecond)))
	assert.False(t, p.Contains(p.End))
	assert.False(t, p.Contains(p.Start.Add(-time.Nanosecond)))
}
