package trends

import "time"

// weeklyMaxRangeDays is the longest lookback still bucketed by week.
const weeklyMaxRangeDays = 90

// GranularityFor returns the bucket granularity used for a lookback length.
func GranularityFor(rangeDays int) Granularity {
	if rangeDays <= weeklyMaxRangeDays {
		return GranularityWeek
	}
	return GranularityMonth
}

// BuildPeriods resolves a lookback window ending on today (inclusive) into
// ascending, non-overlapping calendar periods.
//
// Only periods lying entirely inside the window are kept, so the partial
// buckets at either edge are dropped. A window shorter than one bucket
// yields no periods.
func BuildPeriods(rangeDays int, today time.Time) ([]Period, Granularity) {
	granularity := GranularityFor(rangeDays)
	if rangeDays <= 0 {
		return []Period{}, granularity
	}

	windowEnd := startOfDay(today).AddDate(0, 0, 1)
	windowStart := windowEnd.AddDate(0, 0, -rangeDays)

	periods := []Period{}
	for start := firstBucketStart(windowStart, granularity); ; {
		end := nextBucketStart(start, granularity)
		if end.After(windowEnd) {
			break
		}
		periods = append(periods, Period{Start: start, End: end})
		start = end
	}

	return periods, granularity
}

// firstBucketStart returns the earliest calendar-aligned bucket start on or after t.
func firstBucketStart(t time.Time, granularity Granularity) time.Time {
	day := startOfDay(t)
	if granularity == GranularityMonth {
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		if first.Before(day) {
			first = first.AddDate(0, 1, 0)
		}
		return first
	}

	// time.Weekday counts from Sunday; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	if monday.Before(day) {
		monday = monday.AddDate(0, 0, 7)
	}
	return monday
}

func nextBucketStart(start time.Time, granularity Granularity) time.Time {
	if granularity == GranularityMonth {
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 7)
}

// startOfDay truncates t to midnight UTC of its UTC calendar day.
func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
