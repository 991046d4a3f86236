package trends

// Trend is the ascending series of period aggregates.
type Trend struct {
	Periods []Period
	Points  []TrendPoint
	// Unfloored job counts, parallel to Points.
	rawJobs []int
}

// buildTrend applies the period aggregator to every period in order.
func buildTrend(ix *recordIndex) *Trend {
	trend := &Trend{
		Periods: ix.periods,
		Points:  make([]TrendPoint, 0, len(ix.periods)),
		rawJobs: make([]int, 0, len(ix.periods)),
	}
	for pi := range ix.periods {
		point, totals := aggregatePeriod(ix, pi)
		trend.Points = append(trend.Points, point)
		trend.rawJobs = append(trend.rawJobs, totals.jobs)
	}
	return trend
}

// Current returns the latest point, or nil for an empty trend.
func (t *Trend) Current() *TrendPoint {
	if len(t.Points) == 0 {
		return nil
	}
	return &t.Points[len(t.Points)-1]
}

// Previous returns the second-to-last point, or nil when there is none.
func (t *Trend) Previous() *TrendPoint {
	if len(t.Points) < 2 {
		return nil
	}
	return &t.Points[len(t.Points)-2]
}

// currentIndex returns the index of the current period, or -1.
func (t *Trend) currentIndex() int {
	return len(t.Points) - 1
}

// previousIndex returns the index of the previous period, or -1.
func (t *Trend) previousIndex() int {
	if len(t.Points) < 2 {
		return -1
	}
	return len(t.Points) - 2
}

// currentHasJobs reports whether anything was scheduled or worked in the current period.
func (t *Trend) currentHasJobs() bool {
	if len(t.rawJobs) == 0 {
		return false
	}
	return t.rawJobs[len(t.rawJobs)-1] > 0
}
