// Package core holds the transaction entity and the aggregation engine.
//
// The aggregation engine is pure: it takes a slice of transactions and a
// reference instant and derives every statistical view shown on the
// dashboard. Both the statistics endpoint and the server-rendered
// dashboard partials call into this package, so the numbers can never
// drift between them.
package core

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// StatsWindow is the analysis window of the statistics view.
const StatsWindow = 14 * 24 * time.Hour

type (
	// Statistics is the full derived bundle for a 14-day window.
	Statistics struct {
		KPIs    KPIs            `json:"kpis"`
		Charts  Charts          `json:"charts"`
		Sources SourceBreakdown `json:"sources"`
	}

	KPIs struct {
		TotalTransactions  int   `json:"totalTransactions"`
		AverageTransaction int64 `json:"averageTransaction"`
		HighestTransaction int64 `json:"highestTransaction"`
		LowestTransaction  int64 `json:"lowestTransaction"`
		ThisWeekTotal      int64 `json:"thisWeekTotal"`
		LastWeekTotal      int64 `json:"lastWeekTotal"`
		// WeekOverWeekChange is nil when last week had no revenue; a
		// percentage against zero has no value, and callers must not
		// read absence as 0.
		WeekOverWeekChange *float64 `json:"weekOverWeekChange"`
	}

	Charts struct {
		HourlyChartData    []HourlyPoint `json:"hourlyChartData"`
		PeakHour           string        `json:"peakHour"`
		AmountDistribution []RangeCount  `json:"amountDistribution"`
		TopDays            []DayTotal    `json:"topDays"`
		DailyChartData     []DailyPoint  `json:"dailyChartData"`
	}

	HourlyPoint struct {
		Hour   string `json:"hour"`
		Amount int64  `json:"amount"`
	}

	RangeCount struct {
		Range string `json:"range"`
		Count int    `json:"count"`
	}

	DayTotal struct {
		Date   string `json:"date"`
		Amount int64  `json:"amount"`
		Count  int    `json:"count"`
	}

	DailyPoint struct {
		Date   string `json:"date"`
		Amount int64  `json:"amount"`
	}

	SourceStats struct {
		Total int64 `json:"total"`
		Count int   `json:"count"`
	}

	SourceBreakdown struct {
		Momo   SourceStats `json:"momo"`
		MBBank SourceStats `json:"mbbank"`
	}
)

// amountRange is a half-open [Min, Max) bucket on the amount axis.
// Ranges are rebuilt per invocation; sharing mutable buckets across
// calls would break reentrancy.
type amountRange struct {
	label    string
	min, max int64
}

func amountRanges() []amountRange {
	return []amountRange{
		{"< 20K", 0, 20_000},
		{"20K-50K", 20_000, 50_000},
		{"50K-100K", 50_000, 100_000},
		{"100K-200K", 100_000, 200_000},
		{"200K-500K", 200_000, 500_000},
		{"> 500K", 500_000, math.MaxInt64},
	}
}

// ComputeStatistics derives the statistics bundle from txs at reference
// instant now. Hour and calendar-day bucketing happens in loc; callers
// pass the configured business timezone so results do not depend on the
// host's locale. The input order only matters for the documented
// top-day tie-break (first seen wins); everything else re-derives
// temporal relationships from CreatedAt directly.
func ComputeStatistics(txs []Transaction, now time.Time, loc *time.Location) Statistics {
	if loc == nil {
		loc = time.UTC
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-StatsWindow)

	var thisWeek []Transaction
	var thisWeekTotal, lastWeekTotal int64
	for _, t := range txs {
		switch {
		case !t.CreatedAt.Before(weekAgo):
			thisWeek = append(thisWeek, t)
			thisWeekTotal += t.Amount
		case !t.CreatedAt.Before(twoWeeksAgo):
			lastWeekTotal += t.Amount
		}
	}

	var change *float64
	if lastWeekTotal > 0 {
		pct := float64(thisWeekTotal-lastWeekTotal) / float64(lastWeekTotal) * 100
		pct = math.Round(pct*10) / 10
		change = &pct
	}

	// Hourly distribution: all 24 buckets always present. The peak
	// starts at bucket 0 and moves only on a strictly greater amount,
	// so ties resolve to the earliest hour no matter the input order.
	var hourly [24]int64
	for _, t := range txs {
		hourly[t.CreatedAt.In(loc).Hour()] += t.Amount
	}
	hourlyData := make([]HourlyPoint, 24)
	peak := 0
	for h, amount := range hourly {
		hourlyData[h] = HourlyPoint{Hour: strconv.Itoa(h) + "h", Amount: amount}
		if amount > hourly[peak] {
			peak = h
		}
	}

	ranges := amountRanges()
	counts := make([]int, len(ranges))
	for _, t := range txs {
		for i, r := range ranges {
			if t.Amount >= r.min && t.Amount < r.max {
				counts[i]++
				break
			}
		}
	}
	distribution := make([]RangeCount, len(ranges))
	for i, r := range ranges {
		distribution[i] = RangeCount{Range: r.label, Count: counts[i]}
	}

	topDays := topDaysByAmount(txs, loc, 5)

	kpis := KPIs{
		TotalTransactions:  len(txs),
		ThisWeekTotal:      thisWeekTotal,
		LastWeekTotal:      lastWeekTotal,
		WeekOverWeekChange: change,
	}
	if len(txs) > 0 {
		var sum int64
		kpis.HighestTransaction = txs[0].Amount
		kpis.LowestTransaction = txs[0].Amount
		for _, t := range txs {
			sum += t.Amount
			if t.Amount > kpis.HighestTransaction {
				kpis.HighestTransaction = t.Amount
			}
			if t.Amount < kpis.LowestTransaction {
				kpis.LowestTransaction = t.Amount
			}
		}
		// Half-up integer mean, no floating-point accumulation.
		n := int64(len(txs))
		kpis.AverageTransaction = (sum + n/2) / n
	}

	// Trailing 7-day series anchored at now, oldest first. Days are
	// matched by exact local calendar date, not a range compare, and
	// only this-week transactions are candidates.
	daily := make([]DailyPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.Add(-time.Duration(i) * 24 * time.Hour).In(loc)
		dy, dm, dd := day.Date()
		var total int64
		for _, t := range thisWeek {
			ty, tm, td := t.CreatedAt.In(loc).Date()
			if ty == dy && tm == dm && td == dd {
				total += t.Amount
			}
		}
		daily = append(daily, DailyPoint{Date: day.Format("02/01"), Amount: total})
	}

	return Statistics{
		KPIs: kpis,
		Charts: Charts{
			HourlyChartData:    hourlyData,
			PeakHour:           hourlyData[peak].Hour,
			AmountDistribution: distribution,
			TopDays:            topDays,
			DailyChartData:     daily,
		},
		Sources: SourceTotals(txs),
	}
}

// topDaysByAmount groups txs by local calendar day and returns the max
// highest-revenue days, sorted by amount descending. Days with equal
// totals keep first-seen order; the tie-break is implementation-defined
// and deliberately stable rather than meaningful.
func topDaysByAmount(txs []Transaction, loc *time.Location, max int) []DayTotal {
	index := make(map[string]int)
	var days []DayTotal
	for _, t := range txs {
		key := t.CreatedAt.In(loc).Format("02/01/2006")
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, DayTotal{Date: key})
		}
		days[i].Amount += t.Amount
		days[i].Count++
	}
	// Stable sort keeps the relative order of equal totals.
	sort.SliceStable(days, func(i, j int) bool { return days[i].Amount > days[j].Amount })
	if len(days) > max {
		days = days[:max]
	}
	return days
}

// SourceTotals sums amount and count per known source tag. Unknown tags
// land in neither bucket.
func SourceTotals(txs []Transaction) SourceBreakdown {
	var b SourceBreakdown
	for _, t := range txs {
		switch t.Source {
		case SourceMomo:
			b.Momo.Total += t.Amount
			b.Momo.Count++
		case SourceMBBank:
			b.MBBank.Total += t.Amount
			b.MBBank.Count++
		}
	}
	return b
}

// TotalAmount is the exact integer sum over txs.
func TotalAmount(txs []Transaction) int64 {
	var sum int64
	for _, t := range txs {
		sum += t.Amount
	}
	return sum
}

// FilterSince returns the transactions recorded at or after cutoff.
// A zero cutoff keeps everything.
func FilterSince(txs []Transaction, cutoff time.Time) []Transaction {
	if cutoff.IsZero() {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if !t.CreatedAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// DailyTotals groups txs by local calendar day preserving first-seen
// order, returned oldest first and capped at the most recent seven
// days. Feeds the dashboard's revenue-by-day view for the selected
// filter range.
func DailyTotals(txs []Transaction, loc *time.Location) []DailyPoint {
	if loc == nil {
		loc = time.UTC
	}
	index := make(map[string]int)
	var points []DailyPoint
	for _, t := range txs {
		key := t.CreatedAt.In(loc).Format("02/01")
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, DailyPoint{Date: key})
		}
		points[i].Amount += t.Amount
	}
	// Callers list newest first; flip to oldest-first for charting.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	if len(points) > 7 {
		points = points[len(points)-7:]
	}
	return points
}

// FilterCutoff maps a dashboard range filter to its cutoff instant.
// Supported filters: today, week, month, all (zero time).
func FilterCutoff(filter string, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	switch filter {
	case "today":
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case "week":
		return now.Add(-7 * 24 * time.Hour)
	case "month":
		return now.In(loc).AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}
