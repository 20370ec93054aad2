package core

import (
	"testing"
	"time"
)

var day0 = time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

func at(day int, hour int) time.Time {
	return day0.Add(time.Duration(day)*24*time.Hour + time.Duration(hour)*time.Hour)
}

func tx(amount int64, source Source, created time.Time) Transaction {
	return Transaction{Amount: amount, Source: source, CreatedAt: created}
}

func TestComputeStatisticsEmpty(t *testing.T) {
	s := ComputeStatistics(nil, at(14, 0), time.UTC)

	if s.KPIs.TotalTransactions != 0 || s.KPIs.AverageTransaction != 0 ||
		s.KPIs.HighestTransaction != 0 || s.KPIs.LowestTransaction != 0 {
		t.Fatalf("empty input KPIs not zero: %+v", s.KPIs)
	}
	if s.KPIs.WeekOverWeekChange != nil {
		t.Fatalf("expected nil week-over-week change, got %v", *s.KPIs.WeekOverWeekChange)
	}
	if len(s.Charts.HourlyChartData) != 24 {
		t.Fatalf("expected 24 hourly buckets, got %d", len(s.Charts.HourlyChartData))
	}
	if len(s.Charts.DailyChartData) != 7 {
		t.Fatalf("expected 7 daily points, got %d", len(s.Charts.DailyChartData))
	}
	if s.Charts.PeakHour != "0h" {
		t.Fatalf("expected peak hour 0h on empty input, got %s", s.Charts.PeakHour)
	}
	if len(s.Charts.TopDays) != 0 {
		t.Fatalf("expected no top days, got %d", len(s.Charts.TopDays))
	}
}

func TestWeekOverWeek(t *testing.T) {
	txs := []Transaction{
		tx(100, SourceMomo, at(0, 10)),
		tx(50000, SourceMBBank, at(0, 14)),
		tx(20000, SourceMomo, at(7, 9)),
	}
	s := ComputeStatistics(txs, at(14, 0), time.UTC)

	if s.KPIs.ThisWeekTotal != 20000 {
		t.Errorf("this week total = %d, want 20000", s.KPIs.ThisWeekTotal)
	}
	if s.KPIs.LastWeekTotal != 50100 {
		t.Errorf("last week total = %d, want 50100", s.KPIs.LastWeekTotal)
	}
	if s.KPIs.WeekOverWeekChange == nil {
		t.Fatal("expected a week-over-week change value")
	}
	if got := *s.KPIs.WeekOverWeekChange; got != -60.1 {
		t.Errorf("week-over-week change = %v, want -60.1", got)
	}
}

func TestWeekOverWeekNilOnZeroBaseline(t *testing.T) {
	txs := []Transaction{tx(1000, SourceMomo, at(8, 12))}
	s := ComputeStatistics(txs, at(14, 0), time.UTC)
	if s.KPIs.WeekOverWeekChange != nil {
		t.Fatalf("expected nil change when last week is empty, got %v", *s.KPIs.WeekOverWeekChange)
	}
}

func TestHourlyDistribution(t *testing.T) {
	txs := []Transaction{
		tx(500, SourceMomo, at(8, 9)),
		tx(1500, SourceMBBank, at(9, 9)),
		tx(700, SourceMomo, at(10, 21)),
	}
	s := ComputeStatistics(txs, at(14, 0), time.UTC)

	if len(s.Charts.HourlyChartData) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(s.Charts.HourlyChartData))
	}
	var sum int64
	for _, p := range s.Charts.HourlyChartData {
		sum += p.Amount
	}
	if want := TotalAmount(txs); sum != want {
		t.Errorf("hourly buckets sum to %d, want %d", sum, want)
	}
	if s.Charts.HourlyChartData[9].Amount != 2000 {
		t.Errorf("9h bucket = %d, want 2000", s.Charts.HourlyChartData[9].Amount)
	}
	if s.Charts.PeakHour != "9h" {
		t.Errorf("peak hour = %s, want 9h", s.Charts.PeakHour)
	}
}

func TestPeakHourDeterministicUnderReordering(t *testing.T) {
	// Two hours tied at the max; the earlier hour must win regardless
	// of input order.
	a := tx(1000, SourceMomo, at(9, 5))
	b := tx(1000, SourceMBBank, at(9, 18))
	for i, txs := range [][]Transaction{{a, b}, {b, a}} {
		s := ComputeStatistics(txs, at(14, 0), time.UTC)
		if s.Charts.PeakHour != "5h" {
			t.Errorf("order %d: peak hour = %s, want 5h", i, s.Charts.PeakHour)
		}
	}
}

func TestAmountDistribution(t *testing.T) {
	txs := []Transaction{
		tx(1, SourceMomo, at(8, 1)),
		tx(19999, SourceMomo, at(8, 2)),
		tx(20000, SourceMomo, at(8, 3)),
		tx(50000, SourceMBBank, at(8, 4)),
		tx(99999, SourceMBBank, at(8, 5)),
		tx(150000, SourceMomo, at(8, 6)),
		tx(200000, SourceMomo, at(8, 7)),
		tx(500000, SourceMBBank, at(8, 8)),
		tx(9999999, SourceMomo, at(8, 9)),
	}
	s := ComputeStatistics(txs, at(14, 0), time.UTC)

	d := s.Charts.AmountDistribution
	if len(d) != 6 {
		t.Fatalf("expected 6 ranges, got %d", len(d))
	}
	wantCounts := []int{2, 1, 2, 1, 1, 2}
	wantLabels := []string{"< 20K", "20K-50K", "50K-100K", "100K-200K", "200K-500K", "> 500K"}
	total := 0
	for i, rc := range d {
		if rc.Range != wantLabels[i] {
			t.Errorf("range %d label = %q, want %q", i, rc.Range, wantLabels[i])
		}
		if rc.Count != wantCounts[i] {
			t.Errorf("range %q count = %d, want %d", rc.Range, rc.Count, wantCounts[i])
		}
		total += rc.Count
	}
	if total != len(txs) {
		t.Errorf("bucket counts sum to %d, want %d", total, len(txs))
	}
}

func TestTopDays(t *testing.T) {
	var txs []Transaction
	// Seven distinct days with increasing totals; only five may appear.
	for d := 0; d < 7; d++ {
		txs = append(txs, tx(int64(1000*(d+1)), SourceMomo, at(d+5, 10)))
	}
	s := ComputeStatistics(txs, at(14, 0), time.UTC)

	top := s.Charts.TopDays
	if len(top) != 5 {
		t.Fatalf("expected 5 top days, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Amount > top[i-1].Amount {
			t.Errorf("top days not sorted descending at %d: %d > %d", i, top[i].Amount, top[i-1].Amount)
		}
	}
	if top[0].Amount != 7000 || top[0].Count != 1 {
		t.Errorf("top day = %+v, want amount 7000 count 1", top[0])
	}
}

func TestTopDaysTieKeepsFirstSeenOrder(t *testing.T) {
	txs := []Transaction{
		tx(5000, SourceMomo, at(9, 10)),
		tx(5000, SourceMomo, at(8, 10)),
	}
	s := ComputeStatistics(txs, at(14, 0), time.UTC)
	top := s.Charts.TopDays
	if len(top) != 2 {
		t.Fatalf("expected 2 top days, got %d", len(top))
	}
	if top[0].Date != at(9, 10).Format("02/01/2006") {
		t.Errorf("tie broke first-seen order: got %s first", top[0].Date)
	}
}

func TestKPIs(t *testing.T) {
	txs := []Transaction{
		tx(100, SourceMomo, at(8, 1)),
		tx(200, SourceMBBank, at(8, 2)),
		tx(301, SourceMomo, at(8, 3)),
	}
	s := ComputeStatistics(txs, at(14, 0), time.UTC)

	if s.KPIs.TotalTransactions != 3 {
		t.Errorf("total = %d, want 3", s.KPIs.TotalTransactions)
	}
	if s.KPIs.AverageTransaction != 200 { // 601/3 rounds to 200
		t.Errorf("average = %d, want 200", s.KPIs.AverageTransaction)
	}
	if s.KPIs.HighestTransaction != 301 || s.KPIs.LowestTransaction != 100 {
		t.Errorf("min/max = %d/%d, want 100/301", s.KPIs.LowestTransaction, s.KPIs.HighestTransaction)
	}
}

func TestDailySeriesAnchoredAtNow(t *testing.T) {
	now := at(14, 12)
	txs := []Transaction{
		tx(3000, SourceMomo, at(14, 9)),  // today
		tx(2000, SourceMomo, at(12, 9)),  // two days ago
		tx(9000, SourceMomo, at(5, 9)),   // last week, must not appear
	}
	s := ComputeStatistics(txs, now, time.UTC)

	daily := s.Charts.DailyChartData
	if len(daily) != 7 {
		t.Fatalf("expected 7 points, got %d", len(daily))
	}
	if daily[6].Amount != 3000 {
		t.Errorf("today = %d, want 3000", daily[6].Amount)
	}
	if daily[4].Amount != 2000 {
		t.Errorf("two days ago = %d, want 2000", daily[4].Amount)
	}
	var sum int64
	for _, p := range daily {
		sum += p.Amount
	}
	if sum != 5000 {
		t.Errorf("series sum = %d, want 5000 (last-week rows excluded)", sum)
	}
}

func TestSourceBreakdownPartitionsInput(t *testing.T) {
	txs := []Transaction{
		tx(100, SourceMomo, at(8, 1)),
		tx(200, SourceMBBank, at(8, 2)),
		tx(300, SourceMomo, at(8, 3)),
		tx(400, Source("cash"), at(8, 4)), // unknown tag, counted nowhere
	}
	s := ComputeStatistics(txs, at(14, 0), time.UTC)

	if s.Sources.Momo.Total != 400 || s.Sources.Momo.Count != 2 {
		t.Errorf("momo = %+v, want total 400 count 2", s.Sources.Momo)
	}
	if s.Sources.MBBank.Total != 200 || s.Sources.MBBank.Count != 1 {
		t.Errorf("mbbank = %+v, want total 200 count 1", s.Sources.MBBank)
	}
	if got := s.Sources.Momo.Count + s.Sources.MBBank.Count; got != 3 {
		t.Errorf("recognized sources count %d records, want 3", got)
	}
}

func TestTimezoneBucketing(t *testing.T) {
	// 18:00 UTC is 01:00 the next day in Ho Chi Minh City (UTC+7).
	hcm := time.FixedZone("Asia/Ho_Chi_Minh", 7*3600)
	txs := []Transaction{tx(1000, SourceMomo, at(8, 18))}
	s := ComputeStatistics(txs, at(14, 0), hcm)

	if s.Charts.HourlyChartData[1].Amount != 1000 {
		t.Errorf("1h bucket = %d, want 1000", s.Charts.HourlyChartData[1].Amount)
	}
	wantDate := at(8, 18).In(hcm).Format("02/01/2006")
	if len(s.Charts.TopDays) != 1 || s.Charts.TopDays[0].Date != wantDate {
		t.Errorf("top day = %+v, want date %s", s.Charts.TopDays, wantDate)
	}
}

func TestFilterCutoff(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 11, 15, 13, 30, 0, 0, loc)

	if got := FilterCutoff("today", now, loc); !got.Equal(time.Date(2024, 11, 15, 0, 0, 0, 0, loc)) {
		t.Errorf("today cutoff = %v", got)
	}
	if got := FilterCutoff("week", now, loc); !got.Equal(now.Add(-7*24*time.Hour)) {
		t.Errorf("week cutoff = %v", got)
	}
	if got := FilterCutoff("month", now, loc); !got.Equal(time.Date(2024, 10, 15, 13, 30, 0, 0, loc)) {
		t.Errorf("month cutoff = %v", got)
	}
	if got := FilterCutoff("all", now, loc); !got.IsZero() {
		t.Errorf("all cutoff = %v, want zero", got)
	}
}

func TestFilterSinceAndDailyTotals(t *testing.T) {
	txs := []Transaction{
		tx(300, SourceMomo, at(10, 9)), // newest first, as the store lists them
		tx(200, SourceMBBank, at(9, 9)),
		tx(100, SourceMomo, at(8, 9)),
	}

	got := FilterSince(txs, at(9, 0))
	if len(got) != 2 {
		t.Fatalf("FilterSince kept %d, want 2", len(got))
	}

	points := DailyTotals(txs, time.UTC)
	if len(points) != 3 {
		t.Fatalf("expected 3 daily points, got %d", len(points))
	}
	if points[0].Amount != 100 || points[2].Amount != 300 {
		t.Errorf("daily totals not oldest-first: %+v", points)
	}
}
