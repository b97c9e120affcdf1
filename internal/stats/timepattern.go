package stats

import (
	"strconv"
	"strings"
)

// Chronotype labels, in tie-break order.
const (
	MorningPerson   = "Morning Person (5am-noon)"
	AfternoonWorker = "Afternoon Worker (noon-6pm)"
	EveningThinker  = "Evening Thinker (6pm-10pm)"
	NightOwl        = "Night Owl (10pm-4am)"
)

type period struct {
	label string
	hours []int
}

var periods = []period{
	{MorningPerson, []int{5, 6, 7, 8, 9, 10, 11}},
	{AfternoonWorker, []int{12, 13, 14, 15, 16, 17}},
	{EveningThinker, []int{18, 19, 20, 21}},
	{NightOwl, []int{22, 23, 0, 1, 2, 3, 4}},
}

// PeriodBreakdown holds message totals per time-of-day period.
type PeriodBreakdown struct {
	Morning   int `json:"morning"`
	Afternoon int `json:"afternoon"`
	Evening   int `json:"evening"`
	LateNight int `json:"late_night"`
}

// TimePatterns summarizes when messages were sent.
type TimePatterns struct {
	Chronotype        string          `json:"chronotype"`
	PeriodBreakdown   PeriodBreakdown `json:"period_breakdown"`
	WeekendPercentage float64         `json:"weekend_percentage"`
}

// AnalyzeTimePatterns picks the busiest period of the day and the weekend
// share of messages. Ties go to the earlier period in the morning, afternoon,
// evening, night order.
func AnalyzeTimePatterns(hours, weekdays Counter) TimePatterns {
	hours = NormalizeHours(hours)

	sums := make([]int, len(periods))
	best := 0
	for i, p := range periods {
		for _, h := range p.hours {
			sums[i] += hours.Get(HourKey(h))
		}
		if sums[i] > sums[best] {
			best = i
		}
	}

	weekend := weekdays.Get("Saturday") + weekdays.Get("Sunday")
	weekday := weekdays.Total() - weekend
	pct := 0.0
	if weekend+weekday > 0 {
		pct = Round(float64(weekend)/float64(weekend+weekday)*100, 1)
	}

	return TimePatterns{
		Chronotype: periods[best].label,
		PeriodBreakdown: PeriodBreakdown{
			Morning:   sums[0],
			Afternoon: sums[1],
			Evening:   sums[2],
			LateNight: sums[3],
		},
		WeekendPercentage: pct,
	}
}

// NormalizeHours rewrites integer-looking keys ("07", " 7") to their
// canonical form ("7"), merging counts that land on the same hour. Keys that
// are not integers are kept as they are.
func NormalizeHours(hours Counter) Counter {
	var out Counter
	for _, e := range hours.Entries() {
		key := e.Key
		if n, err := strconv.Atoi(strings.TrimSpace(key)); err == nil {
			key = HourKey(n)
		}
		out.Add(key, e.Count)
	}
	return out
}
