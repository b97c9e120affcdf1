package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/valentinclaes/claude-wrapped/internal/footprint"
	"github.com/valentinclaes/claude-wrapped/internal/stats"
	"github.com/valentinclaes/claude-wrapped/internal/wrapped"
)

//go:embed templates/wrapped.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("wrapped.html.tmpl").Funcs(template.FuncMap{
	"comma":  func(n int) string { return humanize.Comma(int64(n)) },
	"commaf": func(f float64) string { return humanize.Comma(int64(f)) },
	"dec1":   oneDecimal,
}).ParseFS(templateFS, "templates/wrapped.html.tmpl"))

const (
	notAvailable  = "N/A"
	maxNameLength = 60
)

var weekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Options personalize the rendered page.
type Options struct {
	Owner         string // possessive in the title when set
	AssistantName string // defaults to "Claude"
	Year          int    // falls back to the summary's year
}

type card struct {
	Value string
	Label string
}

type topicBar struct {
	Rank  int
	Name  string
	Count int
	Width string // percent of the largest topic
}

type longRow struct {
	Name     string
	Messages int
}

type page struct {
	Title     string
	Assistant string
	Year      string

	Headline      []card
	WordsTotal    int
	Comparisons   []card
	Topics        []topicBar
	OtherTopics   int
	Insights      []card
	Records       []card
	Longest       []longRow
	Carbon        footprint.Estimate
	CarbonCards   []card
	OffsetCost    string
	Highlights    []card
	Narrative     []wrapped.Section

	MonthLabels   []string
	MonthValues   []int
	HourLabels    []string
	HourValues    []int
	WeekdayLabels []string
	WeekdayValues []int
}

// RenderHTML writes the self-contained report page. Missing sections render
// as "N/A" or zero instead of failing.
func RenderHTML(w io.Writer, sum *wrapped.Summary, st *stats.ConversationStats, opts Options) error {
	if sum == nil {
		sum = &wrapped.Summary{}
	}
	if st == nil {
		st = &stats.ConversationStats{}
	}
	p := buildPage(sum, st, opts)
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func buildPage(sum *wrapped.Summary, st *stats.ConversationStats, opts Options) page {
	assistant := opts.AssistantName
	if assistant == "" {
		assistant = "Claude"
	}
	year := opts.Year
	if year == 0 {
		year = sum.Year
	}
	yearLabel := ""
	if year > 0 {
		yearLabel = strconv.Itoa(year)
	}

	title := fmt.Sprintf("%s %s Wrapped", assistant, yearLabel)
	if yearLabel == "" {
		title = assistant + " Wrapped"
	}
	if opts.Owner != "" {
		title = opts.Owner + "'s " + title
	}

	h := sum.HeadlineStats
	c := sum.FunComparisons
	pi := sum.PersonalityInsights
	pu := sum.PeakUsage
	tp := sum.TimePatterns
	rec := sum.StreaksAndRecords
	cf := sum.CarbonFootprint

	p := page{
		Title:      title,
		Assistant:  assistant,
		Year:       yearLabel,
		WordsTotal: h.TotalWordsExchanged,
		Headline: []card{
			{humanize.Comma(int64(h.TotalConversations)), "Conversations"},
			{humanize.Comma(int64(h.TotalMessages)), "Messages Exchanged"},
			{humanize.Comma(int64(h.TotalWordsYouWrote)), "Words You Wrote"},
			{humanize.Comma(int64(h.TotalWordsClaudeWrote)), "Words " + assistant + " Wrote"},
			{humanize.Comma(int64(h.DaysActive)), "Days Active"},
			{floatOrNA(h.AvgConversationsPerActiveDay), "Avg Convos/Day"},
			{intOrZero(pi.DeepDives), "Deep Dives (20+ msgs)"},
			{humanize.Comma(int64(h.ProjectsUsed)), "Projects Used"},
		},
		Comparisons: []card{
			{oneDecimal(c.EquivalentNovels), "Novels Worth of Text"},
			{humanize.Comma(int64(c.PagesOfText)), "Pages of Writing"},
			{oneDecimal(c.HoursOfAudiobook), "Hours of Audiobook"},
			{oneDecimal(c.GreatGatsbyEquivalents) + "x", "The Great Gatsby"},
		},
		OtherTopics: sum.OtherTopicsCount,
		Insights: []card{
			{orNA(tp.Chronotype), "Your Chronotype"},
			{orNA(pu.FavoriteHour), "Peak Hour"},
			{orNA(pu.FavoriteDay), "Peak Day"},
			{orNA(pi.CommunicationStyle), "Communication Style"},
			{intOrZero(pi.QuickChats), "Quick Q&As"},
			{intOrZero(pi.DeepDives), "Deep Dives (20+ msgs)"},
			{floatOrZero(pi.VerbosityRatio) + "x", assistant + " Verbosity Ratio"},
			{oneDecimal(tp.WeekendPercentage) + "%", "Weekend Usage"},
		},
		Records: []card{
			{fmt.Sprintf("%s (%s convos)", orNA(rec.BusiestMonth), intOrZero(rec.BusiestMonthConvos)), "Busiest Month"},
			{orNA(rec.UsageTrend), "Usage Trend"},
		},
		CarbonCards: []card{
			{oneDecimal(cf.TotalCO2Kg), "kg CO2"},
			{oneDecimal(cf.OperationalKWh), "kWh Energy"},
			{humanize.Comma(int64(cf.WaterLiters)), "Liters Water"},
			{humanize.Comma(int64(cf.CarMilesEquivalent)), "Car Miles Equiv."},
		},
		Carbon:     cf,
		OffsetCost: fmt.Sprintf("$%.2f", cf.OffsetCostUSD),
		Narrative:  sum.Narrative,
		Highlights: []card{
			{strconv.Itoa(len(sum.Highlights.QuickQuestions)), "Quick Questions"},
			{strconv.Itoa(len(sum.Highlights.DeepDives)), "Marathon Threads (30+ msgs)"},
			{strconv.Itoa(len(sum.Highlights.Philosophical)), "Big-Question Chats"},
			{strconv.Itoa(len(sum.Highlights.PersonalGrowth)), "Personal Growth Chats"},
		},
	}

	maxTopic := 0
	for _, t := range sum.TopTopics {
		maxTopic = max(maxTopic, t.Count)
	}
	for i, t := range sum.TopTopics {
		width := 0.0
		if maxTopic > 0 {
			width = min(100, float64(t.Count)/float64(maxTopic)*100)
		}
		p.Topics = append(p.Topics, topicBar{
			Rank:  i + 1,
			Name:  t.Topic,
			Count: t.Count,
			Width: strconv.FormatFloat(width, 'f', 1, 64),
		})
	}

	longest := rec.Top5Longest
	if len(longest) > 5 {
		longest = longest[:5]
	}
	for _, l := range longest {
		p.Longest = append(p.Longest, longRow{Name: Truncate(l.Name, maxNameLength), Messages: l.Messages})
	}

	p.MonthLabels, p.MonthValues = monthSeries(st.ConversationsByMonth)
	p.HourLabels, p.HourValues = hourSeries(st.MessagesByHour)
	p.WeekdayLabels, p.WeekdayValues = weekdaySeries(st.MessagesByWeekday)
	return p
}

// monthSeries orders months chronologically.
func monthSeries(months stats.Counter) ([]string, []int) {
	labels, values := []string{}, []int{}
	for _, e := range months.Sorted() {
		labels = append(labels, e.Key)
		values = append(values, e.Count)
	}
	return labels, values
}

// hourSeries reindexes the hour buckets to 0..23, filling gaps with zero.
func hourSeries(hours stats.Counter) ([]string, []int) {
	hours = stats.NormalizeHours(hours)
	labels, values := make([]string, 24), make([]int, 24)
	for h := 0; h < 24; h++ {
		labels[h] = stats.HourKey(h)
		values[h] = hours.Get(stats.HourKey(h))
	}
	return labels, values
}

// weekdaySeries reindexes the weekday buckets to Monday..Sunday.
func weekdaySeries(days stats.Counter) ([]string, []int) {
	values := make([]int, len(weekdayOrder))
	for i, d := range weekdayOrder {
		values[i] = days.Get(d)
	}
	return append([]string(nil), weekdayOrder...), values
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func oneDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

func floatOrNA(f *float64) string {
	if f == nil {
		return notAvailable
	}
	return oneDecimal(*f)
}

func floatOrZero(f *float64) string {
	if f == nil {
		return "0"
	}
	return oneDecimal(*f)
}

func intOrZero(n *int) string {
	if n == nil {
		return "0"
	}
	return humanize.Comma(int64(*n))
}
