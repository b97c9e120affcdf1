// Package wrapped combines the aggregate statistics into the year-in-review
// summary written to wrapped.json.
package wrapped

import (
	"fmt"
	"strconv"

	"github.com/valentinclaes/claude-wrapped/internal/footprint"
	"github.com/valentinclaes/claude-wrapped/internal/stats"
	"github.com/valentinclaes/claude-wrapped/internal/topics"
)

// Fixed thresholds.
const (
	conciseRatio    = 5.0 // verbosity ratio above which you count as concise
	quickChatMax    = 4   // messages
	mediumChatMax   = 20  // messages
	topTopicsLimit  = 7
	topLongestLimit = 5
)

// Word-count yardsticks for the fun comparisons.
const (
	wordsPerNovel      = 80000
	wordsPerTweet      = 280
	wordsPerPage       = 300
	wordsPerAudioHour  = 9000
	wordsInGreatGatsby = 47094
)

// Usage trend labels.
const (
	TrendIncreasing = "Increasing over time"
	TrendDecreasing = "Decreasing over time"
)

// Headline holds the big numbers.
type Headline struct {
	TotalConversations           int      `json:"total_conversations"`
	TotalMessages                int      `json:"total_messages"`
	TotalWordsYouWrote           int      `json:"total_words_you_wrote"`
	TotalWordsClaudeWrote        int      `json:"total_words_claude_wrote"`
	TotalWordsExchanged          int      `json:"total_words_exchanged"`
	ProjectsUsed                 int      `json:"projects_used"`
	MemoriesSaved                int      `json:"memories_saved"`
	DaysActive                   int      `json:"days_active"`
	AvgConversationsPerActiveDay *float64 `json:"avg_conversations_per_active_day,omitempty"`
}

// Comparisons restates the word total in everyday units.
type Comparisons struct {
	EquivalentNovels       float64 `json:"equivalent_novels"`
	EquivalentTweets       int     `json:"equivalent_tweets"`
	PagesOfText            int     `json:"pages_of_text"`
	HoursOfAudiobook       float64 `json:"hours_of_audiobook"`
	GreatGatsbyEquivalents float64 `json:"the_great_gatsby_equivalents"`
}

// Personality describes how conversations tend to go.
type Personality struct {
	VerbosityRatio             *float64 `json:"claude_verbosity_ratio,omitempty"`
	CommunicationStyle         string   `json:"your_communication_style,omitempty"`
	AvgMessagesPerConversation float64  `json:"avg_messages_per_conversation"`
	QuickChats                 *int     `json:"quick_chats,omitempty"`
	MediumConversations        *int     `json:"medium_conversations,omitempty"`
	DeepDives                  *int     `json:"deep_dives,omitempty"`
}

// PeakUsage names the busiest hour and weekday.
type PeakUsage struct {
	FavoriteHour         string `json:"favorite_hour,omitempty"`
	FavoriteHourMessages *int   `json:"favorite_hour_messages,omitempty"`
	FavoriteDay          string `json:"favorite_day,omitempty"`
	FavoriteDayMessages  *int   `json:"favorite_day_messages,omitempty"`
}

// TopicCount is one row of the top topics list.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Records holds the busiest month, the trend and the longest conversations.
type Records struct {
	BusiestMonth                string                   `json:"busiest_month,omitempty"`
	BusiestMonthConvos          *int                     `json:"busiest_month_convos,omitempty"`
	UsageTrend                  string                   `json:"usage_trend,omitempty"`
	LongestConversation         string                   `json:"longest_conversation,omitempty"`
	LongestConversationMessages *int                     `json:"longest_conversation_messages,omitempty"`
	Top5Longest                 []stats.ConversationSize `json:"top_5_longest,omitempty"`
}

// Section is a titled paragraph of generated narrative.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Summary is the content of wrapped.json.
type Summary struct {
	Year                int                `json:"year,omitempty"`
	HeadlineStats       Headline           `json:"headline_stats"`
	FunComparisons      Comparisons        `json:"fun_comparisons"`
	PersonalityInsights Personality        `json:"personality_insights"`
	PeakUsage           PeakUsage          `json:"peak_usage"`
	TimePatterns        stats.TimePatterns `json:"time_patterns"`
	TopTopics           []TopicCount       `json:"top_topics"`
	OtherTopicsCount    int                `json:"other_topics_count"`
	StreaksAndRecords   Records            `json:"streaks_and_records"`
	CarbonFootprint     footprint.Estimate `json:"carbon_footprint"`
	Highlights          topics.Highlights  `json:"highlights"`
	Narrative           []Section          `json:"narrative,omitempty"`
}

// Input gathers everything Build reads. Nil statistics are treated as empty.
type Input struct {
	Year       int
	Stats      *stats.ConversationStats
	Topics     *topics.Breakdown
	Projects   []stats.ProjectSummary
	Memories   int
	Highlights topics.Highlights
}

// Build derives the summary. It never fails: a statistic that could not be
// computed upstream leaves the matching field empty.
func Build(in Input) *Summary {
	st := in.Stats
	if st == nil {
		st = &stats.ConversationStats{}
	}
	tb := in.Topics
	if tb == nil {
		tb = &topics.Breakdown{}
	}

	s := &Summary{
		Year:              in.Year,
		HeadlineStats:     headline(st, len(in.Projects), in.Memories),
		FunComparisons:    comparisons(st),
		PeakUsage:         peakUsage(st),
		TimePatterns:      stats.AnalyzeTimePatterns(st.MessagesByHour, st.MessagesByWeekday),
		StreaksAndRecords: records(st),
		CarbonFootprint:   footprint.Calculate(footprint.Pairs(st.HumanMessages, st.AssistantMessages)),
		Highlights:        in.Highlights,
	}
	s.PersonalityInsights = personality(st)
	s.TopTopics, s.OtherTopicsCount = topTopics(tb.TopicCounts)
	return s
}

func headline(st *stats.ConversationStats, projects, memories int) Headline {
	h := Headline{
		TotalConversations:    st.TotalConversations,
		TotalMessages:         st.TotalMessages,
		TotalWordsYouWrote:    st.HumanWords,
		TotalWordsClaudeWrote: st.AssistantWords,
		TotalWordsExchanged:   st.HumanWords + st.AssistantWords,
		ProjectsUsed:          projects,
		MemoriesSaved:         memories,
	}
	days := make(map[string]bool)
	for _, ref := range st.ConversationNames {
		if ref.Date != "" {
			days[ref.Date] = true
		}
	}
	h.DaysActive = len(days)
	if h.DaysActive > 0 {
		avg := stats.Round(float64(st.TotalConversations)/float64(h.DaysActive), 1)
		h.AvgConversationsPerActiveDay = &avg
	}
	return h
}

func comparisons(st *stats.ConversationStats) Comparisons {
	total := float64(st.HumanWords + st.AssistantWords)
	return Comparisons{
		EquivalentNovels:       stats.Round(total/wordsPerNovel, 1),
		EquivalentTweets:       int(stats.Round(float64(st.HumanWords)/wordsPerTweet, 0)),
		PagesOfText:            int(stats.Round(total/wordsPerPage, 0)),
		HoursOfAudiobook:       stats.Round(total/wordsPerAudioHour, 1),
		GreatGatsbyEquivalents: stats.Round(total/wordsInGreatGatsby, 1),
	}
}

func personality(st *stats.ConversationStats) Personality {
	var p Personality
	if st.HumanWords > 0 {
		ratio := stats.Round(float64(st.AssistantWords)/float64(st.HumanWords), 1)
		p.VerbosityRatio = &ratio
		p.CommunicationStyle = "Conversational"
		if ratio > conciseRatio {
			p.CommunicationStyle = "Concise"
		}
	}
	if st.AvgMessagesPerConvo != nil {
		p.AvgMessagesPerConversation = stats.Round(*st.AvgMessagesPerConvo, 1)
	}
	if len(st.ConversationLengths) > 0 {
		var quick, medium, deep int
		for _, n := range st.ConversationLengths {
			switch {
			case n <= quickChatMax:
				quick++
			case n <= mediumChatMax:
				medium++
			default:
				deep++
			}
		}
		p.QuickChats, p.MediumConversations, p.DeepDives = &quick, &medium, &deep
	}
	return p
}

func peakUsage(st *stats.ConversationStats) PeakUsage {
	var p PeakUsage
	if st.PeakHour != nil {
		if label, ok := FormatHour(st.PeakHour.Key); ok {
			count := st.PeakHour.Count
			p.FavoriteHour, p.FavoriteHourMessages = label, &count
		}
	}
	if st.PeakWeekday != nil {
		count := st.PeakWeekday.Count
		p.FavoriteDay, p.FavoriteDayMessages = st.PeakWeekday.Key, &count
	}
	return p
}

// FormatHour turns an hour bucket key ("0".."23") into a 12-hour clock label
// such as "12 AM" or "3 PM".
func FormatHour(key string) (string, bool) {
	h, err := strconv.Atoi(key)
	if err != nil || h < 0 || h > 23 {
		return "", false
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d %s", h12, suffix), true
}

func topTopics(counts stats.Counter) ([]TopicCount, int) {
	out := []TopicCount{}
	for _, e := range counts.MostCommon(0) {
		if e.Key == topics.Other {
			continue
		}
		if len(out) == topTopicsLimit {
			break
		}
		out = append(out, TopicCount{Topic: e.Key, Count: e.Count})
	}
	return out, counts.Get(topics.Other)
}

func records(st *stats.ConversationStats) Records {
	var r Records
	if busiest := st.ConversationsByMonth.MostCommon(1); len(busiest) == 1 {
		count := busiest[0].Count
		r.BusiestMonth, r.BusiestMonthConvos = busiest[0].Key, &count
		r.UsageTrend = usageTrend(st.ConversationsByMonth)
	}
	if len(st.LongestConversations) > 0 {
		longest := st.LongestConversations[0]
		messages := longest.Messages
		r.LongestConversation, r.LongestConversationMessages = longest.Name, &messages
		n := min(topLongestLimit, len(st.LongestConversations))
		r.Top5Longest = append([]stats.ConversationSize(nil), st.LongestConversations[:n]...)
	}
	return r
}

// usageTrend splits the months in calendar order at the midpoint and
// compares conversation totals. An equal split counts as decreasing. Fewer
// than two months gives no trend.
func usageTrend(months stats.Counter) string {
	sorted := months.Sorted()
	if len(sorted) < 2 {
		return ""
	}
	mid := len(sorted) / 2
	var first, second int
	for i, e := range sorted {
		if i < mid {
			first += e.Count
		} else {
			second += e.Count
		}
	}
	if second > first {
		return TrendIncreasing
	}
	return TrendDecreasing
}
