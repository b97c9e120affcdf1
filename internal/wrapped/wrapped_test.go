package wrapped

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/valentinclaes/claude-wrapped/internal/export"
	"github.com/valentinclaes/claude-wrapped/internal/stats"
	"github.com/valentinclaes/claude-wrapped/internal/topics"
)

func build(convos []export.Conversation, projects int) *Summary {
	return Build(Input{
		Year:       2025,
		Stats:      stats.AnalyzeConversations(convos),
		Topics:     topics.Classify(convos),
		Projects:   make([]stats.ProjectSummary, projects),
		Highlights: topics.FindHighlights(convos),
	})
}

func TestBuild_VermouthExample(t *testing.T) {
	convos := []export.Conversation{{
		Name:      "Vermouth ratios",
		CreatedAt: "2025-04-01T10:00:00Z",
		Messages: []export.Message{
			{Sender: "human", Text: "hi there"},
			{Sender: "assistant", Text: "hello back to you"},
		},
	}}
	s := build(convos, 2)

	h := s.HeadlineStats
	if h.TotalConversations != 1 || h.TotalMessages != 2 {
		t.Errorf("headline counts: got %+v", h)
	}
	if h.TotalWordsYouWrote != 2 || h.TotalWordsClaudeWrote != 4 || h.TotalWordsExchanged != 6 {
		t.Errorf("headline words: got %+v", h)
	}
	if h.ProjectsUsed != 2 || h.DaysActive != 1 {
		t.Errorf("projects/days: got %d/%d", h.ProjectsUsed, h.DaysActive)
	}
	if len(s.TopTopics) != 1 || s.TopTopics[0] != (TopicCount{"Vermouth/Cartographer", 1}) {
		t.Errorf("top_topics: got %v", s.TopTopics)
	}
	if s.OtherTopicsCount != 0 {
		t.Errorf("other_topics_count: got %d", s.OtherTopicsCount)
	}

	p := s.PersonalityInsights
	if p.VerbosityRatio == nil || *p.VerbosityRatio != 2.0 {
		t.Errorf("verbosity: got %v", p.VerbosityRatio)
	}
	if p.CommunicationStyle != "Conversational" {
		t.Errorf("style: got %q", p.CommunicationStyle)
	}
	if p.QuickChats == nil || *p.QuickChats != 1 || *p.MediumConversations != 0 || *p.DeepDives != 0 {
		t.Errorf("length buckets: got %v %v %v", p.QuickChats, p.MediumConversations, p.DeepDives)
	}

	// No message timestamps: no peaks.
	if s.PeakUsage.FavoriteHour != "" || s.PeakUsage.FavoriteHourMessages != nil {
		t.Errorf("peak_usage should be empty: %+v", s.PeakUsage)
	}
	r := s.StreaksAndRecords
	if r.BusiestMonth != "2025-04" || *r.BusiestMonthConvos != 1 {
		t.Errorf("busiest month: got %q", r.BusiestMonth)
	}
	if r.UsageTrend != "" {
		t.Errorf("usage_trend needs two months, got %q", r.UsageTrend)
	}
	if r.LongestConversation != "Vermouth ratios" || len(r.Top5Longest) != 1 {
		t.Errorf("longest: got %+v", r)
	}
	if s.CarbonFootprint.MessagePairs != 1 {
		t.Errorf("message_pairs: got %d", s.CarbonFootprint.MessagePairs)
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	s := Build(Input{})
	if s.PersonalityInsights.VerbosityRatio != nil || s.PersonalityInsights.QuickChats != nil {
		t.Error("ratios and buckets must be absent with no data")
	}
	if s.HeadlineStats.AvgConversationsPerActiveDay != nil {
		t.Error("avg per day must be absent with no active days")
	}
	if s.StreaksAndRecords.BusiestMonth != "" || s.StreaksAndRecords.Top5Longest != nil {
		t.Errorf("records should be empty: %+v", s.StreaksAndRecords)
	}
	if s.TimePatterns.WeekendPercentage != 0 {
		t.Errorf("weekend: got %v", s.TimePatterns.WeekendPercentage)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"claude_verbosity_ratio", "favorite_hour", "busiest_month", "usage_trend", "narrative"} {
		if strings.Contains(string(data), `"`+key+`"`) {
			t.Errorf("%s should be omitted: %s", key, data)
		}
	}
	if !strings.Contains(string(data), `"top_topics":[]`) {
		t.Errorf("top_topics should encode as []: %s", data)
	}
}

func TestFormatHour(t *testing.T) {
	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"0", "12 AM", true},
		{"9", "9 AM", true},
		{"12", "12 PM", true},
		{"13", "1 PM", true},
		{"23", "11 PM", true},
		{"24", "", false},
		{"noon", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatHour(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatHour(%q): got %q %v, want %q %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBuild_PeakUsage(t *testing.T) {
	convos := []export.Conversation{{
		Name:      "evening",
		CreatedAt: "2025-03-07T15:00:00Z",
		Messages: []export.Message{
			{Sender: "human", Text: "a", CreatedAt: "2025-03-07T15:00:00Z"},
			{Sender: "assistant", Text: "b", CreatedAt: "2025-03-07T15:01:00Z"},
			{Sender: "human", Text: "c", CreatedAt: "2025-03-08T09:00:00Z"},
		},
	}}
	s := build(convos, 0)
	if s.PeakUsage.FavoriteHour != "3 PM" || *s.PeakUsage.FavoriteHourMessages != 2 {
		t.Errorf("favorite hour: got %q", s.PeakUsage.FavoriteHour)
	}
	if s.PeakUsage.FavoriteDay != "Friday" || *s.PeakUsage.FavoriteDayMessages != 2 {
		t.Errorf("favorite day: got %q", s.PeakUsage.FavoriteDay)
	}
	if s.TimePatterns.Chronotype != stats.AfternoonWorker {
		t.Errorf("chronotype: got %q", s.TimePatterns.Chronotype)
	}
}

func TestUsageTrend(t *testing.T) {
	tests := []struct {
		name   string
		months []stats.Entry
		want   string
	}{
		{"one month", []stats.Entry{{Key: "2025-01", Count: 5}}, ""},
		{"growing", []stats.Entry{{Key: "2025-02", Count: 9}, {Key: "2025-01", Count: 1}}, TrendIncreasing},
		{"shrinking", []stats.Entry{{Key: "2025-01", Count: 9}, {Key: "2025-02", Count: 1}}, TrendDecreasing},
		{"tie is decreasing", []stats.Entry{{Key: "2025-01", Count: 3}, {Key: "2025-02", Count: 3}}, TrendDecreasing},
		// Odd count: the middle month belongs to the second half.
		{"odd split", []stats.Entry{{Key: "2025-01", Count: 5}, {Key: "2025-02", Count: 3}, {Key: "2025-03", Count: 3}}, TrendIncreasing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := usageTrend(stats.NewCounter(tt.months...)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_TopTopicsAndBuckets(t *testing.T) {
	var convos []export.Conversation
	add := func(name string, n, messages int) {
		for i := 0; i < n; i++ {
			convos = append(convos, export.Conversation{
				Name:      fmt.Sprintf("%s %d", name, i),
				CreatedAt: fmt.Sprintf("2025-%02d-01T00:00:00Z", i%12+1),
				Messages:  make([]export.Message, messages),
			})
		}
	}
	add("duckbill", 9, 2)
	add("hydrogen", 8, 5)
	add("consulting", 7, 20)
	add("vermouth", 6, 21)
	add("penumbra", 5, 1)
	add("outfit", 4, 1)
	add("fitness", 3, 1)
	add("sushi", 2, 1)
	add("misc", 10, 1)

	s := build(convos, 0)
	if len(s.TopTopics) != topTopicsLimit {
		t.Fatalf("top topics: got %d, want %d", len(s.TopTopics), topTopicsLimit)
	}
	if s.TopTopics[0].Topic != "Work - Duckbill" || s.TopTopics[6].Topic != "Health & Fitness" {
		t.Errorf("top topics order: got %v", s.TopTopics)
	}
	for _, tc := range s.TopTopics {
		if tc.Topic == topics.Other {
			t.Error("Other must not appear in top topics")
		}
	}
	if s.OtherTopicsCount != 10 {
		t.Errorf("other_topics_count: got %d, want 10", s.OtherTopicsCount)
	}

	p := s.PersonalityInsights
	// quick: 9 + 5+4+3+2+10 = 33, medium: 8+7 = 15, deep: 6
	if *p.QuickChats != 33 || *p.MediumConversations != 15 || *p.DeepDives != 6 {
		t.Errorf("buckets: got %d/%d/%d", *p.QuickChats, *p.MediumConversations, *p.DeepDives)
	}
	if len(s.StreaksAndRecords.Top5Longest) != 5 {
		t.Errorf("top_5_longest: got %d", len(s.StreaksAndRecords.Top5Longest))
	}
	// The largest group has ten conversations, so months 01..10 are used.
	if s.HeadlineStats.DaysActive != 10 {
		t.Errorf("days_active: got %d, want 10", s.HeadlineStats.DaysActive)
	}
}

func TestComparisons(t *testing.T) {
	st := &stats.ConversationStats{HumanWords: 14000, AssistantWords: 146000}
	got := comparisons(st)
	want := Comparisons{
		EquivalentNovels:       2.0,
		EquivalentTweets:       50,
		PagesOfText:            533,
		HoursOfAudiobook:       17.8,
		GreatGatsbyEquivalents: 3.4,
	}
	if got != want {
		t.Errorf("comparisons:\n got %+v\nwant %+v", got, want)
	}

	half := comparisons(&stats.ConversationStats{HumanWords: 140, AssistantWords: 10})
	if half.EquivalentTweets != 0 || half.PagesOfText != 0 {
		t.Errorf("exact halves round to even: got tweets=%d pages=%d", half.EquivalentTweets, half.PagesOfText)
	}

	p := personality(st)
	if *p.VerbosityRatio != 10.4 || p.CommunicationStyle != "Concise" {
		t.Errorf("personality: got %v %q", *p.VerbosityRatio, p.CommunicationStyle)
	}
}
