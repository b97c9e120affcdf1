// Package stats aggregates counts and sums over exported conversations.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valentinclaes/claude-wrapped/internal/export"
)

// LongestLimit caps the longest-conversations list.
const LongestLimit = 20

// ConversationRef names a conversation and the day it started.
type ConversationRef struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// ConversationSize is one row of the longest-conversations list.
type ConversationSize struct {
	Name           string `json:"name"`
	Messages       int    `json:"messages"`
	HumanWords     int    `json:"human_words"`
	AssistantWords int    `json:"assistant_words"`
	Date           string `json:"date"`
}

// ConversationStats is the result of one pass over the conversations.
// Optional fields are nil when there was nothing to compute them from.
type ConversationStats struct {
	TotalConversations int `json:"total_conversations"`
	TotalMessages      int `json:"total_messages"`
	HumanMessages      int `json:"human_messages"`
	AssistantMessages  int `json:"assistant_messages"`
	HumanWords         int `json:"human_words"`
	AssistantWords     int `json:"assistant_words"`

	ConversationsByMonth Counter `json:"conversations_by_month"`
	MessagesByHour       Counter `json:"messages_by_hour"`
	MessagesByWeekday    Counter `json:"messages_by_weekday"`

	ConversationLengths  []int              `json:"conversation_lengths"`
	LongestConversations []ConversationSize `json:"longest_conversations"`
	ConversationNames    []ConversationRef  `json:"conversation_names"`

	AvgMessagesPerConvo       *float64 `json:"avg_messages_per_convo,omitempty"`
	AvgHumanWordsPerConvo     *float64 `json:"avg_human_words_per_convo,omitempty"`
	AvgAssistantWordsPerConvo *float64 `json:"avg_assistant_words_per_convo,omitempty"`

	PeakHour    *Entry `json:"peak_hour,omitempty"`
	PeakWeekday *Entry `json:"peak_weekday,omitempty"`
}

// AnalyzeConversations walks every conversation and message once.
// Messages whose timestamp cannot be parsed still count toward totals but
// are left out of the hour and weekday buckets.
func AnalyzeConversations(convos []export.Conversation) *ConversationStats {
	s := &ConversationStats{
		TotalConversations:   len(convos),
		ConversationLengths:  make([]int, 0, len(convos)),
		LongestConversations: make([]ConversationSize, 0, len(convos)),
		ConversationNames:    make([]ConversationRef, 0, len(convos)),
	}

	for _, c := range convos {
		date := c.Date()
		s.ConversationNames = append(s.ConversationNames, ConversationRef{Name: c.Name, Date: date})
		if date != "" {
			s.ConversationsByMonth.Inc(monthOf(date))
		}

		n := len(c.Messages)
		s.TotalMessages += n
		s.ConversationLengths = append(s.ConversationLengths, n)

		size := ConversationSize{Name: c.Name, Messages: n, Date: date}
		for _, m := range c.Messages {
			words := m.WordCount()
			switch m.Sender {
			case export.SenderHuman:
				s.HumanMessages++
				s.HumanWords += words
				size.HumanWords += words
			case export.SenderAssistant:
				s.AssistantMessages++
				s.AssistantWords += words
				size.AssistantWords += words
			}

			if t, ok := ParseTimestamp(m.CreatedAt); ok {
				s.MessagesByHour.Inc(HourKey(t.Hour()))
				s.MessagesByWeekday.Inc(t.Weekday().String())
			}
		}
		s.LongestConversations = append(s.LongestConversations, size)
	}

	sort.SliceStable(s.LongestConversations, func(i, j int) bool {
		return s.LongestConversations[i].Messages > s.LongestConversations[j].Messages
	})
	if len(s.LongestConversations) > LongestLimit {
		s.LongestConversations = s.LongestConversations[:LongestLimit]
	}

	if s.TotalConversations > 0 {
		total := float64(s.TotalConversations)
		s.AvgMessagesPerConvo = ptr(float64(s.TotalMessages) / total)
		s.AvgHumanWordsPerConvo = ptr(float64(s.HumanWords) / total)
		s.AvgAssistantWordsPerConvo = ptr(float64(s.AssistantWords) / total)
	}
	if peak := s.MessagesByHour.MostCommon(1); len(peak) == 1 {
		s.PeakHour = &peak[0]
	}
	if peak := s.MessagesByWeekday.MostCommon(1); len(peak) == 1 {
		s.PeakWeekday = &peak[0]
	}
	return s
}

// timestampLayouts are tried in order. Fractional seconds are accepted by
// time.Parse even when the layout omits them.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. The result keeps the offset
// written in the string; timestamps without one are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HourKey is the canonical bucket key for an hour of the day: "0".."23".
func HourKey(h int) string {
	return strconv.Itoa(h)
}

// Round rounds x to the given number of decimal places. Exact halves go to
// the even neighbour, so 2.5 rounds to 2 and 6.25 to 6.2.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(x*p) / p
}

func monthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

func ptr[T any](v T) *T { return &v }
