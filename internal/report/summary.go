package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/valentinclaes/claude-wrapped/internal/wrapped"
)

const (
	recapRule      = 60
	recapNameWidth = 45
)

// Verbosity bands for the closing insight.
const (
	efficientRatio    = 6.0
	backAndForthRatio = 4.0
)

// WriteSummary prints the console recap of a summary.
func WriteSummary(w io.Writer, sum *wrapped.Summary, assistant string) error {
	if sum == nil {
		sum = &wrapped.Summary{}
	}
	if assistant == "" {
		assistant = "Claude"
	}
	var sb strings.Builder
	rule := strings.Repeat("=", recapRule)

	title := assistant + " Wrapped"
	if sum.Year > 0 {
		title = fmt.Sprintf("%s %d Wrapped", assistant, sum.Year)
	}
	sb.WriteString("\n" + rule + "\n")
	sb.WriteString(fmt.Sprintf("YOUR %s\n", strings.ToUpper(title)))
	sb.WriteString(rule + "\n")

	h := sum.HeadlineStats
	sb.WriteString("\nTHE BIG NUMBERS\n")
	sb.WriteString(fmt.Sprintf("   Conversations: %s\n", humanize.Comma(int64(h.TotalConversations))))
	sb.WriteString(fmt.Sprintf("   Messages exchanged: %s\n", humanize.Comma(int64(h.TotalMessages))))
	sb.WriteString(fmt.Sprintf("   Words you wrote: %s\n", humanize.Comma(int64(h.TotalWordsYouWrote))))
	sb.WriteString(fmt.Sprintf("   Words %s wrote: %s\n", assistant, humanize.Comma(int64(h.TotalWordsClaudeWrote))))
	sb.WriteString(fmt.Sprintf("   Days active: %d\n", h.DaysActive))
	sb.WriteString(fmt.Sprintf("   Projects used: %d\n", h.ProjectsUsed))
	if h.MemoriesSaved > 0 {
		sb.WriteString(fmt.Sprintf("   Memories saved: %d\n", h.MemoriesSaved))
	}

	c := sum.FunComparisons
	sb.WriteString("\nTHAT'S EQUIVALENT TO:\n")
	sb.WriteString(fmt.Sprintf("   %s novels worth of text\n", oneDecimal(c.EquivalentNovels)))
	sb.WriteString(fmt.Sprintf("   %s pages of writing\n", humanize.Comma(int64(c.PagesOfText))))
	sb.WriteString(fmt.Sprintf("   %s hours of audiobook\n", oneDecimal(c.HoursOfAudiobook)))
	sb.WriteString(fmt.Sprintf("   %sx The Great Gatsby\n", oneDecimal(c.GreatGatsbyEquivalents)))

	sb.WriteString("\nYOUR TOP TOPICS:\n")
	for i, t := range sum.TopTopics {
		sb.WriteString(fmt.Sprintf("   %d. %s (%d conversations)\n", i+1, t.Topic, t.Count))
	}
	if sum.OtherTopicsCount > 0 {
		sb.WriteString(fmt.Sprintf("   + %d miscellaneous conversations\n", sum.OtherTopicsCount))
	}

	pi := sum.PersonalityInsights
	sb.WriteString("\nCONVERSATION STYLE:\n")
	sb.WriteString(fmt.Sprintf("   Communication style: %s\n", orNA(pi.CommunicationStyle)))
	sb.WriteString(fmt.Sprintf("   Quick Q&As (<=4 msgs): %s\n", intOrZero(pi.QuickChats)))
	sb.WriteString(fmt.Sprintf("   Medium conversations: %s\n", intOrZero(pi.MediumConversations)))
	sb.WriteString(fmt.Sprintf("   Deep dives (20+ msgs): %s\n", intOrZero(pi.DeepDives)))

	pu := sum.PeakUsage
	tp := sum.TimePatterns
	sb.WriteString("\nWHEN YOU CHAT:\n")
	if pu.FavoriteHour != "" {
		sb.WriteString(fmt.Sprintf("   Peak hour: %s (%s messages)\n", pu.FavoriteHour, intOrZero(pu.FavoriteHourMessages)))
	}
	if pu.FavoriteDay != "" {
		sb.WriteString(fmt.Sprintf("   Peak day: %s (%s messages)\n", pu.FavoriteDay, intOrZero(pu.FavoriteDayMessages)))
	}
	if tp.Chronotype != "" {
		sb.WriteString(fmt.Sprintf("   Your chronotype: %s\n", tp.Chronotype))
	}
	sb.WriteString(fmt.Sprintf("   Weekend usage: %s%%\n", oneDecimal(tp.WeekendPercentage)))

	rec := sum.StreaksAndRecords
	sb.WriteString("\nRECORDS & TRENDS:\n")
	if rec.BusiestMonth != "" {
		sb.WriteString(fmt.Sprintf("   Busiest month: %s (%s conversations)\n", rec.BusiestMonth, intOrZero(rec.BusiestMonthConvos)))
	}
	if rec.UsageTrend != "" {
		sb.WriteString(fmt.Sprintf("   Usage trend: %s\n", rec.UsageTrend))
	}
	if rec.LongestConversation != "" {
		sb.WriteString(fmt.Sprintf("   Longest conversation: %q\n", Truncate(rec.LongestConversation, recapNameWidth)))
		sb.WriteString(fmt.Sprintf("      (%s messages)\n", intOrZero(rec.LongestConversationMessages)))
	}

	cf := sum.CarbonFootprint
	sb.WriteString("\nCARBON FOOTPRINT:\n")
	sb.WriteString(fmt.Sprintf("   %s kg CO2 from %s message exchanges\n", oneDecimal(cf.TotalCO2Kg), humanize.Comma(int64(cf.MessagePairs))))
	sb.WriteString(fmt.Sprintf("   Offset cost: $%.2f\n", cf.OffsetCostUSD))

	sb.WriteString("\nVERBOSITY INSIGHT:\n")
	if pi.VerbosityRatio != nil {
		ratio := *pi.VerbosityRatio
		sb.WriteString(fmt.Sprintf("   For every word you wrote, %s wrote %s words back\n", assistant, oneDecimal(ratio)))
		switch {
		case ratio > efficientRatio:
			sb.WriteString("   You're efficient - you get a lot of value per word!\n")
		case ratio > backAndForthRatio:
			sb.WriteString("   You have great back-and-forth conversations\n")
		default:
			sb.WriteString("   You're a detailed communicator\n")
		}
	}

	for _, s := range sum.Narrative {
		sb.WriteString("\n" + strings.ToUpper(s.Title) + "\n")
		sb.WriteString("   " + s.Body + "\n")
	}

	sb.WriteString("\n" + rule + "\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
