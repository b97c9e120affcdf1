package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/valentinclaes/claude-wrapped/internal/stats"
	"github.com/valentinclaes/claude-wrapped/internal/wrapped"
)

// VaultFolder is where notes are placed inside an Obsidian vault.
const VaultFolder = "Claude/Wrapped"

// NoteName is the file name of the year's note.
func NoteName(year int) string {
	if year <= 0 {
		return "Claude Wrapped.md"
	}
	return fmt.Sprintf("Claude Wrapped %d.md", year)
}

type noteMeta struct {
	Year          int      `yaml:"year,omitempty"`
	Type          string   `yaml:"type"`
	AutoGenerated bool     `yaml:"auto_generated"`
	Conversations int      `yaml:"conversations"`
	Messages      int      `yaml:"messages"`
	DaysActive    int      `yaml:"days_active"`
	Chronotype    string   `yaml:"chronotype,omitempty"`
	TopTopic      string   `yaml:"top_topic,omitempty"`
	Tags          []string `yaml:"tags"`
}

// BuildMarkdown renders the summary as an Obsidian note with YAML
// frontmatter and Markdown tables. st may be nil.
func BuildMarkdown(sum *wrapped.Summary, st *stats.ConversationStats, assistant string) (string, error) {
	if sum == nil {
		sum = &wrapped.Summary{}
	}
	if assistant == "" {
		assistant = "Claude"
	}
	h := sum.HeadlineStats

	meta := noteMeta{
		Year:          sum.Year,
		Type:          "wrapped",
		AutoGenerated: true,
		Conversations: h.TotalConversations,
		Messages:      h.TotalMessages,
		DaysActive:    h.DaysActive,
		Chronotype:    sum.TimePatterns.Chronotype,
		Tags:          []string{"claude-wrapped"},
	}
	if len(sum.TopTopics) > 0 {
		meta.TopTopic = sum.TopTopics[0].Topic
	}
	var sb strings.Builder
	sb.WriteString("---\n")
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	sb.WriteString("---\n\n")

	title := assistant + " Wrapped"
	if sum.Year > 0 {
		title = fmt.Sprintf("%s %d Wrapped", assistant, sum.Year)
	}
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString("> *Auto-generated. Re-run `wrapped run` to refresh.*\n\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Conversations | %s |\n", humanize.Comma(int64(h.TotalConversations))))
	sb.WriteString(fmt.Sprintf("| Messages | %s |\n", humanize.Comma(int64(h.TotalMessages))))
	sb.WriteString(fmt.Sprintf("| Words you wrote | %s |\n", humanize.Comma(int64(h.TotalWordsYouWrote))))
	sb.WriteString(fmt.Sprintf("| Words %s wrote | %s |\n", assistant, humanize.Comma(int64(h.TotalWordsClaudeWrote))))
	sb.WriteString(fmt.Sprintf("| Days active | %d |\n", h.DaysActive))
	sb.WriteString(fmt.Sprintf("| Projects | %d |\n", h.ProjectsUsed))
	sb.WriteString(fmt.Sprintf("| Chronotype | %s |\n", orNA(sum.TimePatterns.Chronotype)))
	sb.WriteString(fmt.Sprintf("| Communication style | %s |\n", orNA(sum.PersonalityInsights.CommunicationStyle)))
	sb.WriteString(fmt.Sprintf("| Usage trend | %s |\n", orNA(sum.StreaksAndRecords.UsageTrend)))
	sb.WriteString("\n")

	if len(sum.TopTopics) > 0 {
		total := h.TotalConversations
		sb.WriteString("## Top Topics\n\n")
		sb.WriteString("| Topic | Conversations | % |\n|-------|---------------|---|\n")
		for _, t := range sum.TopTopics {
			pct := 0.0
			if total > 0 {
				pct = float64(t.Count) / float64(total) * 100
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %.0f%% |\n", cell(t.Topic), t.Count, pct))
		}
		if sum.OtherTopicsCount > 0 {
			sb.WriteString(fmt.Sprintf("| Other | %d | |\n", sum.OtherTopicsCount))
		}
		sb.WriteString("\n")
	}

	if st != nil && st.ConversationsByMonth.Len() > 0 {
		sb.WriteString("## Monthly Breakdown\n\n")
		sb.WriteString("| Month | Conversations |\n|-------|---------------|\n")
		for _, e := range st.ConversationsByMonth.Sorted() {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", e.Key, e.Count))
		}
		sb.WriteString("\n")
	}

	pb := sum.TimePatterns.PeriodBreakdown
	sb.WriteString("## When You Chat\n\n")
	sb.WriteString("| Period | Messages |\n|--------|----------|\n")
	sb.WriteString(fmt.Sprintf("| Morning | %d |\n| Afternoon | %d |\n| Evening | %d |\n| Late night | %d |\n",
		pb.Morning, pb.Afternoon, pb.Evening, pb.LateNight))
	sb.WriteString(fmt.Sprintf("\nPeak hour: %s. Peak day: %s. Weekend share: %s%%.\n\n",
		orNA(sum.PeakUsage.FavoriteHour), orNA(sum.PeakUsage.FavoriteDay), oneDecimal(sum.TimePatterns.WeekendPercentage)))

	if longest := sum.StreaksAndRecords.Top5Longest; len(longest) > 0 {
		sb.WriteString("## Longest Conversations\n\n")
		sb.WriteString("| Conversation | Messages | Date |\n|--------------|----------|------|\n")
		for _, c := range longest {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", cell(Truncate(c.Name, maxNameLength)), c.Messages, c.Date))
		}
		sb.WriteString("\n")
	}

	cf := sum.CarbonFootprint
	sb.WriteString("## Carbon Footprint\n\n")
	sb.WriteString(fmt.Sprintf("%s kg CO2 from %s message exchanges, about %s car miles. Offset cost $%.2f.\n\n",
		oneDecimal(cf.TotalCO2Kg), humanize.Comma(int64(cf.MessagePairs)),
		humanize.Comma(int64(cf.CarMilesEquivalent)), cf.OffsetCostUSD))

	if len(sum.Narrative) > 0 {
		sb.WriteString("## Reflections\n\n")
		for _, s := range sum.Narrative {
			sb.WriteString("> [!quote] " + oneLine(s.Title) + "\n")
			sb.WriteString(callout(s.Body) + "\n\n")
		}
	}
	return sb.String(), nil
}

// cell escapes a value for use inside a Markdown table row.
func cell(s string) string {
	return oneLine(strings.ReplaceAll(s, "|", `\|`))
}

// oneLine folds runs of whitespace, newlines included, into single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// callout prefixes each line with "> ".
func callout(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

