// Package narrate asks an OpenAI-compatible chat model for a short written
// reflection on a year summary. Only aggregate numbers and topic names are
// sent; message text never leaves the machine.
package narrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/valentinclaes/claude-wrapped/internal/wrapped"
)

// MaxSections is how many sections are kept from a reply.
const MaxSections = 3

// ErrEmptyReply is returned when the model answers without usable sections.
var ErrEmptyReply = errors.New("narrate: empty reply")

// Options configure the chat client.
type Options struct {
	APIKey    string
	BaseURL   string // empty uses the OpenAI default
	Model     string
	MaxTokens int
}

// Narrator turns summaries into narrative sections.
type Narrator struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Narrator {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Narrator{
		client:    openai.NewClientWithConfig(cfg),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		logger:    logger,
	}
}

// Digest is the compact view of a summary that is sent to the model.
type Digest struct {
	Year               int                  `json:"year,omitempty"`
	Conversations      int                  `json:"conversations"`
	Messages           int                  `json:"messages"`
	WordsYouWrote      int                  `json:"words_you_wrote"`
	WordsClaudeWrote   int                  `json:"words_claude_wrote"`
	DaysActive         int                  `json:"days_active"`
	TopTopics          []wrapped.TopicCount `json:"top_topics"`
	Chronotype         string               `json:"chronotype,omitempty"`
	PeakHour           string               `json:"peak_hour,omitempty"`
	PeakDay            string               `json:"peak_day,omitempty"`
	WeekendPercentage  float64              `json:"weekend_percentage"`
	CommunicationStyle string               `json:"communication_style,omitempty"`
	UsageTrend         string               `json:"usage_trend,omitempty"`
	DeepDives          int                  `json:"deep_dives"`
	QuickQuestions     int                  `json:"quick_questions"`
	BigQuestionChats   int                  `json:"big_question_chats"`
	PersonalGrowth     int                  `json:"personal_growth_chats"`
}

// NewDigest extracts the fields worth narrating.
func NewDigest(sum *wrapped.Summary) Digest {
	h := sum.HeadlineStats
	return Digest{
		Year:               sum.Year,
		Conversations:      h.TotalConversations,
		Messages:           h.TotalMessages,
		WordsYouWrote:      h.TotalWordsYouWrote,
		WordsClaudeWrote:   h.TotalWordsClaudeWrote,
		DaysActive:         h.DaysActive,
		TopTopics:          sum.TopTopics,
		Chronotype:         sum.TimePatterns.Chronotype,
		PeakHour:           sum.PeakUsage.FavoriteHour,
		PeakDay:            sum.PeakUsage.FavoriteDay,
		WeekendPercentage:  sum.TimePatterns.WeekendPercentage,
		CommunicationStyle: sum.PersonalityInsights.CommunicationStyle,
		UsageTrend:         sum.StreaksAndRecords.UsageTrend,
		DeepDives:          len(sum.Highlights.DeepDives),
		QuickQuestions:     len(sum.Highlights.QuickQuestions),
		BigQuestionChats:   len(sum.Highlights.Philosophical),
		PersonalGrowth:     len(sum.Highlights.PersonalGrowth),
	}
}

const systemPrompt = `You write the closing section of a personal "year in review" for someone's AI assistant usage.
You receive aggregate statistics as JSON. Reply with a JSON array of exactly 3 objects, each {"title": "...", "body": "..."}.
Titles are at most 5 words. Bodies are 2-3 warm, specific sentences in second person that refer to the numbers.
Reply with the JSON array only.`

// Narrate requests narrative sections for sum.
func (n *Narrator) Narrate(ctx context.Context, sum *wrapped.Summary) ([]wrapped.Section, error) {
	if sum == nil {
		return nil, ErrEmptyReply
	}
	digest, err := json.Marshal(NewDigest(sum))
	if err != nil {
		return nil, fmt.Errorf("encode digest: %w", err)
	}

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(digest)},
		},
		MaxTokens:   n.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyReply
	}

	content := resp.Choices[0].Message.Content
	sections, err := ParseSections(content)
	if err != nil {
		n.logger.Debug("unparseable narration", zap.String("response", content))
		return nil, err
	}
	n.logger.Info("narration received", zap.Int("sections", len(sections)), zap.Int("tokens", resp.Usage.TotalTokens))
	return sections, nil
}

// ParseSections decodes a model reply into sections. A surrounding Markdown
// code fence is ignored, blank sections are dropped and at most MaxSections
// are kept.
func ParseSections(reply string) ([]wrapped.Section, error) {
	reply = stripFence(strings.TrimSpace(reply))

	var raw []wrapped.Section
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return nil, fmt.Errorf("decode narration: %w", err)
	}

	var out []wrapped.Section
	for _, s := range raw {
		s.Title = strings.TrimSpace(s.Title)
		s.Body = strings.TrimSpace(s.Body)
		if s.Title == "" || s.Body == "" {
			continue
		}
		out = append(out, s)
		if len(out) == MaxSections {
			break
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyReply
	}
	return out, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
