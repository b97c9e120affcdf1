package topics

import (
	"strings"

	"github.com/valentinclaes/claude-wrapped/internal/export"
)

// Thresholds for highlight buckets, in messages.
const (
	quickQuestionMessages = 2
	deepDiveMessages      = 30
)

// DeepDive is a conversation long enough to call out.
type DeepDive struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
}

// Highlights lists conversations worth mentioning in the report.
type Highlights struct {
	Philosophical  []string   `json:"philosophical"`
	QuickQuestions []string   `json:"quick_questions"`
	DeepDives      []DeepDive `json:"deep_dives"`
	PersonalGrowth []string   `json:"personal_growth"`
}

// FindHighlights picks out one-question chats, very long threads and
// conversations whose names hint at reflection. A conversation can appear in
// several lists.
func (t *Taxonomy) FindHighlights(convos []export.Conversation) Highlights {
	h := Highlights{
		Philosophical:  []string{},
		QuickQuestions: []string{},
		DeepDives:      []DeepDive{},
		PersonalGrowth: []string{},
	}
	for _, c := range convos {
		n := len(c.Messages)
		if n == quickQuestionMessages {
			h.QuickQuestions = append(h.QuickQuestions, c.Name)
		}
		if n >= deepDiveMessages {
			h.DeepDives = append(h.DeepDives, DeepDive{Name: c.Name, Messages: n})
		}
		lower := strings.ToLower(c.Name)
		if containsAny(lower, t.Highlights.Philosophical) {
			h.Philosophical = append(h.Philosophical, c.Name)
		}
		if containsAny(lower, t.Highlights.PersonalGrowth) {
			h.PersonalGrowth = append(h.PersonalGrowth, c.Name)
		}
	}
	return h
}

// FindHighlights runs the built-in highlight keywords over convos.
func FindHighlights(convos []export.Conversation) Highlights {
	return defaultTaxonomy.FindHighlights(convos)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
