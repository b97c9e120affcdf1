// Package topics assigns conversations to a fixed set of categories by
// keyword matching on their names.
package topics

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/valentinclaes/claude-wrapped/internal/export"
	"github.com/valentinclaes/claude-wrapped/internal/stats"
)

// Other is the category for conversations no keyword matched.
const Other = "Other"

// SampleLimit caps the example conversations kept per category.
const SampleLimit = 10

//go:embed taxonomy.yaml
var taxonomyYAML []byte

// Category is a named, ordered list of lowercase substrings.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy is the ordered category table plus the highlight keyword lists.
type Taxonomy struct {
	Categories []Category `yaml:"categories"`
	Highlights struct {
		Philosophical  []string `yaml:"philosophical"`
		PersonalGrowth []string `yaml:"personal_growth"`
	} `yaml:"highlights"`
}

var defaultTaxonomy = mustTaxonomy(taxonomyYAML)

// Default returns the built-in taxonomy.
func Default() *Taxonomy { return defaultTaxonomy }

// ParseTaxonomy decodes and checks a taxonomy document.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Taxonomy
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if len(t.Categories) == 0 {
		return nil, errors.New("taxonomy has no categories")
	}
	seen := make(map[string]bool)
	for i, c := range t.Categories {
		if c.Name == "" || c.Name == Other {
			return nil, fmt.Errorf("category %d: invalid name %q", i, c.Name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("category %q listed twice", c.Name)
		}
		seen[c.Name] = true
		lowerAll(c.Keywords)
	}
	lowerAll(t.Highlights.Philosophical)
	lowerAll(t.Highlights.PersonalGrowth)
	return &t, nil
}

func lowerAll(words []string) {
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
}

func mustTaxonomy(data []byte) *Taxonomy {
	t, err := ParseTaxonomy(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Classify returns the category of a conversation name. Categories and
// keywords are tried in order and the first substring hit wins, even when a
// later category would also match.
func (t *Taxonomy) Classify(name string) string {
	lower := strings.ToLower(name)
	for _, c := range t.Categories {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				return c.Name
			}
		}
	}
	return Other
}

// Samples maps a category to example conversations and remembers the order
// in which categories first appeared.
type Samples struct {
	order   []string
	byTopic map[string][]stats.ConversationRef
}

func (s *Samples) add(topic string, ref stats.ConversationRef) {
	if s.byTopic == nil {
		s.byTopic = make(map[string][]stats.ConversationRef)
	}
	refs, ok := s.byTopic[topic]
	if !ok {
		s.order = append(s.order, topic)
	}
	if len(refs) < SampleLimit {
		s.byTopic[topic] = append(refs, ref)
	}
}

// Topics returns the categories in first-seen order.
func (s Samples) Topics() []string { return append([]string(nil), s.order...) }

// Get returns the examples kept for topic.
func (s Samples) Get(topic string) []stats.ConversationRef { return s.byTopic[topic] }

// MarshalJSON encodes the samples as an object in first-seen order.
func (s Samples) MarshalJSON() ([]byte, error) {
	return stats.MarshalOrdered(s.order, func(topic string) any { return s.byTopic[topic] })
}

// Breakdown is the content of topics.json.
type Breakdown struct {
	TopicCounts              stats.Counter `json:"topic_counts"`
	CategorizedConversations Samples       `json:"categorized_conversations"`
}

// Breakdown assigns every conversation to exactly one category.
// TopicCounts is ordered by count, highest first.
func (t *Taxonomy) Breakdown(convos []export.Conversation) *Breakdown {
	var counts stats.Counter
	var samples Samples
	for _, c := range convos {
		topic := t.Classify(c.Name)
		counts.Inc(topic)
		samples.add(topic, stats.ConversationRef{Name: c.Name, Date: c.Date()})
	}
	return &Breakdown{
		TopicCounts:              stats.NewCounter(counts.MostCommon(0)...),
		CategorizedConversations: samples,
	}
}

// Classify runs the built-in taxonomy over convos.
func Classify(convos []export.Conversation) *Breakdown {
	return defaultTaxonomy.Breakdown(convos)
}
