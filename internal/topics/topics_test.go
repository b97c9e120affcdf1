package topics

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/valentinclaes/claude-wrapped/internal/export"
	"github.com/valentinclaes/claude-wrapped/internal/stats"
)

func named(names ...string) []export.Conversation {
	out := make([]export.Conversation, 0, len(names))
	for _, n := range names {
		out = append(out, export.Conversation{Name: n, CreatedAt: "2025-06-01T12:00:00Z"})
	}
	return out
}

func TestDefaultTaxonomy(t *testing.T) {
	tax := Default()
	if len(tax.Categories) != 13 {
		t.Fatalf("categories: got %d, want 13", len(tax.Categories))
	}
	if tax.Categories[0].Name != "Work - Duckbill" || tax.Categories[12].Name != "Travel" {
		t.Errorf("order: first %q, last %q", tax.Categories[0].Name, tax.Categories[12].Name)
	}
	if len(tax.Highlights.Philosophical) != 6 || len(tax.Highlights.PersonalGrowth) != 6 {
		t.Errorf("highlight keywords: got %d/%d", len(tax.Highlights.Philosophical), len(tax.Highlights.PersonalGrowth))
	}
}

func TestClassify(t *testing.T) {
	tax := Default()
	tests := []struct {
		name string
		want string
	}{
		{"Vermouth ratios", "Vermouth/Cartographer"},
		{"DUCKBILL tagline ideas", "Work - Duckbill"},
		{"Hydrogen aircraft range", "Work - Solstice Aerospace"},
		{"Best sushi in Austin", "Food & Dining"},
		{"Trip to Paris", "Travel"},
		{"Untitled", Other},
		{"", Other},
		// First category in declaration order wins over a later, more specific one.
		{"Family coffee morning", "Food & Dining"},
		{"Client dinner", "Work - Consulting"},
		// Substring matching: "ride" inside "pride".
		{"Pride parade", "Health & Fitness"},
	}
	for _, tt := range tests {
		if got := tax.Classify(tt.name); got != tt.want {
			t.Errorf("Classify(%q): got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestBreakdown_TotalsAndSamples(t *testing.T) {
	var names []string
	for i := 0; i < 12; i++ {
		names = append(names, fmt.Sprintf("vermouth batch %d", i))
	}
	names = append(names, "random chat", "coffee order", "another random chat", "coffee beans")
	convos := named(names...)

	b := Classify(convos)
	if got := b.TopicCounts.Total(); got != len(convos) {
		t.Errorf("topic total: got %d, want %d", got, len(convos))
	}

	top := b.TopicCounts.MostCommon(0)
	if top[0].Key != "Vermouth/Cartographer" || top[0].Count != 12 {
		t.Errorf("top topic: got %v", top[0])
	}
	// Food and Other tie at 2; Other was seen first.
	if top[1].Key != Other || top[2].Key != "Food & Dining" {
		t.Errorf("tie order: got %v", top)
	}
	keys := b.TopicCounts.Keys()
	if keys[0] != "Vermouth/Cartographer" {
		t.Errorf("topic_counts not sorted by count: %v", keys)
	}

	samples := b.CategorizedConversations.Get("Vermouth/Cartographer")
	if len(samples) != SampleLimit {
		t.Fatalf("samples: got %d, want %d", len(samples), SampleLimit)
	}
	if samples[0].Name != "vermouth batch 0" || samples[9].Name != "vermouth batch 9" {
		t.Errorf("samples not in input order: %v", samples)
	}
	if samples[0].Date != "2025-06-01" {
		t.Errorf("sample date: got %q", samples[0].Date)
	}

	want := []string{"Vermouth/Cartographer", Other, "Food & Dining"}
	if got := b.CategorizedConversations.Topics(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("sample topics: got %v, want %v", got, want)
	}
}

func TestBreakdown_JSONOrder(t *testing.T) {
	b := Classify(named("random", "coffee", "coffee"))
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}

	var back struct {
		TopicCounts stats.Counter `json:"topic_counts"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if got := back.TopicCounts.Keys(); strings.Join(got, "|") != "Food & Dining|Other" {
		t.Errorf("topic_counts order: got %v", got)
	}

	s := string(data)
	if strings.Index(s, `"Other":[`) > strings.Index(s, `Dining":[`) {
		t.Errorf("categorized order should follow first appearance: %s", s)
	}
}

func TestParseTaxonomy_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "categories: []"},
		{"unknown field", "categories:\n  - name: A\n    words: [x]\n"},
		{"duplicate", "categories:\n  - name: A\n  - name: A\n"},
		{"reserved", "categories:\n  - name: Other\n"},
		{"not yaml", "categories: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTaxonomy([]byte(tt.doc)); err == nil {
				t.Errorf("expected error for %q", tt.doc)
			}
		})
	}
}

func TestParseTaxonomy_LowercasesKeywords(t *testing.T) {
	tax, err := ParseTaxonomy([]byte("categories:\n  - name: Loud\n    keywords: [SHOUT]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := tax.Classify("why do people shout"); got != "Loud" {
		t.Errorf("got %q, want Loud", got)
	}
}

func TestFindHighlights(t *testing.T) {
	convos := []export.Conversation{
		{Name: "Quick one", Messages: make([]export.Message, 2)},
		{Name: "Marathon", Messages: make([]export.Message, 30)},
		{Name: "Why do we exist? The meaning of it all", Messages: make([]export.Message, 4)},
		{Name: "Weekly journal and habits", Messages: make([]export.Message, 2)},
		{Name: "Almost long", Messages: make([]export.Message, 29)},
	}
	h := FindHighlights(convos)

	if len(h.QuickQuestions) != 2 || h.QuickQuestions[1] != "Weekly journal and habits" {
		t.Errorf("quick_questions: got %v", h.QuickQuestions)
	}
	if len(h.DeepDives) != 1 || h.DeepDives[0] != (DeepDive{"Marathon", 30}) {
		t.Errorf("deep_dives: got %v", h.DeepDives)
	}
	// Listed once even though two keywords match.
	if len(h.Philosophical) != 1 {
		t.Errorf("philosophical: got %v", h.Philosophical)
	}
	if len(h.PersonalGrowth) != 1 {
		t.Errorf("personal_growth: got %v", h.PersonalGrowth)
	}

	empty := FindHighlights(nil)
	data, _ := json.Marshal(empty)
	if strings.Contains(string(data), "null") {
		t.Errorf("empty highlights should encode lists as []: %s", data)
	}
}
