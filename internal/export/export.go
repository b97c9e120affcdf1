// Package export loads the conversations, projects and memories documents of
// an assistant data export.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File names inside an export directory.
const (
	ConversationsFile = "conversations.json"
	ProjectsFile      = "projects.json"
	MemoriesFile      = "memories.json"
)

// Sender values with special meaning. Anything else counts toward totals only.
const (
	SenderHuman     = "human"
	SenderAssistant = "assistant"
)

// ErrMissingInput is returned when a required export document does not exist.
var ErrMissingInput = errors.New("export document not found")

// Message is one turn of a conversation.
type Message struct {
	Sender    string
	Text      string
	CreatedAt string // raw ISO-8601, may be empty
}

// WordCount returns the number of whitespace-separated words in the text.
func (m Message) WordCount() int {
	return len(strings.Fields(m.Text))
}

// Conversation is one exported thread.
type Conversation struct {
	Name      string
	CreatedAt string // raw ISO-8601, may be empty
	Messages  []Message
}

// Date returns the YYYY-MM-DD prefix of CreatedAt ("" when absent).
func (c Conversation) Date() string {
	return prefix(c.CreatedAt, 10)
}

// Project is one exported project.
type Project struct {
	Name        string
	Description string
	CreatedAt   string
	UpdatedAt   string
	DocsCount   int
}

// Export holds everything read from an export directory.
type Export struct {
	Conversations []Conversation
	Projects      []Project
	Memories      []json.RawMessage
}

// Raw document shapes. Pointers distinguish a missing key from an empty value.
type rawConversation struct {
	Name         *string      `json:"name"`
	CreatedAt    *string      `json:"created_at"`
	ChatMessages []rawMessage `json:"chat_messages"`
}

type rawMessage struct {
	Sender    *string `json:"sender"`
	Text      *string `json:"text"`
	CreatedAt *string `json:"created_at"`
}

type rawProject struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	CreatedAt   *string           `json:"created_at"`
	UpdatedAt   *string           `json:"updated_at"`
	Docs        []json.RawMessage `json:"docs"`
}

// Load reads the three export documents from dir. When year > 0 only
// conversations whose created_at starts with that year are kept.
// memories.json is optional; the other two documents are required.
func Load(dir string, year int) (*Export, error) {
	convos, err := LoadConversations(filepath.Join(dir, ConversationsFile))
	if err != nil {
		return nil, err
	}
	projects, err := LoadProjects(filepath.Join(dir, ProjectsFile))
	if err != nil {
		return nil, err
	}
	memories, err := LoadMemories(filepath.Join(dir, MemoriesFile))
	if err != nil && !errors.Is(err, ErrMissingInput) {
		return nil, err
	}

	return &Export{
		Conversations: FilterYear(convos, year),
		Projects:      projects,
		Memories:      memories,
	}, nil
}

// LoadConversations reads and validates a conversations document.
func LoadConversations(path string) ([]Conversation, error) {
	var raw []rawConversation
	if err := readDocument(path, conversationsSchema, &raw); err != nil {
		return nil, err
	}

	convos := make([]Conversation, 0, len(raw))
	for _, rc := range raw {
		c := Conversation{
			Name:      stringOr(rc.Name, "Untitled"),
			CreatedAt: stringOr(rc.CreatedAt, ""),
			Messages:  make([]Message, 0, len(rc.ChatMessages)),
		}
		for _, rm := range rc.ChatMessages {
			c.Messages = append(c.Messages, Message{
				Sender:    stringOr(rm.Sender, ""),
				Text:      stringOr(rm.Text, ""),
				CreatedAt: stringOr(rm.CreatedAt, ""),
			})
		}
		convos = append(convos, c)
	}
	return convos, nil
}

// LoadProjects reads and validates a projects document.
func LoadProjects(path string) ([]Project, error) {
	var raw []rawProject
	if err := readDocument(path, projectsSchema, &raw); err != nil {
		return nil, err
	}

	projects := make([]Project, 0, len(raw))
	for _, rp := range raw {
		projects = append(projects, Project{
			Name:        stringOr(rp.Name, "Unknown"),
			Description: stringOr(rp.Description, ""),
			CreatedAt:   stringOr(rp.CreatedAt, ""),
			UpdatedAt:   stringOr(rp.UpdatedAt, ""),
			DocsCount:   len(rp.Docs),
		})
	}
	return projects, nil
}

// LoadMemories reads a memories document. Entries are kept opaque.
func LoadMemories(path string) ([]json.RawMessage, error) {
	var raw []json.RawMessage
	if err := readDocument(path, memoriesSchema, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// FilterYear keeps conversations whose created_at string begins with year.
// A non-positive year disables filtering.
func FilterYear(convos []Conversation, year int) []Conversation {
	if year <= 0 {
		return convos
	}
	want := strconv.Itoa(year)
	var kept []Conversation
	for _, c := range convos {
		if strings.HasPrefix(c.CreatedAt, want) {
			kept = append(kept, c)
		}
	}
	return kept
}

func readDocument(path string, schema documentSchema, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", filepath.Base(path), ErrMissingInput)
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := schema.validate(data); err != nil {
		return fmt.Errorf("validate %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
