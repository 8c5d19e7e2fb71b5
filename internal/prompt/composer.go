// Package prompt turns a user's profile, the replayed history window and the
// new utterance into the ordered message list sent to the language model.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Role of a model message.
type Role string

// Model roles. System only ever appears once, first.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a model request.
type Message struct {
	Role    Role
	Content string
}

// Profile is what the persona knows about the dreamer.
type Profile struct {
	Name string
	// BirthDate is YYYY-MM-DD; empty or malformed means unknown age.
	BirthDate string
}

// SystemData is the data the system template is rendered with.
type SystemData struct {
	Name     string
	Age      int
	AgeKnown bool
}

// Composer assembles model requests. It is safe for concurrent use.
type Composer struct {
	tmpl *template.Template
	now  func() time.Time
}

// NewComposer parses systemTemplate (DefaultSystemTemplate when empty) and
// trial-renders it so a broken override fails at startup rather than per turn.
func NewComposer(systemTemplate string, now func() time.Time) (*Composer, error) {
	if strings.TrimSpace(systemTemplate) == "" {
		systemTemplate = DefaultSystemTemplate
	}
	if now == nil {
		now = time.Now
	}

	tmpl, err := template.New("system").Option("missingkey=error").Parse(systemTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse system prompt template: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, SystemData{Name: DefaultName, Age: 30, AgeKnown: true}); err != nil {
		return nil, fmt.Errorf("failed to render system prompt template: %w", err)
	}

	return &Composer{tmpl: tmpl, now: now}, nil
}

// Compose returns one system entry, the window entries in order and the
// utterance as the final user entry. Contents are never altered.
func (c *Composer) Compose(profile Profile, window []Message, utterance string) []Message {
	msgs := make([]Message, 0, len(window)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: c.System(profile)})
	msgs = append(msgs, window...)
	msgs = append(msgs, Message{Role: RoleUser, Content: utterance})
	return msgs
}

// System renders the system entry for profile.
func (c *Composer) System(profile Profile) string {
	data := SystemData{Name: strings.TrimSpace(profile.Name)}
	if data.Name == "" {
		data.Name = DefaultName
	}
	data.Age, data.AgeKnown = Age(profile.BirthDate, c.now())

	var sb strings.Builder
	if err := c.tmpl.Execute(&sb, data); err != nil {
		// Unreachable for templates that passed the trial render in NewComposer.
		return fmt.Sprintf("Ты - психолог-толкователь снов. Пользователь: %s.", data.Name)
	}
	return sb.String()
}

// Age returns the full years between birthDate (YYYY-MM-DD) and today. The
// second result is false when the date is missing, malformed or in the future.
func Age(birthDate string, today time.Time) (int, bool) {
	birth, err := time.Parse("2006-01-02", strings.TrimSpace(birthDate))
	if err != nil {
		return 0, false
	}

	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}
