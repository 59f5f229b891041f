package core

import (
	"fmt"
	"strings"

	"triage-chatbot/pkg"
)

// PromptWindow is the number of recent messages rendered into a prompt.
const PromptWindow = 10

// Persona selects who the text generator speaks as.  The zero value is the
// generic assistant.
type Persona struct {
	SpecialistName string
	Specialty      string
}

// SpecialistPersona returns the persona of a bound specialist.
func SpecialistPersona(s *pkg.Specialist) Persona {
	if s == nil {
		return Persona{}
	}
	return Persona{SpecialistName: s.Name, Specialty: s.Specialty}
}

func (p Persona) line() string {
	if p.SpecialistName == "" {
		return GenericPersonaPrompt
	}
	return fmt.Sprintf(SpecialistPersonaPrompt, p.SpecialistName, p.Specialty)
}

// BuildPrompt renders persona, running summary, the last PromptWindow
// messages of history and the new question into one prompt string.
func BuildPrompt(summary string, history []pkg.Message, persona Persona, question string) string {
	var b strings.Builder
	b.WriteString(persona.line())
	b.WriteString("\n\n")
	if s := strings.TrimSpace(summary); s != "" {
		b.WriteString("Tóm tắt hội thoại trước đó: ")
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	if recent := Recent(history, PromptWindow); len(recent) > 0 {
		b.WriteString("Hội thoại gần đây:\n")
		b.WriteString(RenderTranscript(recent))
		b.WriteString("\n\n")
	}
	b.WriteString("Câu hỏi mới của người bệnh: ")
	b.WriteString(question)
	return b.String()
}

// Recent returns at most n trailing messages.
func Recent(msgs []pkg.Message, n int) []pkg.Message {
	if n <= 0 {
		return nil
	}
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// RenderTranscript writes one "role: content" line per message.
func RenderTranscript(msgs []pkg.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, string(m.Role)+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
