package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"triage-chatbot/pkg"
)

func TestBuildPrompt_GenericPersona(t *testing.T) {
	history := []pkg.Message{
		{Role: pkg.RoleUser, Content: "xin chào"},
		{Role: pkg.RoleAssistant, Content: "chào bạn"},
	}
	prompt := BuildPrompt("", history, Persona{}, "tôi bị sốt")

	assert.True(t, strings.HasPrefix(prompt, GenericPersonaPrompt))
	assert.NotContains(t, prompt, "Tóm tắt hội thoại trước đó")
	assert.Contains(t, prompt, "user: xin chào\nassistant: chào bạn")
	assert.True(t, strings.HasSuffix(prompt, "tôi bị sốt"))
}

func TestBuildPrompt_SpecialistPersonaAndSummary(t *testing.T) {
	sp := &pkg.Specialist{Name: "Nguyễn Văn An", Specialty: SpecialtyCardiology}
	prompt := BuildPrompt("Bệnh nhân đau ngực.", nil, SpecialistPersona(sp), "tôi nên làm gì?")

	assert.Contains(t, prompt, "Nguyễn Văn An")
	assert.Contains(t, prompt, SpecialtyCardiology)
	assert.Contains(t, prompt, "Tóm tắt hội thoại trước đó: Bệnh nhân đau ngực.")
	assert.NotContains(t, prompt, "Hội thoại gần đây")
}

func TestBuildPrompt_OnlyRecentWindow(t *testing.T) {
	var history []pkg.Message
	for i := 0; i < 15; i++ {
		history = append(history, pkg.Message{Role: pkg.RoleUser, Content: fmt.Sprintf("m%02d", i)})
	}
	prompt := BuildPrompt("", history, Persona{}, "q")

	assert.NotContains(t, prompt, "m04")
	assert.Contains(t, prompt, "m05")
	assert.Contains(t, prompt, "m14")
}

func TestRecent(t *testing.T) {
	msgs := make([]pkg.Message, 3)
	assert.Len(t, Recent(msgs, 10), 3)
	assert.Len(t, Recent(msgs, 2), 2)
	assert.Empty(t, Recent(msgs, 0))
}

func TestAppendSummary(t *testing.T) {
	assert.Equal(t, "mới", appendSummary("", "mới"))
	assert.Equal(t, "cũ\nmới", appendSummary("cũ", "mới"))
}
