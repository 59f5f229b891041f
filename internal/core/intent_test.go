package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShortReply(t *testing.T) {
	yes := []string{"có", "Có", "ok", "OK!", "yes", "đồng ý", "Đồng ý.", "d"}
	no := []string{"không", "Không", "ko", "no", "k", "KHÔNG!"}
	neither := []string{"", "có lẽ", "yes please", "tôi nghĩ là có", "không biết", "okay"}

	for _, s := range yes {
		assert.Equal(t, ShortYes, ParseShortReply(s), s)
	}
	for _, s := range no {
		assert.Equal(t, ShortNo, ParseShortReply(s), s)
	}
	for _, s := range neither {
		assert.Equal(t, ShortNeither, ParseShortReply(s), s)
	}
}

func TestRuleIntent(t *testing.T) {
	cases := []struct {
		text string
		want IntentVerdict
	}{
		{"tôi muốn gặp bác sĩ tim mạch", IntentWantsSpecialist},
		{"Cho tôi gặp bác sĩ được không", IntentWantsSpecialist},
		{"kết nối với bác sĩ giúp mình", IntentWantsSpecialist},
		{"I want to see a doctor", IntentWantsSpecialist},
		{"tôi không cần gặp bác sĩ", IntentNoSpecialist},
		{"tôi chỉ hỏi thông tin thôi", IntentNoSpecialist},
		{"xin chào", IntentAmbiguous},
		{"tôi muốn gặp bác sĩ, à không, tôi không cần gặp bác sĩ", IntentAmbiguous},
		{"tôi muốn gặp bác sĩ, không cần gấp", IntentWantsSpecialist},
		{"tôi muốn gặp bác sĩ nhưng không cần gặp ngay", IntentWantsSpecialist},
		{"tôi không muốn gặp chuyên gia", IntentNoSpecialist},
		{"   ", IntentNoSpecialist},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RuleIntent(tc.text), tc.text)
	}
}

type countingFallback struct {
	wants bool
	err   error
	calls int
}

func (c *countingFallback) WantsSpecialist(context.Context, string) (bool, error) {
	c.calls++
	return c.wants, c.err
}

func TestIntentClassifier_FastPathSkipsFallback(t *testing.T) {
	fb := &countingFallback{wants: false}
	c := NewIntentClassifier(fb, nil)

	assert.True(t, c.WantsSpecialist(context.Background(), "tôi muốn gặp bác sĩ"))
	assert.False(t, c.WantsSpecialist(context.Background(), "tôi không cần gặp bác sĩ"))
	assert.Equal(t, 0, fb.calls)
}

func TestIntentClassifier_AmbiguousUsesFallback(t *testing.T) {
	fb := &countingFallback{wants: true}
	c := NewIntentClassifier(fb, nil)

	assert.True(t, c.WantsSpecialist(context.Background(), "dạo này tôi hay mệt"))
	assert.Equal(t, 1, fb.calls)
}

func TestIntentClassifier_FallbackErrorMeansNo(t *testing.T) {
	fb := &countingFallback{wants: true, err: errors.New("boom")}
	c := NewIntentClassifier(fb, nil)

	assert.False(t, c.WantsSpecialist(context.Background(), "dạo này tôi hay mệt"))
	assert.Equal(t, 1, fb.calls)
}

func TestIntentClassifier_BlankInputNeverCallsFallback(t *testing.T) {
	fb := &countingFallback{wants: true}
	c := NewIntentClassifier(fb, nil)

	assert.False(t, c.WantsSpecialist(context.Background(), "  "))
	assert.Equal(t, 0, fb.calls)
}

type scriptedLLM struct {
	reply  string
	err    error
	prompt string
}

func (s *scriptedLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func TestLLMIntentFallback(t *testing.T) {
	cases := []struct {
		reply   string
		want    bool
		wantErr bool
	}{
		{"CÓ", true, false},
		{"Có.", true, false},
		{"yes", true, false},
		{"KHÔNG", false, false},
		{"No, the patient is asking a question.", false, false},
		{"tôi không chắc", false, false},
		{"maybe", false, true},
		{"", false, true},
	}
	for _, tc := range cases {
		gen := &scriptedLLM{reply: tc.reply}
		got, err := (&LLMIntentFallback{LLM: gen}).WantsSpecialist(context.Background(), "tin nhắn")
		if tc.wantErr {
			require.Error(t, err, tc.reply)
			continue
		}
		require.NoError(t, err, tc.reply)
		assert.Equal(t, tc.want, got, tc.reply)
		assert.Contains(t, gen.prompt, "tin nhắn")
	}
}

func TestLLMIntentFallback_PropagatesGeneratorError(t *testing.T) {
	gen := &scriptedLLM{err: errors.New("timeout")}
	_, err := (&LLMIntentFallback{LLM: gen}).WantsSpecialist(context.Background(), "x")
	require.Error(t, err)
}
