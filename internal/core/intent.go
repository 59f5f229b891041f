package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"triage-chatbot/internal/llm"
)

// ShortReply is the reading of a patient's answer to a yes/no question.
type ShortReply int

const (
	ShortNeither ShortReply = iota
	ShortYes
	ShortNo
)

var (
	affirmativeReplies = map[string]struct{}{"co": {}, "ok": {}, "yes": {}, "dong y": {}, "d": {}}
	negativeReplies    = map[string]struct{}{"khong": {}, "ko": {}, "no": {}, "k": {}}
)

// ParseShortReply matches the normalized text exactly against the closed
// yes/no vocabularies.  Longer prose is always ShortNeither, even if it
// contains one of the words.
func ParseShortReply(text string) ShortReply {
	n := Normalize(text)
	if _, ok := affirmativeReplies[n]; ok {
		return ShortYes
	}
	if _, ok := negativeReplies[n]; ok {
		return ShortNo
	}
	return ShortNeither
}

// IntentVerdict is the outcome of the keyword stage.
type IntentVerdict int

const (
	IntentAmbiguous IntentVerdict = iota
	IntentWantsSpecialist
	IntentNoSpecialist
)

func (v IntentVerdict) String() string {
	switch v {
	case IntentWantsSpecialist:
		return "wants_specialist"
	case IntentNoSpecialist:
		return "no_specialist"
	default:
		return "ambiguous"
	}
}

// Patterns run against Normalize output, so they are written without
// diacritics.
var (
	wantSpecialistPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(toi|minh|em|con)\s+(muon|can|xin)\s+(duoc\s+)?(gap|kham|noi chuyen|tu van|lien he)\b`),
		regexp.MustCompile(`\b(cho|xin)\s+(toi|minh|em)\s+(gap|kham|noi chuyen voi|lien he)\b`),
		regexp.MustCompile(`\b(ket noi|chuyen)\s+(toi\s+|minh\s+|em\s+)?(voi\s+|sang\s+)?(bac si|chuyen gia|chuyen khoa)\b`),
		regexp.MustCompile(`\bdat lich\s+(kham|hen|gap)\b`),
		regexp.MustCompile(`\b(see|talk to|speak to|consult|book)\s+(with\s+)?(a\s+|an\s+)?(doctor|specialist|physician)\b`),
	}
	noSpecialistPatterns = []*regexp.Regexp{
		// "gap" must name whom: folded "gấp" (urgent) is also "gap"
		regexp.MustCompile(`\b(khong|chua)\s+(can|muon)\s+(gap\s+(bac si|chuyen gia|chuyen khoa)|kham|bac si|tu van|ket noi)\b`),
		regexp.MustCompile(`\bchi\s+(hoi|muon hoi|tham khao|tim hieu)\b`),
		regexp.MustCompile(`\b(no need|don'?t need|do not need|don'?t want|do not want)\b`),
	}
)

// RuleIntent runs the keyword stage only.  Exactly one matching set
// decides; both or neither is IntentAmbiguous.
func RuleIntent(text string) IntentVerdict {
	n := Normalize(text)
	if n == "" {
		return IntentNoSpecialist
	}
	want := matchAny(wantSpecialistPatterns, n)
	decline := matchAny(noSpecialistPatterns, n)
	switch {
	case want && !decline:
		return IntentWantsSpecialist
	case decline && !want:
		return IntentNoSpecialist
	default:
		return IntentAmbiguous
	}
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// IntentFallback decides ambiguous messages.
type IntentFallback interface {
	WantsSpecialist(ctx context.Context, text string) (bool, error)
}

var errUnparseableVerdict = errors.New("unparseable intent verdict")

// LLMIntentFallback asks the text generator for a single yes/no token.
type LLMIntentFallback struct {
	LLM llm.Client
}

// WantsSpecialist implements IntentFallback.
func (f *LLMIntentFallback) WantsSpecialist(ctx context.Context, text string) (bool, error) {
	resp, err := f.LLM.Complete(ctx, fmt.Sprintf(IntentFallbackInstruction, text))
	if err != nil {
		return false, err
	}
	verdict, ok := parseVerdictToken(resp)
	if !ok {
		return false, fmt.Errorf("%w: %q", errUnparseableVerdict, resp)
	}
	return verdict, nil
}

// parseVerdictToken accepts Vietnamese or English yes/no; the first
// recognised word wins.
func parseVerdictToken(resp string) (bool, bool) {
	for _, w := range strings.Fields(Normalize(resp)) {
		switch strings.TrimFunc(w, unicode.IsPunct) {
		case "co", "yes":
			return true, true
		case "khong", "no":
			return false, true
		}
	}
	return false, false
}

// IntentClassifier decides whether a message asks for a specialist: the
// keyword stage first, then the fallback for ambiguous text.  It never
// returns an error; any fallback failure reads as "no".
type IntentClassifier struct {
	Fallback IntentFallback
	Log      *zap.Logger
}

// NewIntentClassifier returns a classifier.  A nil fallback makes ambiguous
// messages read as "no".
func NewIntentClassifier(fallback IntentFallback, log *zap.Logger) *IntentClassifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntentClassifier{Fallback: fallback, Log: log}
}

// WantsSpecialist reports the patient's intent for text.
func (c *IntentClassifier) WantsSpecialist(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	switch RuleIntent(text) {
	case IntentWantsSpecialist:
		return true
	case IntentNoSpecialist:
		return false
	}
	if c.Fallback == nil {
		return false
	}
	wants, err := c.Fallback.WantsSpecialist(ctx, text)
	if err != nil {
		c.Log.Warn("intent fallback failed", zap.Error(err))
		return false
	}
	c.Log.Debug("intent decided by fallback", zap.Bool("wants_specialist", wants))
	return wants
}
