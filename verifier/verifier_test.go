package verifier

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const sampleReply = `SOLVES_CHALLENGE: YES
CORRECTNESS_SCORE: 90
LOGIC_SCORE: 85/100
COMPLETENESS_SCORE: **80**
OVERALL_SCORE: 88

FEEDBACK:
The function reverses the string correctly.
It handles empty input.

ISSUES:
- No type hints

STRENGTHS:
- Concise
- Readable
`

func TestParseResponse(t *testing.T) {
	got := ParseResponse(sampleReply)
	assert.Equal(t, Result{
		SolvesChallenge:   true,
		CorrectnessScore:  90,
		LogicScore:        85,
		CompletenessScore: 80,
		OverallScore:      88,
		Feedback:          "The function reverses the string correctly. It handles empty input.",
		Issues:            []string{"No type hints"},
		Strengths:         []string{"Concise", "Readable"},
	}, got)
}

func TestParseResponseDefaults(t *testing.T) {
	got := ParseResponse("SOLVES_CHALLENGE: NO\nCORRECTNESS_SCORE: 30\nLOGIC_SCORE: 40\nCOMPLETENESS_SCORE: 50\n")
	assert.False(t, got.SolvesChallenge)
	assert.Equal(t, 40, got.OverallScore)
	assert.Equal(t, "Code analysis completed.", got.Feedback)
	assert.Equal(t, []string{"Solution does not solve the challenge"}, got.Issues)
	assert.Equal(t, []string{"Code syntax is valid"}, got.Strengths)

	got = ParseResponse("SOLVES_CHALLENGE: yes\nOVERALL_SCORE: 150")
	assert.True(t, got.SolvesChallenge)
	assert.Equal(t, 100, got.OverallScore)
	assert.Equal(t, []string{"No major issues detected"}, got.Issues)
}

func TestParseResponseGarbage(t *testing.T) {
	got := ParseResponse("I cannot help with that.")
	assert.False(t, got.SolvesChallenge)
	assert.Zero(t, got.OverallScore)
	assert.Equal(t, "Code analysis completed.", got.Feedback)
}

func TestBasic(t *testing.T) {
	got := Basic{}.Verify(context.Background(), Request{Code: "print(1)"})
	assert.False(t, got.SolvesChallenge)
	assert.Equal(t, 30, got.OverallScore)
	assert.Equal(t, "AI verification unavailable. Manual review required.", got.Feedback)
}

func TestPrompt(t *testing.T) {
	p, err := Prompt(Request{Title: "Reverse", Description: "Reverse a string", Difficulty: "Easy", Language: "python", Code: "s[::-1]"})
	require.NoError(t, err)
	assert.Contains(t, p, "CHALLENGE: Reverse\n")
	assert.Contains(t, p, "LANGUAGE: python\n")
	assert.Contains(t, p, "SUBMITTED CODE:\ns[::-1]\n")
	assert.Contains(t, p, "SOLVES_CHALLENGE: YES or NO")
}

type fakeModels struct {
	reply string
	err   error
	model string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func newTestGemini(m generator) *Gemini {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Gemini{models: m, model: DefaultModel, timeout: time.Second, log: log}
}

func TestGeminiVerify(t *testing.T) {
	models := &fakeModels{reply: sampleReply}
	got := newTestGemini(models).Verify(context.Background(), Request{Title: "Reverse", Code: "s[::-1]"})
	assert.True(t, got.SolvesChallenge)
	assert.Equal(t, 88, got.OverallScore)
	assert.Equal(t, DefaultModel, models.model)
}

func TestGeminiFallsBack(t *testing.T) {
	got := newTestGemini(&fakeModels{err: errors.New("quota exceeded")}).Verify(context.Background(), Request{})
	assert.Equal(t, BasicResult(), got)

	got = newTestGemini(&fakeModels{reply: "  "}).Verify(context.Background(), Request{})
	assert.Equal(t, BasicResult(), got)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "", logrus.New())
	assert.Error(t, err)
}
