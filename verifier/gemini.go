package verifier

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

var promptTemplate = template.Must(template.New("prompt").Parse(`You are a code review expert. Analyze if this code solves the given challenge.

CHALLENGE: {{.Title}}
DESCRIPTION: {{.Description}}
DIFFICULTY: {{.Difficulty}}
LANGUAGE: {{.Language}}

SUBMITTED CODE:
{{.Code}}

Respond in EXACTLY this format:

SOLVES_CHALLENGE: YES or NO
CORRECTNESS_SCORE: number 0-100
LOGIC_SCORE: number 0-100
COMPLETENESS_SCORE: number 0-100
OVERALL_SCORE: number 0-100

FEEDBACK:
Brief explanation of whether the code solves the challenge

ISSUES:
- Issue 1 if any
- Issue 2 if any

STRENGTHS:
- Strength 1 if any
- Strength 2 if any

Be strict: Only say YES if the code actually solves the challenge correctly.`))

// Prompt renders the verification prompt for req.
func Prompt(req Request) (string, error) {
	var sb strings.Builder
	if err := promptTemplate.Execute(&sb, req); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return sb.String(), nil
}

// generator is the part of the genai client the verifier needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini verifies submissions with Google's Gemini models.
type Gemini struct {
	models  generator
	model   string
	timeout time.Duration
	log     *logrus.Logger
}

func NewGemini(ctx context.Context, apiKey, model string, log *logrus.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{models: client.Models, model: model, timeout: 60 * time.Second, log: log}, nil
}

// Verify asks the model for a verdict. Any failure yields BasicResult.
func (g *Gemini) Verify(ctx context.Context, req Request) Result {
	prompt, err := Prompt(req)
	if err != nil {
		g.log.Errorln("AI verifier:", err)
		return BasicResult()
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := float32(0.2)
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		g.log.Errorf("AI verifier: generate content failed: %s", truncate(err.Error(), 150))
		return BasicResult()
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		g.log.Warnln("AI verifier: empty response")
		return BasicResult()
	}

	result := ParseResponse(text)
	g.log.WithFields(logrus.Fields{
		"solves": result.SolvesChallenge,
		"score":  result.OverallScore,
	}).Info("AI verification complete")
	return result
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
