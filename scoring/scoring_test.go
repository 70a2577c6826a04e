package scoring

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeEmpty(t *testing.T) {
	m := NewAnalyzer().Analyze(context.Background(), "  \n ", "python")
	assert.Zero(t, m.Overall)
	assert.True(t, m.HasErrors)
	assert.Equal(t, []string{"No code provided"}, m.Suggestions)
}

func TestAnalyzeValidPython(t *testing.T) {
	code := "def add(first, second):\n    return first + second\n"
	m := NewAnalyzer().Analyze(context.Background(), code, "python")
	assert.False(t, m.HasErrors)
	assert.Equal(t, 100, m.Correctness)
	assert.Equal(t, 100, m.Overall)
	assert.Equal(t, 2, m.LineCount)
	require.NotEmpty(t, m.Suggestions)
	assert.Equal(t, "🌟 Excellent code!", m.Suggestions[0])
}

func TestAnalyzeSyntaxError(t *testing.T) {
	code := "def add(first, second)\n    return first + second\n"
	m := NewAnalyzer().Analyze(context.Background(), code, "python")
	assert.True(t, m.HasErrors)
	assert.Zero(t, m.Overall)
	assert.Zero(t, m.Correctness)
	require.Len(t, m.Suggestions, 1)
	assert.True(t, strings.HasPrefix(m.Suggestions[0], "❌ Syntax Error:"), m.Suggestions[0])
}

func TestAnalyzeGo(t *testing.T) {
	good := "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n"
	m := NewAnalyzer().Analyze(context.Background(), good, "go")
	assert.False(t, m.HasErrors)
	assert.Equal(t, 100, m.Overall)

	bad := "package main\n\nfunc main() {\n\tfmt.Println(\"hi\"\n"
	m = NewAnalyzer().Analyze(context.Background(), bad, "go")
	assert.True(t, m.HasErrors)
}

func TestAnalyzeReadabilityAndLoops(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&sb, "value_%d = %d\n", i, i)
	}
	m := NewAnalyzer().Analyze(context.Background(), sb.String(), "python")
	assert.Equal(t, 90, m.Readability)
	assert.Equal(t, 97, m.Overall)
	assert.Contains(t, m.Suggestions, "💬 Add more comments")

	loops := strings.Repeat("for item in range(3):\n    print(item)\n", 4)
	m = NewAnalyzer().Analyze(context.Background(), loops, "python")
	assert.Equal(t, 85, m.Efficiency)
	assert.Equal(t, 97, m.Overall)
	assert.Contains(t, m.Suggestions, "⚡ Consider optimizing loops")

	short := "a = 1\nb = 2\nc = 3\nd = 4\ne = 5\nf = 6\n"
	m = NewAnalyzer().Analyze(context.Background(), short, "python")
	assert.Equal(t, 90, m.Readability)
	assert.Contains(t, m.Suggestions, "📝 Use descriptive variable names")
}

func TestAnalyzeGeneric(t *testing.T) {
	m := NewAnalyzer().Analyze(context.Background(), "fun main() {\n    println(\"hi\")\n}", "kotlin")
	assert.Equal(t, Metrics{
		Correctness: 85,
		Readability: 80,
		Efficiency:  75,
		Overall:     80,
		Suggestions: []string{"✅ Code looks good!"},
		LineCount:   3,
	}, m)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"def main():\n    pass", "python"},
		{"import os", "python"},
		{"public class Main {}", "java"},
		{"#include <stdio.h>", "cpp"},
		{"function f() {}", "javascript"},
		{"const x = 1;", "javascript"},
		{"package main\nfunc main() {}", "go"},
		{"SELECT 1;", "python"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.code), tt.code)
	}
}

func TestCalculate(t *testing.T) {
	score := func(n int) *int { return &n }

	tests := []struct {
		name string
		in   XPInput
		want XPResult
	}{
		{
			name: "not solved",
			in:   XPInput{CodeQuality: 100, SubmissionNumber: 1, TotalLines: 80, SolvesChallenge: false},
			want: XPResult{Total: 1, Base: 1, Penalty: -1},
		},
		{
			name: "first excellent long",
			in:   XPInput{CodeQuality: 10, SubmissionNumber: 1, TotalLines: 50, SolvesChallenge: true, AIScore: score(95)},
			want: XPResult{Total: 11, Base: 2, QualityBonus: 6, EarlyBonus: 2, EffortBonus: 1},
		},
		{
			name: "third average",
			in:   XPInput{CodeQuality: 72, SubmissionNumber: 3, TotalLines: 10, SolvesChallenge: true},
			want: XPResult{Total: 7, Base: 2, QualityBonus: 4, EarlyBonus: 1},
		},
		{
			name: "late poor",
			in:   XPInput{CodeQuality: 20, SubmissionNumber: 6, TotalLines: 10, SolvesChallenge: true},
			want: XPResult{Total: 3, Base: 2, QualityBonus: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.in)
			assert.NotEmpty(t, got.Breakdown)
			got.Breakdown = ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateBreakdown(t *testing.T) {
	ai := 85
	got := Calculate(XPInput{SubmissionNumber: 2, TotalLines: 60, SolvesChallenge: true, AIScore: &ai})
	assert.Equal(t, "🎯 Base: +2 XP\n🤖 AI Score (85/100): +5 XP\n⚡ Early (#2): +1 XP\n💪 Effort (60 lines): +1 XP", got.Breakdown)
}

func TestQualityBonusBoundaries(t *testing.T) {
	for score, want := range map[int]int{100: 6, 90: 6, 89: 5, 80: 5, 70: 4, 60: 3, 50: 2, 49: 1, 0: 1} {
		assert.Equal(t, want, qualityBonus(score), "score %d", score)
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("🟩", 10), ProgressBar(100))
	assert.Equal(t, strings.Repeat("🟨", 7)+strings.Repeat("⬜", 3), ProgressBar(75))
	assert.Equal(t, strings.Repeat("🟧", 3)+strings.Repeat("⬜", 7), ProgressBar(30))
	assert.Equal(t, strings.Repeat("⬜", 10), ProgressBar(-5))
}

func TestLanguages(t *testing.T) {
	l, ok := LookupLanguage("rust")
	require.True(t, ok)
	assert.Equal(t, "Rust", l.Name)
	_, ok = LookupLanguage("cobol")
	assert.False(t, ok)

	l, ok = LanguageForFile("Solution.JAVA")
	require.True(t, ok)
	assert.Equal(t, "java", l.Key)
	l, ok = LanguageForFile("main.cc")
	require.True(t, ok)
	assert.Equal(t, "cpp", l.Key)
	_, ok = LanguageForFile("notes.txt")
	assert.False(t, ok)
}

func TestLoopCountWholeWords(t *testing.T) {
	code := "for i in range(3):\n    while ok:\n        print(format(meanwhile, forty))\n"
	assert.Len(t, loopRe.FindAllString(code, -1), 2)
}
