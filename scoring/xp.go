package scoring

import (
	"fmt"
	"strings"
)

// XP awarded to challenge winners by trainers.
const (
	FirstPlaceXP    = 10
	SecondPlaceXP   = 7
	ThirdPlaceXP    = 5
	ParticipationXP = 2
)

const (
	maxQualityBonus = 6
	maxEarlyBonus   = 2
	effortLines     = 50
)

// XPInput describes a graded submission.
type XPInput struct {
	CodeQuality      int
	SubmissionNumber int
	TotalLines       int
	SolvesChallenge  bool
	// AIScore overrides CodeQuality when set.
	AIScore *int
}

type XPResult struct {
	Total        int
	Base         int
	QualityBonus int
	EarlyBonus   int
	EffortBonus  int
	Penalty      int
	Breakdown    string
}

// Calculate computes the XP for a ticket submission.
func Calculate(in XPInput) XPResult {
	quality := in.CodeQuality
	if in.AIScore != nil {
		quality = *in.AIScore
	}

	if !in.SolvesChallenge {
		return XPResult{
			Total:     1,
			Base:      1,
			Penalty:   -1,
			Breakdown: "⚠️ Solution does not solve the challenge\n❌ Reduced XP: +1 XP (participation only)",
		}
	}

	r := XPResult{
		Base:         ParticipationXP,
		QualityBonus: qualityBonus(quality),
		EarlyBonus:   earlyBonus(in.SubmissionNumber),
	}
	if in.TotalLines >= effortLines {
		r.EffortBonus = 1
	}
	r.Total = r.Base + r.QualityBonus + r.EarlyBonus + r.EffortBonus

	parts := []string{fmt.Sprintf("🎯 Base: +%d XP", r.Base)}
	if r.QualityBonus > 0 {
		parts = append(parts, fmt.Sprintf("🤖 AI Score (%d/100): +%d XP", quality, r.QualityBonus))
	}
	if r.EarlyBonus > 0 {
		parts = append(parts, fmt.Sprintf("⚡ Early (#%d): +%d XP", in.SubmissionNumber, r.EarlyBonus))
	}
	if r.EffortBonus > 0 {
		parts = append(parts, fmt.Sprintf("💪 Effort (%d lines): +%d XP", in.TotalLines, r.EffortBonus))
	}
	r.Breakdown = strings.Join(parts, "\n")
	return r
}

func qualityBonus(score int) int {
	switch {
	case score >= 90:
		return maxQualityBonus
	case score >= 80:
		return 5
	case score >= 70:
		return 4
	case score >= 60:
		return 3
	case score >= 50:
		return 2
	}
	return 1
}

func earlyBonus(n int) int {
	switch {
	case n == 1:
		return maxEarlyBonus
	case n >= 2 && n <= 5:
		return 1
	}
	return 0
}

// ProgressBar renders score (0..100) as ten colored cells.
func ProgressBar(score int) string {
	score = min(max(score, 0), 100)
	filled := score / 10
	cell := "🟧"
	switch {
	case score >= 90:
		cell = "🟩"
	case score >= 70:
		cell = "🟨"
	}
	return strings.Repeat(cell, filled) + strings.Repeat("⬜", 10-filled)
}
