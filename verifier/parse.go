package verifier

import (
	"strconv"
	"strings"
)

// ParseResponse reads a model reply in the format requested by Prompt.
// Missing sections are filled with neutral defaults.
func ParseResponse(text string) Result {
	var (
		r        Result
		section  string
		feedback []string
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)

		switch {
		case strings.Contains(upper, "SOLVES_CHALLENGE"):
			r.SolvesChallenge = strings.Contains(afterColon(upper), "YES")
		case strings.Contains(upper, "CORRECTNESS_SCORE"):
			r.CorrectnessScore = parseScore(line, r.CorrectnessScore)
		case strings.Contains(upper, "LOGIC_SCORE"):
			r.LogicScore = parseScore(line, r.LogicScore)
		case strings.Contains(upper, "COMPLETENESS_SCORE"):
			r.CompletenessScore = parseScore(line, r.CompletenessScore)
		case strings.Contains(upper, "OVERALL_SCORE"):
			r.OverallScore = parseScore(line, r.OverallScore)
		case upper == "FEEDBACK:":
			section = "feedback"
		case upper == "ISSUES:":
			section = "issues"
		case upper == "STRENGTHS:":
			section = "strengths"
		case section == "feedback" && line != "" && !strings.HasSuffix(line, ":"):
			feedback = append(feedback, line)
		case section == "issues" && strings.HasPrefix(line, "-"):
			if issue := strings.TrimSpace(line[1:]); issue != "" {
				r.Issues = append(r.Issues, issue)
			}
		case section == "strengths" && strings.HasPrefix(line, "-"):
			if strength := strings.TrimSpace(line[1:]); strength != "" {
				r.Strengths = append(r.Strengths, strength)
			}
		}
	}

	r.Feedback = strings.Join(feedback, " ")
	if r.Feedback == "" {
		r.Feedback = "Code analysis completed."
	}
	if len(r.Issues) == 0 {
		if r.SolvesChallenge {
			r.Issues = []string{"No major issues detected"}
		} else {
			r.Issues = []string{"Solution does not solve the challenge"}
		}
	}
	if len(r.Strengths) == 0 {
		r.Strengths = []string{"Code syntax is valid"}
	}
	if r.OverallScore == 0 {
		r.OverallScore = (r.CorrectnessScore + r.LogicScore + r.CompletenessScore) / 3
	}
	return r
}

func afterColon(s string) string {
	if i := strings.Index(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// parseScore returns the first whole-number token on the line clamped to
// 0..100, or prev when there is none.
func parseScore(line string, prev int) int {
	fields := strings.FieldsFunc(afterColon(line), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '/' || r == '*' || r == ','
	})
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			return min(max(n, 0), 100)
		}
	}
	return prev
}
