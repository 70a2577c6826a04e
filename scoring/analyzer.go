// Package scoring grades submitted code and turns grades into XP.
package scoring

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Metrics is the heuristic quality report for a piece of code. All scores are 0..100.
type Metrics struct {
	Correctness int
	Readability int
	Efficiency  int
	Overall     int
	Suggestions []string
	LineCount   int
	HasErrors   bool
}

var grammars = map[string]func() *sitter.Language{
	"python":     python.GetLanguage,
	"go":         golang.GetLanguage,
	"javascript": javascript.GetLanguage,
	"typescript": typescript.GetLanguage,
	"java":       java.GetLanguage,
	"c":          c.GetLanguage,
	"cpp":        cpp.GetLanguage,
	"rust":       rust.GetLanguage,
	"ruby":       ruby.GetLanguage,
	"php":        php.GetLanguage,
}

var (
	shortAssignRe = regexp.MustCompile(`\b[a-z]\s*=`)
	loopRe        = regexp.MustCompile(`\b(for|while)\b`)
)

// Analyzer scores code with a syntax check and a few style heuristics.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze grades code written in language. Languages without a grammar get a
// fixed generic grade.
func (a *Analyzer) Analyze(ctx context.Context, code, language string) Metrics {
	if len(strings.TrimSpace(code)) < 5 {
		return Metrics{
			Suggestions: []string{"No code provided"},
			HasErrors:   true,
		}
	}
	language = strings.ToLower(language)
	grammar, ok := grammars[language]
	if !ok {
		return genericMetrics(code)
	}

	lines := strings.Split(code, "\n")
	m := Metrics{LineCount: countNonBlank(lines)}

	// 1. correctness
	if msg, err := syntaxError(ctx, grammar(), code); err != nil {
		m.Correctness = 50
		m.Suggestions = append(m.Suggestions, fmt.Sprintf("⚠️ Code issue: %v", err))
	} else if msg != "" {
		m.HasErrors = true
		m.Suggestions = append(m.Suggestions, "❌ Syntax Error: "+msg)
		return m
	} else {
		m.Correctness = 100
	}

	// 2. readability
	readability := 100
	if m.LineCount > 15 && countComments(lines, language) < 3 {
		readability -= 10
		m.Suggestions = append(m.Suggestions, "💬 Add more comments")
	}
	if len(shortAssignRe.FindAllString(code, -1)) > 5 {
		readability -= 10
		m.Suggestions = append(m.Suggestions, "📝 Use descriptive variable names")
	}
	m.Readability = max(0, readability)

	// 3. efficiency
	efficiency := 100
	if len(loopRe.FindAllString(code, -1)) > 3 {
		efficiency -= 15
		m.Suggestions = append(m.Suggestions, "⚡ Consider optimizing loops")
	}
	m.Efficiency = max(0, efficiency)

	// 4. overall
	m.Overall = (m.Correctness*50 + m.Readability*30 + m.Efficiency*20) / 100
	switch {
	case m.Overall >= 90:
		m.Suggestions = append([]string{"🌟 Excellent code!"}, m.Suggestions...)
	case m.Overall >= 75:
		m.Suggestions = append([]string{"👍 Good code!"}, m.Suggestions...)
	}
	return m
}

func genericMetrics(code string) Metrics {
	return Metrics{
		Correctness: 85,
		Readability: 80,
		Efficiency:  75,
		Overall:     80,
		Suggestions: []string{"✅ Code looks good!"},
		LineCount:   countNonBlank(strings.Split(code, "\n")),
	}
}

// syntaxError parses code and describes the first syntax error, or returns "" if there is none.
func syntaxError(ctx context.Context, lang *sitter.Language, code string) (string, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, []byte(code))
	if err != nil {
		return "", err
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return "", nil
	}
	bad := firstErrorNode(root)
	if bad == nil {
		return "invalid syntax", nil
	}
	line := bad.StartPoint().Row + 1
	if bad.IsMissing() {
		return fmt.Sprintf("missing %q on line %d", bad.Type(), line), nil
	}
	return fmt.Sprintf("invalid syntax on line %d", line), nil
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if child.IsError() || child.IsMissing() || child.HasError() {
			if found := firstErrorNode(child); found != nil {
				return found
			}
		}
	}
	return nil
}

func countNonBlank(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}

func countComments(lines []string, language string) int {
	var prefixes []string
	switch language {
	case "python", "ruby":
		prefixes = []string{"#"}
	case "php":
		prefixes = []string{"#", "//", "/*", "*"}
	default:
		prefixes = []string{"//", "/*", "*"}
	}
	n := 0
	for _, l := range lines {
		l = strings.TrimSpace(l)
		for _, p := range prefixes {
			if strings.HasPrefix(l, p) {
				n++
				break
			}
		}
	}
	return n
}

// DetectLanguage guesses the language of a submission from telltale tokens.
func DetectLanguage(code string) string {
	switch {
	case strings.Contains(code, "package main") || strings.Contains(code, "func "):
		return "go"
	case strings.Contains(code, "def ") || strings.Contains(code, "import "):
		return "python"
	case strings.Contains(code, "public class"):
		return "java"
	case strings.Contains(code, "#include"):
		return "cpp"
	case strings.Contains(code, "function ") || strings.Contains(code, "const "):
		return "javascript"
	}
	return "python"
}
