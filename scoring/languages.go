package scoring

import "strings"

// Language is a programming language challenges can target.
type Language struct {
	Key        string
	Name       string
	Emoji      string
	Extensions []string
	Example    string
	CodeBlock  string
}

// Languages lists the supported languages in display order.
var Languages = []Language{
	{"python", "Python", "🐍", []string{".py"}, "def hello():\n    print(\"Hello World\")", "python"},
	{"javascript", "JavaScript", "📜", []string{".js"}, "function hello() {\n    console.log(\"Hello World\");\n}", "javascript"},
	{"java", "Java", "☕", []string{".java"}, "public class Hello {\n    public static void main(String[] args) {\n        System.out.println(\"Hello World\");\n    }\n}", "java"},
	{"cpp", "C++", "⚡", []string{".cpp", ".cc", ".cxx"}, "#include <iostream>\nint main() {\n    std::cout << \"Hello World\";\n    return 0;\n}", "cpp"},
	{"c", "C", "🔧", []string{".c"}, "#include <stdio.h>\nint main() {\n    printf(\"Hello World\");\n    return 0;\n}", "c"},
	{"csharp", "C#", "💎", []string{".cs"}, "using System;\nclass Program {\n    static void Main() {\n        Console.WriteLine(\"Hello World\");\n    }\n}", "csharp"},
	{"go", "Go", "🔷", []string{".go"}, "package main\nimport \"fmt\"\nfunc main() {\n    fmt.Println(\"Hello World\")\n}", "go"},
	{"rust", "Rust", "🦀", []string{".rs"}, "fn main() {\n    println!(\"Hello World\");\n}", "rust"},
	{"php", "PHP", "🐘", []string{".php"}, "<?php\necho \"Hello World\";\n?>", "php"},
	{"ruby", "Ruby", "💎", []string{".rb"}, "puts \"Hello World\"", "ruby"},
	{"swift", "Swift", "🦅", []string{".swift"}, "print(\"Hello World\")", "swift"},
	{"kotlin", "Kotlin", "🎯", []string{".kt"}, "fun main() {\n    println(\"Hello World\")\n}", "kotlin"},
	{"typescript", "TypeScript", "📘", []string{".ts"}, "function hello(): void {\n    console.log(\"Hello World\");\n}", "typescript"},
	{"sql", "SQL", "🗃️", []string{".sql"}, "SELECT * FROM users;", "sql"},
	{"any", "Any Language", "🌐", nil, "Use any programming language", "text"},
}

// LookupLanguage returns the language with the given key.
func LookupLanguage(key string) (Language, bool) {
	for _, l := range Languages {
		if l.Key == key {
			return l, true
		}
	}
	return Language{}, false
}

// LanguageForFile returns the language whose extensions match filename.
func LanguageForFile(filename string) (Language, bool) {
	for _, l := range Languages {
		for _, ext := range l.Extensions {
			if strings.HasSuffix(strings.ToLower(filename), ext) {
				return l, true
			}
		}
	}
	return Language{}, false
}
