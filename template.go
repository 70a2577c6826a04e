package talaitbot

import (
	"bytes"
	"fmt"
	"text/template"
)

const fence = "\\`\\`\\`"

var funcMap = template.FuncMap{
	"user": func(id string) string { return fmt.Sprintf("<@%s>", id) },
}

func createTemplate(name, tmpl string) *template.Template {
	return template.Must(template.New(name).Funcs(funcMap).Parse(tmpl))
}

var ticketInstructions = createTemplate("ticketInstructions", `Welcome {{user .UserID}}!

**Challenge:** {{.Title}}
**Difficulty:** {{.Difficulty}}
**Language:** {{.Language}}

📝 **How to submit:**
1. Post your code in a code block:
   `+fence+`{{.CodeBlock}}
   your code here
   `+fence+`
   or attach a file ({{.Extensions}})
2. Explain your approach
3. Click ✅ button below
4. Get AI analysis & XP!

🤖 **AI will verify:**
• Does your code solve the challenge?
• Is the logic correct?
• Are there any issues?`)

type ticketData struct {
	UserID     string
	Title      string
	Difficulty string
	Language   string
	CodeBlock  string
	Extensions string
}

func render(tmpl *template.Template, data any) (string, error) {
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
