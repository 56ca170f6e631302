package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

// Rendered holds both bodies of an email.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

type renderData struct {
	MailMessage
	AppName string
}

var textTmpl = template.Must(template.New("text").Parse(
	`{{.Greeting}}
{{range .IntroLines}}
{{.}}
{{end}}
{{.ActionText}}: {{.ActionURL}}
{{range .OutroLines}}
{{.}}
{{end}}
Regards,
{{.AppName}}
`))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family: sans-serif; color: #1f2937;">
<h1 style="font-size: 18px;">{{.Greeting}}</h1>
{{range .IntroLines}}<p style="white-space: pre-wrap;">{{.}}</p>
{{end}}<p><a href="{{.ActionURL}}" style="display: inline-block; padding: 8px 16px; background: #111827; color: #ffffff; text-decoration: none; border-radius: 4px;">{{.ActionText}}</a></p>
{{range .OutroLines}}<p>{{.}}</p>
{{end}}<p>Regards,<br>{{.AppName}}</p>
</body>
</html>
`))

// Render produces the plain text and HTML bodies for m.
func Render(m MailMessage, appName string) (*Rendered, error) {
	data := renderData{MailMessage: m, AppName: appName}

	var text bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	var html bytes.Buffer
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}

	return &Rendered{Subject: m.Subject, Text: text.String(), HTML: html.String()}, nil
}
