package service

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/carecrest/hospital-cms/platform/go/mailer"
)

var notificationTemplate = template.Must(template.New("contact").Parse(`<h2>New contact message</h2>
<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
{{- if .Phone}}
<p><strong>Phone:</strong> {{.Phone}}</p>
{{- end}}
{{- if .Subject}}
<p><strong>Subject:</strong> {{.Subject}}</p>
{{- end}}
<p style="white-space: pre-wrap">{{.Message}}</p>
`))

func notification(to string, msg Message) (mailer.Email, error) {
	subject := "New contact message from " + msg.Name
	if msg.Subject != nil {
		subject = "Contact: " + *msg.Subject
	}

	view := map[string]string{
		"Name":    msg.Name,
		"Email":   msg.Email,
		"Message": msg.Message,
	}
	if msg.Phone != nil {
		view["Phone"] = *msg.Phone
	}
	if msg.Subject != nil {
		view["Subject"] = *msg.Subject
	}

	var html bytes.Buffer
	if err := notificationTemplate.Execute(&html, view); err != nil {
		return mailer.Email{}, err
	}

	var text strings.Builder
	text.WriteString("From: " + msg.Name + " <" + msg.Email + ">\n")
	if msg.Phone != nil {
		text.WriteString("Phone: " + *msg.Phone + "\n")
	}
	text.WriteString("\n" + msg.Message + "\n")

	return mailer.Email{
		To:      []string{to},
		ReplyTo: msg.Email,
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
