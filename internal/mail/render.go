// Package mail renders notification emails and delivers them over SMTP.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"budgetplanner/internal/core"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Message is a rendered email ready to send.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Renderer turns notifications into messages. Each template file defines a
// "subject" and a "body" block; the subject is rendered as plain text so
// quotes survive, the body with HTML escaping.
type Renderer struct {
	subjects *texttemplate.Template
	bodies   map[core.NotificationKind]*htmltemplate.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		subjects: texttemplate.New("subjects"),
		bodies:   make(map[core.NotificationKind]*htmltemplate.Template),
	}
	for _, kind := range []core.NotificationKind{core.NotifyVerifyEmail, core.NotifyInvitation} {
		name := "templates/" + string(kind) + ".html"
		raw, err := templatesFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}

		body, err := htmltemplate.New(string(kind)).Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.bodies[kind] = body

		subject, err := texttemplate.New(string(kind)).Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parse subject %s: %w", name, err)
		}
		if _, err := r.subjects.AddParseTree(string(kind), subject.Lookup("subject").Tree); err != nil {
			return nil, fmt.Errorf("register subject %s: %w", name, err)
		}
	}
	return r, nil
}

func (r *Renderer) Render(n core.Notification) (Message, error) {
	body, ok := r.bodies[n.Kind]
	if !ok {
		return Message{}, fmt.Errorf("no template for notification kind %q", n.Kind)
	}

	var subject bytes.Buffer
	if err := r.subjects.ExecuteTemplate(&subject, string(n.Kind), n); err != nil {
		return Message{}, fmt.Errorf("render subject: %w", err)
	}
	var html bytes.Buffer
	if err := body.ExecuteTemplate(&html, "body", n); err != nil {
		return Message{}, fmt.Errorf("render body: %w", err)
	}

	return Message{
		To:      n.To,
		Subject: strings.TrimSpace(subject.String()),
		HTML:    html.String(),
	}, nil
}
