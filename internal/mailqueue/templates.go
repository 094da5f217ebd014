package mailqueue

import (
	"fmt"
	"html/template"
	"strings"
)

// Built-in message templates keyed by template name. Entries that carry a
// template render at dispatch time from TemplateVars; entries with an empty
// TemplateName send their Body verbatim.
const (
	TemplateRegistrationConfirmation = "registration_confirmation"
	TemplateAdminNotification        = "admin_notification"
	TemplateCancellation             = "cancellation"
	TemplateWelcome                  = "welcome"
	TemplateReminder                 = "reminder"
	TemplateEventUpdate              = "event_update"
)

var templateBodies = map[string]string{
	TemplateRegistrationConfirmation: `<h2>You're in, {{.Name}}!</h2>
<p>Your registration for <strong>{{.PlanName}}</strong> is confirmed.</p>
<p>Location: {{.Location}}<br>Start date: {{.StartDate}}<br>Duration: {{.Duration}}</p>
{{if .TeamName}}<p>Team: <strong>{{.TeamName}}</strong></p>{{end}}
<p>Bring your sense of adventure. We handle the rest.</p>`,

	TemplateAdminNotification: `<h2>New registration</h2>
<p>{{.Name}} ({{.Email}}) registered for <strong>{{.PlanName}}</strong>.</p>
{{if .TeamName}}<p>Team registration: {{.TeamName}}, {{.TeamSize}} members.</p>{{end}}`,

	TemplateCancellation: `<h2>Registration cancelled</h2>
<p>Hi {{.Name}}, your registration for <strong>{{.PlanName}}</strong> has been cancelled.</p>
<p>If this was a mistake, you can register again while spots remain.</p>`,

	TemplateWelcome: `<h2>Welcome aboard, {{.Name}}!</h2>
<p>Thanks for joining Treasure Hunt Adventures. New hunts appear on the plans page regularly.</p>
{{if .ContactEmail}}<p>Questions? Write to {{.ContactEmail}}.</p>{{end}}`,

	TemplateReminder: `<h2>Your hunt is coming up</h2>
<p>Hi {{.Name}}, <strong>{{.PlanName}}</strong> starts on {{.StartDate}} at {{.Location}}.</p>`,

	TemplateEventUpdate: `<h2>Update: {{.PlanName}}</h2>
<p>Hi {{.Name}},</p>
<p>{{.Message}}</p>`,
}

// KnownTemplate reports whether name is one of the built-in templates. An
// empty name is not a template; those entries send their Body verbatim.
func KnownTemplate(name string) bool {
	_, ok := templateBodies[name]
	return ok
}

// Renderer resolves queue entries to the HTML body that goes on the wire.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the built-in template set. Parsing happens once at
// startup so a malformed template fails fast instead of at dispatch time.
func NewRenderer() (*Renderer, error) {
	parsed := make(map[string]*template.Template, len(templateBodies))
	for name, body := range templateBodies {
		tmpl, err := template.New(name).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("parse template %q: %w", name, err)
		}
		parsed[name] = tmpl
	}
	return &Renderer{templates: parsed}, nil
}

// Render produces the message body for an entry. Template entries render
// TemplateName with TemplateVars; anything else passes Body through.
func (r *Renderer) Render(entry *Entry) (string, error) {
	if entry.TemplateName == "" {
		return entry.Body, nil
	}
	tmpl, ok := r.templates[entry.TemplateName]
	if !ok {
		return "", fmt.Errorf("unknown template %q", entry.TemplateName)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, entry.TemplateVars); err != nil {
		return "", fmt.Errorf("render template %q: %w", entry.TemplateName, err)
	}
	return buf.String(), nil
}
