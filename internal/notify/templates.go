package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

const confirmationHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">¡Cita Confirmada!</h2>
  <p>Hola {{.Name}},</p>
  <p>Tu cita ha sido agendada exitosamente.</p>
  <div style="background-color: #f9f9f9; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0;">Detalles de la cita:</h3>
    <p><strong>Fecha:</strong> {{.Date}}</p>
    <p><strong>Hora:</strong> {{.Time}}</p>
    {{- if .Service}}
    <p><strong>Servicio:</strong> {{.Service}}</p>
    {{- end}}
    <p><strong>Teléfono registrado:</strong> {{.Phone}}</p>
    {{- if .VideoCall}}
    <p>La sesión será en línea; recibirás el enlace de videollamada por separado.</p>
    {{- end}}
  </div>
  <p>Si necesitas reagendar o cancelar, por favor contáctanos con anticipación.</p>
  <p>Saludos,<br>Equipo {{.Clinic}}</p>
</div>`

const confirmationText = `¡Cita Confirmada!

Hola {{.Name}},

Tu cita ha sido agendada exitosamente.

Fecha: {{.Date}}
Hora: {{.Time}}
{{- if .Service}}
Servicio: {{.Service}}
{{- end}}
Teléfono registrado: {{.Phone}}

Si necesitas reagendar o cancelar, por favor contáctanos con anticipación.

Saludos,
Equipo {{.Clinic}}
`

const adminHTML = `<h3>Nueva cita agendada</h3>
<p><strong>Cliente:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Teléfono:</strong> {{.Phone}}</p>
<p><strong>Fecha:</strong> {{.Date}}</p>
<p><strong>Hora:</strong> {{.Time}}</p>
{{- if .Service}}
<p><strong>Servicio:</strong> {{.Service}}</p>
{{- end}}
{{- if .Reference}}
<p><strong>Referencia:</strong> {{.Reference}}</p>
{{- end}}`

const adminText = `Nueva cita agendada

Cliente: {{.Name}}
Email: {{.Email}}
Teléfono: {{.Phone}}
Fecha: {{.Date}}
Hora: {{.Time}}
`

type templateData struct {
	Clinic    string
	Name      string
	Email     string
	Phone     string
	Date      string
	Time      string
	Service   string
	Reference string
	VideoCall bool
}

type renderedPair struct {
	html *htmltemplate.Template
	text *template.Template
}

func mustPair(name, html, text string) renderedPair {
	return renderedPair{
		html: htmltemplate.Must(htmltemplate.New(name + ".html").Option("missingkey=error").Parse(html)),
		text: template.Must(template.New(name + ".txt").Option("missingkey=error").Parse(text)),
	}
}

var (
	confirmationTemplates = mustPair("confirmation", confirmationHTML, confirmationText)
	adminTemplates        = mustPair("admin", adminHTML, adminText)
)

func (p renderedPair) render(data templateData) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := p.html.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("notify: render html: %w", err)
	}
	if err := p.text.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("notify: render text: %w", err)
	}
	return hb.String(), tb.String(), nil
}
