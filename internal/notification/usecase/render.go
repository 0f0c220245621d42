package usecase

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"
)

func renderText(name, tpl string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderHTML escapes data values, so names and titles coming from users
// cannot inject markup into the email.
func renderHTML(name, tpl string, data map[string]any) (string, error) {
	t, err := htmltemplate.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Usecase) baseTemplateData() map[string]any {
	name := s.cfg.GetString("app.name")
	if name == "" {
		name = "Libris"
	}

	return map[string]any{
		"company_name":  name,
		"support_email": s.cfg.GetString("app.support_email"),
		"year":          s.clock.Now().Format("2006"),
	}
}
