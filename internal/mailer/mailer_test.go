package mailer

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
)

func TestWelcomeTemplateRenders(t *testing.T) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/user_welcome.tmpl")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data := map[string]any{"Name": "Ann", "Email": "ann@example.com", "Role": "MEMBER"}
	for _, name := range []string{"subject", "plainBody", "htmlBody"} {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
			t.Fatalf("execute %s: %v", name, err)
		}
		if name != "subject" && !strings.Contains(buf.String(), "ann@example.com") {
			t.Fatalf("%s does not mention the e-mail: %q", name, buf.String())
		}
	}
}
