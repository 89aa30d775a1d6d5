package contacts

import (
	"fmt"
	"io"
	"os"
	"text/template"
)

// EmailSeparator разделяет письма в выходном файле.
const EmailSeparator = "\n---\n"

// DefaultEmailTemplate получает Contact.
const DefaultEmailTemplate = `
{{.Name}}
{{.Club}}: leftover food after your events?

Hi {{.Club}} team,

If your events end with extra food, we can help it reach students nearby
instead of the trash: post a photo and a pin, and students around get notified.

Would you like to be one of the first clubs on board? Reply to this email and
we will add you to the early list, no commitment needed.

Best,
The outreach team
`

// ParseTemplate читает шаблон из файла; пустой путь: встроенный.
func ParseTemplate(path string) (*template.Template, error) {
	text := DefaultEmailTemplate
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}
		text = string(data)
	}

	tmpl, err := template.New("email").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl, nil
}

// RenderEmails пишет по письму на контакт, пропуская OfficersPlaceholder.
// Возвращает число писем.
func RenderEmails(w io.Writer, tmpl *template.Template, contacts []Contact) (int, error) {
	n := 0
	for _, c := range contacts {
		if c.Name == "" || c.Name == OfficersPlaceholder {
			continue
		}
		if err := tmpl.Execute(w, c); err != nil {
			return n, fmt.Errorf("failed to render email for %s: %w", c.Name, err)
		}
		if _, err := io.WriteString(w, EmailSeparator); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
