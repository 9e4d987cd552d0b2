package mailtemplates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"strings"
	texttemplate "text/template"

	"github.com/surveypro/saas-backend/notifications"
)

//go:embed assets/*.html
var assets embed.FS

// TemplateFile represents an email template key, the filename of the
// template without the extension.
type TemplateFile string

// MailTemplate struct represents an email template. It includes the file key
// and the notification placeholder to be sent. Subject and PlainBody of the
// placeholder are text templates executed with the same data as the HTML
// file.
type MailTemplate struct {
	File        TemplateFile
	Placeholder notifications.Notification
	WebAppURI   string
}

// Available returns the template keys embedded in the binary.
func Available() ([]TemplateFile, error) {
	entries, err := fs.ReadDir(assets, "assets")
	if err != nil {
		return nil, err
	}
	files := []TemplateFile{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		files = append(files, TemplateFile(strings.TrimSuffix(e.Name(), ".html")))
	}
	return files, nil
}

// ExecTemplate inflates the HTML template file and the placeholder text
// templates with the data provided. It returns the notification with subject,
// body and plain body filled.
func (mt MailTemplate) ExecTemplate(data any) (*notifications.Notification, error) {
	tmpl, err := htmltemplate.ParseFS(assets, fmt.Sprintf("assets/%s.html", mt.File))
	if err != nil {
		return nil, fmt.Errorf("template %q not found: %w", mt.File, err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return nil, err
	}
	n := &notifications.Notification{Body: buf.String()}
	if n.Subject, err = execText(mt.Placeholder.Subject, data); err != nil {
		return nil, err
	}
	if n.PlainBody, err = execText(mt.Placeholder.PlainBody, data); err != nil {
		return nil, err
	}
	return n, nil
}

func execText(text string, data any) (string, error) {
	if text == "" {
		return "", nil
	}
	tmpl, err := texttemplate.New("plain").Parse(text)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
