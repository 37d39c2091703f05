package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/frontdesk/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From     string
	NotifyTo string
	Location *time.Location
	dialer   dialer
}

func NewEmailSender(host string, port int, user, password, from, notifyTo string, loc *time.Location) *EmailSender {
	if loc == nil {
		loc = time.UTC
	}
	return &EmailSender{
		From:     from,
		NotifyTo: notifyTo,
		Location: loc,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

type newLeadData struct {
	Name         string
	Phone        string
	Email        string
	Description  string
	Chiropractor string
	Source       string
	CreatedAt    string
}

// NotifyNewLead tells the front desk a lead arrived from outside the app.
func (s *EmailSender) NotifyNewLead(lead *entity.Lead) error {
	if s.NotifyTo == "" {
		return nil
	}
	body, err := render("new_lead.html", newLeadData{
		Name:         lead.Name,
		Phone:        lead.Phone,
		Email:        lead.Email,
		Description:  lead.Description,
		Chiropractor: lead.Chiropractor,
		Source:       lead.Source,
		CreatedAt:    lead.CreatedAt.In(s.Location).Format("2006-01-02 15:04"),
	})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.NotifyTo)
	m.SetHeader("Subject", fmt.Sprintf("Nowy kontakt: %s", lead.Name))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send new lead email: %w", err)
	}
	return nil
}

type backupData struct {
	Filename  string
	Size      int
	CreatedAt string
}

func (s *EmailSender) SendBackup(to, filename string, data []byte) error {
	body, err := render("backup.html", backupData{
		Filename:  filename,
		Size:      len(data),
		CreatedAt: time.Now().In(s.Location).Format("2006-01-02 15:04"),
	})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Kopia zapasowa: "+filename)
	m.SetBody("text/html", body)
	m.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send backup email: %w", err)
	}
	return nil
}

func render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return body.String(), nil
}
