package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendPolicyCreated(to []string, notice PolicyNotice) error
	SendHomepagePolicyChanged(to []string, notice PolicyNotice) error
}

// PolicyNotice is the content of a policy notification.
type PolicyNotice struct {
	PolicyId     string
	CategoryName string
	Version      string
	OptionCount  int
	Actor        string
	AdminURL     string
}

// Sender is the part of gomail.Dialer the service uses.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender      Sender
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	return NewEmailServiceWithSender(gomail.NewDialer(host, port, username, password), senderEmail, senderName)
}

func NewEmailServiceWithSender(sender Sender, senderEmail, senderName string) IEmailService {
	return &emailService{sender: sender, senderEmail: senderEmail, senderName: senderName}
}

var policyCreatedTmpl = template.Must(template.New("created").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
	<h2>New service policy registered</h2>
	<p><b>{{.CategoryName}}</b> version <b>{{.Version}}</b> was created by {{.Actor}}.</p>
	<p>{{.OptionCount}} price options were registered.</p>
	{{if .AdminURL}}<p><a href="{{.AdminURL}}/policies/{{.PolicyId}}">Open in MyInco Admin</a></p>{{end}}
</div>`))

var homepageChangedTmpl = template.Must(template.New("homepage").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
	<h2>Homepage policy changed</h2>
	<p>The homepage now shows <b>{{.CategoryName}}</b> version <b>{{.Version}}</b> (changed by {{.Actor}}).</p>
	{{if .AdminURL}}<p><a href="{{.AdminURL}}/policies/{{.PolicyId}}">Open in MyInco Admin</a></p>{{end}}
</div>`))

func (s *emailService) SendPolicyCreated(to []string, notice PolicyNotice) error {
	subject := fmt.Sprintf("[MyInco] %s %s registered", notice.CategoryName, notice.Version)
	return s.send(to, subject, policyCreatedTmpl, notice)
}

func (s *emailService) SendHomepagePolicyChanged(to []string, notice PolicyNotice) error {
	subject := fmt.Sprintf("[MyInco] Homepage policy of %s changed", notice.CategoryName)
	return s.send(to, subject, homepageChangedTmpl, notice)
}

func (s *emailService) send(to []string, subject string, tmpl *template.Template, notice PolicyNotice) error {
	if len(to) == 0 {
		return nil
	}
	body, err := renderBody(tmpl, notice)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send %q: %w", subject, err)
	}
	return nil
}

func renderBody(tmpl *template.Template, notice PolicyNotice) (string, error) {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, notice); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return body.String(), nil
}
