package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"

	domainMail "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/mail"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/log"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// sendMail подменяется в тестах.
var sendMail = smtp.SendMail

type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
	tpl  *template.Template
	log  *zap.Logger
}

func NewSMTPSender(cfg *config.Config, log *zap.Logger) (*SMTPSender, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}

	return &SMTPSender{
		addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		auth: auth,
		from: cfg.SMTPFrom,
		tpl:  tpl,
		log:  log,
	}, nil
}

func (s *SMTPSender) Render(name string, data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (s *SMTPSender) Send(ctx context.Context, msg domainMail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := s.Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	var raw bytes.Buffer
	fmt.Fprintf(&raw, "From: %s\r\n", s.from)
	fmt.Fprintf(&raw, "To: %s\r\n", msg.To)
	fmt.Fprintf(&raw, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	raw.Write(body)

	if err := sendMail(s.addr, s.auth, s.from, []string{msg.To}, raw.Bytes()); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.log.Debug("mail sent", lg.Email(msg.To), zap.String("template", msg.Template))
	return nil
}
