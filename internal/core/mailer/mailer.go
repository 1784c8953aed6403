package mailer

import (
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer 邮件发送协作方。显式注入，不做进程级单例。
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(host string, port int, username, password, from string) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTP) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}

// Noop 开发环境/测试用，只记日志不真正外发
type Noop struct{ Log *zap.Logger }

func (n *Noop) Send(to, subject, _ string) error {
	if n.Log != nil {
		n.Log.Info("mail skipped", zap.String("to", to), zap.String("subject", subject))
	}
	return nil
}
