package email

import (
	"fmt"
	"github.com/spf13/viper"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

type EmailOutbound struct {
	Cfg *viper.Viper

	// SendMail is smtp.SendMail unless replaced in tests.
	SendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	TimeNow  func() time.Time

	auth     smtp.Auth
	addr     string
	email    string
	fromName string
}

func (out *EmailOutbound) Init() {
	host := out.Cfg.GetString("email.host")

	out.email = out.Cfg.GetString("email.user")
	out.fromName = out.Cfg.GetString("email.from_name")
	out.addr = fmt.Sprintf("%s:%d", host, out.Cfg.GetInt("email.port"))

	switch out.Cfg.GetString("email.auth") {
	case "none":
		out.auth = nil
	case "plain":
		out.auth = smtp.PlainAuth("", out.email, out.Cfg.GetString("email.password"), host)
	default:
		out.auth = smtp.CRAMMD5Auth(out.email, out.Cfg.GetString("email.password"))
	}

	if out.SendMail == nil {
		out.SendMail = smtp.SendMail
	}
	if out.TimeNow == nil {
		out.TimeNow = time.Now
	}
}

func (out *EmailOutbound) Send(to []string, subject string, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("send email %q: no recipients", subject)
	}

	from := out.email
	if out.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", out.fromName), out.email)
	}

	message := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		from,
		strings.Join(to, ","),
		mime.QEncoding.Encode("utf-8", subject),
		out.TimeNow().Format(time.RFC1123Z),
		body,
	))

	if err := out.SendMail(out.addr, out.auth, out.email, to, message); err != nil {
		return fmt.Errorf("send email %q: %w", subject, err)
	}

	return nil
}
