package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"github.com/pkg/errors"

	domuser "example.com/shop-demo/internal/domain/user"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// WelcomeMailer sends the signup greeting through a plain SMTP relay
// (Mailpit in development).
type WelcomeMailer struct {
	addr string
	from string
	send SendFunc
}

func NewWelcomeMailer(addr, from string) *WelcomeMailer {
	return &WelcomeMailer{addr: addr, from: from, send: smtp.SendMail}
}

func (m *WelcomeMailer) Welcome(ctx context.Context, u *domuser.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := welcomeMessage(m.from, u)
	if err := m.send(m.addr, nil, m.from, []string{u.Email}, msg); err != nil {
		return errors.Wrapf(err, "send welcome mail to %s", u.Email)
	}
	return nil
}

func welcomeMessage(from string, u *domuser.User) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", u.Email)
	b.WriteString("Subject: Welcome to Shop Demo\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hi %s,\r\n\r\nYour account is ready. Happy shopping!\r\n", u.FullName())
	return b.Bytes()
}
