package main

import (
	"fmt"
	"net/smtp"
)

// sendPasswordResetEmail delivers the reset link over SMTP. When SMTP is not
// configured the link is logged so local setups still work end to end.
// Overridable for tests.
var sendPasswordResetEmail = func(cfg *Config, email, link, name string) error {
	if cfg.SMTPHost == "" {
		logger.Sugar().Infow("password reset link (smtp disabled)", "email", email, "link", link)
		return nil
	}

	subject := "MunLink password reset"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"We received a request to reset your MunLink password.\r\n"+
			"Open the link below within the next hour to choose a new one:\r\n\r\n"+
			"%s\r\n\r\n"+
			"If you did not request this, you can ignore this message.\r\n",
		name, link,
	)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		cfg.SMTPFrom, email, subject, body,
	))

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, cfg.SMTPFrom, []string{email}, msg)
}
