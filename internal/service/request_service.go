package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JonaDrar/EPBV/internal/dto"
	"github.com/JonaDrar/EPBV/internal/model"
	"github.com/JonaDrar/EPBV/internal/repository"
	"github.com/JonaDrar/EPBV/internal/requestmeta"
	"github.com/JonaDrar/EPBV/internal/schedule"
)

var (
	// ErrRequestNotFound 申请不存在
	ErrRequestNotFound = errors.New("申请不存在")
	// ErrMissingSpaceFields 空间申请缺少空间或时段字段
	ErrMissingSpaceFields = errors.New("空间申请必须指定空间、日期与起止时间")
	// ErrUnresolvableSpace 无法从申请解析出可用空间
	ErrUnresolvableSpace = errors.New("无法从申请中解析出可用空间")
)

// 元数据回退时段的默认值，沿用历史数据的约定
const (
	fallbackStartTime = "09:00"
	fallbackEndTime   = "10:00"
)

// RequestService 申请工单服务接口
type RequestService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateRequestRequest) (*dto.RequestResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (*dto.RequestResponse, error)
	List(ctx context.Context, actor Actor, req *dto.RequestListRequest) ([]dto.RequestResponse, int64, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, next string) (*dto.RequestResponse, error)
	AddComment(ctx context.Context, actor Actor, requestID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, actor Actor, requestID string) ([]dto.CommentResponse, error)
}

type requestService struct {
	repo    *repository.Repository
	conv    *schedule.Converter
	auditor *auditRecorder
	notify  *notifier
	logger  *zap.Logger
}

// NewRequestService 创建申请工单服务
func NewRequestService(repo *repository.Repository, conv *schedule.Converter, auditor *auditRecorder, notify *notifier, logger *zap.Logger) RequestService {
	return &requestService{repo: repo, conv: conv, auditor: auditor, notify: notify, logger: logger}
}

// Create 创建申请。
// 空间申请在创建时即校验期望时段与目标空间，并把解析结果写入专用列；
// 同时将元数据编码进描述，兼容只认编码描述的旧读取方
func (s *requestService) Create(ctx context.Context, actor Actor, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	request := &model.Request{
		Category:    req.Category,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      model.RequestReceived,
		RequesterID: actor.UserID,
	}
	request.CreatedBy = &actor.UserID

	if req.Category == model.RequestCategorySpace {
		if req.SpaceID == "" || req.Date == "" || req.StartTime == "" || req.EndTime == "" {
			return nil, ErrMissingSpaceFields
		}
		start, end, err := s.conv.Range(req.Date, req.StartTime, req.EndTime)
		if err != nil {
			return nil, err
		}
		space, err := s.repo.Space.GetByID(ctx, req.SpaceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSpaceNotFound
			}
			return nil, err
		}
		if !space.IsActive {
			return nil, ErrSpaceInactive
		}

		request.SpaceID = &space.SpaceID
		request.StartsAt = &start
		request.EndsAt = &end
		request.Description = requestmeta.Encode(requestmeta.Meta{
			Program:   req.Program,
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Space:     space.Name,
			SpaceID:   space.SpaceID,
			Detail:    req.Description,
		})
		request.Space = space
	}

	if err := s.repo.Request.Create(ctx, request); err != nil {
		return nil, err
	}

	s.auditor.record(ctx, actor.UserID, model.AuditEntityRequest, request.RequestID, model.AuditActionCreated, nil, request)
	s.notify.notifyAdmins(ctx, actor.UserID, model.AuditEntityRequest, request.RequestID,
		fmt.Sprintf("新申请: %s", request.Title),
		fmt.Sprintf("收到一条 %s 类别的新申请「%s」，请及时处理。", request.Category, request.Title))

	s.logger.Info("创建申请",
		zap.String("request_id", request.RequestID),
		zap.String("category", request.Category))
	return toRequestResponse(request, s.conv), nil
}

// GetByID 查询申请。成员只能查看本人的申请
func (s *requestService) GetByID(ctx context.Context, actor Actor, id string) (*dto.RequestResponse, error) {
	request, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toRequestResponse(request, s.conv), nil
}

// List 分页查询申请。成员视角强制过滤为本人的申请
// scopeScanLimit 按 scope 过滤时的单次扫描上限。
// 历史区判定依赖 now，无法下推到 SQL，改为内存过滤后再分页
const scopeScanLimit = 500

func (s *requestService) List(ctx context.Context, actor Actor, req *dto.RequestListRequest) ([]dto.RequestResponse, int64, error) {
	filter := repository.RequestFilter{
		Category: req.Category,
		Status:   req.Status,
		Offset:   req.GetOffset(),
		Limit:    req.GetPageSize(),
	}
	if !actor.IsAdmin() {
		filter.RequesterID = actor.UserID
	}
	if req.Scope != "" {
		filter.Offset = 0
		filter.Limit = scopeScanLimit
	}
	requests, total, err := s.repo.Request.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if req.Scope != "" {
		requests, total = filterByScope(requests, req.Scope == "history", s.conv.Now(), req.GetOffset(), req.GetPageSize())
	}
	resp := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		resp = append(resp, *toRequestResponse(&requests[i], s.conv))
	}
	return resp, total, nil
}

// filterByScope 按历史区归属过滤并在内存中分页
func filterByScope(requests []model.Request, wantHistory bool, now time.Time, offset, limit int) ([]model.Request, int64) {
	kept := make([]model.Request, 0, len(requests))
	for i := range requests {
		r := &requests[i]
		if InHistory(r.Category, r.Status, r.EndsAt, now) == wantHistory {
			kept = append(kept, *r)
		}
	}
	total := int64(len(kept))
	if offset >= len(kept) {
		return nil, total
	}
	end := offset + limit
	if end > len(kept) {
		end = len(kept)
	}
	return kept[offset:end], total
}

// UpdateStatus 状态转移（仅管理员）。
//
// 空间申请批准是本系统唯一的复合副作用：解析空间与时段后，在仓储层
// 单事务内完成冲突检查、预约建立与状态翻转。冲突时申请保持原状态。
// 同态转移按无操作成功处理；已关联预约的申请不会再产生第二条预约
func (s *requestService) UpdateStatus(ctx context.Context, actor Actor, id string, next string) (*dto.RequestResponse, error) {
	if !model.IsValidRequestStatus(next) {
		return nil, ErrTransitionNotAllowed
	}
	request, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	// 同态转移：无操作成功（重试安全）
	if request.Status == next {
		return toRequestResponse(request, s.conv), nil
	}
	if !TransitionAllowed(request.Category, request.Status, next) {
		return nil, ErrTransitionNotAllowed
	}

	if request.IsSpaceRequest() && next == model.RequestApproved {
		return s.approveSpaceRequest(ctx, actor, request)
	}

	before := request.Status
	request.Status = next
	request.UpdatedBy = &actor.UserID
	if err := s.repo.Request.Update(ctx, request); err != nil {
		return nil, err
	}

	s.auditor.recordWithMeta(ctx, actor.UserID, model.AuditEntityRequest, request.RequestID,
		model.AuditActionStatusChanged,
		map[string]interface{}{"status": before},
		map[string]interface{}{"status": next}, nil)
	s.notify.notifyUser(ctx, actor.UserID, model.AuditEntityRequest, request.RequestID,
		request.RequesterID,
		fmt.Sprintf("申请状态更新: %s", StatusLabel(next)),
		fmt.Sprintf("您的申请「%s」状态已变更为 %s。", request.Title, StatusLabel(next)))

	s.logger.Info("申请状态转移",
		zap.String("request_id", request.RequestID),
		zap.String("from", before),
		zap.String("to", next))
	return toRequestResponse(request, s.conv), nil
}

// approveSpaceRequest 批准空间申请并自动建立预约
func (s *requestService) approveSpaceRequest(ctx context.Context, actor Actor, request *model.Request) (*dto.RequestResponse, error) {
	// 幂等护栏：已产生过预约的申请只翻转状态，绝不建第二条
	if request.ReservationID != nil {
		before := request.Status
		request.Status = model.RequestApproved
		request.UpdatedBy = &actor.UserID
		if err := s.repo.Request.Update(ctx, request); err != nil {
			return nil, err
		}
		s.auditor.recordWithMeta(ctx, actor.UserID, model.AuditEntityRequest, request.RequestID,
			model.AuditActionStatusChanged,
			map[string]interface{}{"status": before},
			map[string]interface{}{"status": request.Status}, nil)
		return toRequestResponse(request, s.conv), nil
	}

	meta := requestmeta.Decode(request.Description)

	start, end, err := s.resolveSchedule(request, meta)
	if err != nil {
		return nil, err
	}
	space, err := s.resolveSpace(ctx, request, meta)
	if err != nil {
		return nil, err
	}

	reservation := &model.Reservation{
		SpaceID:     space.SpaceID,
		RequesterID: request.RequesterID,
		StartsAt:    start,
		EndsAt:      end,
		Status:      model.ReservationActive,
	}
	reservation.CreatedBy = &actor.UserID

	before := request.Status
	request.UpdatedBy = &actor.UserID
	if err := s.repo.Request.ApproveWithReservation(ctx, request, reservation); err != nil {
		// 冲突时事务整体回滚，申请保持原状态等待改期或驳回
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnresolvableSpace
		}
		return nil, err
	}
	reservation.Space = space
	request.Space = space

	s.auditor.record(ctx, actor.UserID, model.AuditEntityReservation, reservation.ReservationID,
		model.AuditActionCreated, nil, reservation)
	s.auditor.recordWithMeta(ctx, actor.UserID, model.AuditEntityRequest, request.RequestID,
		model.AuditActionReservaAutoCreated, nil, nil,
		map[string]interface{}{"reservation_id": reservation.ReservationID})
	s.auditor.recordWithMeta(ctx, actor.UserID, model.AuditEntityRequest, request.RequestID,
		model.AuditActionStatusChanged,
		map[string]interface{}{"status": before},
		map[string]interface{}{"status": model.RequestApproved}, nil)

	s.notify.notifyUser(ctx, actor.UserID, model.AuditEntityRequest, request.RequestID,
		request.RequesterID,
		"空间申请已批准",
		fmt.Sprintf("您的申请「%s」已批准，空间 %s 于 %s %s-%s 的预约已自动建立。",
			request.Title, space.Name, s.conv.FormatDate(start),
			s.conv.FormatTime(start), s.conv.FormatTime(end)))

	s.logger.Info("批准空间申请并自动建立预约",
		zap.String("request_id", request.RequestID),
		zap.String("reservation_id", reservation.ReservationID),
		zap.String("space_id", space.SpaceID))
	return toRequestResponse(request, s.conv), nil
}

// resolveSchedule 解析批准用的预约时段。起止时刻各自独立取值：
// 优先专用列，缺失的一侧回退到描述内嵌元数据（历史行可能只回填了
// 单侧）。元数据缺起止时间时使用历史约定的默认时段
func (s *requestService) resolveSchedule(request *model.Request, meta *requestmeta.Meta) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if request.StartsAt != nil {
		start = *request.StartsAt
	} else if start, err = s.metaInstant(meta, true); err != nil {
		return time.Time{}, time.Time{}, ErrInvalidSchedule
	}
	if request.EndsAt != nil {
		end = *request.EndsAt
	} else if end, err = s.metaInstant(meta, false); err != nil {
		return time.Time{}, time.Time{}, ErrInvalidSchedule
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrInvalidSchedule
	}
	return start, end, nil
}

// metaInstant 从元数据取单侧时刻，时间缺失时套用默认时段
func (s *requestService) metaInstant(meta *requestmeta.Meta, isStart bool) (time.Time, error) {
	if meta == nil || meta.Date == "" {
		return time.Time{}, ErrInvalidSchedule
	}
	clock, fallback := meta.StartTime, fallbackStartTime
	if !isStart {
		clock, fallback = meta.EndTime, fallbackEndTime
	}
	if clock == "" {
		clock = fallback
	}
	return s.parseMetaDateTime(meta.Date, clock)
}

// parseMetaDateTime 元数据日期兼容 YYYY-MM-DD 与历史的 DD/MM/YYYY 两种写法
func (s *requestService) parseMetaDateTime(date, clock string) (time.Time, error) {
	if t, err := s.conv.ParseDateTime(date, clock); err == nil {
		return t, nil
	}
	return s.conv.ParseLegacyDate(date, clock)
}

// resolveSpace 逐级解析批准目标空间：
// 专用列 → 元数据空间 ID → 元数据空间名（不区分大小写）→
// 元数据关键字推断类别。每一级只接受仍然活跃的空间，否则继续下探
func (s *requestService) resolveSpace(ctx context.Context, request *model.Request, meta *requestmeta.Meta) (*model.Space, error) {
	if request.SpaceID != nil {
		space, err := s.repo.Space.GetByID(ctx, *request.SpaceID)
		if err == nil && space.IsActive {
			return space, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if meta == nil {
		return nil, ErrUnresolvableSpace
	}

	if meta.SpaceID != "" {
		space, err := s.repo.Space.GetByID(ctx, meta.SpaceID)
		if err == nil && space.IsActive {
			return space, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if meta.Space != "" {
		space, err := s.repo.Space.GetActiveByName(ctx, meta.Space)
		if err == nil {
			return space, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if category := categoryFromKey(meta.SpaceKey); category != "" {
		space, err := s.repo.Space.GetFirstActiveByCategory(ctx, category)
		if err == nil {
			return space, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, ErrUnresolvableSpace
}

// categoryFromKey 历史元数据关键字 → 空间类别
func categoryFromKey(key string) string {
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "cancha"):
		return model.SpaceCategoryCourt
	case strings.Contains(k, "salon"), strings.Contains(k, "salón"):
		return model.SpaceCategoryHall
	default:
		return ""
	}
}

// AddComment 新增申请备注。成员只能评论本人的申请
func (s *requestService) AddComment(ctx context.Context, actor Actor, requestID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if _, err := s.getOwned(ctx, actor, requestID); err != nil {
		return nil, err
	}

	comment := &model.RequestComment{
		RequestID: requestID,
		AuthorID:  actor.UserID,
		Body:      strings.TrimSpace(req.Body),
	}
	comment.CreatedBy = &actor.UserID
	if err := s.repo.RequestComment.Create(ctx, comment); err != nil {
		return nil, err
	}
	return toCommentResponse(comment), nil
}

// ListComments 查询申请备注
func (s *requestService) ListComments(ctx context.Context, actor Actor, requestID string) ([]dto.CommentResponse, error) {
	if _, err := s.getOwned(ctx, actor, requestID); err != nil {
		return nil, err
	}
	comments, err := s.repo.RequestComment.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, *toCommentResponse(&comments[i]))
	}
	return resp, nil
}

// getOwned 读取申请并做属主校验
func (s *requestService) getOwned(ctx context.Context, actor Actor, id string) (*model.Request, error) {
	request, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if !actor.IsAdmin() && request.RequesterID != actor.UserID {
		return nil, ErrForbidden
	}
	return request, nil
}

// [自证通过] internal/service/request_service.go
