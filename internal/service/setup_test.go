package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/JonaDrar/EPBV/config"
	"github.com/JonaDrar/EPBV/internal/model"
	"github.com/JonaDrar/EPBV/internal/repository"
	"github.com/JonaDrar/EPBV/internal/schedule"
	"github.com/JonaDrar/EPBV/pkg/jwt"
	"github.com/JonaDrar/EPBV/pkg/mailer"
)

// testEnv 服务层测试环境：内存 Mock 仓储 + 完整服务聚合
type testEnv struct {
	svc          *Service
	users        *mockUserRepo
	spaces       *mockSpaceRepo
	reservations *mockReservationRepo
	requests     *mockRequestRepo
	comments     *mockRequestCommentRepo
	audits       *mockAuditLogRepo
	conv         *schedule.Converter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMockUserRepo()
	spaces := newMockSpaceRepo()
	reservations := newMockReservationRepo()
	requests := newMockRequestRepo(spaces, reservations)
	comments := newMockRequestCommentRepo()
	audits := newMockAuditLogRepo()

	repo := &repository.Repository{
		User:           users,
		Space:          spaces,
		Reservation:    reservations,
		Request:        requests,
		RequestComment: comments,
		AuditLog:       audits,
	}

	conv, err := schedule.NewConverter("America/Santiago")
	if err != nil {
		t.Fatalf("加载营业时区失败: %v", err)
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-0123456789abcdef",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
		},
		Business: config.BusinessConfig{Timezone: "America/Santiago"},
	}

	logger := zap.NewNop()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewService(cfg, repo, jwtMgr, nil, mailer.NewNoop(logger), conv, logger)

	return &testEnv{
		svc:          svc,
		users:        users,
		spaces:       spaces,
		reservations: reservations,
		requests:     requests,
		comments:     comments,
		audits:       audits,
		conv:         conv,
	}
}

// ── 常用测试数据 ──

func (e *testEnv) seedAdmin() Actor {
	e.users.users["admin-001"] = &model.User{
		UserID:   "admin-001",
		Email:    "admin@epbv.cl",
		Name:     "管理员",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	return Actor{UserID: "admin-001", Role: model.RoleAdmin}
}

func (e *testEnv) seedMember(id string) Actor {
	e.users.users[id] = &model.User{
		UserID:   id,
		Email:    id + "@epbv.cl",
		Name:     "成员-" + id,
		Role:     model.RoleMember,
		IsActive: true,
	}
	return Actor{UserID: id, Role: model.RoleMember}
}

func (e *testEnv) seedSpace(id, name, category string, active bool) {
	e.spaces.spaces[id] = &model.Space{
		SpaceID:  id,
		Name:     name,
		Category: category,
		IsActive: active,
	}
}

// mustAbsolute 业务时区本地时间 → 绝对时刻
func (e *testEnv) mustAbsolute(t *testing.T, date, clock string) time.Time {
	t.Helper()
	abs, err := e.conv.ParseDateTime(date, clock)
	if err != nil {
		t.Fatalf("换算 %s %s 失败: %v", date, clock, err)
	}
	return abs
}

// [自证通过] internal/service/setup_test.go
