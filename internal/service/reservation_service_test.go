package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JonaDrar/EPBV/internal/dto"
	"github.com/JonaDrar/EPBV/internal/model"
)

// ── Create 测试 ──

func TestReservationService_Create_Success(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Salón Principal", model.SpaceCategoryHall, true)

	req := &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "10:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "12:00"),
	}

	result, err := env.svc.Reservation.Create(context.Background(), member, req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != model.ReservationActive {
		t.Errorf("期望Status=ACTIVE，实际=%s", result.Status)
	}
	if result.LocalDate != "10-03-2026" {
		t.Errorf("期望LocalDate=10-03-2026，实际=%s", result.LocalDate)
	}
	if result.LocalStart != "10:00" || result.LocalEnd != "12:00" {
		t.Errorf("本地时段展示不符: %s-%s", result.LocalStart, result.LocalEnd)
	}
}

func TestReservationService_Create_InvalidRange(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Salón Principal", model.SpaceCategoryHall, true)

	start := env.mustAbsolute(t, "2026-03-10", "12:00")
	req := &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: start,
		EndsAt:   start, // 空区间
	}

	if _, err := env.svc.Reservation.Create(context.Background(), member, req); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("期望 ErrInvalidSchedule，实际: %v", err)
	}
}

func TestReservationService_Create_SpaceInactive(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Cancha 1", model.SpaceCategoryCourt, false)

	req := &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "10:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "11:00"),
	}

	if _, err := env.svc.Reservation.Create(context.Background(), member, req); !errors.Is(err, ErrSpaceInactive) {
		t.Errorf("期望 ErrSpaceInactive，实际: %v", err)
	}
}

func TestReservationService_Create_OverlapRejected(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Salón Principal", model.SpaceCategoryHall, true)

	first := &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "10:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "12:00"),
	}
	if _, err := env.svc.Reservation.Create(context.Background(), member, first); err != nil {
		t.Fatalf("首次 Create 应成功: %v", err)
	}

	// 部分重叠
	second := &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "11:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "13:00"),
	}
	if _, err := env.svc.Reservation.Create(context.Background(), member, second); !errors.Is(err, ErrReservationConflict) {
		t.Errorf("期望 ErrReservationConflict，实际: %v", err)
	}
}

// 半开区间：首尾相接不算冲突
func TestReservationService_Create_BackToBackAllowed(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Salón Principal", model.SpaceCategoryHall, true)

	first := &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "10:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "12:00"),
	}
	if _, err := env.svc.Reservation.Create(context.Background(), member, first); err != nil {
		t.Fatalf("首次 Create 应成功: %v", err)
	}

	second := &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "12:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "14:00"),
	}
	if _, err := env.svc.Reservation.Create(context.Background(), member, second); err != nil {
		t.Errorf("首尾相接的预约应成功: %v", err)
	}
}

// 不同空间同一时段互不影响
func TestReservationService_Create_DifferentSpacesIndependent(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Cancha 1", model.SpaceCategoryCourt, true)
	env.seedSpace("space-002", "Cancha 2", model.SpaceCategoryCourt, true)

	start := env.mustAbsolute(t, "2026-03-10", "10:00")
	end := env.mustAbsolute(t, "2026-03-10", "12:00")

	for _, spaceID := range []string{"space-001", "space-002"} {
		req := &dto.CreateReservationRequest{SpaceID: spaceID, StartsAt: start, EndsAt: end}
		if _, err := env.svc.Reservation.Create(context.Background(), member, req); err != nil {
			t.Errorf("空间 %s 的预约应成功: %v", spaceID, err)
		}
	}
}

// ── 并发分配测试 ──

// 两个并发的重叠请求恰好一个成功、一个冲突
func TestReservationService_Create_ConcurrentOverlap(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Salón Principal", model.SpaceCategoryHall, true)

	start := env.mustAbsolute(t, "2026-03-10", "10:00")
	end := env.mustAbsolute(t, "2026-03-10", "12:00")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			req := &dto.CreateReservationRequest{SpaceID: "space-001", StartsAt: start, EndsAt: end}
			_, results[idx] = env.svc.Reservation.Create(context.Background(), member, req)
		}(i)
	}
	wg.Wait()

	var success, conflict int
	for _, err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrReservationConflict):
			conflict++
		default:
			t.Fatalf("意外错误: %v", err)
		}
	}
	if success != 1 || conflict != 1 {
		t.Errorf("期望恰好 1 成功 1 冲突，实际 success=%d conflict=%d", success, conflict)
	}
}

// 随机并发操作后，同一空间的 ACTIVE 预约互不重叠
func TestReservationService_NoOverlapInvariant(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Salón Principal", model.SpaceCategoryHall, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			startHour := 8 + idx%10
			start := env.mustAbsolute(t, "2026-03-10", formatClock(startHour, 0))
			end := start.Add(90 * time.Minute)
			req := &dto.CreateReservationRequest{SpaceID: "space-001", StartsAt: start, EndsAt: end}
			env.svc.Reservation.Create(context.Background(), member, req)
		}(i)
	}
	wg.Wait()

	var active []model.Reservation
	for _, r := range env.reservations.reservations {
		if r.Status == model.ReservationActive {
			active = append(active, *r)
		}
	}
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if a.StartsAt.Before(b.EndsAt) && a.EndsAt.After(b.StartsAt) {
				t.Errorf("不变量被破坏: %s 与 %s 重叠", a.ReservationID, b.ReservationID)
			}
		}
	}
}

func formatClock(hour, minute int) string {
	return time.Date(2000, 1, 1, hour, minute, 0, 0, time.UTC).Format("15:04")
}

// ── Update 测试 ──

func TestReservationService_Update_MoveAvoidsConflict(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Salón Principal", model.SpaceCategoryHall, true)

	created, err := env.svc.Reservation.Create(context.Background(), member, &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "10:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "12:00"),
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 相邻时段已被占用
	if _, err := env.svc.Reservation.Create(context.Background(), member, &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "14:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "16:00"),
	}); err != nil {
		t.Fatalf("第二次 Create 应成功: %v", err)
	}

	// 改到与他人重叠 → 冲突
	newStart := env.mustAbsolute(t, "2026-03-10", "15:00")
	newEnd := env.mustAbsolute(t, "2026-03-10", "17:00")
	_, err = env.svc.Reservation.Update(context.Background(), member, created.ID, &dto.UpdateReservationRequest{
		StartsAt: &newStart,
		EndsAt:   &newEnd,
	})
	if !errors.Is(err, ErrReservationConflict) {
		t.Errorf("期望 ErrReservationConflict，实际: %v", err)
	}

	// 改到与自己原时段重叠（自排除）→ 成功
	shiftStart := env.mustAbsolute(t, "2026-03-10", "11:00")
	shiftEnd := env.mustAbsolute(t, "2026-03-10", "13:00")
	updated, err := env.svc.Reservation.Update(context.Background(), member, created.ID, &dto.UpdateReservationRequest{
		StartsAt: &shiftStart,
		EndsAt:   &shiftEnd,
	})
	if err != nil {
		t.Fatalf("平移自身时段应成功: %v", err)
	}
	if updated.LocalStart != "11:00" {
		t.Errorf("期望LocalStart=11:00，实际=%s", updated.LocalStart)
	}
}

func TestReservationService_Update_ForbiddenForOthers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedMember("member-001")
	other := env.seedMember("member-002")
	env.seedSpace("space-001", "Salón Principal", model.SpaceCategoryHall, true)

	created, err := env.svc.Reservation.Create(context.Background(), owner, &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "10:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "12:00"),
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	if err := env.svc.Reservation.Cancel(context.Background(), other, created.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("他人取消应返回 ErrForbidden，实际: %v", err)
	}
}

// ── Cancel 测试 ──

func TestReservationService_Cancel_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Salón Principal", model.SpaceCategoryHall, true)

	created, err := env.svc.Reservation.Create(context.Background(), member, &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "10:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "12:00"),
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	if err := env.svc.Reservation.Cancel(context.Background(), member, created.ID); err != nil {
		t.Fatalf("首次 Cancel 应成功: %v", err)
	}
	if err := env.svc.Reservation.Cancel(context.Background(), member, created.ID); err != nil {
		t.Fatalf("重复 Cancel 应幂等成功: %v", err)
	}

	// 审计中 CANCELLED 只出现一次
	var cancelled int
	for _, a := range env.audits.actionsFor(created.ID) {
		if a == model.AuditActionCancelled {
			cancelled++
		}
	}
	if cancelled != 1 {
		t.Errorf("期望 CANCELLED 审计恰好 1 条，实际=%d", cancelled)
	}
}

// 取消后时段立即可被重新占用
func TestReservationService_Cancel_FreesInterval(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedMember("member-001")
	env.seedSpace("space-001", "Salón Principal", model.SpaceCategoryHall, true)

	req := &dto.CreateReservationRequest{
		SpaceID:  "space-001",
		StartsAt: env.mustAbsolute(t, "2026-03-10", "10:00"),
		EndsAt:   env.mustAbsolute(t, "2026-03-10", "12:00"),
	}
	created, err := env.svc.Reservation.Create(context.Background(), member, req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if err := env.svc.Reservation.Cancel(context.Background(), member, created.ID); err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}

	if _, err := env.svc.Reservation.Create(context.Background(), member, req); err != nil {
		t.Errorf("取消后重新预约应成功: %v", err)
	}
}

// [自证通过] internal/service/reservation_service_test.go
