package service

import (
	"time"

	"github.com/JonaDrar/EPBV/internal/dto"
	"github.com/JonaDrar/EPBV/internal/model"
	"github.com/JonaDrar/EPBV/internal/requestmeta"
	"github.com/JonaDrar/EPBV/internal/schedule"
)

// ── 模型 → DTO 转换 ──

func formatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.UserID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: formatUTC(u.CreatedAt),
	}
}

func toSpaceResponse(s *model.Space) *dto.SpaceResponse {
	return &dto.SpaceResponse{
		ID:        s.SpaceID,
		Name:      s.Name,
		Category:  s.Category,
		IsActive:  s.IsActive,
		CreatedAt: formatUTC(s.CreatedAt),
	}
}

func toReservationResponse(r *model.Reservation, conv *schedule.Converter) *dto.ReservationResponse {
	resp := &dto.ReservationResponse{
		ID:          r.ReservationID,
		SpaceID:     r.SpaceID,
		RequesterID: r.RequesterID,
		StartsAt:    formatUTC(r.StartsAt),
		EndsAt:      formatUTC(r.EndsAt),
		Status:      r.Status,
		LocalDate:   conv.FormatDate(r.StartsAt),
		LocalStart:  conv.FormatTime(r.StartsAt),
		LocalEnd:    conv.FormatTime(r.EndsAt),
		Version:     r.Version,
		CreatedAt:   formatUTC(r.CreatedAt),
	}
	if r.Space != nil {
		resp.Space = toSpaceResponse(r.Space)
	}
	if r.Requester != nil {
		resp.Requester = toUserResponse(r.Requester)
	}
	return resp
}

func toRequestResponse(r *model.Request, conv *schedule.Converter) *dto.RequestResponse {
	resp := &dto.RequestResponse{
		ID:          r.RequestID,
		Category:    r.Category,
		Title:       r.Title,
		Description: r.Description,
		Detail:      requestmeta.DisplayDetail(r.Description),
		Status:      r.Status,
		StatusLabel: StatusLabel(r.Status),
		SpaceID:     r.SpaceID,
		RequesterID: r.RequesterID,
		Version:     r.Version,
		CreatedAt:   formatUTC(r.CreatedAt),
		UpdatedAt:   formatUTC(r.UpdatedAt),
	}
	if r.StartsAt != nil {
		s := formatUTC(*r.StartsAt)
		resp.StartsAt = &s
	}
	if r.EndsAt != nil {
		e := formatUTC(*r.EndsAt)
		resp.EndsAt = &e
	}
	if r.ReservationID != nil {
		id := *r.ReservationID
		resp.ReservationID = &id
	}
	if r.Space != nil {
		resp.Space = toSpaceResponse(r.Space)
	}
	if r.Requester != nil {
		resp.Requester = toUserResponse(r.Requester)
	}
	return resp
}

func toCommentResponse(c *model.RequestComment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:        c.CommentID,
		RequestID: c.RequestID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: formatUTC(c.CreatedAt),
	}
}

// [自证通过] internal/service/convert.go
