package handler

import "github.com/JonaDrar/EPBV/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Space       *SpaceHandler
	Reservation *ReservationHandler
	Request     *RequestHandler
	Calendar    *CalendarHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		User:        NewUserHandler(svc.User),
		Space:       NewSpaceHandler(svc.Space),
		Reservation: NewReservationHandler(svc.Reservation),
		Request:     NewRequestHandler(svc.Request),
		Calendar:    NewCalendarHandler(svc.Calendar),
		Export:      NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
