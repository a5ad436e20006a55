package usecase

import (
	"context"

	"studytrack/internal/modules/hook/dto"
	hookin "studytrack/internal/modules/hook/port/in"
	"studytrack/internal/modules/hook/service"
)

type Interactor struct {
	svc *service.HookService
}

func NewInteractor(svc *service.HookService) hookin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.HookInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) DispatchDayClosed(ctx context.Context, input dto.DayClosedInput) ([]dto.DispatchResult, error) {
	return i.svc.DispatchDayClosed(ctx, input)
}
