package usecase

import (
	"context"

	"studytrack/internal/modules/account/domain"
	"studytrack/internal/modules/account/dto"
	accountin "studytrack/internal/modules/account/port/in"
	"studytrack/internal/modules/account/service"
)

type Interactor struct {
	svc *service.AccountService
}

func NewInteractor(svc *service.AccountService) accountin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Register(ctx context.Context, name string) (dto.UserOutput, error) {
	u, err := i.svc.Register(ctx, name)
	return toOutput(u), err
}

func (i *Interactor) List(ctx context.Context) ([]dto.UserOutput, error) {
	users, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserOutput, 0, len(users))
	for _, u := range users {
		out = append(out, toOutput(u))
	}
	return out, nil
}

func (i *Interactor) Resolve(ctx context.Context, ref string) (dto.UserOutput, error) {
	u, err := i.svc.Resolve(ctx, ref)
	return toOutput(u), err
}

func (i *Interactor) Ensure(ctx context.Context, name string) (dto.UserOutput, error) {
	u, err := i.svc.Ensure(ctx, name)
	return toOutput(u), err
}

func toOutput(u domain.User) dto.UserOutput {
	return dto.UserOutput{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
}
