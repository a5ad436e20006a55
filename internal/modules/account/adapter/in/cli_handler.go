package in

import (
	"context"

	"studytrack/internal/modules/account/dto"
	accountin "studytrack/internal/modules/account/port/in"
)

type CLIHandler struct {
	usecase accountin.Usecase
}

func NewCLIHandler(usecase accountin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Register(ctx context.Context, name string) (dto.UserOutput, error) {
	return h.usecase.Register(ctx, name)
}

func (h CLIHandler) List(ctx context.Context) ([]dto.UserOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Resolve(ctx context.Context, ref string) (dto.UserOutput, error) {
	return h.usecase.Resolve(ctx, ref)
}

func (h CLIHandler) Ensure(ctx context.Context, name string) (dto.UserOutput, error) {
	return h.usecase.Ensure(ctx, name)
}
