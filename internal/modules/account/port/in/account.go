package in

import (
	"context"

	"studytrack/internal/modules/account/dto"
)

type Usecase interface {
	Register(ctx context.Context, name string) (dto.UserOutput, error)
	List(ctx context.Context) ([]dto.UserOutput, error)
	Resolve(ctx context.Context, ref string) (dto.UserOutput, error)
	Ensure(ctx context.Context, name string) (dto.UserOutput, error)
}
