package in

import (
	"context"

	"studytrack/internal/modules/hook/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.HookInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	DispatchDayClosed(ctx context.Context, input dto.DayClosedInput) ([]dto.DispatchResult, error)
}
