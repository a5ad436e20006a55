package in

import (
	"context"

	"studytrack/internal/modules/tracker/dto"
)

type Usecase interface {
	Dashboard(ctx context.Context) (dto.Dashboard, error)
	ListSubjects(ctx context.Context) ([]dto.SubjectView, error)
	CreateSubject(ctx context.Context, input dto.CreateSubjectInput) (dto.SubjectView, error)
	DeleteSubject(ctx context.Context, subjectID int) (dto.SubjectView, error)
	StartTimer(ctx context.Context, subjectID int) error
	PauseTimer(ctx context.Context, subjectID int) (bool, error)
	PauseAll(ctx context.Context) (bool, error)
	ResetTimer(ctx context.Context, subjectID int) error
	SetDailyGoal(ctx context.Context, input dto.SetGoalInput) error
	Stats(ctx context.Context) (dto.StatsOutput, error)
	SessionsForDate(ctx context.Context, date string) ([]dto.SessionOutput, error)
	Heatmap(ctx context.Context, input dto.HeatmapInput) (dto.HeatmapOutput, error)
	CheckRollover(ctx context.Context) (dto.RolloverOutput, error)
	Resume(ctx context.Context) (dto.RolloverOutput, error)
	Watch(ctx context.Context) error
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, payload []byte) (dto.ImportOutput, error)
	Clear(ctx context.Context) error
	Flush(ctx context.Context) (dto.FlushOutput, error)
}
