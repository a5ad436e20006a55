package in

import (
	"context"

	"studytrack/internal/modules/tracker/dto"
	trackerin "studytrack/internal/modules/tracker/port/in"
)

type CLIHandler struct {
	usecase trackerin.Usecase
}

func NewCLIHandler(usecase trackerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Dashboard(ctx context.Context) (dto.Dashboard, error) {
	return h.usecase.Dashboard(ctx)
}

func (h CLIHandler) ListSubjects(ctx context.Context) ([]dto.SubjectView, error) {
	return h.usecase.ListSubjects(ctx)
}

func (h CLIHandler) CreateSubject(ctx context.Context, input dto.CreateSubjectInput) (dto.SubjectView, error) {
	return h.usecase.CreateSubject(ctx, input)
}

func (h CLIHandler) DeleteSubject(ctx context.Context, subjectID int) (dto.SubjectView, error) {
	return h.usecase.DeleteSubject(ctx, subjectID)
}

func (h CLIHandler) StartTimer(ctx context.Context, subjectID int) error {
	return h.usecase.StartTimer(ctx, subjectID)
}

func (h CLIHandler) PauseTimer(ctx context.Context, subjectID int) (bool, error) {
	return h.usecase.PauseTimer(ctx, subjectID)
}

func (h CLIHandler) PauseAll(ctx context.Context) (bool, error) {
	return h.usecase.PauseAll(ctx)
}

func (h CLIHandler) ResetTimer(ctx context.Context, subjectID int) error {
	return h.usecase.ResetTimer(ctx, subjectID)
}

func (h CLIHandler) SetDailyGoal(ctx context.Context, input dto.SetGoalInput) error {
	return h.usecase.SetDailyGoal(ctx, input)
}

func (h CLIHandler) Stats(ctx context.Context) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h CLIHandler) SessionsForDate(ctx context.Context, date string) ([]dto.SessionOutput, error) {
	return h.usecase.SessionsForDate(ctx, date)
}

func (h CLIHandler) Heatmap(ctx context.Context, input dto.HeatmapInput) (dto.HeatmapOutput, error) {
	return h.usecase.Heatmap(ctx, input)
}

func (h CLIHandler) CheckRollover(ctx context.Context) (dto.RolloverOutput, error) {
	return h.usecase.CheckRollover(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (dto.RolloverOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Watch(ctx context.Context) error {
	return h.usecase.Watch(ctx)
}

func (h CLIHandler) Export(ctx context.Context) ([]byte, error) {
	return h.usecase.Export(ctx)
}

func (h CLIHandler) Import(ctx context.Context, payload []byte) (dto.ImportOutput, error) {
	return h.usecase.Import(ctx, payload)
}

func (h CLIHandler) Clear(ctx context.Context) error {
	return h.usecase.Clear(ctx)
}

func (h CLIHandler) Flush(ctx context.Context) (dto.FlushOutput, error) {
	return h.usecase.Flush(ctx)
}
