package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"studytrack/internal/modules/tracker/domain"
	"studytrack/internal/modules/tracker/dto"
	trackerin "studytrack/internal/modules/tracker/port/in"
	"studytrack/internal/modules/tracker/service"
	apperrors "studytrack/internal/platform/errors"
)

type Options struct {
	StreakThreshold int64
	HeatmapDays     int
}

type Interactor struct {
	engine    *service.Engine
	scheduler *service.Scheduler
	opts      Options
}

func NewInteractor(engine *service.Engine, scheduler *service.Scheduler, opts Options) trackerin.Usecase {
	if opts.StreakThreshold <= 0 {
		opts.StreakThreshold = domain.DefaultStreakThreshold
	}
	if opts.HeatmapDays <= 0 {
		opts.HeatmapDays = domain.DefaultHeatmapDays
	}
	return &Interactor{engine: engine, scheduler: scheduler, opts: opts}
}

func (i *Interactor) Dashboard(context.Context) (dto.Dashboard, error) {
	snap := i.engine.Snapshot()
	return dto.Dashboard{
		Date:     snap.Today,
		Active:   snap.Active,
		Subjects: subjectViews(snap),
		Stats:    toStats(domain.ComputeStats(snap.Model, snap.Today, i.engine.Calendar(), i.opts.StreakThreshold)),
	}, nil
}

func (i *Interactor) ListSubjects(context.Context) ([]dto.SubjectView, error) {
	return subjectViews(i.engine.Snapshot()), nil
}

func (i *Interactor) CreateSubject(ctx context.Context, input dto.CreateSubjectInput) (dto.SubjectView, error) {
	sub, err := i.engine.CreateSubject(ctx, input.Name, input.Tag)
	if err != nil {
		return dto.SubjectView{}, err
	}
	return dto.SubjectView{ID: sub.ID, Name: sub.Name, Tag: sub.Tag, Color: sub.Color}, nil
}

func (i *Interactor) DeleteSubject(ctx context.Context, subjectID int) (dto.SubjectView, error) {
	sub, err := i.engine.DeleteSubject(ctx, subjectID)
	if err != nil {
		return dto.SubjectView{}, err
	}
	return dto.SubjectView{ID: sub.ID, Name: sub.Name, Tag: sub.Tag, Color: sub.Color, TotalSeconds: sub.TotalTime}, nil
}

func (i *Interactor) StartTimer(ctx context.Context, subjectID int) error {
	return i.engine.Start(ctx, subjectID)
}

func (i *Interactor) PauseTimer(ctx context.Context, subjectID int) (bool, error) {
	return i.engine.Pause(ctx, subjectID)
}

func (i *Interactor) PauseAll(ctx context.Context) (bool, error) {
	return i.engine.PauseAll(ctx)
}

func (i *Interactor) ResetTimer(ctx context.Context, subjectID int) error {
	return i.engine.Reset(ctx, subjectID)
}

func (i *Interactor) SetDailyGoal(ctx context.Context, input dto.SetGoalInput) error {
	return i.engine.SetDailyGoal(ctx, input.Seconds)
}

func (i *Interactor) Stats(context.Context) (dto.StatsOutput, error) {
	snap := i.engine.Snapshot()
	return toStats(domain.ComputeStats(snap.Model, snap.Today, i.engine.Calendar(), i.opts.StreakThreshold)), nil
}

// SessionsForDate lists archived sessions for date, today when empty.
func (i *Interactor) SessionsForDate(_ context.Context, date string) ([]dto.SessionOutput, error) {
	snap := i.engine.Snapshot()
	date = strings.TrimSpace(date)
	if date == "" {
		date = snap.Today
	}
	if !i.engine.Calendar().Valid(date) {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", apperrors.ErrInvalidInput, date)
	}
	sessions := domain.SessionsOn(snap.Model, date)
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, dto.SessionOutput{
			ID:        s.ID,
			SubjectID: s.SubjectID,
			Subject:   s.Subject,
			Tag:       s.Tag,
			Duration:  s.Duration,
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		})
	}
	return out, nil
}

func (i *Interactor) Heatmap(_ context.Context, input dto.HeatmapInput) (dto.HeatmapOutput, error) {
	snap := i.engine.Snapshot()
	tag := strings.TrimSpace(input.Tag)
	if (tag == "") == (input.SubjectID == 0) {
		return dto.HeatmapOutput{}, fmt.Errorf("%w: heatmap needs a tag or a subject", apperrors.ErrInvalidInput)
	}
	if input.Days < 0 {
		return dto.HeatmapOutput{}, fmt.Errorf("%w: heatmap days must not be negative", apperrors.ErrInvalidInput)
	}
	days := input.Days
	if days == 0 {
		days = i.opts.HeatmapDays
	}
	var hm domain.Heatmap
	if tag != "" {
		if err := domain.ValidateTag(tag, i.engine.Categories()); err != nil {
			return dto.HeatmapOutput{}, err
		}
		hm = domain.BuildHeatmap(snap.Model, snap.Today, i.engine.Calendar(), days, tag, domain.ByTag(tag))
	} else {
		idx := snap.Model.SubjectIndex(input.SubjectID)
		if idx < 0 {
			return dto.HeatmapOutput{}, fmt.Errorf("%w: subject %d", apperrors.ErrNotFound, input.SubjectID)
		}
		hm = domain.BuildHeatmap(snap.Model, snap.Today, i.engine.Calendar(), days, snap.Model.Subjects[idx].Name, domain.BySubject(input.SubjectID))
	}
	out := dto.HeatmapOutput{Label: hm.Label, From: hm.From, To: hm.To, Rows: domain.RowLabels(), Total: hm.Total, Weeks: make([][7]dto.HeatCell, len(hm.Weeks))}
	for w, week := range hm.Weeks {
		for d, cell := range week {
			out.Weeks[w][d] = dto.HeatCell(cell)
		}
	}
	return out, nil
}

func (i *Interactor) CheckRollover(ctx context.Context) (dto.RolloverOutput, error) {
	res, err := i.scheduler.Check(ctx)
	return toRollover(res), err
}

func (i *Interactor) Resume(ctx context.Context) (dto.RolloverOutput, error) {
	res, err := i.scheduler.Resume(ctx)
	return toRollover(res), err
}

// Watch runs the rollover scheduler until ctx is cancelled.
func (i *Interactor) Watch(ctx context.Context) error {
	return i.scheduler.Run(ctx)
}

func (i *Interactor) Export(context.Context) ([]byte, error) {
	raw, err := json.MarshalIndent(i.engine.Export(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return append(raw, '\n'), nil
}

func (i *Interactor) Import(ctx context.Context, payload []byte) (dto.ImportOutput, error) {
	m, err := i.engine.Import(ctx, payload)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	return dto.ImportOutput{Subjects: len(m.Subjects), Sessions: len(m.Sessions)}, nil
}

func (i *Interactor) Clear(ctx context.Context) error {
	return i.engine.Clear(ctx)
}

func (i *Interactor) Flush(ctx context.Context) (dto.FlushOutput, error) {
	session, flushed, err := i.engine.Flush(ctx)
	if err != nil || !flushed {
		return dto.FlushOutput{}, err
	}
	return dto.FlushOutput{Flushed: true, Subject: session.Subject, Seconds: session.Duration}, nil
}

func subjectViews(snap service.Snapshot) []dto.SubjectView {
	out := make([]dto.SubjectView, 0, len(snap.Model.Subjects))
	for _, s := range snap.Model.Subjects {
		out = append(out, dto.SubjectView{
			ID:           s.ID,
			Name:         s.Name,
			Tag:          s.Tag,
			Color:        s.Color,
			LiveSeconds:  snap.Model.SubjectTimers[s.Name],
			TotalSeconds: s.TotalTime,
			Running:      s.ID == snap.Active,
		})
	}
	return out
}

func toStats(s domain.Stats) dto.StatsOutput {
	return dto.StatsOutput{
		Date:   s.Date,
		Today:  s.Today,
		Week:   s.Week,
		Month:  s.Month,
		Streak: s.Streak,
		Goal: dto.GoalOutput{
			Goal:      s.Goal.Goal,
			Total:     s.Goal.Total,
			Ratio:     s.Goal.Ratio,
			State:     string(s.Goal.State),
			Remaining: s.Goal.Remaining,
			Exceeded:  s.Goal.Exceeded,
			Text:      s.Goal.Text(),
		},
	}
}

func toRollover(res service.CheckResult) dto.RolloverOutput {
	return dto.RolloverOutput{
		Previous: res.Previous,
		Current:  res.Current,
		Rolled:   res.Rolled,
		Archived: len(res.Summary.Archived),
		Total:    res.Summary.Total,
	}
}
