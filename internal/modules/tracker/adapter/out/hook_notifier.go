package out

import (
	"context"
	"fmt"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	hookdto "studytrack/internal/modules/hook/dto"
	hookin "studytrack/internal/modules/hook/port/in"
	"studytrack/internal/modules/tracker/domain"
	trackerout "studytrack/internal/modules/tracker/port/out"
)

// HookNotifier forwards closed days to the external hook processes.
type HookNotifier struct {
	hooks  hookin.Usecase
	logger hclog.Logger
}

func NewHookNotifier(hooks hookin.Usecase, logger hclog.Logger) *HookNotifier {
	return &HookNotifier{hooks: hooks, logger: logger}
}

var _ trackerout.DayClosedListener = (*HookNotifier)(nil)

func (n *HookNotifier) DayClosed(ctx context.Context, summary domain.DaySummary) error {
	input := hookdto.DayClosedInput{
		UserID:       summary.UserID,
		Date:         summary.Date,
		TotalSeconds: summary.Total,
		Archived:     len(summary.Archived),
		ClosedAt:     summary.ClosedAt,
	}
	for _, s := range summary.Subjects {
		input.Subjects = append(input.Subjects, hookdto.SubjectTotal{Name: s.Name, Tag: s.Tag, Seconds: s.Seconds})
	}
	results, err := n.hooks.DispatchDayClosed(ctx, input)
	if err != nil {
		return fmt.Errorf("dispatch day_closed: %w", err)
	}
	failed := []string{}
	for _, r := range results {
		if r.Error != "" {
			failed = append(failed, r.Name)
			continue
		}
		n.logger.Debug("hook acknowledged day", "hook", r.Name, "date", summary.Date, "message", r.Message)
	}
	if len(failed) > 0 {
		return fmt.Errorf("hooks failed: %s", strings.Join(failed, ", "))
	}
	return nil
}
