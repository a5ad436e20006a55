package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studytrack/internal/modules/tracker/domain"
	trackerout "studytrack/internal/modules/tracker/port/out"
	"studytrack/internal/platform/markdown"
)

// VaultJournal writes one markdown note per closed day. Re-closing a day
// rewrites only the generated block and frontmatter; anything the user typed
// into the note survives.
type VaultJournal struct {
	root string
}

func NewVaultJournal(root string) *VaultJournal {
	return &VaultJournal{root: root}
}

var _ trackerout.DayClosedListener = (*VaultJournal)(nil)

func (j *VaultJournal) Path(date string) (string, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("journal date %q: %w", date, err)
	}
	return filepath.Join(j.root, d.Format("2006"), d.Format("01"), d.Format("02")+".md"), nil
}

func (j *VaultJournal) DayClosed(_ context.Context, summary domain.DaySummary) error {
	path, err := j.Path(summary.Date)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}

	note := markdown.Note{Meta: map[string]any{}, Body: fmt.Sprintf("# Study log %s\n", summary.Date)}
	if raw, err := os.ReadFile(path); err == nil {
		note, err = markdown.Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse journal %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read journal: %w", err)
	}

	subjects := make([]string, 0, len(summary.Subjects))
	for _, s := range summary.Subjects {
		subjects = append(subjects, s.Name)
	}
	note.Meta["schema_version"] = domain.SchemaVersion
	note.Meta["date"] = summary.Date
	note.Meta["user_id"] = summary.UserID
	note.Meta["total_seconds"] = summary.Total
	note.Meta["subjects"] = subjects
	note.Meta["closed_at"] = summary.ClosedAt.Format(time.RFC3339)
	note.SetBlock("summary", renderSummary(summary))

	rendered, err := note.Render()
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}

func renderSummary(summary domain.DaySummary) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "Total: %s\n\n", domain.FormatDuration(summary.Total))
	if len(summary.Subjects) == 0 {
		b.WriteString("No study time recorded.\n")
		return b.String()
	}
	b.WriteString("| Subject | Tag | Time |\n|---|---|---|\n")
	for _, s := range summary.Subjects {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Name, s.Tag, domain.FormatDuration(s.Seconds))
	}
	return b.String()
}
