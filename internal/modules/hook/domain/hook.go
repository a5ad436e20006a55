package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

type Event string

const EventDayClosed Event = "day_closed"

var (
	ErrHookDisabled     = errors.New("hook is disabled")
	ErrChecksumMismatch = errors.New("hook checksum mismatch")
	ErrHookTimeout      = errors.New("hook timeout")
	ErrHookNotFound     = errors.New("hook not found")
)

var (
	sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)
	namePattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
)

// Manifest is one entry of plugins.json.
type Manifest struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Binary  string  `json:"binary"`
	SHA256  string  `json:"sha256"`
	Enabled bool    `json:"enabled"`
	Events  []Event `json:"events"`
}

func (m Manifest) Validate() error {
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("hook name must be lowercase letters, digits, '-' or '_'")
	}
	if m.Version == "" {
		return fmt.Errorf("hook version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("hook binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("hook sha256 must be lowercase 64-char hex")
	}
	if len(m.Events) == 0 {
		return fmt.Errorf("hook events are required")
	}
	seen := map[Event]struct{}{}
	for _, e := range m.Events {
		if err := e.Validate(); err != nil {
			return err
		}
		if _, ok := seen[e]; ok {
			return fmt.Errorf("duplicate event: %s", e)
		}
		seen[e] = struct{}{}
	}
	return nil
}

func (e Event) Validate() error {
	switch e {
	case EventDayClosed:
		return nil
	default:
		return fmt.Errorf("unknown event: %s", e)
	}
}

func (m Manifest) Subscribes(e Event) bool {
	for _, have := range m.Events {
		if have == e {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name    string
	Version string
	Events  []Event
}

type SubjectTotal struct {
	Name    string
	Tag     string
	Seconds int64
}

// DayClosed is what a hook learns about a finished study day.
type DayClosed struct {
	UserID       string
	Date         string
	TotalSeconds int64
	Subjects     []SubjectTotal
	Archived     int
	ClosedAt     time.Time
}

func (d DayClosed) Validate() error {
	if d.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %q", d.Date)
	}
	if d.TotalSeconds < 0 {
		return fmt.Errorf("total seconds must not be negative")
	}
	return nil
}

type Ack struct {
	Accepted bool
	Message  string
}
