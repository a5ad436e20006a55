package dto

import "time"

type HookInfo struct {
	Name    string
	Version string
	Enabled bool
	Binary  string
	Events  []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type SubjectTotal struct {
	Name    string
	Tag     string
	Seconds int64
}

type DayClosedInput struct {
	UserID       string
	Date         string
	TotalSeconds int64
	Subjects     []SubjectTotal
	Archived     int
	ClosedAt     time.Time
}

type DispatchResult struct {
	Name     string
	Accepted bool
	Message  string
	Error    string
}
