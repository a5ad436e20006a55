package dto

import "time"

type SubjectView struct {
	ID           int
	Name         string
	Tag          string
	Color        string
	LiveSeconds  int64
	TotalSeconds int64
	Running      bool
}

type GoalOutput struct {
	Goal      int64
	Total     int64
	Ratio     float64
	State     string
	Remaining int64
	Exceeded  int64
	Text      string
}

type StatsOutput struct {
	Date   string
	Today  int64
	Week   int64
	Month  int64
	Streak int
	Goal   GoalOutput
}

// Dashboard is everything the timer screen renders in one read.
type Dashboard struct {
	Date     string
	Active   int
	Subjects []SubjectView
	Stats    StatsOutput
}

type CreateSubjectInput struct {
	Name string
	Tag  string
}

type SetGoalInput struct {
	Seconds int64
}

type SessionOutput struct {
	ID        string
	SubjectID int
	Subject   string
	Tag       string
	Duration  int64
	Date      string
	StartTime time.Time
	EndTime   time.Time
}

// HeatmapInput selects exactly one of Tag or SubjectID. Days falls back to
// the configured window when zero.
type HeatmapInput struct {
	Tag       string
	SubjectID int
	Days      int
}

type HeatCell struct {
	Date    string
	Seconds int64
	Level   int
	Future  bool
}

// HeatmapOutput rows run Monday first; Rows holds their weekday names.
type HeatmapOutput struct {
	Label string
	From  string
	To    string
	Rows  [7]string
	Weeks [][7]HeatCell
	Total int64
}

type RolloverOutput struct {
	Previous string
	Current  string
	Rolled   bool
	Archived int
	Total    int64
}

type ImportOutput struct {
	Subjects int
	Sessions int
}

type FlushOutput struct {
	Flushed bool
	Subject string
	Seconds int64
}
