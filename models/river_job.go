package models

import "time"

type WeeklyReportJobArgs struct{}

func (WeeklyReportJobArgs) Kind() string { return "weekly_report" }

// WorkspaceWeeklyReportJobArgs retries the report of a single workspace. ReferenceTime picks
// the reported week, so that a late retry still reports the same week.
type WorkspaceWeeklyReportJobArgs struct {
	WorkspaceId   string    `json:"workspace_id"`
	ReferenceTime time.Time `json:"reference_time"`
}

func (WorkspaceWeeklyReportJobArgs) Kind() string { return "workspace_weekly_report" }
