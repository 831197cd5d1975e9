package models

import "time"

type Period struct {
	Start time.Time
	End   time.Time
}

type EmailStatistics struct {
	Emails      int
	Attachments int
}

type MonthStatistics struct {
	Month    string
	Emails   int
	Invoices int
}

type WeeklyStatistics struct {
	WorkspaceName   string
	NewMembers      int
	EmailsReceived  int
	InvoicesHandled int
	EmailsTotal     int
	InvoicesTotal   int
}

type WorkspaceStatistics struct {
	CurrentYear      []MonthStatistics
	CurrentMonth     EmailStatistics
	Total            EmailStatistics
	WorkspaceMembers int
}
