package dto

import (
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

type EmailStatistics struct {
	Emails      int `json:"emails"`
	Attachments int `json:"attachments"`
}

type MonthStatistics struct {
	Month    string `json:"month"`
	Emails   int    `json:"emails"`
	Invoices int    `json:"invoices"`
}

type WorkspaceStatistics struct {
	CurrentYear      []MonthStatistics `json:"current_year"`
	CurrentMonth     EmailStatistics   `json:"current_month"`
	Total            EmailStatistics   `json:"total"`
	WorkspaceMembers int               `json:"workspace_members"`
}

func adaptEmailStatistics(s models.EmailStatistics) EmailStatistics {
	return EmailStatistics{Emails: s.Emails, Attachments: s.Attachments}
}

func AdaptWorkspaceStatisticsDto(s models.WorkspaceStatistics) WorkspaceStatistics {
	return WorkspaceStatistics{
		CurrentYear: utils.Map(s.CurrentYear, func(m models.MonthStatistics) MonthStatistics {
			return MonthStatistics{Month: m.Month, Emails: m.Emails, Invoices: m.Invoices}
		}),
		CurrentMonth:     adaptEmailStatistics(s.CurrentMonth),
		Total:            adaptEmailStatistics(s.Total),
		WorkspaceMembers: s.WorkspaceMembers,
	}
}
