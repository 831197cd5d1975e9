package models

type AnalyticsEvent string

const (
	AnalyticsSignedUp           AnalyticsEvent = "Signed up"
	AnalyticsWorkspaceCreated   AnalyticsEvent = "Workspace created"
	AnalyticsWorkspaceDeleted   AnalyticsEvent = "Workspace deleted"
	AnalyticsMemberInvited      AnalyticsEvent = "Member invited"
	AnalyticsMemberJoined       AnalyticsEvent = "Member joined"
	AnalyticsMemberRemoved      AnalyticsEvent = "Member removed"
	AnalyticsCustomRoleCreated  AnalyticsEvent = "Custom role created"
	AnalyticsInboundMailStored  AnalyticsEvent = "Inbound mail stored"
	AnalyticsWeeklyReportIssued AnalyticsEvent = "Weekly report issued"
)
