package reports

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/invoicebox/backend/mocks"
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/clock"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/usecases/security"
)

type ReportAggregatorTestSuite struct {
	suite.Suite
	repository *mocks.StatisticsRepository
	notifier   *mocks.Notifier
	exec       executor_factory.ExecutorFactoryStub
	ctx        context.Context
	// a Sunday evening, when the weekly job runs
	now        time.Time
	aggregator ReportAggregator
	workspace  models.Workspace
}

func (suite *ReportAggregatorTestSuite) SetupTest() {
	suite.repository = new(mocks.StatisticsRepository)
	suite.notifier = new(mocks.Notifier)
	suite.exec = executor_factory.NewExecutorFactoryStub()
	suite.ctx = context.Background()
	suite.now = time.Date(2024, time.June, 9, 23, 30, 0, 0, time.UTC)
	suite.aggregator = NewReportAggregator(suite.exec, suite.repository, suite.notifier, clock.NewMock(suite.now))
	suite.workspace = models.Workspace{Id: "ws-1", Name: "Acme", Email: "acme@invoices.test"}
}

func (suite *ReportAggregatorTestSuite) AfterTest(_, _ string) {
	suite.repository.AssertExpectations(suite.T())
	suite.notifier.AssertExpectations(suite.T())
}

func (suite *ReportAggregatorTestSuite) expectWeeklyStatistics(workspace models.Workspace) {
	week := models.Period{
		Start: time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
	}
	suite.repository.On("GetWorkspaceById", mock.Anything, mock.Anything, workspace.Id).Return(workspace, nil)
	suite.repository.On("CountWorkspaceMembers", mock.Anything, mock.Anything, workspace.Id, week).Return(2, nil)
	suite.repository.On("EmailStatistics", mock.Anything, mock.Anything, workspace.Email, week).
		Return(models.EmailStatistics{Emails: 4, Attachments: 6}, nil)
	suite.repository.On("EmailStatistics", mock.Anything, mock.Anything, workspace.Email, models.Period{}).
		Return(models.EmailStatistics{Emails: 40, Attachments: 52}, nil)
}

func (suite *ReportAggregatorTestSuite) TestWeeklyStatistics() {
	suite.expectWeeklyStatistics(suite.workspace)

	stats, err := suite.aggregator.WeeklyStatistics(suite.ctx, nil, suite.workspace.Id, suite.now)

	suite.Require().NoError(err)
	suite.Equal(models.WeeklyStatistics{
		WorkspaceName:   "Acme",
		NewMembers:      2,
		EmailsReceived:  4,
		InvoicesHandled: 6,
		EmailsTotal:     40,
		InvoicesTotal:   52,
	}, stats)
}

func (suite *ReportAggregatorTestSuite) TestYearlyStatistics_TwelveMonths() {
	year := models.Period{
		Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	suite.repository.On("MonthlyEmailStatistics", mock.Anything, mock.Anything, suite.workspace.Email, year).
		Return(map[time.Month]models.EmailStatistics{
			time.March: {Emails: 5, Attachments: 7},
			time.June:  {Emails: 1, Attachments: 0},
		}, nil)

	months, err := suite.aggregator.YearlyStatistics(suite.ctx, nil, suite.workspace.Email, suite.now)

	suite.Require().NoError(err)
	suite.Require().Len(months, 12)
	suite.Equal(models.MonthStatistics{Month: "January"}, months[0])
	suite.Equal(models.MonthStatistics{Month: "March", Emails: 5, Invoices: 7}, months[2])
	suite.Equal(models.MonthStatistics{Month: "June", Emails: 1}, months[5])
	suite.Equal("December", months[11].Month)
}

func (suite *ReportAggregatorTestSuite) TestSendWeeklyReports_FailureDoesNotStopOthers() {
	broken := models.Workspace{Id: "ws-2", Name: "Broken", Email: "broken@invoices.test"}
	suite.repository.On("ListLiveWorkspaces", mock.Anything, mock.Anything).
		Return([]models.Workspace{suite.workspace, broken}, nil)
	suite.expectWeeklyStatistics(suite.workspace)
	suite.repository.On("GetWorkspaceById", mock.Anything, mock.Anything, broken.Id).
		Return(models.Workspace{}, errors.New("connection reset"))
	suite.repository.On("ListWorkspaceMembers", mock.Anything, mock.Anything, suite.workspace.Id,
		[]models.RoleType{models.RoleTypeOwner, models.RoleTypeAdmin}).
		Return([]models.WorkspaceMemberWithUser{
			{User: models.User{Email: "alice@example.com"}},
			{User: models.User{Email: "bob@example.com"}},
		}, nil)
	suite.notifier.On("SendToAll", mock.Anything, models.NotificationWeeklyReport,
		[]string{"alice@example.com", "bob@example.com"},
		mock.MatchedBy(func(data map[string]any) bool {
			return data["workspace_name"] == "Acme" && data["invoices_handled"] == 6 && data["week_start"] == "2024-06-03"
		})).Once()

	failed, err := suite.aggregator.SendWeeklyReports(suite.ctx, suite.now)

	suite.Require().NoError(err)
	suite.Equal([]string{"ws-2"}, failed)
}

func (suite *ReportAggregatorTestSuite) TestSendWeeklyReports_ListError() {
	suite.repository.On("ListLiveWorkspaces", mock.Anything, mock.Anything).
		Return([]models.Workspace(nil), errors.New("connection reset"))

	_, err := suite.aggregator.SendWeeklyReports(suite.ctx, suite.now)

	suite.Error(err)
}

func (suite *ReportAggregatorTestSuite) TestWorkspaceStatistics_NotAMember() {
	creds := models.Credentials{ActorIdentity: models.Identity{UserId: "user-1"}}
	usecase := NewStatisticsUsecase(security.NewEnforceSecurityWorkspace(creds), suite.exec,
		suite.repository, suite.repository, suite.aggregator)
	suite.repository.On("GetWorkspaceMemberByUserId", mock.Anything, mock.Anything, suite.workspace.Id, models.UserId("user-1")).
		Return(models.WorkspaceMemberWithRole{}, errors.Wrap(models.NotFoundError, "member"))

	_, err := usecase.WorkspaceStatistics(suite.ctx, suite.workspace.Id)

	suite.ErrorIs(err, models.ForbiddenError)
}

func (suite *ReportAggregatorTestSuite) TestWorkspaceStatistics() {
	creds := models.Credentials{ActorIdentity: models.Identity{UserId: "user-1"}}
	usecase := NewStatisticsUsecase(security.NewEnforceSecurityWorkspace(creds), suite.exec,
		suite.repository, suite.repository, suite.aggregator)
	guest := models.DefaultRole(models.RoleTypeGuest)
	suite.repository.On("GetWorkspaceMemberByUserId", mock.Anything, mock.Anything, suite.workspace.Id, models.UserId("user-1")).
		Return(models.WorkspaceMemberWithRole{
			WorkspaceMember: models.WorkspaceMember{WorkspaceId: suite.workspace.Id, UserId: "user-1"},
			Role:            guest,
		}, nil)
	suite.repository.On("GetWorkspaceById", mock.Anything, mock.Anything, suite.workspace.Id).Return(suite.workspace, nil)
	suite.repository.On("MonthlyEmailStatistics", mock.Anything, mock.Anything, suite.workspace.Email, mock.Anything).
		Return(map[time.Month]models.EmailStatistics{}, nil)
	june := models.Period{
		Start: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
	}
	suite.repository.On("EmailStatistics", mock.Anything, mock.Anything, suite.workspace.Email, june).
		Return(models.EmailStatistics{Emails: 3, Attachments: 3}, nil)
	suite.repository.On("EmailStatistics", mock.Anything, mock.Anything, suite.workspace.Email, models.Period{}).
		Return(models.EmailStatistics{Emails: 10, Attachments: 12}, nil)
	suite.repository.On("CountWorkspaceMembers", mock.Anything, mock.Anything, suite.workspace.Id, models.Period{}).
		Return(4, nil)

	stats, err := usecase.WorkspaceStatistics(suite.ctx, suite.workspace.Id)

	suite.Require().NoError(err)
	suite.Len(stats.CurrentYear, 12)
	suite.Equal(models.EmailStatistics{Emails: 3, Attachments: 3}, stats.CurrentMonth)
	suite.Equal(models.EmailStatistics{Emails: 10, Attachments: 12}, stats.Total)
	suite.Equal(4, stats.WorkspaceMembers)
}

func TestReportAggregator(t *testing.T) {
	suite.Run(t, new(ReportAggregatorTestSuite))
}
