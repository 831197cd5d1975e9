package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/clock"
)

type DbRepositoryTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo *DbRepository
	now  time.Time
	ctx  context.Context
}

func (suite *DbRepositoryTestSuite) SetupTest() {
	pool, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)

	suite.mock = pool
	suite.now = time.Date(2024, time.June, 5, 10, 0, 0, 0, time.UTC)
	suite.repo = NewDbRepository(clock.NewMock(suite.now))
	suite.ctx = context.Background()
}

func (suite *DbRepositoryTestSuite) AfterTest(_, _ string) {
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *DbRepositoryTestSuite) exec() Executor {
	return &PgExecutor{exec: suite.mock}
}

func (suite *DbRepositoryTestSuite) TestCreateWorkspace_EmailTaken() {
	suite.mock.ExpectExec("INSERT INTO workspaces").
		WithArgs("ws-1", "Acme", "billing@invoices.test", "").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	err := suite.repo.CreateWorkspace(suite.ctx, suite.exec(), "ws-1", models.CreateWorkspaceInput{
		Name:  "Acme",
		Email: "billing@invoices.test",
	})

	suite.ErrorIs(err, models.ErrWorkspaceEmailExists)
	suite.ErrorIs(err, models.ConflictError)
}

func (suite *DbRepositoryTestSuite) TestCreateWorkspaceMember_RoleOfAnotherWorkspace() {
	suite.mock.ExpectExec("INSERT INTO workspace_members").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := suite.repo.CreateWorkspaceMember(suite.ctx, suite.exec(), "member-1", models.CreateWorkspaceMemberInput{
		WorkspaceId: "ws-1",
		UserId:      "user-1",
		RoleId:      "role-of-ws-2",
	})

	suite.ErrorIs(err, models.NotFoundError)
}

func (suite *DbRepositoryTestSuite) TestCreateWorkspaceMember_AlreadyMember() {
	suite.mock.ExpectExec("INSERT INTO workspace_members").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	err := suite.repo.CreateWorkspaceMember(suite.ctx, suite.exec(), "member-1", models.CreateWorkspaceMemberInput{
		WorkspaceId: "ws-1",
		UserId:      "user-1",
		RoleId:      "guest",
	})

	suite.ErrorIs(err, models.ErrAlreadyMember)
}

func (suite *DbRepositoryTestSuite) TestCountWorkspaceMembersWithRoleType() {
	suite.mock.ExpectQuery("SELECT COUNT").
		WithArgs("ws-1", models.RoleTypeOwner).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := suite.repo.CountWorkspaceMembersWithRoleType(suite.ctx, suite.exec(), "ws-1", models.RoleTypeOwner)

	suite.NoError(err)
	suite.Equal(2, count)
}

func (suite *DbRepositoryTestSuite) TestReassociateEmails_ActiveRowsOnly() {
	suite.mock.ExpectExec("UPDATE emails SET to_address").
		WithArgs("new@invoices.test", true, "old@invoices.test").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	count, err := suite.repo.ReassociateEmails(suite.ctx, suite.exec(), "old@invoices.test", "new@invoices.test")

	suite.NoError(err)
	suite.Equal(int64(3), count)
}

func (suite *DbRepositoryTestSuite) TestMarkTokenUsed() {
	expiresAt := suite.now.Add(time.Hour)
	suite.mock.ExpectExec("INSERT INTO used_tokens").
		WithArgs(models.TokenPurposeInvite, "hash", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec("INSERT INTO used_tokens").
		WithArgs(models.TokenPurposeInvite, "hash", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	first, err := suite.repo.MarkTokenUsed(suite.ctx, suite.exec(), models.TokenPurposeInvite, "hash", expiresAt)
	suite.NoError(err)
	suite.True(first)

	second, err := suite.repo.MarkTokenUsed(suite.ctx, suite.exec(), models.TokenPurposeInvite, "hash", expiresAt)
	suite.NoError(err)
	suite.False(second)
}

func (suite *DbRepositoryTestSuite) TestPurgeExpiredUsedTokens() {
	suite.mock.ExpectExec("DELETE FROM used_tokens").
		WithArgs(suite.now).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	count, err := suite.repo.PurgeExpiredUsedTokens(suite.ctx, suite.exec())

	suite.NoError(err)
	suite.Equal(int64(4), count)
}

func (suite *DbRepositoryTestSuite) TestMonthlyEmailStatistics() {
	period := models.Period{
		Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	suite.mock.ExpectQuery("SELECT EXTRACT").
		WithArgs(true, "ws-1@invoices.test", period.Start, period.End).
		WillReturnRows(pgxmock.NewRows([]string{"month", "count", "coalesce"}).
			AddRow(2, 4, 6).
			AddRow(5, 1, 0))

	stats, err := suite.repo.MonthlyEmailStatistics(suite.ctx, suite.exec(), "ws-1@invoices.test", period)

	suite.NoError(err)
	suite.Equal(map[time.Month]models.EmailStatistics{
		time.February: {Emails: 4, Attachments: 6},
		time.May:      {Emails: 1, Attachments: 0},
	}, stats)
}

func (suite *DbRepositoryTestSuite) TestNilExecutor() {
	_, err := suite.repo.CountWorkspaceMembers(suite.ctx, nil, "ws-1", models.Period{})
	suite.Error(err)
}

func TestDbRepository(t *testing.T) {
	suite.Run(t, new(DbRepositoryTestSuite))
}

func TestIsUniqueViolationError(t *testing.T) {
	err := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "workspaces_email_idx"}

	assert.True(t, IsUniqueViolationError(err))
	constraint, ok := UniqueViolationConstraint(err)
	assert.True(t, ok)
	assert.Equal(t, "workspaces_email_idx", constraint)
	assert.False(t, IsUniqueViolationError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
}

func TestEmailFiltersWhere_EscapesSearchWildcards(t *testing.T) {
	tests := []struct {
		search  string
		pattern string
	}{
		{search: "acme", pattern: "%acme%"},
		{search: "100%", pattern: `%100\%%`},
		{search: "_", pattern: `%\_%`},
		{search: `C:\bills`, pattern: `%C:\\bills%`},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			sql, args, err := emailFiltersWhere("billing@invoices.test", models.EmailFilters{Search: tt.search}).ToSql()
			require.NoError(t, err)

			assert.Contains(t, sql, "from_address ILIKE ?")
			assert.Contains(t, sql, "subject ILIKE ?")
			require.Len(t, args, 4)
			assert.Equal(t, tt.pattern, args[2])
			assert.Equal(t, tt.pattern, args[3])
		})
	}
}
