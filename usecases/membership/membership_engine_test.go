package membership

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/invoicebox/backend/mocks"
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/repositories/clock"
	"github.com/invoicebox/backend/usecases/security"
	"github.com/invoicebox/backend/usecases/tokens"
)

type nilExecutorFactory struct{}

func (nilExecutorFactory) NewExecutor() repositories.Executor { return nil }

type memoryReplayGuard struct {
	used sync.Map
}

func (g *memoryReplayGuard) MarkUsed(_ context.Context, purpose models.TokenPurpose, tokenHash string, _ time.Time) (bool, error) {
	_, loaded := g.used.LoadOrStore(string(purpose)+":"+tokenHash, struct{}{})
	return !loaded, nil
}

type membershipFixture struct {
	store    *fakeStore
	txLock   *sync.Mutex
	ledger   *tokens.TokenLedger
	notifier *mocks.Notifier
}

func newMembershipFixture() *membershipFixture {
	signer := repositories.NewJwtRepository(models.TokenConfiguration{
		Issuer: "invoicebox-test",
		Policies: map[models.TokenPurpose]models.TokenPolicy{
			models.TokenPurposeInvite: {Secret: []byte("invite-secret"), Lifetime: 7 * 24 * time.Hour},
		},
	}, clock.New())

	n := new(mocks.Notifier)
	n.On("AppUrl").Return("https://app.invoicebox.test").Maybe()
	n.On("SendToAll", mock.Anything, models.NotificationMemberJoined, mock.Anything, mock.Anything).Maybe()

	return &membershipFixture{
		store:    newFakeStore(),
		txLock:   &sync.Mutex{},
		ledger:   tokens.NewTokenLedger(signer, &memoryReplayGuard{}),
		notifier: n,
	}
}

func (f *membershipFixture) engineFor(user models.User) MembershipEngine {
	creds := models.Credentials{ActorIdentity: models.Identity{UserId: user.UserId, Email: user.Email, Name: user.Name}}
	return NewMembershipEngine(
		security.NewEnforceSecurityWorkspace(creds),
		nilExecutorFactory{},
		serialTransactionFactory{mu: f.txLock},
		f.store,
		f.store,
		f.ledger,
		f.notifier,
	)
}

// invite runs Invite as the given user and returns the token found in the mailed link
func (f *membershipFixture) invite(t *testing.T, inviter models.User, workspaceId, email string) string {
	t.Helper()
	var sent models.Notification
	f.notifier.On("Send", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.Purpose == models.NotificationInvite && strings.EqualFold(n.To, strings.TrimSpace(email))
	})).Run(func(args mock.Arguments) {
		sent = args.Get(1).(models.Notification)
	}).Once()

	require.NoError(t, f.engineFor(inviter).Invite(context.Background(), workspaceId, email))

	link, err := url.Parse(sent.TemplateData["link"].(string))
	require.NoError(t, err)
	assert.Equal(t, "/workspaces/join", link.Path)
	return link.Query().Get("token")
}

func TestMembershipLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newMembershipFixture()
	u1 := f.store.addUser("u1", "alice@example.com")
	u2 := f.store.addUser("u2", "bob@example.com")
	u1MemberId := f.store.addWorkspace("w1", u1.UserId)

	token := f.invite(t, u1, "w1", u2.Email)

	guest, err := f.engineFor(u2).AcceptInvite(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTypeGuest, guest.Role.RoleType)
	assert.Equal(t, u2.UserId, guest.UserId)

	_, err = f.engineFor(u2).AcceptInvite(ctx, token)
	assert.ErrorIs(t, err, models.ErrTokenAlreadyUsed)

	admin, err := f.engineFor(u1).AssignRole(ctx, "w1", models.AssignRoleInput{MemberId: guest.Id, RoleId: "role-admin"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTypeAdmin, admin.Role.RoleType)

	err = f.engineFor(u2).RemoveMember(ctx, "w1", u1MemberId)
	assert.ErrorIs(t, err, models.MethodNotAllowedError)

	err = f.engineFor(u1).Leave(ctx, "w1")
	assert.ErrorIs(t, err, models.ErrLastOwner)

	err = f.engineFor(u1).RemoveMember(ctx, "w1", u1MemberId)
	assert.ErrorIs(t, err, models.ErrLastOwner)

	members, err := f.engineFor(u1).ListMembers(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, u1.UserId, members[0].UserId)
	assert.Equal(t, 1, f.store.ownerCount("w1"))
}

func TestAcceptInvite_WrongUserDoesNotConsumeToken(t *testing.T) {
	ctx := context.Background()
	f := newMembershipFixture()
	owner := f.store.addUser("u1", "alice@example.com")
	invited := f.store.addUser("u2", "bob@example.com")
	intruder := f.store.addUser("u3", "eve@example.com")
	f.store.addWorkspace("w1", owner.UserId)

	token := f.invite(t, owner, "w1", invited.Email)

	_, err := f.engineFor(intruder).AcceptInvite(ctx, token)
	assert.ErrorIs(t, err, models.ForbiddenError)

	member, err := f.engineFor(invited).AcceptInvite(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, invited.UserId, member.UserId)
}

func TestAcceptInvite_AlreadyMember(t *testing.T) {
	ctx := context.Background()
	f := newMembershipFixture()
	owner := f.store.addUser("u1", "alice@example.com")
	member := f.store.addUser("u2", "bob@example.com")
	f.store.addWorkspace("w1", owner.UserId)
	f.store.addCustomRole("w1", "role-accountant", "Accountant")
	f.store.addMember("w1", member.UserId, "role-accountant")

	token := f.invite(t, owner, "w1", member.Email)

	_, err := f.engineFor(member).AcceptInvite(ctx, token)
	assert.ErrorIs(t, err, models.ErrAlreadyMember)
}

func TestAcceptInvite_FailedJoinKeepsToken(t *testing.T) {
	ctx := context.Background()
	f := newMembershipFixture()
	owner := f.store.addUser("u1", "alice@example.com")
	member := f.store.addUser("u2", "bob@example.com")
	f.store.addWorkspace("w1", owner.UserId)
	f.store.addCustomRole("w1", "role-accountant", "Accountant")
	memberId := f.store.addMember("w1", member.UserId, "role-accountant")

	token := f.invite(t, owner, "w1", member.Email)

	_, err := f.engineFor(member).AcceptInvite(ctx, token)
	assert.ErrorIs(t, err, models.ErrAlreadyMember)

	require.NoError(t, f.engineFor(member).Leave(ctx, "w1"))

	joined, err := f.engineFor(member).AcceptInvite(ctx, token)
	require.NoError(t, err)
	assert.NotEqual(t, memberId, joined.Id)
	assert.Equal(t, models.RoleTypeGuest, joined.Role.RoleType)

	_, err = f.engineFor(member).AcceptInvite(ctx, token)
	assert.ErrorIs(t, err, models.ErrTokenAlreadyUsed)
}

func TestAcceptInvite_UnknownUserKeepsToken(t *testing.T) {
	ctx := context.Background()
	f := newMembershipFixture()
	owner := f.store.addUser("u1", "alice@example.com")
	f.store.addWorkspace("w1", owner.UserId)

	token := f.invite(t, owner, "w1", "bob@example.com")
	ghost := models.User{UserId: "u2", Email: "bob@example.com"}

	_, err := f.engineFor(ghost).AcceptInvite(ctx, token)
	assert.ErrorIs(t, err, models.NotFoundError)

	f.store.addUser("u2", "bob@example.com")
	joined, err := f.engineFor(ghost).AcceptInvite(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, ghost.UserId, joined.UserId)
}

func TestInvite_MixedCaseEmail(t *testing.T) {
	ctx := context.Background()
	f := newMembershipFixture()
	owner := f.store.addUser("u1", "alice@example.com")
	invited := f.store.addUser("u2", "bob@example.com")
	f.store.addWorkspace("w1", owner.UserId)

	token := f.invite(t, owner, "w1", "  Bob@Example.com ")

	member, err := f.engineFor(invited).AcceptInvite(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, invited.UserId, member.UserId)
}

func TestAcceptInvite_InvalidToken(t *testing.T) {
	f := newMembershipFixture()
	user := f.store.addUser("u1", "alice@example.com")

	_, err := f.engineFor(user).AcceptInvite(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestInvite_Forbidden(t *testing.T) {
	ctx := context.Background()
	f := newMembershipFixture()
	owner := f.store.addUser("u1", "alice@example.com")
	guest := f.store.addUser("u2", "bob@example.com")
	outsider := f.store.addUser("u3", "eve@example.com")
	f.store.addWorkspace("w1", owner.UserId)
	f.store.addMember("w1", guest.UserId, "role-guest")

	err := f.engineFor(guest).Invite(ctx, "w1", "carol@example.com")
	assert.ErrorIs(t, err, models.ForbiddenError)

	err = f.engineFor(outsider).Invite(ctx, "w1", "carol@example.com")
	assert.ErrorIs(t, err, models.ForbiddenError)

	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestInvite_CustomRoleWithAddEmployee(t *testing.T) {
	f := newMembershipFixture()
	owner := f.store.addUser("u1", "alice@example.com")
	recruiter := f.store.addUser("u2", "bob@example.com")
	f.store.addWorkspace("w1", owner.UserId)
	f.store.addCustomRole("w1", "role-recruiter", "Recruiter", models.PermissionAddEmployee)
	f.store.addMember("w1", recruiter.UserId, "role-recruiter")

	token := f.invite(t, recruiter, "w1", "carol@example.com")
	assert.NotEmpty(t, token)
}

func TestAssignRole(t *testing.T) {
	ctx := context.Background()

	t.Run("admins cannot assign roles", func(t *testing.T) {
		f := newMembershipFixture()
		owner := f.store.addUser("u1", "alice@example.com")
		admin := f.store.addUser("u2", "bob@example.com")
		guest := f.store.addUser("u3", "carol@example.com")
		f.store.addWorkspace("w1", owner.UserId)
		f.store.addMember("w1", admin.UserId, "role-admin")
		guestMemberId := f.store.addMember("w1", guest.UserId, "role-guest")

		_, err := f.engineFor(admin).AssignRole(ctx, "w1", models.AssignRoleInput{MemberId: guestMemberId, RoleId: "role-guest"})
		assert.ErrorIs(t, err, models.ForbiddenError)
	})

	t.Run("custom role of another workspace", func(t *testing.T) {
		f := newMembershipFixture()
		owner := f.store.addUser("u1", "alice@example.com")
		guest := f.store.addUser("u2", "bob@example.com")
		f.store.addWorkspace("w1", owner.UserId)
		f.store.addWorkspace("w2", owner.UserId)
		f.store.addCustomRole("w2", "role-w2", "Accountant")
		guestMemberId := f.store.addMember("w1", guest.UserId, "role-guest")

		_, err := f.engineFor(owner).AssignRole(ctx, "w1", models.AssignRoleInput{MemberId: guestMemberId, RoleId: "role-w2"})
		assert.ErrorIs(t, err, models.NotFoundError)

		_, err = f.engineFor(owner).AssignRole(ctx, "w1", models.AssignRoleInput{MemberId: guestMemberId, RoleId: "unknown"})
		assert.ErrorIs(t, err, models.NotFoundError)
	})

	t.Run("last owner cannot be demoted", func(t *testing.T) {
		f := newMembershipFixture()
		owner := f.store.addUser("u1", "alice@example.com")
		ownerMemberId := f.store.addWorkspace("w1", owner.UserId)

		_, err := f.engineFor(owner).AssignRole(ctx, "w1", models.AssignRoleInput{MemberId: ownerMemberId, RoleId: "role-admin"})
		assert.ErrorIs(t, err, models.ErrLastOwner)
		assert.Equal(t, 1, f.store.ownerCount("w1"))
	})

	t.Run("owner can be demoted when another owner remains", func(t *testing.T) {
		f := newMembershipFixture()
		owner := f.store.addUser("u1", "alice@example.com")
		coOwner := f.store.addUser("u2", "bob@example.com")
		ownerMemberId := f.store.addWorkspace("w1", owner.UserId)
		f.store.addMember("w1", coOwner.UserId, "role-owner")
		f.store.addCustomRole("w1", "role-accountant", "Accountant")

		member, err := f.engineFor(coOwner).AssignRole(ctx, "w1", models.AssignRoleInput{MemberId: ownerMemberId, RoleId: "role-accountant"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleTypeEmployee, member.Role.RoleType)
		assert.Equal(t, 1, f.store.ownerCount("w1"))
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()
	f := newMembershipFixture()
	owner := f.store.addUser("u1", "alice@example.com")
	admin := f.store.addUser("u2", "bob@example.com")
	otherAdmin := f.store.addUser("u3", "carol@example.com")
	employee := f.store.addUser("u4", "dan@example.com")
	f.store.addWorkspace("w1", owner.UserId)
	f.store.addMember("w1", admin.UserId, "role-admin")
	otherAdminMemberId := f.store.addMember("w1", otherAdmin.UserId, "role-admin")
	f.store.addCustomRole("w1", "role-accountant", "Accountant")
	employeeMemberId := f.store.addMember("w1", employee.UserId, "role-accountant")

	err := f.engineFor(employee).RemoveMember(ctx, "w1", otherAdminMemberId)
	assert.ErrorIs(t, err, models.ForbiddenError)

	// same rank is enough
	require.NoError(t, f.engineFor(admin).RemoveMember(ctx, "w1", otherAdminMemberId))
	require.NoError(t, f.engineFor(admin).RemoveMember(ctx, "w1", employeeMemberId))

	err = f.engineFor(admin).RemoveMember(ctx, "w1", employeeMemberId)
	assert.ErrorIs(t, err, models.NotFoundError)

	members, err := f.engineFor(owner).ListMembers(ctx, "w1")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestLeave(t *testing.T) {
	ctx := context.Background()
	f := newMembershipFixture()
	owner := f.store.addUser("u1", "alice@example.com")
	guest := f.store.addUser("u2", "bob@example.com")
	f.store.addWorkspace("w1", owner.UserId)
	f.store.addMember("w1", guest.UserId, "role-guest")

	require.NoError(t, f.engineFor(guest).Leave(ctx, "w1"))

	_, err := f.engineFor(guest).GetMyMembership(ctx, "w1")
	assert.ErrorIs(t, err, models.ForbiddenError)

	err = f.engineFor(guest).Leave(ctx, "w1")
	assert.ErrorIs(t, err, models.ForbiddenError)
}

func TestConcurrentOwnerRemoval(t *testing.T) {
	ctx := context.Background()
	f := newMembershipFixture()
	a := f.store.addUser("u1", "alice@example.com")
	b := f.store.addUser("u2", "bob@example.com")
	aMemberId := f.store.addWorkspace("w1", a.UserId)
	bMemberId := f.store.addMember("w1", b.UserId, "role-owner")

	var successes atomic.Int32
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := f.engineFor(a).RemoveMember(ctx, "w1", bMemberId); err == nil {
			successes.Add(1)
		}
	}()
	go func() {
		defer wg.Done()
		if err := f.engineFor(b).RemoveMember(ctx, "w1", aMemberId); err == nil {
			successes.Add(1)
		}
	}()
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, 1, f.store.ownerCount("w1"))
}
