package membership

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
)

// fakeStore keeps the membership tables in memory
type fakeStore struct {
	mu         sync.Mutex
	now        time.Time
	users      map[models.UserId]models.User
	workspaces map[string]models.Workspace
	roles      map[string]models.WorkspaceRole
	members    map[string]models.WorkspaceMember
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		now:        time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC),
		users:      map[models.UserId]models.User{},
		workspaces: map[string]models.Workspace{},
		roles:      map[string]models.WorkspaceRole{},
		members:    map[string]models.WorkspaceMember{},
	}
	for _, roleType := range models.SystemRoleTypes {
		role := models.DefaultRole(roleType)
		role.Id = "role-" + string(roleType)
		s.roles[role.Id] = role
	}
	return s
}

func (s *fakeStore) tick() time.Time {
	s.now = s.now.Add(time.Minute)
	return s.now
}

func (s *fakeStore) addUser(id models.UserId, email string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := models.User{UserId: id, Name: string(id), Email: email}
	s.users[id] = user
	return user
}

func (s *fakeStore) addWorkspace(id string, owner models.UserId) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[id] = models.Workspace{Id: id, Name: "Workspace " + id, Email: id + "@invoices.test"}
	memberId := "member-" + id + "-" + string(owner)
	s.members[memberId] = models.WorkspaceMember{
		Id: memberId, WorkspaceId: id, UserId: owner, RoleId: "role-owner", CreatedAt: s.tick(),
	}
	return memberId
}

func (s *fakeStore) addMember(workspaceId string, userId models.UserId, roleId string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	memberId := "member-" + workspaceId + "-" + string(userId)
	s.members[memberId] = models.WorkspaceMember{
		Id: memberId, WorkspaceId: workspaceId, UserId: userId, RoleId: roleId, CreatedAt: s.tick(),
	}
	return memberId
}

func (s *fakeStore) addCustomRole(workspaceId, id, name string, permissions ...models.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[id] = models.WorkspaceRole{
		Id:          id,
		RoleType:    models.RoleTypeEmployee,
		RoleName:    name,
		Permissions: permissions,
		WorkspaceId: null.StringFrom(workspaceId),
	}
}

func (s *fakeStore) ownerCount(workspaceId string) int {
	count, _ := s.CountWorkspaceMembersWithRoleType(context.Background(), nil, workspaceId, models.RoleTypeOwner)
	return count
}

func (s *fakeStore) hydrate(m models.WorkspaceMember) models.WorkspaceMemberWithRole {
	return models.WorkspaceMemberWithRole{WorkspaceMember: m, Role: s.roles[m.RoleId]}
}

func (s *fakeStore) LockWorkspace(ctx context.Context, tx repositories.Transaction, workspaceId string) (models.Workspace, error) {
	return s.GetWorkspaceById(ctx, tx, workspaceId)
}

func (s *fakeStore) GetWorkspaceById(_ context.Context, _ repositories.Executor, workspaceId string) (models.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[workspaceId]
	if !ok || w.DeletedAt.Valid {
		return models.Workspace{}, errors.Wrap(models.NotFoundError, "workspace")
	}
	return w, nil
}

func (s *fakeStore) GetWorkspaceMemberById(_ context.Context, _ repositories.Executor, workspaceId, memberId string) (models.WorkspaceMemberWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberId]
	if !ok || m.WorkspaceId != workspaceId {
		return models.WorkspaceMemberWithRole{}, errors.Wrap(models.NotFoundError, "member")
	}
	return s.hydrate(m), nil
}

func (s *fakeStore) GetWorkspaceMemberByUserId(_ context.Context, _ repositories.Executor, workspaceId string,
	userId models.UserId,
) (models.WorkspaceMemberWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.WorkspaceId == workspaceId && m.UserId == userId {
			return s.hydrate(m), nil
		}
	}
	return models.WorkspaceMemberWithRole{}, errors.Wrap(models.NotFoundError, "member")
}

func (s *fakeStore) ListWorkspaceMembers(_ context.Context, _ repositories.Executor, workspaceId string,
	roleTypes ...models.RoleType,
) ([]models.WorkspaceMemberWithUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.WorkspaceMemberWithUser{}
	for _, m := range s.members {
		if m.WorkspaceId != workspaceId {
			continue
		}
		hydrated := s.hydrate(m)
		if len(roleTypes) > 0 && !slices.Contains(roleTypes, hydrated.Role.RoleType) {
			continue
		}
		out = append(out, models.WorkspaceMemberWithUser{WorkspaceMemberWithRole: hydrated, User: s.users[m.UserId]})
	}
	slices.SortFunc(out, func(a, b models.WorkspaceMemberWithUser) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (s *fakeStore) CountWorkspaceMembersWithRoleType(_ context.Context, _ repositories.Executor, workspaceId string,
	roleType models.RoleType,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.members {
		if m.WorkspaceId == workspaceId && s.roles[m.RoleId].RoleType == roleType {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) CreateWorkspaceMember(_ context.Context, _ repositories.Executor, newMemberId string,
	input models.CreateWorkspaceMemberInput,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[input.RoleId]
	if !ok || !role.BelongsTo(input.WorkspaceId) {
		return errors.Wrap(models.NotFoundError, "role")
	}
	for _, m := range s.members {
		if m.WorkspaceId == input.WorkspaceId && m.UserId == input.UserId {
			return models.ErrAlreadyMember
		}
	}
	s.members[newMemberId] = models.WorkspaceMember{
		Id: newMemberId, WorkspaceId: input.WorkspaceId, UserId: input.UserId, RoleId: input.RoleId, CreatedAt: s.tick(),
	}
	return nil
}

func (s *fakeStore) UpdateWorkspaceMemberRole(_ context.Context, _ repositories.Executor, memberId, roleId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.members[memberId]
	m.RoleId = roleId
	s.members[memberId] = m
	return nil
}

func (s *fakeStore) DeleteWorkspaceMember(_ context.Context, _ repositories.Executor, workspaceId, memberId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[memberId]; ok && m.WorkspaceId == workspaceId {
		delete(s.members, memberId)
	}
	return nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, _ repositories.Executor, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrUnknownUser
}

func (s *fakeStore) GetDefaultRole(_ context.Context, _ repositories.Executor, roleType models.RoleType) (models.WorkspaceRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles["role-"+string(roleType)]
	if !ok {
		return models.WorkspaceRole{}, errors.Wrap(models.NotFoundError, "system role")
	}
	return role, nil
}

func (s *fakeStore) GetRoleById(_ context.Context, _ repositories.Executor, roleId string) (models.WorkspaceRole, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[roleId]
	return role, ok, nil
}

// serialTransactionFactory runs one transaction at a time, like transactions that all lock
// the same workspace row
type serialTransactionFactory struct {
	mu *sync.Mutex
}

func (f serialTransactionFactory) Transaction(ctx context.Context, fn func(tx repositories.Transaction) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(nil)
}
