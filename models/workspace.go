package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v5"
)

type Workspace struct {
	Id        string
	Name      string
	Email     string
	About     string
	Picture   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt null.Time
}

type CreateWorkspaceInput struct {
	Name  string
	Email string // optional, derived from the workspace id when empty
	About string
}

type UpdateWorkspaceInput struct {
	Name  string
	Email string
	About string
}

// DefaultWorkspaceEmail is the inbound address given to a workspace created without an explicit one
func DefaultWorkspaceEmail(workspaceId, domain string) string {
	return fmt.Sprintf("%s@%s", workspaceId, domain)
}

// IsWorkspaceDomainEmail is true if the address belongs to the inbound mail domain
func IsWorkspaceDomainEmail(email, domain string) bool {
	local, host, found := strings.Cut(email, "@")
	return found && local != "" && strings.EqualFold(host, domain)
}

// WorkspaceEmailLocalPart is used to namespace attachment keys in the storage bucket
func WorkspaceEmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
