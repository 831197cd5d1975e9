package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"

	"github.com/invoicebox/backend/models"
)

const userPassword = "Sup3r-secret!"

func signupAndLogin(e *httpexpect.Expect, name, email string) *httpexpect.Expect {
	e.POST("/auth/signup").
		WithJSON(map[string]any{"name": name, "email": email, "password": userPassword}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("user").Object().Value("email").String().IsEqual(email)

	accessToken := e.POST("/auth/login").
		WithJSON(map[string]any{"email": email, "password": userPassword}).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("access_token").String().NotEmpty().Raw()

	return e.Builder(func(req *httpexpect.Request) {
		req.WithHeader("Authorization", "Bearer "+accessToken)
	})
}

func TestApiEndToEnd(t *testing.T) {
	e := httpexpect.Default(t, testServer.URL)

	e.GET("/liveness").Expect().Status(http.StatusOK)
	e.GET("/workspaces").Expect().Status(http.StatusUnauthorized)

	ownerEmail := strings.ToLower(faker.Email())
	guestEmail := strings.ToLower(faker.Email())
	owner := signupAndLogin(e, "Owner", ownerEmail)
	guest := signupAndLogin(e, "Guest", guestEmail)

	// the verification link is sent on signup
	verificationToken := mailbox.tokenSentTo(models.NotificationEmailVerification, ownerEmail)
	assert.NotEmpty(t, verificationToken)
	e.POST("/auth/verify-email").WithJSON(map[string]any{"token": verificationToken}).
		Expect().Status(http.StatusNoContent)
	e.POST("/auth/verify-email").WithJSON(map[string]any{"token": verificationToken}).
		Expect().Status(http.StatusConflict).
		JSON().Object().Value("error_code").String().IsEqual("token_already_used")
	owner.GET("/users/me").Expect().Status(http.StatusOK).
		JSON().Object().Value("user").Object().Value("email_verified").Boolean().IsTrue()

	workspaceId := owner.POST("/workspaces").
		WithJSON(map[string]any{"name": "Acme"}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("workspace").Object().Value("id").String().NotEmpty().Raw()

	roles := owner.GET("/workspaces/" + workspaceId + "/roles").
		Expect().Status(http.StatusOK).
		JSON().Object().Value("roles").Array()
	roles.Length().Ge(3)

	// a stranger sees nothing of the workspace
	guest.GET("/workspaces/" + workspaceId).Expect().Status(http.StatusForbidden)

	owner.POST("/workspaces/" + workspaceId + "/add-employee").
		WithJSON(map[string]any{"email": guestEmail}).
		Expect().Status(http.StatusAccepted)
	inviteToken := mailbox.tokenSentTo(models.NotificationInvite, guestEmail)
	assert.NotEmpty(t, inviteToken)

	// the invite is addressed to the guest, the owner cannot redeem it
	owner.POST("/workspaces/verify-add-employee").WithJSON(map[string]any{"token": inviteToken}).
		Expect().Status(http.StatusForbidden)

	guest.POST("/workspaces/verify-add-employee").WithJSON(map[string]any{"token": inviteToken}).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("member").Object().Value("role").Object().
		Value("role_type").String().IsEqual("guest")
	guest.POST("/workspaces/verify-add-employee").WithJSON(map[string]any{"token": inviteToken}).
		Expect().Status(http.StatusConflict)

	owner.GET("/workspaces/" + workspaceId + "/members").
		Expect().Status(http.StatusOK).
		JSON().Object().Value("members").Array().Length().IsEqual(2)

	// guests cannot invite
	guest.POST("/workspaces/" + workspaceId + "/add-employee").
		WithJSON(map[string]any{"email": strings.ToLower(faker.Email())}).
		Expect().Status(http.StatusForbidden)

	owner.DELETE("/workspaces/" + workspaceId + "/members/me").
		Expect().Status(http.StatusMethodNotAllowed).
		JSON().Object().Value("error_code").String().IsEqual("last_owner")

	owner.GET("/workspaces/" + workspaceId + "/stat").
		Expect().Status(http.StatusOK).
		JSON().Object().Value("workspace_members").Number().IsEqual(2)

	guest.DELETE("/workspaces/" + workspaceId + "/members/me").Expect().Status(http.StatusNoContent)
	guest.GET("/workspaces/" + workspaceId).Expect().Status(http.StatusForbidden)
	owner.GET("/workspaces/" + workspaceId + "/members").
		Expect().Status(http.StatusOK).
		JSON().Object().Value("members").Array().Length().IsEqual(1)
}
