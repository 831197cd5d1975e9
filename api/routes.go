package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

func addRoutes(r *gin.Engine, conf Configuration, uc usecases.Usecases, auth utils.Authentication) {
	tom := timeoutMiddleware(conf.DefaultTimeout)
	loginLimiter := NewClientRateLimiter(conf.LoginRateLimit, conf.LoginBurst)

	r.GET("/liveness", tom, handleLivenessProbe(uc))
	r.GET("/health", tom, handleHealth(uc))
	if conf.EnablePrometheus {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.POST("/auth/signup", tom, handleSignup(uc))
	r.POST("/auth/login", tom, loginLimiter.Middleware, handleLogin(uc))
	r.POST("/auth/refresh", tom, handleRefreshToken(uc))
	r.POST("/auth/logout", tom, handleLogout(uc))
	r.POST("/auth/verify-email", tom, handleVerifyEmail(uc))
	r.POST("/auth/forgot-password", tom, loginLimiter.Middleware, handleForgotPassword(uc))
	r.POST("/auth/reset-password", tom, handleResetPassword(uc))

	// authenticated with the inbound mail token of the relay, not a user access token
	r.POST("/emails/inbound", tom, handleInboundMail(uc))

	router := r.Use(auth.Middleware)

	router.GET("/users/me", tom, handleGetMe(uc))
	router.PATCH("/users/me", tom, handlePatchMe(uc))
	router.DELETE("/users/me", tom, handleDeleteMe(uc))

	router.GET("/workspaces", tom, handleListMyWorkspaces(uc))
	router.POST("/workspaces", tom, handleCreateWorkspace(uc))
	router.GET("/workspaces/assignable-permissions", tom, handleAssignablePermissions(uc))
	router.POST("/workspaces/verify-add-employee", tom, handleAcceptInvite(uc))
	router.GET("/workspaces/:workspace_id", tom, handleGetWorkspace(uc))
	router.PATCH("/workspaces/:workspace_id", tom, handlePatchWorkspace(uc))
	router.DELETE("/workspaces/:workspace_id", tom, handleDeleteWorkspace(uc))

	router.GET("/workspaces/:workspace_id/members", tom, handleListMembers(uc))
	router.POST("/workspaces/:workspace_id/add-employee", tom, handleInviteMember(uc))
	router.POST("/workspaces/:workspace_id/assign-member-role", tom, handleAssignMemberRole(uc))
	router.DELETE("/workspaces/:workspace_id/members/me", tom, handleLeaveWorkspace(uc))
	router.DELETE("/workspaces/:workspace_id/members/:member_id", tom, handleRemoveMember(uc))

	router.GET("/workspaces/:workspace_id/roles", tom, handleListWorkspaceRoles(uc))
	router.POST("/workspaces/:workspace_id/roles", tom, handleCreateWorkspaceRole(uc))
	router.GET("/workspaces/:workspace_id/roles/me", tom, handleGetMyMembership(uc))
	router.PATCH("/workspaces/:workspace_id/roles/:role_id", tom, handlePatchWorkspaceRole(uc))
	router.DELETE("/workspaces/:workspace_id/roles/:role_id", tom, handleDeleteWorkspaceRole(uc))

	router.GET("/workspaces/:workspace_id/invoices", tom, handleListInvoices(uc))
	router.GET("/workspaces/:workspace_id/invoices/:email_id/attachments", tom, handleGetAttachmentUrl(uc))
	router.GET("/workspaces/:workspace_id/stat", tom, handleWorkspaceStatistics(uc))
}
