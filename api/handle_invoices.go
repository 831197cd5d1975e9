package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoicebox/backend/dto"
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

type InvoiceUriInput struct {
	WorkspaceId string `uri:"workspace_id" binding:"required,uuid"`
	EmailId     string `uri:"email_id" binding:"required,uuid"`
}

func handleListInvoices(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}
		var filters dto.InvoiceFilters
		if err := c.ShouldBindQuery(&filters); presentError(ctx, c, err) {
			return
		}
		var pagination dto.PaginationAndSorting
		if err := c.ShouldBindQuery(&pagination); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewInvoiceUsecase()
		invoices, err := usecase.ListInvoices(ctx, uri.WorkspaceId,
			dto.AdaptInvoiceFilters(filters),
			dto.AdaptPaginationAndSorting(pagination, models.EmailSortFieldFromString))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, dto.AdaptPaginated(invoices, dto.AdaptInvoiceDto))
	}
}

func handleGetAttachmentUrl(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri InvoiceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}
		var query dto.AttachmentQuery
		if err := c.ShouldBindQuery(&query); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewInvoiceUsecase()
		url, err := usecase.AttachmentUrl(ctx, uri.WorkspaceId, uri.EmailId, query.Key)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, dto.AttachmentUrl{Url: url})
	}
}

// handleInboundMail is called by the mail relay, with an inbound mail token instead of a user
// access token
func handleInboundMail(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token, err := utils.ParseAuthorizationBearerHeader(c.Request.Header)
		if presentError(ctx, c, err) {
			return
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		var body dto.InboundMailBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewInboundMailUsecase()
		if presentError(ctx, c, usecase.IngestInboundMail(ctx, token, body.ObjectKey)) {
			return
		}
		c.Status(http.StatusAccepted)
	}
}
