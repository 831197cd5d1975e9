package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoicebox/backend/dto"
	"github.com/invoicebox/backend/usecases"
)

func handleLivenessProbe(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if presentError(ctx, c, uc.NewProbeUsecase().Liveness(ctx)) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"mood": "ok"})
	}
}

// handleHealth answers 503 as soon as one dependency is down, the body says which
func handleHealth(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		report := uc.NewProbeUsecase().Health(c.Request.Context())

		status := http.StatusOK
		if !report.Healthy() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, dto.AdaptHealthReport(report))
	}
}
