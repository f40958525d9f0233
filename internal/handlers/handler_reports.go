package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
	"github.com/propfolio/property_mgmt_app/internal/middleware"
)

// reportHandler handles portfolio-wide reporting endpoints.
type reportHandler struct {
	obligationService portssvc.TenantObligationSvcFacade
}

// newReportHandler creates a new reportHandler.
func newReportHandler(obligationService portssvc.TenantObligationSvcFacade) *reportHandler {
	return &reportHandler{obligationService: obligationService}
}

// getPortfolioAging godoc
// @Summary Get the portfolio aging summary
// @Description Aggregates outstanding charge aging per property across the whole portfolio
// @Tags reports
// @Produce  json
// @Param   asOf query string false "Report date (RFC3339), defaults to now"
// @Success 200 {object} dto.PortfolioAgingResponse "The summary"
// @Failure 400 {object} map[string]string "Invalid asOf timestamp"
// @Failure 500 {object} map[string]string "Failed to build summary"
// @Router /reports/aging [get]
func (h *reportHandler) getPortfolioAging(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var asOf time.Time
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'asOf' timestamp"})
			return
		}
		asOf = parsed
	}

	summary, err := h.obligationService.GetPortfolioAgingSummary(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Failed to build portfolio aging summary", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// registerReportRoutes registers reporting specific routes
func registerReportRoutes(group *gin.RouterGroup, obligationService portssvc.TenantObligationSvcFacade) {
	handler := newReportHandler(obligationService)

	reports := group.Group("/reports")
	{
		reports.GET("/aging", handler.getPortfolioAging)
	}
}
