package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
	"github.com/propfolio/property_mgmt_app/internal/dto"
	"github.com/propfolio/property_mgmt_app/internal/middleware"
)

// tenantHandler handles HTTP requests for tenant obligation views.
type tenantHandler struct {
	obligationService portssvc.TenantObligationSvcFacade
}

// newTenantHandler creates a new tenantHandler.
func newTenantHandler(obligationService portssvc.TenantObligationSvcFacade) *tenantHandler {
	return &tenantHandler{obligationService: obligationService}
}

// parseTimeParam parses an optional RFC3339 query parameter.
func parseTimeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// getBalance godoc
// @Summary Get a tenant's current balance
// @Description Reads the materialized balance in O(1); omitting propertyID sums across properties
// @Tags tenants
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   propertyID query string false "Property ID"
// @Success 200 {object} dto.TenantBalanceResponse "The balance"
// @Failure 500 {object} map[string]string "Failed to read balance"
// @Router /tenants/{tenantID}/balance [get]
func (h *tenantHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	balance, err := h.obligationService.GetTenantBalance(c.Request.Context(), tenantID, c.Query("propertyID"))
	if err != nil {
		logger.Error("Failed to read tenant balance", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read balance"})
		return
	}
	c.JSON(http.StatusOK, balance)
}

// getLedger godoc
// @Summary Get a tenant's ledger with running balances
// @Description Returns postings newest-first; running balances are folded backward from the current balance
// @Tags tenants
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   propertyID query string false "Property ID"
// @Param   from query string false "Window start (RFC3339, inclusive)"
// @Param   to query string false "Window end (RFC3339, inclusive)"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Keyset pagination token"
// @Success 200 {object} dto.TenantLedgerResponse "The ledger page"
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to read ledger"
// @Router /tenants/{tenantID}/ledger [get]
func (h *tenantHandler) getLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	filters := portsrepo.LedgerQueryFilters{PropertyID: c.Query("propertyID")}

	from, err := parseTimeParam(c, "from")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp"})
		return
	}
	filters.From = from

	to, err := parseTimeParam(c, "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp"})
		return
	}
	filters.To = to

	if rawLimit := c.Query("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter"})
			return
		}
		filters.Limit = limit
	}
	if token := c.Query("nextToken"); token != "" {
		filters.NextToken = &token
	}

	ledger, err := h.obligationService.GetTenantLedger(c.Request.Context(), tenantID, filters)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Rejected ledger query", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to read tenant ledger", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read ledger"})
		return
	}
	c.JSON(http.StatusOK, ledger)
}

// getOutstandingCharges godoc
// @Summary Get a tenant's outstanding charges
// @Description Returns unpaid charges oldest-first
// @Tags tenants
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   propertyID query string false "Property ID"
// @Success 200 {array} dto.ChargeResponse "Outstanding charges"
// @Failure 500 {object} map[string]string "Failed to read charges"
// @Router /tenants/{tenantID}/charges/outstanding [get]
func (h *tenantHandler) getOutstandingCharges(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	charges, err := h.obligationService.GetOutstandingCharges(c.Request.Context(), tenantID, c.Query("propertyID"))
	if err != nil {
		logger.Error("Failed to read outstanding charges", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read charges"})
		return
	}
	c.JSON(http.StatusOK, charges)
}

// getAgingReport godoc
// @Summary Get a tenant's aging report
// @Description Buckets outstanding charges by days overdue (current/30/60/90/over90)
// @Tags tenants
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   asOf query string false "Report date (RFC3339), defaults to now"
// @Success 200 {object} dto.AgingReportResponse "The aging report"
// @Failure 400 {object} map[string]string "Invalid asOf timestamp"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Router /tenants/{tenantID}/aging [get]
func (h *tenantHandler) getAgingReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	asOf, err := parseTimeParam(c, "asOf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'asOf' timestamp"})
		return
	}
	var asOfVal time.Time
	if asOf != nil {
		asOfVal = *asOf
	}

	report, err := h.obligationService.GetAgingReport(c.Request.Context(), tenantID, asOfVal)
	if err != nil {
		logger.Error("Failed to build aging report", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// getStatement godoc
// @Summary Generate a tenant statement for a period
// @Description Closing balance always equals opening + charges - payments exactly
// @Tags tenants
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   propertyID query string true "Property ID"
// @Param   start query string true "Period start (RFC3339, exclusive)"
// @Param   end query string true "Period end (RFC3339, inclusive)"
// @Success 200 {object} dto.StatementResponse "The statement"
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 500 {object} map[string]string "Failed to generate statement"
// @Router /tenants/{tenantID}/statement [get]
func (h *tenantHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' timestamp"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' timestamp"})
		return
	}

	statement, err := h.obligationService.GenerateStatement(c.Request.Context(), tenantID, c.Query("propertyID"), start, end)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Rejected statement request", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to generate statement", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate statement"})
		return
	}
	c.JSON(http.StatusOK, statement)
}

// createPaymentPlan godoc
// @Summary Create a payment plan for a tenant's outstanding balance
// @Description Installments sum exactly to the plan total; the last absorbs rounding
// @Tags tenants
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   plan body dto.CreatePaymentPlanRequest true "Plan details"
// @Success 201 {object} dto.PaymentPlanResponse "The created plan with its schedule"
// @Failure 400 {object} map[string]string "Invalid request or amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "No outstanding balance or amount exceeds it"
// @Failure 500 {object} map[string]string "Failed to create plan"
// @Router /tenants/{tenantID}/payment-plans [post]
func (h *tenantHandler) createPaymentPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	req := dto.CreatePaymentPlanRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createPaymentPlan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor, ok := middleware.GetCallerIDFromContext(c)
	if !ok {
		logger.Error("Caller ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	plan, err := h.obligationService.CreatePaymentPlan(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidAmount):
			logger.Warn("Rejected payment plan", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNoBalance), errors.Is(err, apperrors.ErrExceedsBalance):
			logger.Warn("Payment plan not applicable", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create payment plan", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan"})
		}
		return
	}

	logger.Info("Payment plan created", slog.String("plan_id", plan.PlanID), slog.String("tenant_id", tenantID))
	c.JSON(http.StatusCreated, plan)
}

// registerTenantRoutes registers tenant specific routes
func registerTenantRoutes(group *gin.RouterGroup, obligationService portssvc.TenantObligationSvcFacade) {
	handler := newTenantHandler(obligationService)

	tenants := group.Group("/tenants/:tenantID")
	{
		tenants.GET("/balance", handler.getBalance)
		tenants.GET("/ledger", handler.getLedger)
		tenants.GET("/charges/outstanding", handler.getOutstandingCharges)
		tenants.GET("/aging", handler.getAgingReport)
		tenants.GET("/statement", handler.getStatement)
		tenants.POST("/payment-plans", handler.createPaymentPlan)
	}
}
