package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
	"github.com/propfolio/property_mgmt_app/internal/dto"
	"github.com/propfolio/property_mgmt_app/internal/middleware"
)

// paymentHandler handles the payment confirmation endpoint.
type paymentHandler struct {
	paymentSagaService portssvc.PaymentSagaSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(paymentSagaService portssvc.PaymentSagaSvcFacade) *paymentHandler {
	return &paymentHandler{paymentSagaService: paymentSagaService}
}

// processPayment godoc
// @Summary Process a confirmed payment
// @Description Runs the payment workflow: record, allocate FIFO, assess late fees, update balances, notify.
// @Description Retrying with the same externalReference returns the stored result without re-running the workflow.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.StartPaymentRequest true "Confirmed payment"
// @Success 200 {object} dto.PaymentSagaResult "The saga outcome; Success=false means the workflow was rolled back"
// @Failure 400 {object} map[string]string "Invalid request or non-positive amount"
// @Failure 500 {object} map[string]string "Failed to run payment workflow"
// @Router /payments [post]
func (h *paymentHandler) processPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.StartPaymentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for processPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.paymentSagaService.StartPaymentSaga(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrInvalidAmount) {
			logger.Warn("Rejected payment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to run payment saga", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment"})
		return
	}

	if result.Success {
		logger.Info("Payment processed", slog.String("saga_id", result.SagaID), slog.String("payment_id", result.PaymentID))
	} else {
		logger.Warn("Payment saga compensated", slog.String("saga_id", result.SagaID), slog.String("error", result.Error))
	}
	c.JSON(http.StatusOK, result)
}

// registerPaymentRoutes registers payment specific routes
func registerPaymentRoutes(group *gin.RouterGroup, paymentSagaService portssvc.PaymentSagaSvcFacade) {
	handler := newPaymentHandler(paymentSagaService)
	group.POST("/payments", handler.processPayment)
}
