package services

import (
	"context"

	"github.com/propfolio/property_mgmt_app/internal/dto"
)

// PaymentSagaSvcFacade runs the payment workflow: post, allocate, assess
// fees, update balances and notify, with compensation on failure.
type PaymentSagaSvcFacade interface {
	// StartPaymentSaga deduplicates on payment:<externalReference> and runs
	// the five-step workflow. Saga failures surface as a result with
	// Success=false, not as an error; errors are reserved for precondition
	// and infrastructure problems.
	StartPaymentSaga(ctx context.Context, req dto.StartPaymentRequest) (*dto.PaymentSagaResult, error)
}
