package services

import (
	"time"

	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
)

// NewServiceContainer wires the repository layer, event bus and idempotency
// store into the full service graph.
func NewServiceContainer(
	repos *portsrepo.RepositoryProvider,
	bus portssvc.EventBus,
	idempotency portssvc.IdempotencyStore,
	idempotencyTTL time.Duration,
) *portssvc.ServiceContainer {
	ledgerSvc := NewLedgerService(repos.LedgerRepo, repos.AccountRepo)
	complianceSvc := NewComplianceService(repos.ComplianceRepo)
	orchestrator := NewSagaOrchestrator(repos.SagaRepo)

	obligationSvc := NewObligationService(ledgerSvc, repos.BalanceRepo, repos.ChargeRepo, repos.ReportingRepo, repos.PaymentPlanRepo, bus)
	paymentSagaSvc := NewPaymentSagaService(ledgerSvc, complianceSvc, orchestrator, repos.ChargeRepo, repos.PaymentRepo, repos.BalanceRepo, idempotency, bus, idempotencyTTL)

	return &portssvc.ServiceContainer{
		Ledger:      ledgerSvc,
		Compliance:  complianceSvc,
		Obligation:  obligationSvc,
		PaymentSaga: paymentSagaSvc,
		Events:      bus,
	}
}
