package repositories

// RepositoryProvider bundles all repository implementations for injection
// into the service layer.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	LedgerRepo      LedgerRepositoryFacade
	ChargeRepo      ChargeRepositoryFacade
	PaymentRepo     PaymentRepositoryFacade
	BalanceRepo     BalanceRepositoryFacade
	ComplianceRepo  ComplianceRepositoryFacade
	ReportingRepo   ReportingRepositoryFacade
	PaymentPlanRepo PaymentPlanRepositoryFacade
	SagaRepo        SagaRepositoryFacade
}
