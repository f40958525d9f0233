package services

// ServiceContainer bundles all service facades for injection into handlers.
type ServiceContainer struct {
	Ledger      LedgerSvcFacade
	Compliance  ComplianceResolverSvcFacade
	Obligation  TenantObligationSvcFacade
	PaymentSaga PaymentSagaSvcFacade
	Events      EventBus
}
