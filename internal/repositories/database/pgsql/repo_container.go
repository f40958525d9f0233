package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all PostgreSQL repository implementations over
// one shared connection pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool),
		LedgerRepo:      newPgxLedgerRepository(dbPool),
		ChargeRepo:      newPgxChargeRepository(dbPool),
		PaymentRepo:     newPgxPaymentRepository(dbPool),
		BalanceRepo:     newPgxBalanceRepository(dbPool),
		ComplianceRepo:  newPgxComplianceRepository(dbPool),
		ReportingRepo:   newPgxReportingRepository(dbPool),
		PaymentPlanRepo: newPgxPaymentPlanRepository(dbPool),
		SagaRepo:        newPgxSagaRepository(dbPool),
	}
}
