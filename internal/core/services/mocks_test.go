package services_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountBySubtype(ctx context.Context, subtype domain.AccountSubtype) (*domain.Account, error) {
	args := m.Called(ctx, subtype)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsBySubtypes(ctx context.Context, subtypes []domain.AccountSubtype) (map[domain.AccountSubtype]domain.Account, error) {
	args := m.Called(ctx, subtypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.AccountSubtype]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, deltas domain.BalanceDeltas) error {
	args := m.Called(ctx, entry, deltas)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveReversalEntry(ctx context.Context, reversal domain.JournalEntry, deltas domain.BalanceDeltas, originalEntryID string, actor string, at time.Time) error {
	args := m.Called(ctx, reversal, deltas, originalEntryID, actor, at)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindPostingsByEntryID(ctx context.Context, entryID string) ([]domain.JournalPosting, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalPosting), args.Error(1)
}

// --- Mock ChargeRepository ---
type MockChargeRepository struct {
	mock.Mock
}

var _ portsrepo.ChargeRepositoryFacade = (*MockChargeRepository)(nil)

func (m *MockChargeRepository) SaveCharge(ctx context.Context, charge domain.TenantCharge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockChargeRepository) FindChargeByID(ctx context.Context, chargeID string) (*domain.TenantCharge, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantCharge), args.Error(1)
}

func (m *MockChargeRepository) FindOutstandingCharges(ctx context.Context, tenantID, propertyID string) ([]domain.TenantCharge, error) {
	args := m.Called(ctx, tenantID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TenantCharge), args.Error(1)
}

func (m *MockChargeRepository) ApplyPaymentFIFO(ctx context.Context, payment domain.Payment, entryID string, actor string, at time.Time) ([]domain.PaymentAllocation, decimal.Decimal, error) {
	args := m.Called(ctx, payment, entryID, actor, at)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).([]domain.PaymentAllocation), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockChargeRepository) RevertAllocations(ctx context.Context, paymentID string, actor string, at time.Time) error {
	args := m.Called(ctx, paymentID, actor, at)
	return args.Error(0)
}

func (m *MockChargeRepository) FindAllocationsByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentAllocation, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentAllocation), args.Error(1)
}

func (m *MockChargeRepository) DeleteCharge(ctx context.Context, chargeID string) error {
	args := m.Called(ctx, chargeID)
	return args.Error(0)
}

func (m *MockChargeRepository) FindAllOutstandingCharges(ctx context.Context) ([]domain.TenantCharge, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TenantCharge), args.Error(1)
}

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

var _ portsrepo.PaymentRepositoryFacade = (*MockPaymentRepository)(nil)

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SaveCredit(ctx context.Context, credit domain.TenantCredit) error {
	args := m.Called(ctx, credit)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteCreditByPaymentID(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

// --- Mock BalanceRepository ---
type MockBalanceRepository struct {
	mock.Mock
}

var _ portsrepo.BalanceRepositoryFacade = (*MockBalanceRepository)(nil)

func (m *MockBalanceRepository) GetBalance(ctx context.Context, tenantID, propertyID string) (*domain.DimensionalBalance, error) {
	args := m.Called(ctx, tenantID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DimensionalBalance), args.Error(1)
}

func (m *MockBalanceRepository) GetBalancesForTenant(ctx context.Context, tenantID string) ([]domain.DimensionalBalance, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DimensionalBalance), args.Error(1)
}

func (m *MockBalanceRepository) SumPostings(ctx context.Context, tenantID, propertyID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, propertyID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBalanceRepository) SumPostingsAfter(ctx context.Context, tenantID, propertyID string, after time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, propertyID, after)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock ComplianceRepository ---
type MockComplianceRepository struct {
	mock.Mock
}

var _ portsrepo.ComplianceRepositoryFacade = (*MockComplianceRepository)(nil)

func (m *MockComplianceRepository) FindRules(ctx context.Context, stateCodes []string, ruleType, ruleKey string) ([]domain.ComplianceRule, error) {
	args := m.Called(ctx, stateCodes, ruleType, ruleKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ComplianceRule), args.Error(1)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepositoryFacade = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) FindTenantPostings(ctx context.Context, tenantID string, filters portsrepo.LedgerQueryFilters) ([]domain.LedgerLine, *string, error) {
	args := m.Called(ctx, tenantID, filters)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var nextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		nextToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerLine), nextToken, args.Error(2)
}

func (m *MockReportingRepository) FindTenantPostingsInWindow(ctx context.Context, tenantID, propertyID string, start, end time.Time) ([]domain.LedgerLine, error) {
	args := m.Called(ctx, tenantID, propertyID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerLine), args.Error(1)
}

func (m *MockReportingRepository) SumPostingsNewerThan(ctx context.Context, tenantID, propertyID string, entryDate, createdAt time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, propertyID, entryDate, createdAt)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock PaymentPlanRepository ---
type MockPaymentPlanRepository struct {
	mock.Mock
}

var _ portsrepo.PaymentPlanRepositoryFacade = (*MockPaymentPlanRepository)(nil)

func (m *MockPaymentPlanRepository) SavePlan(ctx context.Context, plan domain.PaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPaymentPlanRepository) FindPlanByID(ctx context.Context, planID string) (*domain.PaymentPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentPlan), args.Error(1)
}

// --- Mock SagaRepository ---
type MockSagaRepository struct {
	mock.Mock
}

var _ portsrepo.SagaRepositoryFacade = (*MockSagaRepository)(nil)

func (m *MockSagaRepository) SaveSaga(ctx context.Context, saga domain.SagaInstance) error {
	args := m.Called(ctx, saga)
	return args.Error(0)
}

func (m *MockSagaRepository) FindSagaByID(ctx context.Context, sagaID string) (*domain.SagaInstance, error) {
	args := m.Called(ctx, sagaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SagaInstance), args.Error(1)
}

func (m *MockSagaRepository) UpdateProgress(ctx context.Context, sagaID string, step int, payload json.RawMessage, at time.Time) error {
	args := m.Called(ctx, sagaID, step, payload, at)
	return args.Error(0)
}

func (m *MockSagaRepository) UpdateStatus(ctx context.Context, sagaID string, status domain.SagaStatus, errMsg string, at time.Time) error {
	args := m.Called(ctx, sagaID, status, errMsg, at)
	return args.Error(0)
}

func (m *MockSagaRepository) Heartbeat(ctx context.Context, sagaID string, at time.Time) error {
	args := m.Called(ctx, sagaID, at)
	return args.Error(0)
}

// --- Mock IdempotencyStore ---
type MockIdempotencyStore struct {
	mock.Mock
}

var _ portssvc.IdempotencyStore = (*MockIdempotencyStore)(nil)

func (m *MockIdempotencyStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(json.RawMessage), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Put(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Mock EventBus ---
type MockEventBus struct {
	mock.Mock
}

var _ portssvc.EventBus = (*MockEventBus)(nil)

func (m *MockEventBus) Publish(ctx context.Context, events ...domain.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(handler portssvc.EventHandler, eventTypes ...string) {
	m.Called(handler, eventTypes)
}
