package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
	"github.com/propfolio/property_mgmt_app/internal/core/services"
	"github.com/propfolio/property_mgmt_app/internal/dto"
	"github.com/propfolio/property_mgmt_app/internal/utils/pagination"
)

type ObligationServiceTestSuite struct {
	suite.Suite
	mockLedgerSvc     *MockLedgerSvc
	mockBalanceRepo   *MockBalanceRepository
	mockChargeRepo    *MockChargeRepository
	mockReportingRepo *MockReportingRepository
	mockPlanRepo      *MockPaymentPlanRepository
	mockBus           *MockEventBus
	service           portssvc.TenantObligationSvcFacade
	ctx               context.Context
}

func (s *ObligationServiceTestSuite) SetupTest() {
	s.mockLedgerSvc = new(MockLedgerSvc)
	s.mockBalanceRepo = new(MockBalanceRepository)
	s.mockChargeRepo = new(MockChargeRepository)
	s.mockReportingRepo = new(MockReportingRepository)
	s.mockPlanRepo = new(MockPaymentPlanRepository)
	s.mockBus = new(MockEventBus)
	s.mockBus.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	s.service = services.NewObligationService(
		s.mockLedgerSvc, s.mockBalanceRepo, s.mockChargeRepo,
		s.mockReportingRepo, s.mockPlanRepo, s.mockBus,
	)
	s.ctx = context.Background()
}

func (s *ObligationServiceTestSuite) TestGetTenantBalance_SingleDimension() {
	s.mockBalanceRepo.On("GetBalance", s.ctx, "tenant-1", "prop-1").
		Return(&domain.DimensionalBalance{TenantID: "tenant-1", PropertyID: "prop-1", Balance: dec("350.00")}, nil).Once()

	resp, err := s.service.GetTenantBalance(s.ctx, "tenant-1", "prop-1")

	s.Require().NoError(err)
	s.True(resp.Balance.Equal(dec("350.00")))
	s.mockBalanceRepo.AssertExpectations(s.T())
}

func (s *ObligationServiceTestSuite) TestGetTenantBalance_SummedAcrossProperties() {
	s.mockBalanceRepo.On("GetBalancesForTenant", s.ctx, "tenant-1").
		Return([]domain.DimensionalBalance{
			{PropertyID: "prop-1", Balance: dec("100.00")},
			{PropertyID: "prop-2", Balance: dec("-25.50")},
		}, nil).Once()

	resp, err := s.service.GetTenantBalance(s.ctx, "tenant-1", "")

	s.Require().NoError(err)
	s.True(resp.Balance.Equal(dec("74.50")), "got %s", resp.Balance)
}

func (s *ObligationServiceTestSuite) TestGetTenantLedger_RunningBalancesFoldBackward() {
	lines := []domain.LedgerLine{
		{Posting: domain.JournalPosting{Amount: dec("50.00")}, EntryType: domain.EntryCharge},
		{Posting: domain.JournalPosting{Amount: dec("-25.00")}, EntryType: domain.EntryPayment},
		{Posting: domain.JournalPosting{Amount: dec("75.00")}, EntryType: domain.EntryCharge},
	}
	s.mockReportingRepo.On("FindTenantPostings", s.ctx, "tenant-1", mock.Anything).Return(lines, nil, nil).Once()
	s.mockBalanceRepo.On("GetBalance", s.ctx, "tenant-1", "prop-1").
		Return(&domain.DimensionalBalance{Balance: dec("100.00")}, nil).Once()

	resp, err := s.service.GetTenantLedger(s.ctx, "tenant-1", portsrepo.LedgerQueryFilters{PropertyID: "prop-1", Limit: 10})

	s.Require().NoError(err)
	s.Require().Len(resp.Lines, 3)
	// Newest line carries the current balance; each older line peels its
	// successor's amount off.
	s.True(resp.Lines[0].RunningBalance.Equal(dec("100.00")), "got %s", resp.Lines[0].RunningBalance)
	s.True(resp.Lines[1].RunningBalance.Equal(dec("50.00")), "got %s", resp.Lines[1].RunningBalance)
	s.True(resp.Lines[2].RunningBalance.Equal(dec("75.00")), "got %s", resp.Lines[2].RunningBalance)
}

func (s *ObligationServiceTestSuite) TestGetAgingReport_Buckets() {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	charges := []domain.TenantCharge{
		{ChargeID: "c1", PropertyID: "prop-1", BalanceDue: dec("100.00"), DueDate: asOf.AddDate(0, 0, 10)},
		{ChargeID: "c2", PropertyID: "prop-1", BalanceDue: dec("200.00"), DueDate: asOf.AddDate(0, 0, -15)},
		{ChargeID: "c3", PropertyID: "prop-1", BalanceDue: dec("300.00"), DueDate: asOf.AddDate(0, 0, -45)},
		{ChargeID: "c4", PropertyID: "prop-1", BalanceDue: dec("400.00"), DueDate: asOf.AddDate(0, 0, -100)},
	}
	s.mockChargeRepo.On("FindOutstandingCharges", s.ctx, "tenant-1", "").Return(charges, nil).Once()

	report, err := s.service.GetAgingReport(s.ctx, "tenant-1", asOf)

	s.Require().NoError(err)
	s.Require().Len(report.Rows, 4)
	s.Equal(string(domain.BucketCurrent), report.Rows[0].Bucket)
	s.Equal(string(domain.BucketDays30), report.Rows[1].Bucket)
	s.Equal(string(domain.BucketDays60), report.Rows[2].Bucket)
	s.Equal(string(domain.BucketOver90), report.Rows[3].Bucket)
	s.True(report.Totals[string(domain.BucketDays30)].Equal(dec("200.00")))
	s.True(report.Total.Equal(dec("1000.00")))
}

func (s *ObligationServiceTestSuite) TestGetPortfolioAgingSummary_GroupsByProperty() {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	charges := []domain.TenantCharge{
		{ChargeID: "c1", PropertyID: "prop-b", BalanceDue: dec("50.00"), DueDate: asOf.AddDate(0, 0, -5)},
		{ChargeID: "c2", PropertyID: "prop-a", BalanceDue: dec("75.00"), DueDate: asOf.AddDate(0, 0, -70)},
		{ChargeID: "c3", PropertyID: "prop-b", BalanceDue: dec("25.00"), DueDate: asOf.AddDate(0, 0, -40)},
	}
	s.mockChargeRepo.On("FindAllOutstandingCharges", s.ctx).Return(charges, nil).Once()

	summary, err := s.service.GetPortfolioAgingSummary(s.ctx, asOf)

	s.Require().NoError(err)
	s.Require().Len(summary.Rows, 2)
	s.Equal("prop-a", summary.Rows[0].PropertyID)
	s.True(summary.Rows[0].Total.Equal(dec("75.00")))
	s.Equal("prop-b", summary.Rows[1].PropertyID)
	s.True(summary.Rows[1].Total.Equal(dec("75.00")))
	s.True(summary.Rows[1].Totals[string(domain.BucketDays30)].Equal(dec("50.00")))
	s.True(summary.Rows[1].Totals[string(domain.BucketDays60)].Equal(dec("25.00")))
}

func (s *ObligationServiceTestSuite) TestGenerateStatement_IdentityHolds() {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	s.mockBalanceRepo.On("GetBalance", s.ctx, "tenant-1", "prop-1").
		Return(&domain.DimensionalBalance{Balance: dec("100.00")}, nil).Once()
	s.mockBalanceRepo.On("SumPostingsAfter", s.ctx, "tenant-1", "prop-1", start).Return(dec("60.00"), nil).Once()
	s.mockBalanceRepo.On("SumPostingsAfter", s.ctx, "tenant-1", "prop-1", end).Return(dec("0"), nil).Once()

	lines := []domain.LedgerLine{
		{Posting: domain.JournalPosting{Amount: dec("80.00")}, EntryType: domain.EntryCharge},
		{Posting: domain.JournalPosting{Amount: dec("-20.00")}, EntryType: domain.EntryPayment},
	}
	s.mockReportingRepo.On("FindTenantPostingsInWindow", s.ctx, "tenant-1", "prop-1", start, end).Return(lines, nil).Once()

	statement, err := s.service.GenerateStatement(s.ctx, "tenant-1", "prop-1", start, end)

	s.Require().NoError(err)
	s.True(statement.OpeningBalance.Equal(dec("40.00")), "opening: %s", statement.OpeningBalance)
	s.True(statement.TotalCharges.Equal(dec("80.00")))
	s.True(statement.TotalPayments.Equal(dec("20.00")))
	expected := statement.OpeningBalance.Add(statement.TotalCharges).Sub(statement.TotalPayments)
	s.True(statement.ClosingBalance.Equal(expected), "closing %s != opening+charges-payments %s", statement.ClosingBalance, expected)
	s.True(statement.ClosingBalance.Equal(dec("100.00")))
}

func (s *ObligationServiceTestSuite) TestGenerateStatement_BadPeriod() {
	start := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	_, err := s.service.GenerateStatement(s.ctx, "tenant-1", "prop-1", start, start)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func planRequest(n int, total *decimal.Decimal) dto.CreatePaymentPlanRequest {
	return dto.CreatePaymentPlanRequest{
		PropertyID:       "prop-1",
		TotalAmount:      total,
		NumberOfPayments: n,
		Frequency:        "monthly",
		StartDate:        time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *ObligationServiceTestSuite) TestCreatePaymentPlan_InstallmentsSumExactly() {
	s.mockChargeRepo.On("FindOutstandingCharges", s.ctx, "tenant-1", "prop-1").
		Return([]domain.TenantCharge{{ChargeID: "c1", BalanceDue: dec("1000.00")}}, nil).Once()

	var savedPlan domain.PaymentPlan
	s.mockPlanRepo.On("SavePlan", s.ctx, mock.AnythingOfType("domain.PaymentPlan")).
		Run(func(args mock.Arguments) { savedPlan = args.Get(1).(domain.PaymentPlan) }).
		Return(nil).Once()

	plan, err := s.service.CreatePaymentPlan(s.ctx, "tenant-1", planRequest(3, nil), "admin")

	s.Require().NoError(err)
	s.Require().Len(plan.Installments, 3)

	sum := decimal.Zero
	for _, inst := range plan.Installments {
		sum = sum.Add(inst.Amount)
	}
	s.True(sum.Equal(dec("1000.00")), "installments sum to %s", sum)
	s.True(plan.Installments[0].Amount.Equal(dec("333.33")))
	s.True(plan.Installments[2].Amount.Equal(dec("333.34")), "final installment absorbs the remainder")

	// Monthly cadence from the start date.
	s.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), plan.Installments[0].DueDate)
	s.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), plan.Installments[1].DueDate)
	s.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), plan.Installments[2].DueDate)

	s.Len(savedPlan.Installments, 3)
	s.mockPlanRepo.AssertExpectations(s.T())
}

func (s *ObligationServiceTestSuite) TestCreatePaymentPlan_NoOutstandingBalance() {
	s.mockChargeRepo.On("FindOutstandingCharges", s.ctx, "tenant-1", "prop-1").
		Return([]domain.TenantCharge{}, nil).Once()

	_, err := s.service.CreatePaymentPlan(s.ctx, "tenant-1", planRequest(3, nil), "admin")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNoBalance)
}

func (s *ObligationServiceTestSuite) TestCreatePaymentPlan_ExceedsOutstanding() {
	s.mockChargeRepo.On("FindOutstandingCharges", s.ctx, "tenant-1", "prop-1").
		Return([]domain.TenantCharge{{ChargeID: "c1", BalanceDue: dec("500.00")}}, nil).Once()

	total := dec("600.00")
	_, err := s.service.CreatePaymentPlan(s.ctx, "tenant-1", planRequest(3, &total), "admin")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrExceedsBalance)
}

func (s *ObligationServiceTestSuite) TestPostCharge_PostsBalancedEntryAndSavesCharge() {
	accounts := map[domain.AccountSubtype]domain.Account{
		domain.AccountAccountsReceivable: {AccountID: "acct-ar", Subtype: domain.AccountAccountsReceivable, IsActive: true},
		domain.AccountRentalIncome:       {AccountID: "acct-income", Subtype: domain.AccountRentalIncome, IsActive: true},
	}
	s.mockLedgerSvc.On("AccountsBySubtype", s.ctx, mock.Anything).Return(accounts, nil).Once()

	var entryInput dto.CreateEntryInput
	s.mockLedgerSvc.On("CreateJournalEntry", s.ctx, mock.AnythingOfType("dto.CreateEntryInput")).
		Run(func(args mock.Arguments) { entryInput = args.Get(1).(dto.CreateEntryInput) }).
		Return(&domain.JournalEntry{EntryID: "entry-1", EntryType: domain.EntryCharge}, nil).Once()

	var savedCharge domain.TenantCharge
	s.mockChargeRepo.On("SaveCharge", s.ctx, mock.AnythingOfType("domain.TenantCharge")).
		Run(func(args mock.Arguments) { savedCharge = args.Get(1).(domain.TenantCharge) }).
		Return(nil).Once()

	req := dto.PostChargeRequest{
		TenantID:   "tenant-1",
		PropertyID: "prop-1",
		ChargeType: "rent",
		Amount:     dec("1200.00"),
		ChargeDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
	charge, err := s.service.PostCharge(s.ctx, req, "admin")

	s.Require().NoError(err)
	s.Equal("entry-1", charge.JournalEntryID)
	s.True(charge.BalanceDue.Equal(dec("1200.00")))

	s.Require().Len(entryInput.Postings, 2)
	s.Equal("acct-ar", entryInput.Postings[0].AccountID)
	s.True(entryInput.Postings[0].Amount.Equal(dec("1200.00")))
	s.Require().NotNil(entryInput.Postings[0].TenantID)
	s.Equal("tenant-1", *entryInput.Postings[0].TenantID)
	s.Equal("acct-income", entryInput.Postings[1].AccountID)
	s.True(entryInput.Postings[1].Amount.Equal(dec("-1200.00")))
	s.Nil(entryInput.Postings[1].TenantID, "income posting carries no tenant dimension")

	s.Equal(domain.ChargeRent, savedCharge.ChargeType)
}

func (s *ObligationServiceTestSuite) TestPostCharge_RejectsNonPositiveAmount() {
	req := dto.PostChargeRequest{TenantID: "tenant-1", PropertyID: "prop-1", ChargeType: "rent", Amount: dec("-5")}

	_, err := s.service.PostCharge(s.ctx, req, "admin")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (s *ObligationServiceTestSuite) TestPostCharge_RejectsUnknownChargeType() {
	req := dto.PostChargeRequest{TenantID: "tenant-1", PropertyID: "prop-1", ChargeType: "parking-fine", Amount: dec("5")}

	_, err := s.service.PostCharge(s.ctx, req, "admin")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func TestObligationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ObligationServiceTestSuite))
}

func paginationToken(t *testing.T) string {
	t.Helper()
	return pagination.EncodeToken(
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	)
}

func TestGetTenantLedger_PaginationBaselineUsesCursor(t *testing.T) {
	mockLedgerSvc := new(MockLedgerSvc)
	mockBalanceRepo := new(MockBalanceRepository)
	mockChargeRepo := new(MockChargeRepository)
	mockReportingRepo := new(MockReportingRepository)
	mockPlanRepo := new(MockPaymentPlanRepository)
	service := services.NewObligationService(mockLedgerSvc, mockBalanceRepo, mockChargeRepo, mockReportingRepo, mockPlanRepo, nil)
	ctx := context.Background()

	token := paginationToken(t)
	filters := portsrepo.LedgerQueryFilters{PropertyID: "prop-1", Limit: 2, NextToken: &token}

	lines := []domain.LedgerLine{
		{Posting: domain.JournalPosting{Amount: dec("30.00")}, EntryType: domain.EntryCharge},
	}
	mockReportingRepo.On("FindTenantPostings", ctx, "tenant-1", filters).Return(lines, nil, nil).Once()
	mockBalanceRepo.On("GetBalance", ctx, "tenant-1", "prop-1").
		Return(&domain.DimensionalBalance{Balance: dec("100.00")}, nil).Once()
	// 70 worth of postings sits on newer pages, so this page starts at 30.
	mockReportingRepo.On("SumPostingsNewerThan", ctx, "tenant-1", "prop-1", mock.Anything, mock.Anything).
		Return(dec("70.00"), nil).Once()

	resp, err := service.GetTenantLedger(ctx, "tenant-1", filters)

	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Lines[0].RunningBalance.Equal(dec("30.00")), "got %s", resp.Lines[0].RunningBalance)
}
