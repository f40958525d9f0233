package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
	"github.com/propfolio/property_mgmt_app/internal/core/services"
	"github.com/propfolio/property_mgmt_app/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo  *MockLedgerRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.LedgerSvcFacade
	ctx             context.Context

	arAccountID   string
	bankAccountID string
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.mockLedgerRepo = new(MockLedgerRepository)
	s.mockAccountRepo = new(MockAccountRepository)
	s.service = services.NewLedgerService(s.mockLedgerRepo, s.mockAccountRepo)
	s.ctx = context.Background()
	s.arAccountID = uuid.NewString()
	s.bankAccountID = uuid.NewString()
}

func (s *LedgerServiceTestSuite) activeAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		s.bankAccountID: {AccountID: s.bankAccountID, Subtype: domain.AccountTrustBank, IsActive: true},
		s.arAccountID:   {AccountID: s.arAccountID, Subtype: domain.AccountAccountsReceivable, IsActive: true},
	}
}

func (s *LedgerServiceTestSuite) balancedInput(tenantID string) dto.CreateEntryInput {
	amount := decimal.NewFromInt(1200)
	return dto.CreateEntryInput{
		EntryDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EntryType:   domain.EntryPayment,
		Description: "March rent payment",
		Postings: []dto.PostingInput{
			{AccountID: s.bankAccountID, Amount: amount, PropertyID: "prop-1"},
			{AccountID: s.arAccountID, Amount: amount.Neg(), PropertyID: "prop-1", TenantID: &tenantID},
		},
		Actor: "user-1",
	}
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntry_Success() {
	tenantID := "tenant-1"
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, mock.Anything).Return(s.activeAccounts(), nil).Once()

	var savedEntry domain.JournalEntry
	var savedDeltas domain.BalanceDeltas
	s.mockLedgerRepo.On("SaveEntry", s.ctx, mock.AnythingOfType("domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedEntry = args.Get(1).(domain.JournalEntry)
			savedDeltas = args.Get(2).(domain.BalanceDeltas)
		}).Return(nil).Once()

	entry, err := s.service.CreateJournalEntry(s.ctx, s.balancedInput(tenantID))

	s.Require().NoError(err)
	s.Require().NotNil(entry)
	s.Len(savedEntry.Postings, 2)
	s.Equal(domain.EntryPayment, savedEntry.EntryType)

	// Only the tenant-dimension posting produces a balance delta.
	s.Len(savedDeltas, 1)
	delta := savedDeltas[domain.BalanceKey{TenantID: tenantID, PropertyID: "prop-1"}]
	s.True(delta.Equal(decimal.NewFromInt(-1200)), "got delta %s", delta)

	s.mockLedgerRepo.AssertExpectations(s.T())
	s.mockAccountRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntry_Unbalanced() {
	tenantID := "tenant-1"
	input := s.balancedInput(tenantID)
	input.Postings[1].Amount = decimal.NewFromInt(-1100)

	_, err := s.service.CreateJournalEntry(s.ctx, input)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)
	s.mockLedgerRepo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntry_SinglePosting() {
	input := s.balancedInput("tenant-1")
	input.Postings = input.Postings[:1]

	_, err := s.service.CreateJournalEntry(s.ctx, input)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntry_ZeroAmountPosting() {
	input := s.balancedInput("tenant-1")
	input.Postings[0].Amount = decimal.Zero
	input.Postings[1].Amount = decimal.Zero

	_, err := s.service.CreateJournalEntry(s.ctx, input)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntry_UnknownAccount() {
	accounts := s.activeAccounts()
	delete(accounts, s.arAccountID)
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, mock.Anything).Return(accounts, nil).Once()

	_, err := s.service.CreateJournalEntry(s.ctx, s.balancedInput("tenant-1"))

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrAccountsNotFound)
}

func (s *LedgerServiceTestSuite) TestCreateJournalEntry_InactiveAccount() {
	accounts := s.activeAccounts()
	inactive := accounts[s.arAccountID]
	inactive.IsActive = false
	accounts[s.arAccountID] = inactive
	s.mockAccountRepo.On("FindAccountsByIDs", s.ctx, mock.Anything).Return(accounts, nil).Once()

	_, err := s.service.CreateJournalEntry(s.ctx, s.balancedInput("tenant-1"))

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) originalEntry(tenantID string) *domain.JournalEntry {
	entryID := uuid.NewString()
	amount := decimal.NewFromInt(1200)
	return &domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EntryType:   domain.EntryCharge,
		Description: "March rent",
		Postings: []domain.JournalPosting{
			{PostingID: uuid.NewString(), EntryID: entryID, AccountID: s.arAccountID, Amount: amount, PropertyID: "prop-1", TenantID: &tenantID},
			{PostingID: uuid.NewString(), EntryID: entryID, AccountID: s.bankAccountID, Amount: amount.Neg(), PropertyID: "prop-1"},
		},
	}
}

func (s *LedgerServiceTestSuite) TestReverseJournalEntry_Success() {
	tenantID := "tenant-1"
	original := s.originalEntry(tenantID)
	s.mockLedgerRepo.On("FindEntryByID", s.ctx, original.EntryID).Return(original, nil).Once()

	var savedReversal domain.JournalEntry
	s.mockLedgerRepo.On("SaveReversalEntry", s.ctx, mock.AnythingOfType("domain.JournalEntry"), mock.Anything, original.EntryID, "admin", mock.Anything).
		Run(func(args mock.Arguments) {
			savedReversal = args.Get(1).(domain.JournalEntry)
		}).Return(nil).Once()

	reversal, err := s.service.ReverseJournalEntry(s.ctx, original.EntryID, time.Now(), "posted in error", "admin")

	s.Require().NoError(err)
	s.Require().NotNil(reversal)
	s.Equal(domain.EntryReversal, savedReversal.EntryType)
	s.Require().NotNil(savedReversal.OriginalEntryID)
	s.Equal(original.EntryID, *savedReversal.OriginalEntryID)
	s.Require().Len(savedReversal.Postings, 2)
	for i, p := range savedReversal.Postings {
		s.True(p.Amount.Equal(original.Postings[i].Amount.Neg()),
			"posting %d: expected %s, got %s", i, original.Postings[i].Amount.Neg(), p.Amount)
	}

	s.mockLedgerRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestReverseJournalEntry_AlreadyReversed() {
	original := s.originalEntry("tenant-1")
	reversedBy := uuid.NewString()
	original.ReversedByEntryID = &reversedBy
	s.mockLedgerRepo.On("FindEntryByID", s.ctx, original.EntryID).Return(original, nil).Once()

	_, err := s.service.ReverseJournalEntry(s.ctx, original.EntryID, time.Now(), "dup", "admin")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.mockLedgerRepo.AssertNotCalled(s.T(), "SaveReversalEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestReverseJournalEntry_OfAReversal() {
	original := s.originalEntry("tenant-1")
	originalID := uuid.NewString()
	original.EntryType = domain.EntryReversal
	original.OriginalEntryID = &originalID
	s.mockLedgerRepo.On("FindEntryByID", s.ctx, original.EntryID).Return(original, nil).Once()

	_, err := s.service.ReverseJournalEntry(s.ctx, original.EntryID, time.Now(), "nope", "admin")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *LedgerServiceTestSuite) TestReverseJournalEntry_NotFound() {
	entryID := uuid.NewString()
	s.mockLedgerRepo.On("FindEntryByID", s.ctx, entryID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.ReverseJournalEntry(s.ctx, entryID, time.Now(), "missing", "admin")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestAccountsBySubtype_Missing() {
	s.mockAccountRepo.On("FindAccountsBySubtypes", s.ctx, mock.Anything).
		Return(map[domain.AccountSubtype]domain.Account{}, nil).Once()

	_, err := s.service.AccountsBySubtype(s.ctx, domain.AccountTrustBank)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrAccountsNotFound)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func TestGetEntry_LoadsPostings(t *testing.T) {
	mockLedgerRepo := new(MockLedgerRepository)
	mockAccountRepo := new(MockAccountRepository)
	service := services.NewLedgerService(mockLedgerRepo, mockAccountRepo)
	ctx := context.Background()

	entryID := uuid.NewString()
	entry := &domain.JournalEntry{EntryID: entryID, EntryType: domain.EntryCharge}
	postings := []domain.JournalPosting{{PostingID: uuid.NewString(), EntryID: entryID}}
	mockLedgerRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	mockLedgerRepo.On("FindPostingsByEntryID", ctx, entryID).Return(postings, nil).Once()

	got, err := service.GetEntry(ctx, entryID)

	assert.NoError(t, err)
	assert.Len(t, got.Postings, 1)
	mockLedgerRepo.AssertExpectations(t)
}
