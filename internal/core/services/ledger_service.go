package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
	"github.com/propfolio/property_mgmt_app/internal/dto"
	"github.com/propfolio/property_mgmt_app/internal/utils/accounting"
)

// ledgerService provides core journal entry operations. Every mutation of
// financial state in the system flows through CreateJournalEntry or
// ReverseJournalEntry.
type ledgerService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// validateAccounts checks that every posting references an existing, active
// account.
func (s *ledgerService) validateAccounts(ctx context.Context, postings []domain.JournalPosting) error {
	ids := make([]string, 0, len(postings))
	seen := make(map[string]struct{}, len(postings))
	for _, p := range postings {
		if _, ok := seen[p.AccountID]; ok {
			continue
		}
		seen[p.AccountID] = struct{}{}
		ids = append(ids, p.AccountID)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to look up posting accounts: %w", err)
	}

	for _, id := range ids {
		acct, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrAccountsNotFound, id)
		}
		if !acct.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
	}
	return nil
}

// CreateJournalEntry validates and persists a balanced journal entry. The
// entry, its postings and the dimensional balance updates are written in a
// single transaction by the repository.
func (s *ledgerService) CreateJournalEntry(ctx context.Context, input dto.CreateEntryInput) (*domain.JournalEntry, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
	}
	if input.EntryDate.IsZero() {
		return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}

	now := time.Now()
	entryID := uuid.NewString()
	audit := domain.NewAuditFields(input.Actor, now)

	postings := make([]domain.JournalPosting, 0, len(input.Postings))
	for _, in := range input.Postings {
		if in.Amount.IsZero() {
			return nil, fmt.Errorf("%w: posting amount must be non-zero", apperrors.ErrInvalidAmount)
		}
		postings = append(postings, domain.JournalPosting{
			PostingID:   uuid.NewString(),
			EntryID:     entryID,
			AccountID:   in.AccountID,
			Amount:      in.Amount,
			PropertyID:  in.PropertyID,
			TenantID:    in.TenantID,
			Description: in.Description,
			AuditFields: audit,
		})
	}

	if err := accounting.ValidateBalanced(postings); err != nil {
		s.LogWarn(ctx, "Rejected unbalanced journal entry", slog.String("entry_type", string(input.EntryType)), slog.String("error", err.Error()))
		return nil, err
	}
	if err := s.validateAccounts(ctx, postings); err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   input.EntryDate,
		EntryType:   input.EntryType,
		Description: input.Description,
		Metadata:    input.Metadata,
		Postings:    postings,
		AuditFields: audit,
	}

	deltas := domain.DeltasFromPostings(postings)
	if err := s.ledgerRepo.SaveEntry(ctx, entry, deltas); err != nil {
		s.LogError(ctx, err, "Failed to save journal entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry created", slog.String("entry_id", entryID), slog.String("entry_type", string(entry.EntryType)), slog.Int("postings", len(postings)))
	return &entry, nil
}

// ReverseJournalEntry creates a new entry that negates every posting of the
// original, links the two, and marks the original as reversed. The original
// entry is never modified beyond the reversed_by link.
func (s *ledgerService) ReverseJournalEntry(ctx context.Context, entryID string, reversalDate time.Time, reason string, actor string) (*domain.JournalEntry, error) {
	original, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.ReversedByEntryID != nil {
		return nil, fmt.Errorf("%w: entry %s is already reversed by %s", apperrors.ErrConflict, entryID, *original.ReversedByEntryID)
	}
	if original.EntryType == domain.EntryReversal {
		return nil, fmt.Errorf("%w: entry %s is itself a reversal", apperrors.ErrConflict, entryID)
	}

	postings := original.Postings
	if len(postings) == 0 {
		postings, err = s.ledgerRepo.FindPostingsByEntryID(ctx, entryID)
		if err != nil {
			return nil, err
		}
	}

	if reversalDate.IsZero() {
		reversalDate = time.Now()
	}
	now := time.Now()
	reversalID := uuid.NewString()
	audit := domain.NewAuditFields(actor, now)

	reversed := make([]domain.JournalPosting, 0, len(postings))
	for _, p := range postings {
		reversed = append(reversed, domain.JournalPosting{
			PostingID:   uuid.NewString(),
			EntryID:     reversalID,
			AccountID:   p.AccountID,
			Amount:      p.Amount.Neg(),
			PropertyID:  p.PropertyID,
			TenantID:    p.TenantID,
			Description: p.Description,
			AuditFields: audit,
		})
	}

	metadata := map[string]string{"reason": reason}
	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		EntryDate:       reversalDate,
		EntryType:       domain.EntryReversal,
		Description:     fmt.Sprintf("Reversal of %s: %s", entryID, original.Description),
		Metadata:        metadata,
		OriginalEntryID: &entryID,
		Postings:        reversed,
		AuditFields:     audit,
	}

	deltas := domain.DeltasFromPostings(reversed)
	if err := s.ledgerRepo.SaveReversalEntry(ctx, reversal, deltas, entryID, actor, now); err != nil {
		s.LogError(ctx, err, "Failed to save reversal entry", slog.String("original_entry_id", entryID))
		return nil, fmt.Errorf("failed to save reversal entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry reversed", slog.String("original_entry_id", entryID), slog.String("reversal_entry_id", reversalID))
	return &reversal, nil
}

// GetEntry returns a journal entry with its postings.
func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if len(entry.Postings) == 0 {
		postings, err := s.ledgerRepo.FindPostingsByEntryID(ctx, entryID)
		if err != nil {
			return nil, err
		}
		entry.Postings = postings
	}
	return entry, nil
}

// AccountsBySubtype resolves chart-of-accounts entries by subtype, failing if
// any requested subtype is missing.
func (s *ledgerService) AccountsBySubtype(ctx context.Context, subtypes ...domain.AccountSubtype) (map[domain.AccountSubtype]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsBySubtypes(ctx, subtypes)
	if err != nil {
		return nil, fmt.Errorf("failed to look up accounts: %w", err)
	}
	for _, st := range subtypes {
		if _, ok := accounts[st]; !ok {
			return nil, fmt.Errorf("%w: no account with subtype %s", apperrors.ErrAccountsNotFound, st)
		}
	}
	return accounts, nil
}
