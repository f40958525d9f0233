package mapping

import (
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	"github.com/propfolio/property_mgmt_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:   d.AccountID,
		Subtype:     string(d.Subtype),
		Name:        d.Name,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:   m.AccountID,
		Subtype:     domain.AccountSubtype(m.Subtype),
		Name:        m.Name,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalEntry converts a domain JournalEntry (without postings).
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:           d.EntryID,
		EntryDate:         d.EntryDate,
		EntryType:         string(d.EntryType),
		Description:       d.Description,
		Metadata:          d.Metadata,
		OriginalEntryID:   d.OriginalEntryID,
		ReversedByEntryID: d.ReversedByEntryID,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry (without postings).
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:           m.EntryID,
		EntryDate:         m.EntryDate,
		EntryType:         domain.EntryType(m.EntryType),
		Description:       m.Description,
		Metadata:          m.Metadata,
		OriginalEntryID:   m.OriginalEntryID,
		ReversedByEntryID: m.ReversedByEntryID,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalPosting converts a domain JournalPosting.
func ToModelJournalPosting(d domain.JournalPosting) models.JournalPosting {
	return models.JournalPosting{
		PostingID:   d.PostingID,
		EntryID:     d.EntryID,
		AccountID:   d.AccountID,
		Amount:      d.Amount,
		PropertyID:  d.PropertyID,
		TenantID:    d.TenantID,
		Description: d.Description,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalPosting converts a model JournalPosting.
func ToDomainJournalPosting(m models.JournalPosting) domain.JournalPosting {
	return domain.JournalPosting{
		PostingID:   m.PostingID,
		EntryID:     m.EntryID,
		AccountID:   m.AccountID,
		Amount:      m.Amount,
		PropertyID:  m.PropertyID,
		TenantID:    m.TenantID,
		Description: m.Description,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalPostingSlice converts a slice of model postings.
func ToDomainJournalPostingSlice(ms []models.JournalPosting) []domain.JournalPosting {
	ds := make([]domain.JournalPosting, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalPosting(m)
	}
	return ds
}

// ToDomainComplianceRule converts a model ComplianceRule.
func ToDomainComplianceRule(m models.ComplianceRule) domain.ComplianceRule {
	return domain.ComplianceRule{
		RuleID:        m.RuleID,
		StateCode:     m.StateCode,
		RuleType:      m.RuleType,
		RuleKey:       m.RuleKey,
		RuleValue:     m.RuleValue,
		EffectiveDate: m.EffectiveDate,
		EndDate:       m.EndDate,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDimensionalBalance converts a model DimensionalBalance.
func ToDomainDimensionalBalance(m models.DimensionalBalance) domain.DimensionalBalance {
	return domain.DimensionalBalance{
		TenantID:      m.TenantID,
		PropertyID:    m.PropertyID,
		Balance:       m.Balance,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}
