package mapping

import (
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	"github.com/propfolio/property_mgmt_app/internal/models"
)

// ToModelTenantCharge converts a domain TenantCharge.
func ToModelTenantCharge(d domain.TenantCharge) models.TenantCharge {
	return models.TenantCharge{
		ChargeID:       d.ChargeID,
		TenantID:       d.TenantID,
		PropertyID:     d.PropertyID,
		LeaseID:        d.LeaseID,
		ChargeType:     string(d.ChargeType),
		Amount:         d.Amount,
		BalanceDue:     d.BalanceDue,
		ChargeDate:     d.ChargeDate,
		DueDate:        d.DueDate,
		JournalEntryID: d.JournalEntryID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTenantCharge converts a model TenantCharge.
func ToDomainTenantCharge(m models.TenantCharge) domain.TenantCharge {
	return domain.TenantCharge{
		ChargeID:       m.ChargeID,
		TenantID:       m.TenantID,
		PropertyID:     m.PropertyID,
		LeaseID:        m.LeaseID,
		ChargeType:     domain.ChargeType(m.ChargeType),
		Amount:         m.Amount,
		BalanceDue:     m.BalanceDue,
		ChargeDate:     m.ChargeDate,
		DueDate:        m.DueDate,
		JournalEntryID: m.JournalEntryID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTenantChargeSlice converts a slice of model charges.
func ToDomainTenantChargeSlice(ms []models.TenantCharge) []domain.TenantCharge {
	ds := make([]domain.TenantCharge, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTenantCharge(m)
	}
	return ds
}

// ToModelPayment converts a domain Payment.
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:         d.PaymentID,
		TenantID:          d.TenantID,
		PropertyID:        d.PropertyID,
		LeaseID:           d.LeaseID,
		Amount:            d.Amount,
		PaymentDate:       d.PaymentDate,
		PaymentMethod:     d.PaymentMethod,
		ExternalReference: d.ExternalReference,
		Memo:              d.Memo,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment.
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:         m.PaymentID,
		TenantID:          m.TenantID,
		PropertyID:        m.PropertyID,
		LeaseID:           m.LeaseID,
		Amount:            m.Amount,
		PaymentDate:       m.PaymentDate,
		PaymentMethod:     m.PaymentMethod,
		ExternalReference: m.ExternalReference,
		Memo:              m.Memo,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPaymentAllocation converts a model PaymentAllocation.
func ToDomainPaymentAllocation(m models.PaymentAllocation) domain.PaymentAllocation {
	return domain.PaymentAllocation{
		AllocationID:   m.AllocationID,
		PaymentID:      m.PaymentID,
		ChargeID:       m.ChargeID,
		AmountApplied:  m.AmountApplied,
		AppliedDate:    m.AppliedDate,
		JournalEntryID: m.JournalEntryID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelPaymentPlan converts a domain PaymentPlan (without installments).
func ToModelPaymentPlan(d domain.PaymentPlan) models.PaymentPlan {
	return models.PaymentPlan{
		PlanID:           d.PlanID,
		TenantID:         d.TenantID,
		PropertyID:       d.PropertyID,
		TotalAmount:      d.TotalAmount,
		NumberOfPayments: d.NumberOfPayments,
		Frequency:        string(d.Frequency),
		StartDate:        d.StartDate,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPaymentPlan converts a model PaymentPlan (without installments).
func ToDomainPaymentPlan(m models.PaymentPlan) domain.PaymentPlan {
	return domain.PaymentPlan{
		PlanID:           m.PlanID,
		TenantID:         m.TenantID,
		PropertyID:       m.PropertyID,
		TotalAmount:      m.TotalAmount,
		NumberOfPayments: m.NumberOfPayments,
		Frequency:        domain.PlanFrequency(m.Frequency),
		StartDate:        m.StartDate,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainInstallment converts a model Installment.
func ToDomainInstallment(m models.Installment) domain.Installment {
	return domain.Installment{
		InstallmentID:     m.InstallmentID,
		PlanID:            m.PlanID,
		InstallmentNumber: m.InstallmentNumber,
		DueDate:           m.DueDate,
		Amount:            m.Amount,
		Status:            domain.InstallmentStatus(m.Status),
	}
}
