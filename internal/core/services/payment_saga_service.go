package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
	"github.com/propfolio/property_mgmt_app/internal/dto"
	"github.com/propfolio/property_mgmt_app/internal/middleware"
	"github.com/propfolio/property_mgmt_app/internal/utils/accounting"
)

const (
	paymentSagaType      = "payment_processing"
	idempotencyKeyPrefix = "payment:"
)

// paymentSagaPayload is the state carried between payment saga steps. Fields
// are only ever added as steps complete, so compensators can rely on any
// field written by an earlier step still being present.
type paymentSagaPayload struct {
	PaymentID         string          `json:"paymentId"`
	TenantID          string          `json:"tenantId"`
	PropertyID        string          `json:"propertyId"`
	LeaseID           string          `json:"leaseId"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       time.Time       `json:"paymentDate"`
	PaymentMethod     string          `json:"paymentMethod"`
	ExternalReference *string         `json:"externalReference,omitempty"`
	Memo              string          `json:"memo,omitempty"`
	StateCode         string          `json:"stateCode"`
	Actor             string          `json:"actor"`

	// Written by record_payment.
	PaymentEntryID string `json:"paymentEntryId,omitempty"`

	// Written by apply_to_charges.
	Allocations     []allocationRecord `json:"allocations,omitempty"`
	RemainingCredit decimal.Decimal    `json:"remainingCredit"`

	// Written by calculate_fees.
	FeeEntryID  string          `json:"feeEntryId,omitempty"`
	FeeChargeID string          `json:"feeChargeId,omitempty"`
	FeeTotal    decimal.Decimal `json:"feeTotal"`

	// Written by update_balances.
	CreditID string `json:"creditId,omitempty"`
}

type allocationRecord struct {
	ChargeID string          `json:"chargeId"`
	Amount   decimal.Decimal `json:"amount"`
}

// paymentSagaService builds and runs the five-step payment workflow.
type paymentSagaService struct {
	BaseService
	ledgerSvc     portssvc.LedgerSvcFacade
	complianceSvc portssvc.ComplianceResolverSvcFacade
	orchestrator  portssvc.SagaOrchestratorFacade
	chargeRepo    portsrepo.ChargeRepositoryFacade
	paymentRepo   portsrepo.PaymentRepositoryFacade
	balanceRepo   portsrepo.BalanceRepositoryFacade
	idempotency   portssvc.IdempotencyStore
	publisher     portssvc.EventPublisher

	idempotencyTTL time.Duration
}

// NewPaymentSagaService creates a new PaymentSagaService.
func NewPaymentSagaService(
	ledgerSvc portssvc.LedgerSvcFacade,
	complianceSvc portssvc.ComplianceResolverSvcFacade,
	orchestrator portssvc.SagaOrchestratorFacade,
	chargeRepo portsrepo.ChargeRepositoryFacade,
	paymentRepo portsrepo.PaymentRepositoryFacade,
	balanceRepo portsrepo.BalanceRepositoryFacade,
	idempotency portssvc.IdempotencyStore,
	publisher portssvc.EventPublisher,
	idempotencyTTL time.Duration,
) portssvc.PaymentSagaSvcFacade {
	return &paymentSagaService{
		ledgerSvc:      ledgerSvc,
		complianceSvc:  complianceSvc,
		orchestrator:   orchestrator,
		chargeRepo:     chargeRepo,
		paymentRepo:    paymentRepo,
		balanceRepo:    balanceRepo,
		idempotency:    idempotency,
		publisher:      publisher,
		idempotencyTTL: idempotencyTTL,
	}
}

var _ portssvc.PaymentSagaSvcFacade = (*paymentSagaService)(nil)

// StartPaymentSaga deduplicates on the external reference and drives the
// workflow to a terminal state. A business failure (e.g. a failing step)
// returns a result with Success=false; errors are reserved for validation
// and infrastructure problems.
func (s *paymentSagaService) StartPaymentSaga(ctx context.Context, req dto.StartPaymentRequest) (*dto.PaymentSagaResult, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrInvalidAmount)
	}

	var idemKey string
	if req.ExternalReference != nil && *req.ExternalReference != "" {
		idemKey = idempotencyKeyPrefix + *req.ExternalReference
		if stored, found, err := s.idempotency.Get(ctx, idemKey); err != nil {
			s.LogError(ctx, err, "Idempotency lookup failed", slog.String("key", idemKey))
			return nil, fmt.Errorf("idempotency lookup failed: %w", err)
		} else if found {
			var result dto.PaymentSagaResult
			if err := json.Unmarshal(stored, &result); err != nil {
				return nil, fmt.Errorf("corrupt idempotency record for %s: %w", idemKey, err)
			}
			s.LogInfo(ctx, "Duplicate payment confirmation deduplicated", slog.String("key", idemKey), slog.String("saga_id", result.SagaID))
			return &result, nil
		}
	}

	actor, ok := middleware.GetCallerIDFromCtx(ctx)
	if !ok {
		actor = "system"
	}
	paymentID := req.PaymentID
	if paymentID == "" {
		paymentID = uuid.NewString()
	}
	payload := paymentSagaPayload{
		PaymentID:         paymentID,
		TenantID:          req.TenantID,
		PropertyID:        req.PropertyID,
		LeaseID:           req.LeaseID,
		Amount:            accounting.RoundCurrency(req.Amount),
		PaymentDate:       req.PaymentDate,
		PaymentMethod:     req.PaymentMethod,
		ExternalReference: req.ExternalReference,
		Memo:              req.Memo,
		StateCode:         req.StateCode,
		Actor:             actor,
		RemainingCredit:   decimal.Zero,
		FeeTotal:          decimal.Zero,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode saga payload: %w", err)
	}

	instance, err := s.orchestrator.Run(ctx, paymentSagaType, raw, s.buildSteps())
	if err != nil {
		return nil, err
	}

	result := s.resultFrom(instance)
	if instance.Status == domain.SagaFailed {
		// Compensation ran cleanly; the ledger is back to its pre-saga state.
		s.publishEvents(ctx, domain.NewDomainEvent(domain.EventCompensationCompleted, map[string]any{
			"sagaId":    instance.SagaID,
			"paymentId": paymentID,
			"tenantId":  req.TenantID,
			"error":     instance.Error,
		}))
	}

	if idemKey != "" {
		encoded, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode saga result: %w", err)
		}
		if _, err := s.idempotency.Put(ctx, idemKey, encoded, s.idempotencyTTL); err != nil {
			// The saga already ran; losing the dedupe record is survivable
			// but worth surfacing loudly.
			s.LogError(ctx, err, "Failed to store idempotency record", slog.String("key", idemKey), slog.String("saga_id", instance.SagaID))
		}
	}

	return result, nil
}

func (s *paymentSagaService) resultFrom(instance *domain.SagaInstance) *dto.PaymentSagaResult {
	result := &dto.PaymentSagaResult{
		SagaID:  instance.SagaID,
		Success: instance.Status == domain.SagaCompleted,
		Error:   instance.Error,
	}
	var payload paymentSagaPayload
	if err := json.Unmarshal(instance.Payload, &payload); err == nil {
		result.PaymentID = payload.PaymentID
		if result.Success && payload.RemainingCredit.IsPositive() {
			credit := payload.RemainingCredit
			result.RemainingCredit = &credit
		}
	}
	return result
}

func (s *paymentSagaService) publishEvents(ctx context.Context, events ...domain.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.LogWarn(ctx, "Failed to publish events", slog.String("error", err.Error()))
	}
}

func (s *paymentSagaService) buildSteps() []portssvc.SagaStep {
	return []portssvc.SagaStep{
		&recordPaymentStep{svc: s},
		&applyToChargesStep{svc: s},
		&calculateFeesStep{svc: s},
		&updateBalancesStep{svc: s},
		&notifyExternalStep{svc: s},
	}
}

func decodePayload(raw json.RawMessage) (*paymentSagaPayload, error) {
	var payload paymentSagaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode saga payload: %w", err)
	}
	return &payload, nil
}

func encodePayload(payload *paymentSagaPayload) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode saga payload: %w", err)
	}
	return raw, nil
}

// recordPaymentStep posts the payment entry: debit the trust bank account,
// credit accounts receivable on the tenant dimension.
type recordPaymentStep struct {
	svc *paymentSagaService
}

func (st *recordPaymentStep) Name() string { return "record_payment" }

func (st *recordPaymentStep) Execute(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	p, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}

	accounts, err := st.svc.ledgerSvc.AccountsBySubtype(ctx, domain.AccountTrustBank, domain.AccountAccountsReceivable)
	if err != nil {
		return nil, err
	}

	payment := domain.Payment{
		PaymentID:         p.PaymentID,
		TenantID:          p.TenantID,
		PropertyID:        p.PropertyID,
		LeaseID:           p.LeaseID,
		Amount:            p.Amount,
		PaymentDate:       p.PaymentDate,
		PaymentMethod:     p.PaymentMethod,
		ExternalReference: p.ExternalReference,
		Memo:              p.Memo,
		AuditFields:       domain.NewAuditFields(p.Actor, time.Now()),
	}
	if err := st.svc.paymentRepo.SavePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	tenantID := p.TenantID
	entry, err := st.svc.ledgerSvc.CreateJournalEntry(ctx, dto.CreateEntryInput{
		EntryDate:   p.PaymentDate,
		EntryType:   domain.EntryPayment,
		Description: fmt.Sprintf("Payment %s from tenant %s", p.PaymentID, p.TenantID),
		Metadata:    map[string]string{"paymentId": p.PaymentID},
		Postings: []dto.PostingInput{
			{
				AccountID:  accounts[domain.AccountTrustBank].AccountID,
				Amount:     p.Amount,
				PropertyID: p.PropertyID,
			},
			{
				AccountID:  accounts[domain.AccountAccountsReceivable].AccountID,
				Amount:     p.Amount.Neg(),
				PropertyID: p.PropertyID,
				TenantID:   &tenantID,
			},
		},
		Actor: p.Actor,
	})
	if err != nil {
		return nil, err
	}

	p.PaymentEntryID = entry.EntryID
	return encodePayload(p)
}

func (st *recordPaymentStep) Compensate(ctx context.Context, raw json.RawMessage) error {
	p, err := decodePayload(raw)
	if err != nil {
		return err
	}
	if p.PaymentEntryID == "" {
		return nil
	}
	_, err = st.svc.ledgerSvc.ReverseJournalEntry(ctx, p.PaymentEntryID, time.Now(), "payment saga compensation", p.Actor)
	if err != nil {
		return fmt.Errorf("failed to reverse payment entry %s: %w", p.PaymentEntryID, err)
	}
	return nil
}

// applyToChargesStep allocates the payment against outstanding charges
// oldest-first. The repository re-reads balances under row locks so a
// concurrent payment can never over-apply.
type applyToChargesStep struct {
	svc *paymentSagaService
}

func (st *applyToChargesStep) Name() string { return "apply_to_charges" }

func (st *applyToChargesStep) Execute(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	p, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}

	payment := domain.Payment{
		PaymentID:   p.PaymentID,
		TenantID:    p.TenantID,
		PropertyID:  p.PropertyID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
	}
	allocations, remaining, err := st.svc.chargeRepo.ApplyPaymentFIFO(ctx, payment, p.PaymentEntryID, p.Actor, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to apply payment to charges: %w", err)
	}

	p.Allocations = make([]allocationRecord, len(allocations))
	for i, alloc := range allocations {
		p.Allocations[i] = allocationRecord{ChargeID: alloc.ChargeID, Amount: alloc.AmountApplied}
	}
	p.RemainingCredit = remaining
	return encodePayload(p)
}

func (st *applyToChargesStep) Compensate(ctx context.Context, raw json.RawMessage) error {
	p, err := decodePayload(raw)
	if err != nil {
		return err
	}
	if len(p.Allocations) == 0 {
		return nil
	}
	if err := st.svc.chargeRepo.RevertAllocations(ctx, p.PaymentID, p.Actor, time.Now()); err != nil {
		return fmt.Errorf("failed to revert allocations for payment %s: %w", p.PaymentID, err)
	}
	return nil
}

// calculateFeesStep assesses late fees on the charges this payment touched.
// The fee base is always the charge's original amount, never a ballooned
// balance that includes earlier fees, so fees cannot stack on fees.
type calculateFeesStep struct {
	svc *paymentSagaService
}

func (st *calculateFeesStep) Name() string { return "calculate_fees" }

func (st *calculateFeesStep) Execute(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	p, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}

	asOf := p.PaymentDate
	maxPercent, err := st.svc.complianceSvc.ResolveDecimal(ctx, p.StateCode, domain.RuleTypeLateFee, domain.RuleKeyMaxPercent, asOf)
	if err != nil {
		return nil, err
	}
	if maxPercent == nil {
		// No late-fee rule for the jurisdiction: nothing to assess.
		return raw, nil
	}
	maxFlat, err := st.svc.complianceSvc.ResolveDecimal(ctx, p.StateCode, domain.RuleTypeLateFee, domain.RuleKeyMaxFlat, asOf)
	if err != nil {
		return nil, err
	}
	grace := 0
	if graceDays, err := st.svc.complianceSvc.ResolveInt(ctx, p.StateCode, domain.RuleTypeLateFee, domain.RuleKeyGracePeriodDays, asOf); err != nil {
		return nil, err
	} else if graceDays != nil {
		grace = *graceDays
	}

	feeTotal := decimal.Zero
	for _, alloc := range p.Allocations {
		charge, err := st.svc.chargeRepo.FindChargeByID(ctx, alloc.ChargeID)
		if err != nil {
			return nil, err
		}
		if charge.ChargeType == domain.ChargeLateFee {
			continue
		}
		daysPastDue := accounting.DaysBetween(charge.ChargeDate, p.PaymentDate)
		if daysPastDue <= grace {
			continue
		}
		feeTotal = feeTotal.Add(accounting.LateFee(charge.Amount, *maxPercent, maxFlat))
	}

	if !feeTotal.IsPositive() {
		return raw, nil
	}

	accounts, err := st.svc.ledgerSvc.AccountsBySubtype(ctx, domain.AccountAccountsReceivable, domain.AccountLateFeeIncome)
	if err != nil {
		return nil, err
	}

	tenantID := p.TenantID
	entry, err := st.svc.ledgerSvc.CreateJournalEntry(ctx, dto.CreateEntryInput{
		EntryDate:   p.PaymentDate,
		EntryType:   domain.EntryLateFee,
		Description: fmt.Sprintf("Late fee for tenant %s", p.TenantID),
		Metadata:    map[string]string{"paymentId": p.PaymentID},
		Postings: []dto.PostingInput{
			{
				AccountID:  accounts[domain.AccountAccountsReceivable].AccountID,
				Amount:     feeTotal,
				PropertyID: p.PropertyID,
				TenantID:   &tenantID,
			},
			{
				AccountID:  accounts[domain.AccountLateFeeIncome].AccountID,
				Amount:     feeTotal.Neg(),
				PropertyID: p.PropertyID,
			},
		},
		Actor: p.Actor,
	})
	if err != nil {
		return nil, err
	}

	leaseID := p.LeaseID
	charge := domain.TenantCharge{
		ChargeID:       uuid.NewString(),
		TenantID:       p.TenantID,
		PropertyID:     p.PropertyID,
		LeaseID:        &leaseID,
		ChargeType:     domain.ChargeLateFee,
		Amount:         feeTotal,
		BalanceDue:     feeTotal,
		ChargeDate:     p.PaymentDate,
		DueDate:        p.PaymentDate,
		JournalEntryID: entry.EntryID,
		AuditFields:    domain.NewAuditFields(p.Actor, time.Now()),
	}
	if err := st.svc.chargeRepo.SaveCharge(ctx, charge); err != nil {
		return nil, fmt.Errorf("failed to save late fee charge: %w", err)
	}

	st.svc.publishEvents(ctx, domain.NewDomainEvent(domain.EventLateFeeAssessed, map[string]any{
		"tenantId":   p.TenantID,
		"propertyId": p.PropertyID,
		"paymentId":  p.PaymentID,
		"amount":     feeTotal.String(),
	}))

	p.FeeEntryID = entry.EntryID
	p.FeeChargeID = charge.ChargeID
	p.FeeTotal = feeTotal
	return encodePayload(p)
}

func (st *calculateFeesStep) Compensate(ctx context.Context, raw json.RawMessage) error {
	p, err := decodePayload(raw)
	if err != nil {
		return err
	}
	if p.FeeEntryID != "" {
		if _, err := st.svc.ledgerSvc.ReverseJournalEntry(ctx, p.FeeEntryID, time.Now(), "payment saga compensation", p.Actor); err != nil {
			return fmt.Errorf("failed to reverse fee entry %s: %w", p.FeeEntryID, err)
		}
	}
	if p.FeeChargeID != "" {
		if err := st.svc.chargeRepo.DeleteCharge(ctx, p.FeeChargeID); err != nil {
			return fmt.Errorf("failed to delete fee charge %s: %w", p.FeeChargeID, err)
		}
	}
	return nil
}

// updateBalancesStep verifies the materialized balance still equals the
// posting sum after the saga's writes, and records any overpayment as a
// tenant credit.
type updateBalancesStep struct {
	svc *paymentSagaService
}

func (st *updateBalancesStep) Name() string { return "update_balances" }

func (st *updateBalancesStep) Execute(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	p, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}

	materialized, err := st.svc.balanceRepo.GetBalance(ctx, p.TenantID, p.PropertyID)
	if err != nil {
		return nil, err
	}
	derived, err := st.svc.balanceRepo.SumPostings(ctx, p.TenantID, p.PropertyID)
	if err != nil {
		return nil, err
	}
	if !materialized.Balance.Equal(derived) {
		return nil, fmt.Errorf("balance drift for tenant %s property %s: materialized %s, postings sum %s",
			p.TenantID, p.PropertyID, materialized.Balance.String(), derived.String())
	}

	if p.RemainingCredit.IsPositive() {
		credit := domain.TenantCredit{
			CreditID:    uuid.NewString(),
			TenantID:    p.TenantID,
			PropertyID:  p.PropertyID,
			PaymentID:   p.PaymentID,
			Amount:      p.RemainingCredit,
			AuditFields: domain.NewAuditFields(p.Actor, time.Now()),
		}
		if err := st.svc.paymentRepo.SaveCredit(ctx, credit); err != nil {
			return nil, fmt.Errorf("failed to save tenant credit: %w", err)
		}
		st.svc.publishEvents(ctx, domain.NewDomainEvent(domain.EventTenantCreditCreated, map[string]any{
			"creditId":  credit.CreditID,
			"tenantId":  p.TenantID,
			"paymentId": p.PaymentID,
			"amount":    credit.Amount.String(),
		}))
		p.CreditID = credit.CreditID
	}

	return encodePayload(p)
}

func (st *updateBalancesStep) Compensate(ctx context.Context, raw json.RawMessage) error {
	p, err := decodePayload(raw)
	if err != nil {
		return err
	}
	if p.CreditID == "" {
		return nil
	}
	if err := st.svc.paymentRepo.DeleteCreditByPaymentID(ctx, p.PaymentID); err != nil {
		return fmt.Errorf("failed to delete credit for payment %s: %w", p.PaymentID, err)
	}
	return nil
}

// notifyExternalStep hands the outcome to the notification and webhook
// dispatcher. It has no durable effects of its own, so its compensator is a
// no-op.
type notifyExternalStep struct {
	svc *paymentSagaService
}

func (st *notifyExternalStep) Name() string { return "notify_external" }

func (st *notifyExternalStep) Execute(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	p, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}

	summary := map[string]any{
		"paymentId":       p.PaymentID,
		"tenantId":        p.TenantID,
		"propertyId":      p.PropertyID,
		"amount":          p.Amount.String(),
		"remainingCredit": p.RemainingCredit.String(),
		"feeTotal":        p.FeeTotal.String(),
	}
	st.svc.publishEvents(ctx,
		domain.NewDomainEvent(domain.EventPaymentProcessed, summary),
		domain.NewDomainEvent(domain.EventNotificationSend, summary),
		domain.NewDomainEvent(domain.EventWebhookSend, summary),
	)
	return raw, nil
}

func (st *notifyExternalStep) Compensate(ctx context.Context, raw json.RawMessage) error {
	return nil
}
